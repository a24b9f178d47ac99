// SPDX-License-Identifier: MPL-2.0

package build

// Target names.
const (
	TargetClean            = "Clean"
	TargetRestore          = "Restore"
	TargetCompile          = "Compile"
	TargetPack             = "Pack"
	TargetPublish          = "Publish"
	TargetPush             = "Push"
	TargetUnitTests        = "UnitTests"
	TargetIntegrationTests = "IntegrationTests"
	TargetModuleTests      = "ModuleTests"
	TargetSystemTests      = "SystemTests"
	TargetSmokeTests       = "SmokeTests"

	// DefaultTarget runs when no target is requested.
	DefaultTarget = TargetCompile
)

// definition is the static shape of a target; bodies are bound in register.
type definition struct {
	name        string
	description string
	dependsOn   []string
	before      []string
}

var definitions = []definition{
	{name: TargetClean, description: "Reset the artifacts, test results and coverage directories", before: []string{TargetRestore}},
	{name: TargetRestore, description: "Restore dependencies of every artifact", dependsOn: []string{TargetClean}},
	{name: TargetCompile, description: "Build every artifact", dependsOn: []string{TargetRestore}},
	{name: TargetPack, description: "Pack package artifacts", dependsOn: []string{TargetCompile}},
	{name: TargetPublish, description: "Publish package artifacts", dependsOn: []string{TargetCompile}},
	{name: TargetPush, description: "Push packed packages to the registry", dependsOn: []string{TargetPack}},
	{name: TargetUnitTests, description: "Run unit tests with coverage", dependsOn: []string{TargetClean}},
	{name: TargetIntegrationTests, description: "Run integration tests with coverage", dependsOn: []string{TargetClean}},
	{name: TargetModuleTests, description: "Run module tests", dependsOn: []string{TargetClean}},
	{name: TargetSystemTests, description: "Run system tests", dependsOn: []string{TargetClean}},
	{name: TargetSmokeTests, description: "Run smoke tests", dependsOn: []string{TargetClean}},
}
