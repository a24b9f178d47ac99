// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ManifestNotFoundId Id = iota + 1
	ManifestParseErrorId
	ManifestInvalidId
	TargetNotFoundId
	ToolchainNotFoundId
	TargetFailedId
	ConfigLoadFailedId
	MissingParameterId
	DependencyCycleId
	CoverageNotFinalizedId
	VersionResolveFailedId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	manifestNotFoundIssue = &Issue{
		id: ManifestNotFoundId,
		mdMsg: `
# No build manifest found!

smartbuild looks for ` + "`build.cue`" + ` and then ` + "`build.toml`" + ` in the root directory.

## Things you can try:
- Run from the repository root, or pass it explicitly:
~~~
$ smartbuild run --root /path/to/repo
~~~

- Point at a manifest somewhere else:
~~~
$ smartbuild run --manifest ./ci/build.cue
~~~

## Example build.cue:
~~~cue
modules: [
  {
    name: "build-system"
    artifacts: [
      {name: "build-system-pkg", project: "CloudTek.BuildSystem", type: "package"},
    ]
  },
]
~~~`,
	}

	manifestParseErrorIssue = &Issue{
		id: ManifestParseErrorId,
		mdMsg: `
# Failed to parse the build manifest!

The manifest has a syntax error or a value that does not match the schema.

## Things you can try:
- Check the line and field named in the error above
- Artifact ` + "`type`" + ` must be one of ` + "`package`" + `, ` + "`container`" + `, ` + "`lib`" + `
- Artifact ` + "`stability`" + ` must be ` + "`stable`" + ` or ` + "`prerelease`" + `
- Unknown fields are rejected; remove typos such as ` + "`artefacts`",
	}

	manifestInvalidIssue = &Issue{
		id: ManifestInvalidId,
		mdMsg: `
# Invalid build manifest!

The manifest parsed, but its modules do not form a valid tree.

## Rules:
- Module names are unique
- Artifact names are unique within their module
- Every artifact has a non-empty name and project`,
	}

	targetNotFoundIssue = &Issue{
		id: TargetNotFoundId,
		mdMsg: `
# Target not found!

The requested target is not one of the build targets.

## Things you can try:
- List the available targets:
~~~
$ smartbuild targets
~~~

- Target names are case-sensitive: ` + "`UnitTests`" + `, not ` + "`unittests`",
	}

	toolchainNotFoundIssue = &Issue{
		id: ToolchainNotFoundId,
		mdMsg: `
# .NET toolchain not found!

The ` + "`dotnet`" + ` executable is not on your PATH.

## Things you can try:
- Install the .NET SDK and open a new shell
- Check the installation:
~~~
$ dotnet --info
~~~

- Preview what would run without the toolchain:
~~~
$ smartbuild run --dry-run Pack
~~~`,
	}

	targetFailedIssue = &Issue{
		id: TargetFailedId,
		mdMsg: `
# A build target failed!

The toolchain exited with an error. Nothing after the failed target was run.

## Things you can try:
- Read the toolchain output above the error
- Re-run only the failing target to iterate faster
- Use ` + "`--verbose`" + ` to see every toolchain invocation`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try:
- Check ` + "`smartbuild.cue`" + ` for CUE syntax errors
- Show the effective settings:
~~~
$ smartbuild config show
~~~

- Settings can also come from ` + "`SMARTBUILD_*`" + ` environment variables`,
	}

	missingParameterIssue = &Issue{
		id: MissingParameterId,
		mdMsg: `
# Missing required parameter!

Push needs both a registry URL and an API key. No target was run.

## Things you can try:
- Pass them as flags:
~~~
$ smartbuild run Push --registry-url https://api.nuget.org/v3/index.json --api-key $NUGET_KEY
~~~

- Or set ` + "`SMARTBUILD_REGISTRY_URL`" + ` and ` + "`SMARTBUILD_API_KEY`",
	}

	dependencyCycleIssue = &Issue{
		id: DependencyCycleId,
		mdMsg: `
# Dependency cycle detected!

The target graph contains a cycle, so no execution order exists.`,
	}

	coverageNotFinalizedIssue = &Issue{
		id: CoverageNotFinalizedId,
		mdMsg: `
# Coverage will not be finalized!

No artifact has a test project, so the coverage accumulator is never
converted into ` + "`tests/coverage/coverage.xml`" + `.

## Things you can try:
- Add a test project at ` + "`{module}/{artifact}/tests/{Project}.Tests/{Project}.Tests.csproj`" + `
- Inspect which artifacts have tests:
~~~
$ smartbuild manifest
~~~`,
	}

	versionResolveFailedIssue = &Issue{
		id: VersionResolveFailedId,
		mdMsg: `
# Failed to compute the build version!

Versions come from the semver tags of the git repository at the root.

## Things you can try:
- Make sure the root is inside a git work tree with at least one commit
- Override the version explicitly:
~~~
$ smartbuild run --version-override 1.2.3
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

smartbuild could not reset one of the output directories.

## Things you can try:
- Check permissions on ` + "`artifacts/`" + `, ` + "`tests/results/`" + ` and ` + "`tests/coverage/`" + `
- Close programs holding files open inside them`,
	}

	issues = map[Id]*Issue{
		manifestNotFoundIssue.Id():     manifestNotFoundIssue,
		manifestParseErrorIssue.Id():   manifestParseErrorIssue,
		manifestInvalidIssue.Id():      manifestInvalidIssue,
		targetNotFoundIssue.Id():       targetNotFoundIssue,
		toolchainNotFoundIssue.Id():    toolchainNotFoundIssue,
		targetFailedIssue.Id():         targetFailedIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		missingParameterIssue.Id():     missingParameterIssue,
		dependencyCycleIssue.Id():      dependencyCycleIssue,
		coverageNotFinalizedIssue.Id(): coverageNotFinalizedIssue,
		versionResolveFailedIssue.Id(): versionResolveFailedIssue,
		permissionDeniedIssue.Id():     permissionDeniedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
