// SPDX-License-Identifier: MPL-2.0

// Package config resolves the run settings using Viper with CUE as the file format.
//
// Sources, lowest to highest precedence: built-in defaults, an optional
// smartbuild.cue file (in the root directory or given explicitly), SMARTBUILD_*
// environment variables, and command-line flags. The file is validated against
// the embedded #Config schema before it is merged.
package config
