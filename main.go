// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/cloudtek/smartbuild/cmd/smartbuild"

func main() {
	cmd.Execute()
}
