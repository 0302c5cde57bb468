// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/depfetch/depfetch/cmd/depfetch"

func main() {
	cmd.Execute()
}
