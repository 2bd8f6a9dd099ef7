// Copyright © 2024 The BPLint authors

package main

import "github.com/luthersystems/bplint/cmd"

func main() {
	cmd.Execute()
}
