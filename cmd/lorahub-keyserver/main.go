package main

import "github.com/lorahub/lorahub-keyserver/cmd/lorahub-keyserver/cmd"

var version string // set by the compiler

func main() {
	cmd.Execute(version)
}
