package main

import "github.com/dmarkhas/templua/cmd/templua/cmd"

func main() {
	cmd.Execute()
}
