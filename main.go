package main

import "github.com/fiberbus/fiberbus/cmd"

func main() {
	cmd.Execute()
}
