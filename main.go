package main

import "github.com/notargets/ibex/cmd"

func main() {
	cmd.Execute()
}
