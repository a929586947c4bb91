package main

import "github.com/KostasZigo/commitgraph/cmd"

func main() {
	cmd.Execute()
}
