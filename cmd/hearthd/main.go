package main

import "github.com/hearthd/hearthd/cmd/hearthd/cmd"

func main() {
	cmd.Execute()
}
