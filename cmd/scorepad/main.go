package main

import "github.com/mcoot/scorepad/internal/cli"

func main() {
	cli.Execute()
}
