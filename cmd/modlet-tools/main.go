package main

import "modlet-tools/internal/cli"

func main() {
	cli.Execute()
}
