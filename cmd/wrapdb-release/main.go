package main

import "wrapdb-release/internal/cli"

func main() {
	cli.Execute()
}
