package main

import "rosterkeeper/internal/client/cli"

func main() {
	cli.Execute()
}
