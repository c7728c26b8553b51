package main

import "github.com/devws-io/devws/internal/cli"

func main() {
	cli.Execute()
}
