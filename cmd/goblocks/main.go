package main

import "github.com/dshills/goblocks/internal/cli"

func main() {
	cli.Execute()
}
