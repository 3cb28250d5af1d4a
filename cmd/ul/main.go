package main

import (
	"os"

	"github.com/decisivestrike/uncommon-lisp/pkg/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
