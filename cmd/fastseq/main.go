package main

import (
	"os"

	"github.com/fastseq/fastseq/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
