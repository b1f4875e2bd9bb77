package main

import (
	"os"

	"github.com/idilsaglam/todo-sync/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
