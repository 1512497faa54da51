package main

import (
	"os"

	"github.com/ticktui/ticktui/internal/cli"
)

func main() {
	cli.InitCLI()
	os.Exit(cli.ExecuteWithErrorCode(os.Args[1:]))
}
