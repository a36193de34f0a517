package main

import (
	"fmt"
	"os"

	"github.com/yndnr/isoauth-go/internal/cli/command"
	"github.com/yndnr/isoauth-go/internal/core/domain"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if code := domain.GetErrorCode(err); code != "" {
			fmt.Fprintf(os.Stderr, "code: %s\n", code)
		}
		os.Exit(command.ExitCode(err))
	}
}
