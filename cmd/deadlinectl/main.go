package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"deadline_notifier/internal/cli"
)

func main() {
	if err := cli.New().Execute(); err != nil {
		_, _ = fmt.Fprintf(color.Error, "%s %v\n", color.RedString("error:"), err)
		os.Exit(1)
	}
}
