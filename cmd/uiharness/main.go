// Command uiharness builds, launches and drives a desktop application,
// capturing a screenshot after every scripted step.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/uiharness/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
