// Command run_ui_test runs the BotOrNot UI test.
//
// Usage:
//
//	run_ui_test [path/to/replay]
package main

import (
	"fmt"
	"os"

	"github.com/roach88/uiharness/internal/cli"
)

func main() {
	if err := cli.NewRunUITestCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
