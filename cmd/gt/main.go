// Package main is the entry point for gt.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	urfavecli "github.com/urfave/cli/v2"

	"github.com/henri123lemoine/gt/internal/debug"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// run executes gt with args and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	r := &runner{stdout: stdout, stderr: stderr}
	defer debug.Close()

	if err := r.app().Run(args); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if r.verbose {
			printChain(stderr, err)
		}
		return 1
	}
	return 0
}

// runner carries the output streams and global flags of one invocation.
type runner struct {
	stdout  io.Writer
	stderr  io.Writer
	verbose bool
}

func (r *runner) app() *urfavecli.App {
	return &urfavecli.App{
		Name:                 "gt",
		Usage:                "Manage git branches relative to their diffbase",
		Version:              version,
		Writer:               r.stdout,
		ErrWriter:            r.stderr,
		HideHelpCommand:      true,
		EnableBashCompletion: true,

		Flags: globalFlags(),

		Commands: []*urfavecli.Command{
			r.branchCommand(),
			r.statusCommand(),
			r.diffCommand(),
			r.logCommand(),
			r.configCommand(),
		},

		Before: func(c *urfavecli.Context) error {
			r.verbose = c.Bool("verbose")
			return nil
		},

		Action: func(c *urfavecli.Context) error {
			if c.Args().Present() {
				return fmt.Errorf("unknown command %q", c.Args().First())
			}
			return urfavecli.ShowAppHelp(c)
		},

		// Errors are printed once by run.
		ExitErrHandler: func(*urfavecli.Context, error) {},
	}
}

// printChain prints each wrapped cause of err on its own line.
func printChain(w io.Writer, err error) {
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		fmt.Fprintf(w, "  caused by: %v\n", cause)
	}
}
