package main

import (
	urfavecli "github.com/urfave/cli/v2"
)

// globalFlags returns all global flags for the application.
func globalFlags() []urfavecli.Flag {
	return []urfavecli.Flag{
		&urfavecli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Print the full cause chain of errors",
		},
		&urfavecli.StringFlag{
			Name:  "debug-log",
			Usage: "Path to debug log file",
		},
		&urfavecli.StringFlag{
			Name:  "config-file",
			Usage: "Path to configuration file",
		},
		&urfavecli.StringFlag{
			Name:    "git-repository",
			Aliases: []string{"C"},
			Usage:   "Run as if started in this directory",
		},
		&urfavecli.StringFlag{
			Name:  "color",
			Usage: "Color output: auto, always or never",
		},
	}
}

func branchFlag(usage string) *urfavecli.StringFlag {
	return &urfavecli.StringFlag{
		Name:    "branch",
		Aliases: []string{"b"},
		Usage:   usage,
	}
}
