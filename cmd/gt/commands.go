package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pelletier/go-toml/v2"
	urfavecli "github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/henri123lemoine/gt/internal/app"
	"github.com/henri123lemoine/gt/internal/branch"
	"github.com/henri123lemoine/gt/internal/config"
	"github.com/henri123lemoine/gt/internal/debug"
	"github.com/henri123lemoine/gt/internal/git"
	"github.com/henri123lemoine/gt/internal/report"
)

// env is the loaded configuration and repository session of a command.
type env struct {
	cfg     *config.Config
	cwd     string
	session *branch.Session
}

// configPath returns the --config-file flag or the default location.
func configPath(c *urfavecli.Context) string {
	if p := c.String("config-file"); p != "" {
		return p
	}
	return config.ConfigPath()
}

// loadConfig reads the config file, prints its warnings and applies the
// global flags on top.
func (r *runner) loadConfig(c *urfavecli.Context) (*config.Config, error) {
	cfg, err := config.LoadFromPath(configPath(c))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	for _, w := range cfg.Validate() {
		fmt.Fprintf(r.stderr, "Warning: %s\n", w)
	}

	if p := c.String("debug-log"); p != "" {
		cfg.General.DebugLog = p
	}
	if cfg.General.DebugLog != "" {
		if err := debug.Enable(cfg.General.DebugLog); err != nil {
			fmt.Fprintf(r.stderr, "Error opening debug log file %q: %v\n", cfg.General.DebugLog, err)
		}
	}
	if color := c.String("color"); color != "" {
		cfg.UI.Color = color
	}
	return cfg, nil
}

// open loads the config and opens the repository.
func (r *runner) open(c *urfavecli.Context) (*env, error) {
	cfg, err := r.loadConfig(c)
	if err != nil {
		return nil, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	if d := c.String("git-repository"); d != "" {
		if cwd, err = filepath.Abs(d); err != nil {
			return nil, err
		}
	}

	repo, err := git.Open(cwd)
	if err != nil {
		return nil, err
	}
	debug.Log("opened repository %s", repo.Root())

	return &env{
		cfg:     cfg,
		cwd:     cwd,
		session: branch.NewSession(repo, cfg.General.DefaultBranchCandidates),
	}, nil
}

func (r *runner) reporter(e *env) *report.Reporter {
	return report.New(e.session, r.stdout, report.Options{
		Color: e.cfg.UI.Color,
		Cwd:   e.cwd,
	})
}

func (r *runner) branchCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:    "branch",
		Aliases: []string{"b", "br"},
		Usage:   "Manage branches interactively",
		Action: func(c *urfavecli.Context) error {
			if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.New("branch needs an interactive terminal")
			}
			e, err := r.open(c)
			if err != nil {
				return err
			}

			model, err := app.New(e.cfg, e.session)
			if err != nil {
				return err
			}
			p := tea.NewProgram(model, tea.WithAltScreen())
			final, err := p.Run()
			if err != nil {
				return err
			}
			if m, ok := final.(app.Model); ok && m.Err() != nil {
				return m.Err()
			}
			return nil
		},
	}
}

func (r *runner) statusCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:    "status",
		Aliases: []string{"st"},
		Usage:   "Show commits and changes relative to the diffbase",
		Flags: []urfavecli.Flag{
			branchFlag("Branch to report on instead of the current one"),
			&urfavecli.BoolFlag{
				Name:    "files",
				Aliases: []string{"f"},
				Usage:   "List changed files instead of commits",
			},
			&urfavecli.BoolFlag{
				Name:    "relative",
				Aliases: []string{"r"},
				Usage:   "Show file paths relative to the working directory",
			},
		},
		Action: func(c *urfavecli.Context) error {
			e, err := r.open(c)
			if err != nil {
				return err
			}
			return r.reporter(e).Status(report.StatusOptions{
				Branch:   c.String("branch"),
				Files:    c.Bool("files"),
				Relative: c.Bool("relative"),
			})
		},
	}
}

func (r *runner) diffCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:    "diff",
		Aliases: []string{"d"},
		Usage:   "Diff the current branch and its uncommitted changes against the diffbase",
		Flags: []urfavecli.Flag{
			branchFlag("Compare against this branch instead of the diffbase"),
			&urfavecli.StringFlag{
				Name:  "viewer",
				Usage: "Viewer command template, overrides diff.viewer",
			},
			&urfavecli.IntFlag{
				Name:  "context",
				Usage: "Unified diff context lines, overrides diff.context",
				Value: -1,
			},
		},
		Action: func(c *urfavecli.Context) error {
			e, err := r.open(c)
			if err != nil {
				return err
			}
			viewer := e.cfg.Diff.Viewer
			if v := c.String("viewer"); v != "" {
				viewer = v
			}
			context := e.cfg.Diff.Context
			if n := c.Int("context"); n >= 0 {
				context = n
			}
			return r.reporter(e).Diff(report.DiffOptions{
				Against: c.String("branch"),
				Viewer:  viewer,
				Context: context,
			})
		},
	}
}

func (r *runner) logCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:    "log",
		Aliases: []string{"l"},
		Usage:   "List the commits that differ between a branch and its diffbase",
		Flags: []urfavecli.Flag{
			branchFlag("Branch to log instead of the current one"),
			&urfavecli.BoolFlag{
				Name:  "left",
				Usage: "Commits only on the branch (default)",
			},
			&urfavecli.BoolFlag{
				Name:  "right",
				Usage: "Commits only on the diffbase",
			},
			&urfavecli.BoolFlag{
				Name:    "remote",
				Aliases: []string{"r"},
				Usage:   "Compare against the tracked remote branch",
			},
		},
		Action: func(c *urfavecli.Context) error {
			e, err := r.open(c)
			if err != nil {
				return err
			}
			return r.reporter(e).Log(report.LogOptions{
				Branch: c.String("branch"),
				Left:   c.Bool("left"),
				Right:  c.Bool("right"),
				Remote: c.Bool("remote"),
			})
		},
	}
}

func (r *runner) configCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "config",
		Usage: "Inspect or create the configuration file",
		Subcommands: []*urfavecli.Command{
			{
				Name:  "path",
				Usage: "Print the configuration file path",
				Action: func(c *urfavecli.Context) error {
					fmt.Fprintln(r.stdout, configPath(c))
					return nil
				},
			},
			{
				Name:  "show",
				Usage: "Print the effective configuration",
				Action: func(c *urfavecli.Context) error {
					cfg, err := r.loadConfig(c)
					if err != nil {
						return err
					}
					data, err := toml.Marshal(cfg)
					if err != nil {
						return err
					}
					_, err = r.stdout.Write(data)
					return err
				},
			},
			{
				Name:  "init",
				Usage: "Write a configuration file",
				Flags: []urfavecli.Flag{
					&urfavecli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
					&urfavecli.BoolFlag{
						Name:  "effective",
						Usage: "Write the effective configuration instead of the commented defaults",
					},
				},
				Action: func(c *urfavecli.Context) error {
					path := configPath(c)
					if _, err := os.Stat(path); err == nil && !c.Bool("force") {
						return fmt.Errorf("%s already exists, use --force to overwrite", path)
					} else if err != nil && !errors.Is(err, os.ErrNotExist) {
						return err
					}

					if c.Bool("effective") {
						cfg, err := r.loadConfig(c)
						if err != nil {
							return err
						}
						err = config.Save(cfg, path)
						if err != nil {
							return err
						}
					} else if err := config.CreateDefaultConfigFile(path); err != nil {
						return err
					}
					fmt.Fprintf(r.stdout, "Wrote %s\n", path)
					return nil
				},
			},
		},
	}
}
