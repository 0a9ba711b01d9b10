// Package config handles gt configuration.
//
// The TOML file holds user preferences only. Per-branch state (diffbase,
// remote tracking, default branch override) lives in the repository's own
// git config and is read through the git backend.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"
)

// Config represents gt configuration.
type Config struct {
	General GeneralConfig `toml:"general"`
	Branch  BranchConfig  `toml:"branch"`
	Diff    DiffConfig    `toml:"diff"`
	UI      UIConfig      `toml:"ui"`
	Keys    KeysConfig    `toml:"keys"`
}

// GeneralConfig contains general settings.
type GeneralConfig struct {
	// Branch names that mark the default branch when the repository has no
	// default.branch override. The first local branch found in this set wins.
	DefaultBranchCandidates []string `toml:"default_branch_candidates"`

	// Path to a debug log file (empty = disabled)
	DebugLog string `toml:"debug_log"`
}

// BranchConfig contains settings for the interactive branch browser.
type BranchConfig struct {
	// Whether to exit after a successful checkout
	ExitAfterCheckout bool `toml:"exit_after_checkout"`
}

// DiffConfig contains settings for the diff command.
type DiffConfig struct {
	// Viewer command run over old/new file pairs.
	// Template variables: {files}, {root}
	// Empty prints unified diffs instead.
	Viewer string `toml:"viewer"`

	// Context lines for printed unified diffs
	Context int `toml:"context"`
}

// UIConfig contains UI settings.
type UIConfig struct {
	// Color output for non-interactive commands: auto, always, never
	Color string `toml:"color"`

	// Show the key help line under the branch list
	ShowHelpFooter bool `toml:"show_help_footer"`
}

// KeysConfig contains keybinding settings.
type KeysConfig struct {
	Up             string `toml:"up"`
	Down           string `toml:"down"`
	Home           string `toml:"home"`
	End            string `toml:"end"`
	Checkout       string `toml:"checkout"`
	Delete         string `toml:"delete"`
	Rename         string `toml:"rename"`
	Diffbase       string `toml:"diffbase"`
	RemoteDiffbase string `toml:"remote_diffbase"`
	New            string `toml:"new"`
	Filter         string `toml:"filter"`
	Help           string `toml:"help"`
	Quit           string `toml:"quit"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			DefaultBranchCandidates: []string{"master", "develop", "main"},
		},
		Branch: BranchConfig{
			ExitAfterCheckout: false,
		},
		Diff: DiffConfig{
			Viewer:  "",
			Context: 3,
		},
		UI: UIConfig{
			Color:          "auto",
			ShowHelpFooter: true,
		},
		Keys: KeysConfig{
			Up:             "up,k",
			Down:           "down,j",
			Home:           "home,g",
			End:            "end,G",
			Checkout:       "enter",
			Delete:         "D",
			Rename:         "m",
			Diffbase:       "d",
			RemoteDiffbase: "B",
			New:            "n",
			Filter:         "/",
			Help:           "?",
			Quit:           "q,ctrl+c",
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses ~/.config/gt/config.toml (XDG style) on all Unix systems.
func ConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "gt", "config.toml")
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", "gt", "config.toml")
	}
	// Fallback to os.UserConfigDir() for Windows
	configDir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "gt", "config.toml")
	}
	return filepath.Join(configDir, "gt", "config.toml")
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFromPath(ConfigPath())
}

// LoadFromPath loads configuration from a specific path. A missing file
// yields the defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	// go-toml/v2 only overwrites fields present in the file, so defaults
	// survive for everything else.
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes cfg to path while holding an exclusive lock next to it.
func Save(cfg *Config, path string) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return writeLocked(path, data)
}

// CreateDefaultConfigFile writes a commented default config file to path.
func CreateDefaultConfigFile(path string) error {
	return writeLocked(path, []byte(generateDefaultConfigContent()))
}

// writeLocked replaces path atomically under path.lock.
func writeLocked(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	fileLock := flock.New(path + ".lock")
	if err := fileLock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	defer fileLock.Unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// generateDefaultConfigContent generates a commented config file.
func generateDefaultConfigContent() string {
	var b strings.Builder
	cfg := DefaultConfig()

	b.WriteString("# gt configuration\n\n")

	b.WriteString("[general]\n")
	b.WriteString("# Names that mark the default branch, unless `git config default.branch` is set\n")
	fmt.Fprintf(&b, "default_branch_candidates = [%s]\n", quoteList(cfg.General.DefaultBranchCandidates))
	b.WriteString("# debug_log = \"/tmp/gt.log\"\n\n")

	b.WriteString("[branch]\n")
	b.WriteString("# Exit the branch browser after a successful checkout\n")
	fmt.Fprintf(&b, "exit_after_checkout = %v\n\n", cfg.Branch.ExitAfterCheckout)

	b.WriteString("[diff]\n")
	b.WriteString("# Viewer run over old/new file pairs. Template variables: {files}, {root}\n")
	b.WriteString("# Variables are shell-escaped. Leave unset to print unified diffs.\n")
	b.WriteString("# viewer = \"vimdiff {files}\"\n")
	fmt.Fprintf(&b, "context = %d\n\n", cfg.Diff.Context)

	b.WriteString("[ui]\n")
	b.WriteString("# Color output: \"auto\", \"always\", or \"never\"\n")
	fmt.Fprintf(&b, "color = %q\n", cfg.UI.Color)
	fmt.Fprintf(&b, "show_help_footer = %v\n\n", cfg.UI.ShowHelpFooter)

	b.WriteString("[keys]\n")
	b.WriteString("# Keybindings (comma-separated for multiple keys)\n")
	fmt.Fprintf(&b, "# checkout = %q\n", cfg.Keys.Checkout)
	fmt.Fprintf(&b, "# delete = %q\n", cfg.Keys.Delete)
	fmt.Fprintf(&b, "# rename = %q\n", cfg.Keys.Rename)
	fmt.Fprintf(&b, "# diffbase = %q\n", cfg.Keys.Diffbase)
	fmt.Fprintf(&b, "# remote_diffbase = %q\n", cfg.Keys.RemoteDiffbase)
	fmt.Fprintf(&b, "# new = %q\n", cfg.Keys.New)
	fmt.Fprintf(&b, "# filter = %q\n", cfg.Keys.Filter)
	fmt.Fprintf(&b, "# help = %q\n", cfg.Keys.Help)
	fmt.Fprintf(&b, "# quit = %q\n", cfg.Keys.Quit)

	return b.String()
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, ", ")
}

// Validate validates the configuration and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	for _, name := range c.General.DefaultBranchCandidates {
		if strings.TrimSpace(name) == "" {
			warnings = append(warnings, "Empty name in general.default_branch_candidates")
		}
	}

	validVars := []string{"{files}", "{root}"}
	for _, v := range extractTemplateVars(c.Diff.Viewer) {
		if !slices.Contains(validVars, v) {
			warnings = append(warnings, fmt.Sprintf("Unknown template variable in diff.viewer: %s", v))
		}
	}

	if c.Diff.Context < 0 {
		warnings = append(warnings, fmt.Sprintf("Invalid value for diff.context: %d (must not be negative)", c.Diff.Context))
	}

	if c.UI.Color != "" &&
		c.UI.Color != "auto" &&
		c.UI.Color != "always" &&
		c.UI.Color != "never" {
		warnings = append(warnings, fmt.Sprintf("Invalid value for ui.color: %s (expected auto, always, or never)", c.UI.Color))
	}

	// Browser actions share one key space.
	actions := []struct {
		name string
		keys string
	}{
		{"checkout", c.Keys.Checkout},
		{"delete", c.Keys.Delete},
		{"rename", c.Keys.Rename},
		{"diffbase", c.Keys.Diffbase},
		{"remote_diffbase", c.Keys.RemoteDiffbase},
		{"new", c.Keys.New},
		{"filter", c.Keys.Filter},
		{"help", c.Keys.Help},
		{"quit", c.Keys.Quit},
	}
	owner := map[string]string{}
	for _, a := range actions {
		for _, k := range strings.Split(a.keys, ",") {
			k = strings.TrimSpace(k)
			if k == "" {
				continue
			}
			if prev, ok := owner[k]; ok && prev != a.name {
				warnings = append(warnings, fmt.Sprintf("Key %q is bound to both keys.%s and keys.%s", k, prev, a.name))
				continue
			}
			owner[k] = a.name
		}
	}

	return warnings
}

// extractTemplateVars extracts template variables from a string.
func extractTemplateVars(s string) []string {
	re := regexp.MustCompile(`\{[^}]+\}`)
	return re.FindAllString(s, -1)
}
