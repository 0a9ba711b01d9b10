package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/henri123lemoine/gt/internal/config"
	"github.com/henri123lemoine/gt/internal/ui"
)

// KeyMap defines all keybindings of the branch list.
type KeyMap struct {
	// Navigation
	Up   key.Binding
	Down key.Binding
	Home key.Binding
	End  key.Binding

	// Actions
	Checkout       key.Binding
	Delete         key.Binding
	Rename         key.Binding
	Diffbase       key.Binding
	RemoteDiffbase key.Binding
	New            key.Binding
	Filter         key.Binding

	// General
	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g/home", "first"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G/end", "last"),
		),
		Checkout: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "checkout"),
		),
		Delete: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "delete"),
		),
		Rename: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "rename"),
		),
		Diffbase: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "set diffbase"),
		),
		RemoteDiffbase: key.NewBinding(
			key.WithKeys("B"),
			key.WithHelp("B", "set remote diffbase"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new branch"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// KeyMapFromConfig creates a KeyMap from config settings. Empty settings
// keep the default binding.
func KeyMapFromConfig(cfg *config.KeysConfig) KeyMap {
	km := DefaultKeyMap()

	override(&km.Up, cfg.Up)
	override(&km.Down, cfg.Down)
	override(&km.Home, cfg.Home)
	override(&km.End, cfg.End)
	override(&km.Checkout, cfg.Checkout)
	override(&km.Delete, cfg.Delete)
	override(&km.Rename, cfg.Rename)
	override(&km.Diffbase, cfg.Diffbase)
	override(&km.RemoteDiffbase, cfg.RemoteDiffbase)
	override(&km.New, cfg.New)
	override(&km.Filter, cfg.Filter)
	override(&km.Help, cfg.Help)
	override(&km.Quit, cfg.Quit)

	return km
}

func override(b *key.Binding, setting string) {
	keys := parseKeys(setting)
	if len(keys) == 0 {
		return
	}
	*b = key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(strings.Join(keys, "/"), b.Help().Desc),
	)
}

// parseKeys parses a comma-separated key string into a slice.
func parseKeys(s string) []string {
	parts := strings.Split(s, ",")
	var keys []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			keys = append(keys, p)
		}
	}
	return keys
}

// HelpSections returns the help screen content for km.
func (km KeyMap) HelpSections() []ui.HelpSection {
	section := func(title string, bindings ...key.Binding) ui.HelpSection {
		s := ui.HelpSection{Title: title}
		for _, b := range bindings {
			s.Bindings = append(s.Bindings, ui.HelpBinding{Keys: b.Help().Key, Desc: b.Help().Desc})
		}
		return s
	}
	return []ui.HelpSection{
		section("Navigation", km.Up, km.Down, km.Home, km.End, km.Filter),
		section("Branches", km.Checkout, km.Delete, km.Rename, km.Diffbase, km.RemoteDiffbase, km.New),
		section("General", km.Help, km.Quit),
		{
			Title: "Branch line",
			Bindings: []ui.HelpBinding{
				{Keys: "*", Desc: "checked out branch"},
				{Keys: "[+a,-m]", Desc: "commits ahead of / behind the diffbase"},
				{Keys: "-- MOD --", Desc: "uncommitted changes"},
				{Keys: "-> remote", Desc: "tracked remote branch"},
				{Keys: "gone:", Desc: "tracked remote branch no longer exists"},
				{Keys: "d: base", Desc: "diffbase other than the default branch"},
				{Keys: "(no such branch)", Desc: "configured diffbase does not exist"},
			},
		},
	}
}
