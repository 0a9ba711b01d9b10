package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/henri123lemoine/gt/internal/branch"
)

// Action is a command of the branch list.
type Action int

const (
	ActionNone Action = iota
	ActionCheckout
	ActionDelete
	ActionRename
	ActionSetDiffbase
	ActionSetDiffbaseRemote
	ActionNewBranch
	ActionFilter
	ActionHelp
	ActionQuit
)

func (a Action) String() string {
	switch a {
	case ActionCheckout:
		return "checkout"
	case ActionDelete:
		return "delete"
	case ActionRename:
		return "rename"
	case ActionSetDiffbase:
		return "set-diffbase"
	case ActionSetDiffbaseRemote:
		return "set-diffbase-remote"
	case ActionNewBranch:
		return "new-branch"
	case ActionFilter:
		return "filter"
	case ActionHelp:
		return "help"
	case ActionQuit:
		return "quit"
	default:
		return "none"
	}
}

// verb names the action in rejection messages.
func (a Action) verb() string {
	switch a {
	case ActionSetDiffbase, ActionSetDiffbaseRemote:
		return "set diffbase on"
	case ActionNewBranch:
		return "branch from"
	default:
		return a.String()
	}
}

// actionEntry binds a key to a guard and a handler. The guard runs before
// any state change; a nil guard always allows the action.
type actionEntry struct {
	action      Action
	binding     func(KeyMap) key.Binding
	needsBranch bool
	guard       func(*branch.List, *branch.Branch) error
	handle      func(Model, *branch.Branch) (Model, tea.Cmd)
}

func actionTable() []actionEntry {
	return []actionEntry{
		{
			action:      ActionCheckout,
			binding:     func(k KeyMap) key.Binding { return k.Checkout },
			needsBranch: true,
			guard:       (*branch.List).CanCheckout,
			handle:      Model.checkout,
		},
		{
			action:      ActionDelete,
			binding:     func(k KeyMap) key.Binding { return k.Delete },
			needsBranch: true,
			guard: func(l *branch.List, b *branch.Branch) error {
				_, err := l.CanDelete(b)
				return err
			},
			handle: Model.startDelete,
		},
		{
			action:      ActionRename,
			binding:     func(k KeyMap) key.Binding { return k.Rename },
			needsBranch: true,
			guard:       (*branch.List).CanRename,
			handle:      Model.startRename,
		},
		{
			action:      ActionSetDiffbase,
			binding:     func(k KeyMap) key.Binding { return k.Diffbase },
			needsBranch: true,
			guard:       (*branch.List).CanSetDiffbase,
			handle:      Model.startDiffbase,
		},
		{
			action:      ActionSetDiffbaseRemote,
			binding:     func(k KeyMap) key.Binding { return k.RemoteDiffbase },
			needsBranch: true,
			guard:       (*branch.List).CanSetDiffbase,
			handle:      Model.startRemoteDiffbase,
		},
		{
			action:      ActionNewBranch,
			binding:     func(k KeyMap) key.Binding { return k.New },
			needsBranch: true,
			guard: func(l *branch.List, _ *branch.Branch) error {
				return l.CanCreate()
			},
			handle: Model.startNewBranch,
		},
		{
			action:  ActionFilter,
			binding: func(k KeyMap) key.Binding { return k.Filter },
			handle:  Model.startFilter,
		},
		{
			action:  ActionHelp,
			binding: func(k KeyMap) key.Binding { return k.Help },
			handle:  Model.showHelp,
		},
		{
			action:  ActionQuit,
			binding: func(k KeyMap) key.Binding { return k.Quit },
			handle:  Model.quit,
		},
	}
}

// lookupAction returns the table entry bound to msg.
func lookupAction(keys KeyMap, msg tea.KeyMsg) (actionEntry, bool) {
	for _, entry := range actionTable() {
		if key.Matches(msg, entry.binding(keys)) {
			return entry, true
		}
	}
	return actionEntry{}, false
}
