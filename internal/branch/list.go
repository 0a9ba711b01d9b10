package branch

import (
	"fmt"
	"sort"

	"github.com/mattn/go-runewidth"

	"github.com/henri123lemoine/gt/internal/debug"
)

// List is one refresh of the local branches.
type List struct {
	Branches []*Branch
	// Width is the display width of the longest branch name.
	Width int

	s *Session
}

// List builds a descriptor for every local branch, the default branch first
// and the rest by name.
func (s *Session) List() (*List, error) {
	defer debug.Timed("branch list")()

	current, err := s.Git.CurrentBranch()
	if err != nil {
		return nil, fmt.Errorf("current branch: %w", err)
	}
	refs, err := s.Git.ListBranches()
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	def, err := s.DefaultBranch()
	if err != nil {
		return nil, err
	}

	l := &List{s: s}
	for _, ref := range refs {
		b := s.NewBranch(ref, ref.Name == current)
		l.Branches = append(l.Branches, b)
		l.Width = max(l.Width, runewidth.StringWidth(b.Name))
	}
	sort.SliceStable(l.Branches, func(i, j int) bool {
		a, b := l.Branches[i], l.Branches[j]
		if (a.Name == def) != (b.Name == def) {
			return a.Name == def
		}
		return a.Name < b.Name
	})
	return l, nil
}

// Find returns the branch with the given short name.
func (l *List) Find(name string) *Branch {
	for _, b := range l.Branches {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// Index returns the position of name in the list, or -1.
func (l *List) Index(name string) int {
	for i, b := range l.Branches {
		if b.Name == name {
			return i
		}
	}
	return -1
}

// Current returns the checked out branch, or nil when HEAD is detached.
func (l *List) Current() *Branch {
	for _, b := range l.Branches {
		if b.current {
			return b
		}
	}
	return nil
}

// Names returns the branch names in list order.
func (l *List) Names() []string {
	names := make([]string, len(l.Branches))
	for i, b := range l.Branches {
		names[i] = b.Name
	}
	return names
}

// Summaries evaluates every descriptor.
func (l *List) Summaries() ([]Summary, error) {
	out := make([]Summary, 0, len(l.Branches))
	for _, b := range l.Branches {
		sum, err := b.Summary()
		if err != nil {
			return nil, fmt.Errorf("branch %s: %w", b.Name, err)
		}
		out = append(out, sum)
	}
	return out, nil
}

// Dirty reports uncommitted work on the checked out branch, or in the
// working tree when HEAD is detached.
func (l *List) Dirty() (bool, error) {
	if cur := l.Current(); cur != nil {
		return cur.HasUncommitted()
	}
	return l.s.WorktreeDirty()
}
