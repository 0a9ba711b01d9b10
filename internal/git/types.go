package git

import (
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing/filemode"
)

// Ref namespaces.
const (
	HeadsPrefix   = "refs/heads/"
	RemotesPrefix = "refs/remotes/"
)

// NullPath stands in for the missing side of an added or deleted file.
const NullPath = "/dev/null"

// Ref is a resolved reference.
type Ref struct {
	// Name is the fully qualified ref name, e.g. refs/heads/main.
	Name string
	Hash string
}

// ShortName strips the refs/heads/ or refs/remotes/ prefix.
func (r Ref) ShortName() string {
	return ShortName(r.Name)
}

// IsRemote reports whether the ref lives under refs/remotes/.
func (r Ref) IsRemote() bool {
	return strings.HasPrefix(r.Name, RemotesPrefix)
}

// ShortName strips the refs/heads/ or refs/remotes/ prefix from a ref name.
func ShortName(name string) string {
	if s, ok := strings.CutPrefix(name, HeadsPrefix); ok {
		return s
	}
	if s, ok := strings.CutPrefix(name, RemotesPrefix); ok {
		return s
	}
	return name
}

// Commit holds the commit metadata the tool displays.
type Commit struct {
	Hash    string
	Parents []string
	Author  string
	When    time.Time
	Subject string
}

// Short returns the abbreviated hash.
func (c Commit) Short() string {
	if len(c.Hash) > 7 {
		return c.Hash[:7]
	}
	return c.Hash
}

// ChangeType classifies a DiffEntry.
type ChangeType int

const (
	ChangeModify ChangeType = iota
	ChangeAdd
	ChangeDelete
	ChangeRename
	ChangeCopy
)

// Letter returns the single status letter git uses for the change.
func (c ChangeType) Letter() byte {
	switch c {
	case ChangeAdd:
		return 'A'
	case ChangeDelete:
		return 'D'
	case ChangeRename:
		return 'R'
	case ChangeCopy:
		return 'C'
	default:
		return 'M'
	}
}

func (c ChangeType) String() string {
	switch c {
	case ChangeAdd:
		return "ADD"
	case ChangeDelete:
		return "DELETE"
	case ChangeRename:
		return "RENAME"
	case ChangeCopy:
		return "COPY"
	default:
		return "MODIFY"
	}
}

// DiffEntry is one changed path between two trees, or between the index or
// working tree and HEAD. Missing sides use NullPath.
type DiffEntry struct {
	OldPath string
	NewPath string
	OldID   string
	NewID   string
	Change  ChangeType
	// NewMode is the tree entry mode of the new side. Only tree diffs set
	// it; the zero value means a regular file.
	NewMode filemode.FileMode
}

// Path returns the path that identifies the entry: the old path for
// deletions, the new path otherwise.
func (d DiffEntry) Path() string {
	if d.Change == ChangeDelete {
		return d.OldPath
	}
	return d.NewPath
}

// RepoState describes an operation in progress in the repository.
type RepoState int

const (
	StateSafe RepoState = iota
	StateMerging
	StateRebasing
	StateCherryPicking
	StateReverting
	StateBisecting
)

// Description returns a human readable description of the state.
func (s RepoState) Description() string {
	switch s {
	case StateMerging:
		return "Merging"
	case StateRebasing:
		return "Rebase in progress"
	case StateCherryPicking:
		return "Cherry-pick in progress"
	case StateReverting:
		return "Revert in progress"
	case StateBisecting:
		return "Bisecting"
	default:
		return "Normal"
	}
}
