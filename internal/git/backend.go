package git

import "github.com/go-git/go-git/v5/plumbing/filemode"

// Backend is the set of git primitives the branch engine is built on.
// Names passed to ref lookups are fully qualified (refs/heads/x); names
// passed to branch mutations are short local branch names.
type Backend interface {
	// Root is the working tree root directory.
	Root() string

	// CurrentBranch returns the full ref name of the checked out branch,
	// or "" when HEAD is detached.
	CurrentBranch() (string, error)
	// ListBranches returns local branches in ref name order.
	ListBranches() ([]Ref, error)
	// ListRemoteBranches returns remote-tracking branches, without */HEAD.
	ListRemoteBranches() ([]Ref, error)
	// ResolveRef looks up a fully qualified ref. A missing ref is not an error.
	ResolveRef(name string) (Ref, bool, error)
	// Remotes returns the configured remote names.
	Remotes() ([]string, error)

	// Log returns commits reachable from include and not from exclude,
	// newest first. An empty exclude means no exclusion; max <= 0 means no limit.
	Log(include, exclude string, max int) ([]Commit, error)
	Commit(hash string) (Commit, error)

	// DiffTrees compares the trees of two commits.
	DiffTrees(oldCommit, newCommit string) ([]DiffEntry, error)
	// DiffIndex compares the index to HEAD (staged changes).
	DiffIndex() ([]DiffEntry, error)
	// DiffWorktree compares the working tree to the index (unstaged changes).
	// Untracked files are reported as additions.
	DiffWorktree() ([]DiffEntry, error)
	ReadBlob(id string) ([]byte, error)

	// IsDir reports whether a repository relative path is a directory on disk.
	IsDir(path string) (bool, error)
	// WriteFile writes data with the permissions of a tree entry mode. A
	// symlink mode makes data the link target.
	WriteFile(path string, data []byte, mode filemode.FileMode) error
	RemoveFile(path string) error
	Stage(paths ...string) error

	Checkout(branch string) error
	// CreateBranch creates name at startPoint and checks it out.
	CreateBranch(name, startPoint string) error
	RenameBranch(oldName, newName string) error
	DeleteBranch(name string) error

	// ConfigGet reads a repository config key. A missing key is not an error.
	ConfigGet(key string) (string, bool, error)
	ConfigSet(key, value string) error
	ConfigUnset(key string) error

	State() (RepoState, error)
}
