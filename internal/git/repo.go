// Package git provides the git backend used by gt.
//
// Mutations, ref listing, config access and working tree diffs shell out to
// the git binary. Object reads (commits, trees, blobs) go through go-git.
package git

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/henri123lemoine/gt/internal/debug"
)

// Repo is the Backend implementation for a repository on disk.
type Repo struct {
	// root is the working tree root directory.
	root string

	// gitDir is the absolute path to the repository's git directory.
	gitDir string

	objects *gogit.Repository
}

var _ Backend = (*Repo)(nil)

// Open finds the repository containing dir.
func Open(dir string) (*Repo, error) {
	root, err := runGitInDir(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}
	root = strings.TrimSpace(root)

	gitDir, err := runGitInDir(dir, "rev-parse", "--git-dir")
	if err != nil {
		return nil, err
	}
	gitDir = strings.TrimSpace(gitDir)
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(dir, gitDir)
	}
	gitDir = filepath.Clean(gitDir)

	objects, err := gogit.PlainOpenWithOptions(root, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", root, err)
	}

	return &Repo{
		root:    root,
		gitDir:  gitDir,
		objects: objects,
	}, nil
}

// Root returns the working tree root.
func (r *Repo) Root() string {
	return r.root
}

// GitDir returns the git directory.
func (r *Repo) GitDir() string {
	return r.gitDir
}

// CurrentBranch returns the full name of the checked out branch.
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.objects.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", fmt.Errorf("read HEAD: %w", err)
	}
	if head.Type() != plumbing.SymbolicReference {
		return "", nil
	}
	return head.Target().String(), nil
}

// ResolveRef resolves a fully qualified ref name to the commit it points to.
func (r *Repo) ResolveRef(name string) (Ref, bool, error) {
	ref, err := r.objects.Reference(plumbing.ReferenceName(name), true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return Ref{}, false, nil
	}
	if err != nil {
		return Ref{}, false, fmt.Errorf("resolve %s: %w", name, err)
	}
	return Ref{Name: name, Hash: ref.Hash().String()}, true, nil
}

// Remotes returns the configured remote names.
func (r *Repo) Remotes() ([]string, error) {
	output, err := r.git("remote")
	if err != nil {
		return nil, err
	}
	return strings.Fields(output), nil
}

// State reports whether an operation is in progress, based on the marker
// files git leaves in the git directory.
func (r *Repo) State() (RepoState, error) {
	markers := []struct {
		name  string
		state RepoState
	}{
		{"rebase-merge", StateRebasing},
		{"rebase-apply", StateRebasing},
		{"MERGE_HEAD", StateMerging},
		{"CHERRY_PICK_HEAD", StateCherryPicking},
		{"REVERT_HEAD", StateReverting},
		{"BISECT_LOG", StateBisecting},
	}
	for _, m := range markers {
		_, err := os.Stat(filepath.Join(r.gitDir, m.name))
		if err == nil {
			return m.state, nil
		}
		if !os.IsNotExist(err) {
			return StateSafe, err
		}
	}
	return StateSafe, nil
}

// git runs a git command in the working tree root.
func (r *Repo) git(args ...string) (string, error) {
	return runGitInDir(r.root, args...)
}

// runGitInDir executes a git command in a specific directory.
func runGitInDir(dir string, args ...string) (string, error) {
	defer debug.Timed("git " + strings.Join(args, " "))()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}

// exitCode extracts the exit status of a failed git command, or -1.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
