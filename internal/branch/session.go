package branch

import (
	"fmt"
	"slices"
	"strings"

	"github.com/henri123lemoine/gt/internal/debug"
	"github.com/henri123lemoine/gt/internal/git"
	"github.com/henri123lemoine/gt/internal/lazy"
)

// DefaultCandidates are the branch names that mark the default branch when
// nothing else is configured.
var DefaultCandidates = []string{"master", "develop", "main"}

// Session holds the state shared by every descriptor of one repository.
type Session struct {
	Git git.Backend

	candidates    []string
	defaultBranch *lazy.Value[string]
	remotes       *lazy.Value[[]string]
}

// NewSession creates a session. An empty candidates list uses
// DefaultCandidates.
func NewSession(backend git.Backend, candidates []string) *Session {
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}
	s := &Session{Git: backend, candidates: candidates}
	s.defaultBranch = lazy.New(s.resolveDefaultBranch)
	s.remotes = lazy.New(backend.Remotes)
	return s
}

// DefaultBranch returns the repository's default branch. It is resolved once
// per session.
func (s *Session) DefaultBranch() (string, error) {
	return s.defaultBranch.Get()
}

func (s *Session) resolveDefaultBranch() (string, error) {
	if name, ok, err := s.DefaultOverride(); err != nil {
		return "", err
	} else if ok && name != "" {
		debug.Log("default branch from config: %s", name)
		return name, nil
	}

	refs, err := s.Git.ListBranches()
	if err != nil {
		return "", fmt.Errorf("list branches: %w", err)
	}
	for _, ref := range refs {
		if slices.Contains(s.candidates, ref.ShortName()) {
			return ref.ShortName(), nil
		}
	}
	if len(refs) > 0 {
		return refs[0].ShortName(), nil
	}
	return "", nil
}

// RemoteNames returns the configured remotes. Resolved once per session.
func (s *Session) RemoteNames() ([]string, error) {
	return s.remotes.Get()
}

// IsRemote reports whether name starts with a path segment naming a remote.
func (s *Session) IsRemote(name string) (bool, error) {
	remotes, err := s.RemoteNames()
	if err != nil {
		return false, err
	}
	first, _, _ := strings.Cut(name, "/")
	return slices.Contains(remotes, first), nil
}

// RefName returns the fully qualified ref for a short branch name.
func (s *Session) RefName(name string) (string, error) {
	remote, err := s.IsRemote(name)
	if err != nil {
		return "", err
	}
	if remote {
		return git.RemotesPrefix + name, nil
	}
	return git.HeadsPrefix + name, nil
}

// Lookup resolves a short branch name. A missing branch is not an error.
func (s *Session) Lookup(name string) (git.Ref, bool, error) {
	refName, err := s.RefName(name)
	if err != nil {
		return git.Ref{}, false, err
	}
	return s.Git.ResolveRef(refName)
}

// WorktreeDirty reports whether the index or working tree differ from HEAD.
//
// Some backends report a tracked directory as deleted when it holds no
// tracked files directly; such entries are ignored as long as the directory
// exists. A failed directory probe counts as dirty.
func (s *Session) WorktreeDirty() (bool, error) {
	staged, err := s.Git.DiffIndex()
	if err != nil {
		return false, fmt.Errorf("diff index: %w", err)
	}
	if len(staged) > 0 {
		return true, nil
	}

	unstaged, err := s.Git.DiffWorktree()
	if err != nil {
		return false, fmt.Errorf("diff worktree: %w", err)
	}
	for _, entry := range unstaged {
		if entry.Change != git.ChangeDelete {
			return true, nil
		}
		isDir, err := s.Git.IsDir(entry.OldPath)
		if err != nil {
			debug.Log("probe %s: %v", entry.OldPath, err)
			return true, nil
		}
		if !isDir {
			return true, nil
		}
	}
	return false, nil
}
