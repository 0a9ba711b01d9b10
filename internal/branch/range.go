package branch

import (
	"errors"
	"fmt"
	"slices"

	"github.com/henri123lemoine/gt/internal/git"
)

var (
	// ErrNoCommonAncestor is returned for branches with unrelated histories.
	ErrNoCommonAncestor = errors.New("no common ancestor")
	// ErrDiffbaseMissing is returned when the diffbase names no existing branch.
	ErrDiffbaseMissing = errors.New("no such diffbase branch")
)

// Range holds the commits on either side of a comparison, oldest first.
type Range struct {
	// Local commits are reachable from the target and not from the base.
	Local []git.Commit
	// Missing commits are reachable from the base and not from the target.
	Missing []git.Commit
}

// Log computes the commits unique to target and to base.
func (s *Session) Log(base, target string) (Range, error) {
	local, err := s.Git.Log(target, base, 0)
	if err != nil {
		return Range{}, err
	}
	missing, err := s.Git.Log(base, target, 0)
	if err != nil {
		return Range{}, err
	}
	slices.Reverse(local)
	slices.Reverse(missing)
	return Range{Local: local, Missing: missing}, nil
}

// LastCommonAncestor returns the commit from which target diverged from base.
// When target already contains base, that is base itself. Otherwise it is the
// parent of the oldest commit that only base has.
func (s *Session) LastCommonAncestor(base, target string) (git.Commit, error) {
	onlyBase, err := s.Git.Log(base, target, 0)
	if err != nil {
		return git.Commit{}, fmt.Errorf("log %s..%s: %w", git.ShortName(target), git.ShortName(base), err)
	}
	if len(onlyBase) == 0 {
		return s.Git.Commit(base)
	}

	oldest := onlyBase[len(onlyBase)-1]
	walk, err := s.Git.Log(oldest.Hash, "", 2)
	if err != nil {
		return git.Commit{}, fmt.Errorf("log %s: %w", oldest.Short(), err)
	}
	if len(walk) < 2 {
		return git.Commit{}, ErrNoCommonAncestor
	}
	return walk[1], nil
}
