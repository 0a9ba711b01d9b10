package branch

import (
	"fmt"
	"strings"

	"github.com/henri123lemoine/gt/internal/git"
)

// Keys in the repository's git config.
const (
	defaultBranchKey = "default.branch"
	diffbaseKey      = "diffbase"
	remoteKey        = "remote"
	mergeKey         = "merge"
)

func branchKey(name, field string) string {
	return "branch." + name + "." + field
}

// DefaultOverride returns the default.branch config value.
func (s *Session) DefaultOverride() (string, bool, error) {
	return s.Git.ConfigGet(defaultBranchKey)
}

// ConfiguredDiffbase returns the explicit diffbase of a branch, if any.
func (s *Session) ConfiguredDiffbase(name string) (string, bool, error) {
	v, ok, err := s.Git.ConfigGet(branchKey(name, diffbaseKey))
	if err != nil {
		return "", false, fmt.Errorf("read diffbase of %s: %w", name, err)
	}
	return v, ok && v != "", nil
}

// WriteDiffbase stores base as the explicit diffbase of name.
func (s *Session) WriteDiffbase(name, base string) error {
	if err := s.Git.ConfigSet(branchKey(name, diffbaseKey), base); err != nil {
		return fmt.Errorf("set diffbase of %s: %w", name, err)
	}
	return nil
}

// UnsetDiffbase removes the explicit diffbase of name.
func (s *Session) UnsetDiffbase(name string) error {
	if err := s.Git.ConfigUnset(branchKey(name, diffbaseKey)); err != nil {
		return fmt.Errorf("clear diffbase of %s: %w", name, err)
	}
	return nil
}

// ConfiguredRemote returns the remote-tracking counterpart of a branch as
// "<remote>/<branch>". A branch has one only when both branch.<name>.remote
// and a refs/heads/ branch.<name>.merge are set.
func (s *Session) ConfiguredRemote(name string) (string, bool, error) {
	remote, ok, err := s.Git.ConfigGet(branchKey(name, remoteKey))
	if err != nil || !ok || remote == "" {
		return "", false, err
	}
	merge, ok, err := s.Git.ConfigGet(branchKey(name, mergeKey))
	if err != nil || !ok {
		return "", false, err
	}
	short, ok := strings.CutPrefix(merge, git.HeadsPrefix)
	if !ok || short == "" {
		return "", false, nil
	}
	return remote + "/" + short, true, nil
}
