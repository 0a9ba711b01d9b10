package branch

import (
	"fmt"

	"github.com/henri123lemoine/gt/internal/git"
	"github.com/henri123lemoine/gt/internal/lazy"
)

// Branch is a snapshot of one branch's comparison state. Every derived field
// is computed on first use and cached for the life of the descriptor.
type Branch struct {
	Name string
	Ref  git.Ref

	s       *Session
	current bool

	diffbase    *lazy.Value[string]
	diffbaseRef *lazy.Value[baseRef]
	remote      *lazy.Value[remoteInfo]
	counts      *lazy.Value[counts]
	uncommitted *lazy.Value[bool]
	ancestor    *lazy.Value[git.Commit]
}

type baseRef struct {
	ref   git.Ref
	found bool
}

type remoteInfo struct {
	name  string
	found bool
	gone  bool
}

type counts struct {
	local, missing int
}

// NewBranch builds a descriptor for ref. current marks the checked out branch.
func (s *Session) NewBranch(ref git.Ref, current bool) *Branch {
	b := &Branch{
		Name:    ref.ShortName(),
		Ref:     ref,
		s:       s,
		current: current,
	}
	b.diffbase = lazy.New(b.resolveDiffbase)
	b.diffbaseRef = lazy.New(b.resolveDiffbaseRef)
	b.remote = lazy.New(b.resolveRemote)
	b.counts = lazy.New(b.resolveCounts)
	b.uncommitted = lazy.New(b.resolveUncommitted)
	b.ancestor = lazy.New(b.resolveAncestor)
	return b
}

// Head is the commit the branch points to.
func (b *Branch) Head() string { return b.Ref.Hash }

// IsCurrent reports whether the branch is checked out.
func (b *Branch) IsCurrent() bool { return b.current }

// IsDefault reports whether the branch is the repository's default branch.
func (b *Branch) IsDefault() (bool, error) {
	def, err := b.s.DefaultBranch()
	if err != nil {
		return false, err
	}
	return b.Name == def, nil
}

// Diffbase returns the branch this one is compared against: the configured
// diffbase, else the remote of a tracked default branch, else the default
// branch. The result is not checked for existence.
func (b *Branch) Diffbase() (string, error) {
	return b.diffbase.Get()
}

func (b *Branch) resolveDiffbase() (string, error) {
	if base, ok, err := b.s.ConfiguredDiffbase(b.Name); err != nil {
		return "", err
	} else if ok {
		return base, nil
	}

	isDefault, err := b.IsDefault()
	if err != nil {
		return "", err
	}
	if isDefault {
		remote, ok, err := b.Remote()
		if err != nil {
			return "", err
		}
		if ok {
			return remote, nil
		}
	}
	return b.s.DefaultBranch()
}

// SelfDiffbase reports whether the branch is its own diffbase.
func (b *Branch) SelfDiffbase() (bool, error) {
	base, err := b.Diffbase()
	if err != nil {
		return false, err
	}
	return base == b.Name, nil
}

// DiffbaseRef resolves the diffbase. found is false when no such branch exists.
func (b *Branch) DiffbaseRef() (ref git.Ref, found bool, err error) {
	r, err := b.diffbaseRef.Get()
	return r.ref, r.found, err
}

func (b *Branch) resolveDiffbaseRef() (baseRef, error) {
	base, err := b.Diffbase()
	if err != nil {
		return baseRef{}, err
	}
	ref, found, err := b.s.Lookup(base)
	if err != nil {
		return baseRef{}, fmt.Errorf("resolve diffbase %s of %s: %w", base, b.Name, err)
	}
	return baseRef{ref: ref, found: found}, nil
}

// Remote returns the tracked remote branch name, e.g. origin/main.
func (b *Branch) Remote() (string, bool, error) {
	r, err := b.remote.Get()
	return r.name, r.found, err
}

// RemoteGone reports whether the branch tracks a remote ref that no longer
// exists.
func (b *Branch) RemoteGone() (bool, error) {
	r, err := b.remote.Get()
	return r.gone, err
}

func (b *Branch) resolveRemote() (remoteInfo, error) {
	name, ok, err := b.s.ConfiguredRemote(b.Name)
	if err != nil || !ok {
		return remoteInfo{}, err
	}
	_, found, err := b.s.Git.ResolveRef(git.RemotesPrefix + name)
	if err != nil {
		return remoteInfo{}, err
	}
	return remoteInfo{name: name, found: true, gone: !found}, nil
}

// Counts returns the number of commits on the branch and not on its diffbase
// (local), and on the diffbase and not on the branch (missing). Both are zero
// for a self diffbase, a missing diffbase, or identical heads.
func (b *Branch) Counts() (local, missing int, err error) {
	c, err := b.counts.Get()
	return c.local, c.missing, err
}

func (b *Branch) resolveCounts() (counts, error) {
	if self, err := b.SelfDiffbase(); err != nil || self {
		return counts{}, err
	}
	base, found, err := b.DiffbaseRef()
	if err != nil || !found || base.Hash == b.Head() {
		return counts{}, err
	}

	r, err := b.s.Log(base.Hash, b.Head())
	if err != nil {
		return counts{}, fmt.Errorf("count commits on %s: %w", b.Name, err)
	}
	return counts{local: len(r.Local), missing: len(r.Missing)}, nil
}

// HasUncommitted reports uncommitted work. Only the current branch can have
// any.
func (b *Branch) HasUncommitted() (bool, error) {
	return b.uncommitted.Get()
}

func (b *Branch) resolveUncommitted() (bool, error) {
	if !b.current {
		return false, nil
	}
	return b.s.WorktreeDirty()
}

// Ancestor returns the commit the branch forked from its diffbase. A self
// diffbase yields the head commit without any ancestor walk.
func (b *Branch) Ancestor() (git.Commit, error) {
	return b.ancestor.Get()
}

func (b *Branch) resolveAncestor() (git.Commit, error) {
	self, err := b.SelfDiffbase()
	if err != nil {
		return git.Commit{}, err
	}
	if self {
		return b.s.Git.Commit(b.Head())
	}
	base, found, err := b.DiffbaseRef()
	if err != nil {
		return git.Commit{}, err
	}
	if !found {
		name, _ := b.Diffbase()
		return git.Commit{}, fmt.Errorf("%w: %s", ErrDiffbaseMissing, name)
	}
	return b.s.LastCommonAncestor(base.Hash, b.Head())
}

// Range returns the commits unique to the branch and to its diffbase,
// oldest first.
func (b *Branch) Range() (Range, error) {
	if self, err := b.SelfDiffbase(); err != nil || self {
		return Range{}, err
	}
	base, found, err := b.DiffbaseRef()
	if err != nil {
		return Range{}, err
	}
	if !found {
		name, _ := b.Diffbase()
		return Range{}, fmt.Errorf("%w: %s", ErrDiffbaseMissing, name)
	}
	if base.Hash == b.Head() {
		return Range{}, nil
	}
	return b.s.Log(base.Hash, b.Head())
}

// Files returns the changes between the fork point and the branch head.
func (b *Branch) Files() ([]git.DiffEntry, error) {
	ancestor, err := b.Ancestor()
	if err != nil {
		return nil, err
	}
	if ancestor.Hash == b.Head() {
		return nil, nil
	}
	entries, err := b.s.Git.DiffTrees(ancestor.Hash, b.Head())
	if err != nil {
		return nil, fmt.Errorf("diff %s: %w", b.Name, err)
	}
	return entries, nil
}

// Summary is the flattened state needed to render one branch line.
type Summary struct {
	Name        string
	Current     bool
	Default     bool
	Uncommitted bool

	Local   int
	Missing int

	Diffbase string
	// DiffbaseIsDefault is set when the diffbase is the default branch.
	DiffbaseIsDefault bool
	SelfDiffbase      bool
	DiffbaseMissing   bool

	Remote     string
	RemoteGone bool
}

// Summary evaluates every field of the descriptor.
func (b *Branch) Summary() (Summary, error) {
	sum := Summary{Name: b.Name, Current: b.current}

	var err error
	if sum.Default, err = b.IsDefault(); err != nil {
		return sum, err
	}
	if sum.Uncommitted, err = b.HasUncommitted(); err != nil {
		return sum, err
	}
	if sum.Local, sum.Missing, err = b.Counts(); err != nil {
		return sum, err
	}
	if sum.Diffbase, err = b.Diffbase(); err != nil {
		return sum, err
	}
	def, err := b.s.DefaultBranch()
	if err != nil {
		return sum, err
	}
	sum.DiffbaseIsDefault = sum.Diffbase == def
	sum.SelfDiffbase = sum.Diffbase == b.Name
	if !sum.SelfDiffbase {
		_, found, err := b.DiffbaseRef()
		if err != nil {
			return sum, err
		}
		sum.DiffbaseMissing = !found
	}
	if sum.Remote, _, err = b.Remote(); err != nil {
		return sum, err
	}
	if sum.RemoteGone, err = b.RemoteGone(); err != nil {
		return sum, err
	}
	return sum, nil
}
