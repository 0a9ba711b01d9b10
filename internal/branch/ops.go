package branch

import (
	"errors"
	"fmt"

	"github.com/henri123lemoine/gt/internal/debug"
	"github.com/henri123lemoine/gt/internal/git"
)

// Guard rejections. None of them is returned after a repository mutation.
var (
	ErrDefaultBranch  = errors.New("not allowed on the default branch")
	ErrAlreadyCurrent = errors.New("already on branch")
	ErrUncommitted    = errors.New("uncommitted changes on current branch")
	ErrSameName       = errors.New("same name as before")
	ErrSameDiffbase   = errors.New("same diffbase as before")
	ErrSelfDiffbase   = errors.New("a branch cannot be its own diffbase")
	ErrNoCandidates   = errors.New("no possible diffbase branches")
)

// CanCheckout rejects checking out the current branch or leaving a dirty one.
func (l *List) CanCheckout(b *Branch) error {
	if b.IsCurrent() {
		return fmt.Errorf("%w %s", ErrAlreadyCurrent, b.Name)
	}
	dirty, err := l.Dirty()
	if err != nil {
		return err
	}
	if dirty {
		return ErrUncommitted
	}
	return nil
}

// Checkout switches to b.
func (l *List) Checkout(b *Branch) error {
	debug.Log("checkout %s", b.Name)
	if err := l.s.Git.Checkout(b.Name); err != nil {
		return fmt.Errorf("checkout %s: %w", b.Name, err)
	}
	return nil
}

func (l *List) rejectDefault(b *Branch) error {
	isDefault, err := b.IsDefault()
	if err != nil {
		return err
	}
	if isDefault {
		return fmt.Errorf("%w: %s", ErrDefaultBranch, b.Name)
	}
	return nil
}

// CanDelete rejects the default branch. It returns the number of commits
// that would be lost; deleting a branch with any requires confirmation.
func (l *List) CanDelete(b *Branch) (local int, err error) {
	if err := l.rejectDefault(b); err != nil {
		return 0, err
	}
	local, _, err = b.Counts()
	return local, err
}

// Delete force-deletes b, first checking out the default branch when b is
// checked out.
func (l *List) Delete(b *Branch) error {
	if b.IsCurrent() {
		def, err := l.s.DefaultBranch()
		if err != nil {
			return err
		}
		debug.Log("checkout %s before deleting %s", def, b.Name)
		if err := l.s.Git.Checkout(def); err != nil {
			return fmt.Errorf("checkout %s: %w", def, err)
		}
	}
	if err := l.s.Git.DeleteBranch(b.Name); err != nil {
		return fmt.Errorf("delete %s: %w", b.Name, err)
	}
	return nil
}

// CanRename rejects the default branch.
func (l *List) CanRename(b *Branch) error {
	return l.rejectDefault(b)
}

// ValidateNewName checks name against the listed branches and the remotes.
func (l *List) ValidateNewName(name string) error {
	remotes, err := l.s.RemoteNames()
	if err != nil {
		return err
	}
	return ValidateName(name, l.Names(), remotes)
}

// Rename renames b. Renaming to the same name returns ErrSameName.
func (l *List) Rename(b *Branch, name string) error {
	if name == b.Name {
		return ErrSameName
	}
	if err := l.CanRename(b); err != nil {
		return err
	}
	if err := l.ValidateNewName(name); err != nil {
		return err
	}
	if err := l.s.Git.RenameBranch(b.Name, name); err != nil {
		return fmt.Errorf("rename %s to %s: %w", b.Name, name, err)
	}
	return nil
}

// CanSetDiffbase rejects the default branch.
func (l *List) CanSetDiffbase(b *Branch) error {
	return l.rejectDefault(b)
}

// DiffbaseCandidates lists the local branches b may use as diffbase: every
// branch except b itself and those whose diffbase is b.
func (l *List) DiffbaseCandidates(b *Branch) ([]string, error) {
	var out []string
	for _, other := range l.Branches {
		if other == b || other.Name == b.Name {
			continue
		}
		base, err := other.Diffbase()
		if err != nil {
			return nil, err
		}
		if base == b.Name {
			continue
		}
		out = append(out, other.Name)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoCandidates, b.Name)
	}
	return out, nil
}

// RemoteCandidates lists the remote-tracking branches.
func (l *List) RemoteCandidates(b *Branch) ([]string, error) {
	refs, err := l.s.Git.ListRemoteBranches()
	if err != nil {
		return nil, fmt.Errorf("list remote branches: %w", err)
	}
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		out = append(out, ref.ShortName())
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoCandidates, b.Name)
	}
	return out, nil
}

// SetDiffbase stores base as the diffbase of b.
func (l *List) SetDiffbase(b *Branch, base string) error {
	if err := l.CanSetDiffbase(b); err != nil {
		return err
	}
	if base == b.Name {
		return ErrSelfDiffbase
	}
	old, err := b.Diffbase()
	if err != nil {
		return err
	}
	if old == base {
		return fmt.Errorf("%w: %s", ErrSameDiffbase, base)
	}
	return l.s.WriteDiffbase(b.Name, base)
}

// ClearDiffbase removes the configured diffbase of b.
func (l *List) ClearDiffbase(b *Branch) error {
	if err := l.CanSetDiffbase(b); err != nil {
		return err
	}
	_, ok, err := l.s.ConfiguredDiffbase(b.Name)
	if err != nil {
		return err
	}
	if !ok {
		base, _ := b.Diffbase()
		return fmt.Errorf("%w: %s", ErrSameDiffbase, base)
	}
	return l.s.UnsetDiffbase(b.Name)
}

// CanCreate rejects creating a branch while the current branch has
// uncommitted work.
func (l *List) CanCreate() error {
	dirty, err := l.Dirty()
	if err != nil {
		return err
	}
	if dirty {
		return ErrUncommitted
	}
	return nil
}

// SplitFiles returns the changes of source that may be carried over to a new
// branch. The default branch and branches without a resolvable fork point
// offer none.
func (l *List) SplitFiles(source *Branch) ([]git.DiffEntry, error) {
	isDefault, err := source.IsDefault()
	if err != nil || isDefault {
		return nil, err
	}
	_, found, err := source.DiffbaseRef()
	if err != nil || !found {
		return nil, err
	}
	files, err := source.Files()
	if errors.Is(err, ErrNoCommonAncestor) {
		debug.Log("no common ancestor for %s, nothing to split", source.Name)
		return nil, nil
	}
	return files, err
}

// StartPoint returns the ref a branch created from source starts at: the
// default branch itself, otherwise the diffbase of source.
func (l *List) StartPoint(source *Branch) (string, error) {
	isDefault, err := source.IsDefault()
	if err != nil {
		return "", err
	}
	if isDefault {
		return source.Ref.Name, nil
	}
	base, found, err := source.DiffbaseRef()
	if err != nil {
		return "", err
	}
	if !found {
		name, _ := source.Diffbase()
		return "", fmt.Errorf("%w: %s", ErrDiffbaseMissing, name)
	}
	return base.Name, nil
}

// CreateBranch creates name at the start point of source, checks it out and
// copies the selected changes of source into the working tree, staged.
func (l *List) CreateBranch(source *Branch, name string, selected []git.DiffEntry) error {
	if err := l.ValidateNewName(name); err != nil {
		return err
	}
	start, err := l.StartPoint(source)
	if err != nil {
		return err
	}

	debug.Log("create %s at %s with %d files from %s", name, start, len(selected), source.Name)
	if err := l.s.Git.CreateBranch(name, start); err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if len(selected) == 0 {
		return nil
	}

	paths := make([]string, 0, len(selected))
	for _, entry := range selected {
		if entry.Change == git.ChangeDelete {
			if err := l.s.Git.RemoveFile(entry.OldPath); err != nil {
				return fmt.Errorf("remove %s: %w", entry.OldPath, err)
			}
			paths = append(paths, entry.OldPath)
			continue
		}
		data, err := l.s.Git.ReadBlob(entry.NewID)
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.NewPath, err)
		}
		if err := l.s.Git.WriteFile(entry.NewPath, data, entry.NewMode); err != nil {
			return fmt.Errorf("write %s: %w", entry.NewPath, err)
		}
		paths = append(paths, entry.NewPath)
	}
	if err := l.s.Git.Stage(paths...); err != nil {
		return fmt.Errorf("stage: %w", err)
	}
	return nil
}
