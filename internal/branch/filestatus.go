package branch

import (
	"sort"

	"github.com/henri123lemoine/gt/internal/git"
)

// FileStatus combines the staged and unstaged change of one path.
// At least one side is set.
type FileStatus struct {
	Staged   *git.DiffEntry
	Unstaged *git.DiffEntry
}

// MergeFileStatus pairs staged and unstaged entries by path and returns them
// sorted by newest path.
func MergeFileStatus(staged, unstaged []git.DiffEntry) []FileStatus {
	byPath := map[string]*FileStatus{}
	for i := range unstaged {
		fs := &FileStatus{Unstaged: &unstaged[i]}
		byPath[fs.NewestPath()] = fs
	}
	for i := range staged {
		d := &staged[i]
		if fs, ok := byPath[d.NewPath]; ok && d.NewPath != git.NullPath && fs.Staged == nil {
			fs.Staged = d
			continue
		}
		if fs, ok := byPath[d.OldPath]; ok && d.OldPath != git.NullPath && fs.Staged == nil {
			fs.Staged = d
			continue
		}
		fs := &FileStatus{Staged: d}
		byPath[fs.NewestPath()] = fs
	}

	keys := make([]string, 0, len(byPath))
	for k := range byPath {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]FileStatus, len(keys))
	for i, k := range keys {
		out[i] = *byPath[k]
	}
	return out
}

// Overall returns the change as seen from HEAD to the working tree.
func (f FileStatus) Overall() git.ChangeType {
	switch {
	case f.Staged == nil:
		return f.Unstaged.Change
	case f.Unstaged == nil:
		return f.Staged.Change
	case f.Unstaged.Change == git.ChangeDelete:
		return git.ChangeDelete
	case f.Staged.Change == git.ChangeAdd:
		return git.ChangeAdd
	case f.NewestPath() == f.OldestPath():
		return git.ChangeModify
	case f.Staged.Change == git.ChangeCopy || f.Unstaged.Change == git.ChangeCopy:
		return git.ChangeCopy
	default:
		return git.ChangeRename
	}
}

// Code returns the two column staged/unstaged indicator, "??" for
// untracked files.
func (f FileStatus) Code() string {
	switch {
	case f.Staged == nil:
		if f.Unstaged.Change == git.ChangeAdd {
			return "??"
		}
		return " " + string(f.Unstaged.Change.Letter())
	case f.Unstaged == nil:
		if f.Staged.Change == git.ChangeModify {
			return "  "
		}
		return string(f.Staged.Change.Letter()) + " "
	default:
		return string([]byte{f.Staged.Change.Letter(), f.Unstaged.Change.Letter()})
	}
}

// OldestPath is the path the file had in HEAD, when known.
func (f FileStatus) OldestPath() string {
	if f.Staged != nil {
		return pick(f.Staged.OldPath, f.Staged.NewPath)
	}
	return pick(f.Unstaged.OldPath, f.Unstaged.NewPath)
}

// NewestPath is the path the file has in the working tree, when known.
func (f FileStatus) NewestPath() string {
	if f.Unstaged != nil {
		return pick(f.Unstaged.NewPath, f.Unstaged.OldPath)
	}
	return pick(f.Staged.NewPath, f.Staged.OldPath)
}

func pick(preferred, fallback string) string {
	if preferred != "" && preferred != git.NullPath {
		return preferred
	}
	return fallback
}
