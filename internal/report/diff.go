package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/henri123lemoine/gt/internal/exec"
	"github.com/henri123lemoine/gt/internal/git"
)

// DiffOptions configures Diff.
type DiffOptions struct {
	// Against overrides the diffbase of the checked out branch.
	Against string
	// Viewer is a command template run over the file pairs. Empty prints
	// unified diffs instead.
	Viewer string
	// Context is the number of unified diff context lines.
	Context int
}

// diffItem follows one file from the fork point through the index to the
// working tree, keyed by its last known path.
type diffItem struct {
	key  string
	from string
	to   string

	baseToHead *git.DiffEntry
	staged     *git.DiffEntry
	unstaged   *git.DiffEntry
}

// oldID is the blob the file had at the oldest known point.
func (d *diffItem) oldID() string {
	switch {
	case d.baseToHead != nil:
		return d.baseToHead.OldID
	case d.staged != nil:
		return d.staged.OldID
	default:
		return d.unstaged.OldID
	}
}

// mergeDiff chains committed, staged and unstaged changes of the same file.
func mergeDiff(baseToHead, staged, unstaged []git.DiffEntry) []*diffItem {
	byKey := map[string]*diffItem{}
	for i := range baseToHead {
		e := &baseToHead[i]
		byKey[e.Path()] = &diffItem{key: e.Path(), from: e.OldPath, to: e.NewPath, baseToHead: e}
	}

	chain := func(entries []git.DiffEntry, set func(*diffItem, *git.DiffEntry)) {
		for i := range entries {
			e := &entries[i]
			lookup := e.OldPath
			if e.Change == git.ChangeAdd {
				lookup = e.NewPath
			}
			item, ok := byKey[lookup]
			if !ok {
				item = &diffItem{key: e.Path(), from: e.OldPath, to: e.NewPath}
				set(item, e)
				byKey[item.key] = item
				continue
			}
			if e.Change != git.ChangeDelete && item.key != e.NewPath {
				delete(byKey, item.key)
				item.key = e.NewPath
				byKey[item.key] = item
			}
			item.to = e.NewPath
			set(item, e)
		}
	}
	chain(staged, func(d *diffItem, e *git.DiffEntry) { d.staged = e })
	chain(unstaged, func(d *diffItem, e *git.DiffEntry) { d.unstaged = e })

	items := make([]*diffItem, 0, len(byKey))
	for _, item := range byKey {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].key < items[j].key })
	return items
}

// Diff stages the old side of every changed file of the checked out branch
// in a temporary directory and shows old/new pairs in the viewer.
func (r *Reporter) Diff(opts DiffOptions) error {
	l, err := r.s.List()
	if err != nil {
		return err
	}
	cur, err := r.branchOrCurrent(l, "")
	if err != nil {
		return err
	}

	against := opts.Against
	if against == "" {
		if against, err = cur.Diffbase(); err != nil {
			return err
		}
	}
	with, found, err := r.s.Lookup(against)
	if err != nil {
		return err
	}
	if !found {
		r.printf("No ref found for %s\n", against)
		return nil
	}

	dirty, err := cur.HasUncommitted()
	if err != nil {
		return err
	}
	if with.Hash == cur.Head() && !dirty {
		return nil
	}

	var committed, staged, unstaged []git.DiffEntry
	if with.Hash != cur.Head() {
		ancestor, err := r.s.LastCommonAncestor(with.Hash, cur.Head())
		if err != nil {
			return r.ancestorError(err, cur.Name, against)
		}
		if committed, err = r.s.Git.DiffTrees(ancestor.Hash, cur.Head()); err != nil {
			return err
		}
	}
	if dirty {
		if staged, err = r.s.Git.DiffIndex(); err != nil {
			return err
		}
		if unstaged, err = r.s.Git.DiffWorktree(); err != nil {
			return err
		}
	}

	items := mergeDiff(committed, staged, unstaged)
	if len(items) == 0 {
		return nil
	}

	tmp, err := os.MkdirTemp("", "gt-diff")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	files, err := r.stage(tmp, items)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return nil
	}

	if opts.Viewer != "" {
		pairs := make([]exec.Pair, len(files))
		for i, f := range files {
			pairs[i] = f.Pair
		}
		if err := exec.RunViewer(opts.Viewer, r.s.Git.Root(), pairs); err != nil {
			return fmt.Errorf("diff viewer: %w", err)
		}
		return nil
	}
	return r.unified(files, opts.Context)
}

// stagedFile is a viewer pair plus the labels used for unified output.
type stagedFile struct {
	exec.Pair
	from string
	to   string
}

// stage writes the old contents into tmp and announces each file.
func (r *Reporter) stage(tmp string, items []*diffItem) ([]stagedFile, error) {
	root := r.s.Git.Root()
	var files []stagedFile
	for _, item := range items {
		if item.from == git.NullPath {
			if item.to == git.NullPath {
				r.printf("Skipping %s (new + delete)\n", r.st.dim.Render(item.key))
				continue
			}
			r.printf("New    %s\n", r.st.add.Render(item.to))
			files = append(files, stagedFile{
				Pair: exec.Pair{Old: os.DevNull, New: filepath.Join(root, item.to)},
				from: os.DevNull,
				to:   "b/" + item.to,
			})
			continue
		}

		data, err := r.s.Git.ReadBlob(item.oldID())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", item.from, err)
		}
		old := filepath.Join(tmp, filepath.FromSlash(item.from))
		if err := os.MkdirAll(filepath.Dir(old), 0755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(old, data, 0644); err != nil {
			return nil, err
		}

		switch {
		case item.to == git.NullPath:
			r.printf("Delete %s\n", r.st.sub.Render(item.key))
			files = append(files, stagedFile{
				Pair: exec.Pair{Old: old, New: os.DevNull},
				from: "a/" + item.from,
				to:   os.DevNull,
			})
			continue
		case item.to == item.from:
			r.printf("Diff   %s\n", item.to)
		default:
			r.printf("Move   %s -> %s\n", r.st.moved.Render(item.from), r.st.changed.Render(item.to))
		}
		files = append(files, stagedFile{
			Pair: exec.Pair{Old: old, New: filepath.Join(root, item.to)},
			from: "a/" + item.from,
			to:   "b/" + item.to,
		})
	}
	return files, nil
}

// unified prints a unified diff per file.
func (r *Reporter) unified(files []stagedFile, context int) error {
	for _, f := range files {
		a, err := readOrEmpty(f.Old)
		if err != nil {
			return err
		}
		b, err := readOrEmpty(f.New)
		if err != nil {
			return err
		}
		text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        splitLines(a),
			B:        splitLines(b),
			FromFile: f.from,
			ToFile:   f.to,
			Context:  context,
		})
		if err != nil {
			return err
		}
		r.printf("%s", text)
	}
	return nil
}

// splitLines splits s into newline-terminated lines. An empty string has no
// lines, and a missing final newline is supplied.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if last := len(lines) - 1; lines[last] == "" {
		lines = lines[:last]
	} else {
		lines[last] += "\n"
	}
	return lines
}

func readOrEmpty(path string) (string, error) {
	if path == os.DevNull {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	return string(data), err
}
