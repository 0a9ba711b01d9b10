package git

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
)

// DiffTrees compares the trees of two commits with rename detection.
func (r *Repo) DiffTrees(oldCommit, newCommit string) ([]DiffEntry, error) {
	oldTree, err := r.tree(oldCommit)
	if err != nil {
		return nil, err
	}
	newTree, err := r.tree(newCommit)
	if err != nil {
		return nil, err
	}

	changes, err := object.DiffTreeWithOptions(context.Background(), oldTree, newTree, object.DefaultDiffTreeOptions)
	if err != nil {
		return nil, fmt.Errorf("diff %s..%s: %w", oldCommit, newCommit, err)
	}

	entries := make([]DiffEntry, 0, len(changes))
	for _, ch := range changes {
		entry, err := entryFromChange(ch)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *Repo) tree(hash string) (*object.Tree, error) {
	c, err := r.objects.CommitObject(plumbing.NewHash(hash))
	if err != nil {
		return nil, fmt.Errorf("read commit %s: %w", hash, err)
	}
	t, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("read tree of %s: %w", hash, err)
	}
	return t, nil
}

func entryFromChange(ch *object.Change) (DiffEntry, error) {
	action, err := ch.Action()
	if err != nil {
		return DiffEntry{}, err
	}
	entry := DiffEntry{
		OldPath: NullPath,
		NewPath: NullPath,
	}
	if ch.From.Name != "" {
		entry.OldPath = ch.From.Name
		entry.OldID = ch.From.TreeEntry.Hash.String()
	}
	if ch.To.Name != "" {
		entry.NewPath = ch.To.Name
		entry.NewID = ch.To.TreeEntry.Hash.String()
		entry.NewMode = ch.To.TreeEntry.Mode
	}

	switch action {
	case merkletrie.Insert:
		entry.Change = ChangeAdd
	case merkletrie.Delete:
		entry.Change = ChangeDelete
	default:
		entry.Change = ChangeModify
		if entry.OldPath != entry.NewPath {
			entry.Change = ChangeRename
		}
	}
	return entry, nil
}

// DiffIndex lists staged changes.
func (r *Repo) DiffIndex() ([]DiffEntry, error) {
	output, err := r.git("diff", "--cached", "--raw", "-z", "-M", "--no-abbrev")
	if err != nil {
		return nil, err
	}
	return parseRawDiff(output)
}

// DiffWorktree lists unstaged changes, including untracked files.
func (r *Repo) DiffWorktree() ([]DiffEntry, error) {
	output, err := r.git("diff", "--raw", "-z", "--no-abbrev")
	if err != nil {
		return nil, err
	}
	entries, err := parseRawDiff(output)
	if err != nil {
		return nil, err
	}

	untracked, err := r.git("ls-files", "--others", "--exclude-standard", "-z")
	if err != nil {
		return nil, err
	}
	for _, path := range strings.Split(untracked, "\x00") {
		if path == "" {
			continue
		}
		entries = append(entries, DiffEntry{
			OldPath: NullPath,
			NewPath: path,
			Change:  ChangeAdd,
		})
	}
	return entries, nil
}

// parseRawDiff parses `git diff --raw -z` output.
func parseRawDiff(output string) ([]DiffEntry, error) {
	// Records end in NUL; drop the empty token after the last one.
	tokens := strings.Split(strings.TrimSuffix(output, "\x00"), "\x00")
	var entries []DiffEntry
	for i := 0; i < len(tokens); i++ {
		header := tokens[i]
		if header == "" {
			continue
		}
		if !strings.HasPrefix(header, ":") {
			return nil, fmt.Errorf("unexpected raw diff header %q", header)
		}
		fields := strings.Fields(header[1:])
		if len(fields) != 5 {
			return nil, fmt.Errorf("unexpected raw diff header %q", header)
		}
		status := fields[4]

		paths := 1
		if status[0] == 'R' || status[0] == 'C' {
			paths = 2
		}
		if i+paths >= len(tokens) {
			return nil, fmt.Errorf("truncated raw diff after %q", header)
		}

		entry := DiffEntry{
			OldPath: tokens[i+1],
			NewPath: tokens[i+paths],
			OldID:   blobID(fields[2]),
			NewID:   blobID(fields[3]),
		}
		i += paths

		switch status[0] {
		case 'A':
			entry.Change = ChangeAdd
			entry.OldPath = NullPath
		case 'D':
			entry.Change = ChangeDelete
			entry.NewPath = NullPath
		case 'R':
			entry.Change = ChangeRename
		case 'C':
			entry.Change = ChangeCopy
		default:
			entry.Change = ChangeModify
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// blobID returns "" for the all-zero id git uses for absent or unhashed blobs.
func blobID(id string) string {
	if strings.Trim(id, "0") == "" {
		return ""
	}
	return id
}

// ReadBlob reads the content of a blob object.
func (r *Repo) ReadBlob(id string) ([]byte, error) {
	blob, err := r.objects.BlobObject(plumbing.NewHash(id))
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", id, err)
	}
	rd, err := blob.Reader()
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", id, err)
	}
	defer rd.Close()
	return io.ReadAll(rd)
}
