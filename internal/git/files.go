package git

import (
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5/plumbing/filemode"
)

// IsDir reports whether path, relative to the root, is a directory.
// A path that does not exist is not a directory.
func (r *Repo) IsDir(path string) (bool, error) {
	info, err := os.Stat(filepath.Join(r.root, path))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// WriteFile writes data to path, relative to the root, creating parent
// directories as needed. Whatever was at path is replaced, so the mode
// always takes effect.
func (r *Repo) WriteFile(path string, data []byte, mode filemode.FileMode) error {
	full := filepath.Join(r.root, path)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}

	switch mode {
	case filemode.Symlink:
		return os.Symlink(string(data), full)
	case filemode.Executable:
		return os.WriteFile(full, data, 0755)
	default:
		return os.WriteFile(full, data, 0644)
	}
}

// RemoveFile deletes path, relative to the root.
func (r *Repo) RemoveFile(path string) error {
	return os.Remove(filepath.Join(r.root, path))
}

// Stage adds the given paths, including deletions, to the index.
func (r *Repo) Stage(paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"add", "-A", "--"}, paths...)
	_, err := r.git(args...)
	return err
}
