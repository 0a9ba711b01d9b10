package git

import (
	"strings"
)

// ListBranches returns all local branches.
func (r *Repo) ListBranches() ([]Ref, error) {
	return r.listRefs(HeadsPrefix)
}

// ListRemoteBranches returns all remote-tracking branches.
func (r *Repo) ListRemoteBranches() ([]Ref, error) {
	refs, err := r.listRefs(RemotesPrefix)
	if err != nil {
		return nil, err
	}

	var branches []Ref
	for _, ref := range refs {
		// Skip HEAD pointers like origin/HEAD
		if strings.HasSuffix(ref.Name, "/HEAD") {
			continue
		}
		branches = append(branches, ref)
	}
	return branches, nil
}

func (r *Repo) listRefs(prefix string) ([]Ref, error) {
	output, err := r.git("for-each-ref", "--format=%(objectname) %(refname)", strings.TrimSuffix(prefix, "/"))
	if err != nil {
		return nil, err
	}

	var refs []Ref
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		hash, name, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		refs = append(refs, Ref{Name: name, Hash: hash})
	}
	return refs, nil
}

// Checkout switches to a local branch.
func (r *Repo) Checkout(branch string) error {
	_, err := r.git("checkout", branch)
	return err
}

// CreateBranch creates and checks out a new branch at startPoint.
// The new branch never tracks startPoint, even when it is a remote branch.
func (r *Repo) CreateBranch(name, startPoint string) error {
	_, err := r.git("checkout", "--no-track", "-b", name, startPoint)
	return err
}

// RenameBranch renames a local branch. Git moves its config section along.
func (r *Repo) RenameBranch(oldName, newName string) error {
	_, err := r.git("branch", "-m", oldName, newName)
	return err
}

// DeleteBranch force-deletes a local branch.
func (r *Repo) DeleteBranch(name string) error {
	_, err := r.git("branch", "-D", name)
	return err
}
