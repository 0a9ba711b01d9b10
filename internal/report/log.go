package report

import (
	"errors"
	"fmt"

	"github.com/henri123lemoine/gt/internal/branch"
	"github.com/henri123lemoine/gt/internal/git"
)

// LogOptions selects the sides Log prints. With neither side set, Left is
// assumed.
type LogOptions struct {
	Branch string
	// Left prints the commits only the branch has.
	Left bool
	// Right prints the commits only the diffbase has.
	Right bool
	// Remote compares against the tracked remote instead of the diffbase.
	Remote bool
}

// Log prints the commits on either side of a branch and its diffbase.
func (r *Reporter) Log(opts LogOptions) error {
	if !opts.Left && !opts.Right {
		opts.Left = true
	}

	l, err := r.s.List()
	if err != nil {
		return err
	}
	b, err := r.branchOrCurrent(l, opts.Branch)
	if err != nil {
		return err
	}

	withName, err := b.Diffbase()
	if err != nil {
		return err
	}
	if opts.Remote {
		remote, ok, err := b.Remote()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no remote for %s", b.Name)
		}
		withName = remote
	}

	with, found, err := r.s.Lookup(withName)
	if err != nil {
		return err
	}
	if !found {
		r.printf("No such branch %s\n", r.st.bold.Render(withName))
		return nil
	}

	head, err := r.s.Git.Commit(b.Head())
	if err != nil {
		return err
	}
	if with.Hash == b.Head() {
		r.printf("No commits on %s since %s -- %s\n",
			r.st.remote.Render(b.Name), r.date(head), r.st.dim.Render(head.Subject))
		return nil
	}

	rng, err := r.s.Log(with.Hash, b.Head())
	if err != nil {
		return err
	}

	if opts.Left {
		ancestor, err := r.s.LastCommonAncestor(with.Hash, b.Head())
		if err != nil {
			return r.ancestorError(err, b.Name, withName)
		}
		tag, err := r.baseTag(withName)
		if err != nil {
			return err
		}
		r.logSide(r.st.add.Render(b.Name), tag, ancestor, "+", rng.Local, true)
	}

	if opts.Right {
		if opts.Left {
			r.printf("\n")
		}
		ancestor, err := r.s.LastCommonAncestor(b.Head(), with.Hash)
		if err != nil {
			return r.ancestorError(err, withName, b.Name)
		}
		tag := "d:" + r.st.base.Render(b.Name)
		r.logSide(r.st.sub.Render(withName), tag, ancestor, "-", rng.Missing, !opts.Left)
	}
	return nil
}

func (r *Reporter) ancestorError(err error, name, base string) error {
	if errors.Is(err, branch.ErrNoCommonAncestor) {
		r.printf("No common ancestor between %s and %s\n", r.st.branch.Render(name), r.st.bold.Render(base))
		return nil
	}
	return err
}

func (r *Reporter) logSide(name, tag string, ancestor git.Commit, marker string, commits []git.Commit, subject bool) {
	header := fmt.Sprintf("since %s [%s]", r.date(ancestor), tag)
	if subject {
		header += " -- " + r.st.dim.Render(ancestor.Subject)
	}
	if len(commits) == 0 {
		r.printf("No commits on %s %s\n", name, header)
		return
	}

	r.printf("Commits on %s %s\n\n", name, header)
	markerStyle := r.st.add
	if marker == "-" {
		markerStyle = r.st.sub
	}
	for _, c := range commits {
		r.printf("%s %s %s %s\n", marker, markerStyle.Render(c.Short()), r.date(c), r.st.dim.Render(c.Subject))
	}
}
