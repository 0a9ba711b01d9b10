package report

import (
	"errors"
	"fmt"

	"github.com/henri123lemoine/gt/internal/branch"
	"github.com/henri123lemoine/gt/internal/git"
)

// StatusOptions selects what Status prints.
type StatusOptions struct {
	// Branch to report on; empty means the checked out branch.
	Branch string
	// Files lists changed files instead of commits.
	Files bool
	// Relative prints paths relative to the working directory. Implies Files.
	Relative bool
}

// Status prints the commits or files a branch has relative to its diffbase,
// then the uncommitted changes of the checked out branch.
func (r *Reporter) Status(opts StatusOptions) error {
	if opts.Relative {
		opts.Files = true
	}

	state, err := r.s.Git.State()
	if err != nil {
		return err
	}
	if state != git.StateSafe {
		r.printf("%s: %s\n", r.st.warn.Render("Repository not in a safe state"), state.Description())
	}

	l, err := r.s.List()
	if err != nil {
		return err
	}
	b, err := r.branchOrCurrent(l, opts.Branch)
	if err != nil {
		return err
	}

	if err := r.statusCommits(b, opts); err != nil {
		return err
	}
	if !b.IsCurrent() {
		return nil
	}
	return r.statusUncommitted(b, opts)
}

func (r *Reporter) statusCommits(b *branch.Branch, opts StatusOptions) error {
	baseName, err := b.Diffbase()
	if err != nil {
		return err
	}
	base, found, err := b.DiffbaseRef()
	if err != nil {
		return err
	}
	self, err := b.SelfDiffbase()
	if err != nil {
		return err
	}
	if !found && !self {
		r.printf("No such branch %s\n", r.st.bold.Render(baseName))
		return nil
	}

	if self || base.Hash == b.Head() {
		head, err := r.s.Git.Commit(b.Head())
		if err != nil {
			return err
		}
		r.printf("No commits on %s since %s -- %s\n",
			r.st.add.Render(b.Name), r.date(head), r.st.dim.Render(head.Subject))
		return nil
	}

	rng, err := b.Range()
	if err != nil {
		return err
	}
	ancestor, err := b.Ancestor()
	if errors.Is(err, branch.ErrNoCommonAncestor) {
		r.printf("No common ancestor between %s and %s\n", r.st.branch.Render(b.Name), r.st.bold.Render(baseName))
		return nil
	}
	if err != nil {
		return err
	}

	tag, err := r.baseTag(baseName)
	if err != nil {
		return err
	}
	r.printf("Commits on %s%s since %s -- [%s] %s\n",
		r.st.branch.Render(b.Name),
		r.stats(len(rng.Local), len(rng.Missing)),
		r.date(ancestor),
		tag,
		r.st.dim.Render(ancestor.Subject))

	if !opts.Files {
		for _, c := range rng.Local {
			r.printf("+ %s (%s)\n", r.st.add.Render(c.Subject), r.date(c))
		}
		for _, c := range rng.Missing {
			r.printf("- %s (%s)\n", r.st.sub.Render(c.Subject), r.date(c))
		}
		return nil
	}

	files, err := b.Files()
	if err != nil {
		return err
	}
	for _, f := range files {
		r.printf("%s\n", r.changeLine(f, opts.Relative))
	}
	return nil
}

// changeLine renders one committed change.
func (r *Reporter) changeLine(f git.DiffEntry, relative bool) string {
	switch f.Change {
	case git.ChangeRename, git.ChangeCopy:
		return fmt.Sprintf(" %c %s <- %s", f.Change.Letter(),
			r.st.moved.Render(r.path(f.NewPath, relative)),
			r.st.dim.Render(r.path(f.OldPath, relative)))
	case git.ChangeAdd:
		return " A " + r.st.add.Render(r.path(f.NewPath, relative))
	case git.ChangeDelete:
		return " D " + r.st.changed.Render(r.path(f.OldPath, relative))
	default:
		return "   " + r.path(f.NewPath, relative)
	}
}

func (r *Reporter) statusUncommitted(b *branch.Branch, opts StatusOptions) error {
	staged, err := r.s.Git.DiffIndex()
	if err != nil {
		return err
	}
	unstaged, err := r.s.Git.DiffWorktree()
	if err != nil {
		return err
	}
	if len(staged) == 0 && len(unstaged) == 0 {
		return nil
	}

	if opts.Files {
		r.printf("\n%s changes on %s:\n", r.st.sub.Render("Uncommitted"), r.st.branch.Render(b.Name))
		for _, fs := range branch.MergeFileStatus(staged, unstaged) {
			r.printf("%s\n", r.fileStatusLine(fs, opts.Relative))
		}
		return nil
	}

	r.printf("Uncommitted changes on %s:\n", r.st.branch.Render(b.Name))
	if len(staged) > 0 {
		r.printf(" - %s   :%s\n", r.st.moved.Render("Staged files"), r.changeCounts(staged))
	}
	if len(unstaged) > 0 {
		r.printf(" - %s :%s\n", r.st.changed.Render("Unstaged files"), r.changeCounts(unstaged))
	}
	return nil
}

// changeCounts renders " +adds -deletes /others".
func (r *Reporter) changeCounts(entries []git.DiffEntry) string {
	var adds, dels int
	for _, e := range entries {
		switch e.Change {
		case git.ChangeAdd:
			adds++
		case git.ChangeDelete:
			dels++
		}
	}
	mods := len(entries) - adds - dels

	var s string
	if adds > 0 {
		s += " " + r.st.add.Render(fmt.Sprintf("+%d", adds))
	}
	if dels > 0 {
		s += " " + r.st.sub.Render(fmt.Sprintf("-%d", dels))
	}
	if mods > 0 {
		s += " " + r.st.dim.Render(fmt.Sprintf("/%d", mods))
	}
	return s
}

func (r *Reporter) fileStatusLine(fs branch.FileStatus, relative bool) string {
	overall := fs.Overall()
	style := r.st.changed
	switch overall {
	case git.ChangeAdd:
		style = r.st.add.Bold(true)
	case git.ChangeDelete:
		style = r.st.sub.Bold(true)
	case git.ChangeRename, git.ChangeCopy:
		style = r.st.moved
	}

	if overall == git.ChangeDelete {
		return fs.Code() + " " + style.Render(r.path(fs.OldestPath(), relative))
	}
	line := fs.Code() + " " + style.Render(r.path(fs.NewestPath(), relative))
	if fs.NewestPath() != fs.OldestPath() {
		line += " <- " + r.st.dim.Render(r.path(fs.OldestPath(), relative))
	}
	return line
}
