// Package report prints the non-interactive status, log and diff output.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/henri123lemoine/gt/internal/branch"
	"github.com/henri123lemoine/gt/internal/git"
)

// Options configures a Reporter.
type Options struct {
	// Color is "auto", "always" or "never".
	Color string
	// Cwd is the directory relative paths are computed from.
	Cwd string
	// Now returns the current time; defaults to time.Now.
	Now func() time.Time
}

// Reporter writes reports for one repository session.
type Reporter struct {
	s   *branch.Session
	out io.Writer
	st  styles
	cwd string
	now func() time.Time
}

// New creates a Reporter writing to out.
func New(s *branch.Session, out io.Writer, opts Options) *Reporter {
	r := lipgloss.NewRenderer(out)
	switch opts.Color {
	case "never":
		r.SetColorProfile(termenv.Ascii)
	case "always":
		r.SetColorProfile(termenv.ANSI256)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Reporter{s: s, out: out, st: newStyles(r), cwd: opts.Cwd, now: now}
}

type styles struct {
	branch  lipgloss.Style
	base    lipgloss.Style
	remote  lipgloss.Style
	add     lipgloss.Style
	sub     lipgloss.Style
	dim     lipgloss.Style
	warn    lipgloss.Style
	moved   lipgloss.Style
	changed lipgloss.Style
	bold    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		branch:  r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		base:    r.NewStyle().Foreground(lipgloss.Color("3")).Faint(true),
		remote:  r.NewStyle().Foreground(lipgloss.Color("4")),
		add:     r.NewStyle().Foreground(lipgloss.Color("2")),
		sub:     r.NewStyle().Foreground(lipgloss.Color("1")),
		dim:     r.NewStyle().Faint(true),
		warn:    r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		moved:   r.NewStyle().Foreground(lipgloss.Color("3")).Faint(true),
		changed: r.NewStyle().Foreground(lipgloss.Color("3")),
		bold:    r.NewStyle().Bold(true),
	}
}

func (r *Reporter) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

// FormatDate renders a commit time relative to now: the time of day for
// today, date and time for yesterday, the date for anything older.
func FormatDate(t, now time.Time) string {
	t = t.In(now.Location())
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch {
	case t.Before(midnight.AddDate(0, 0, -1)):
		return t.Format("2006-01-02")
	case t.Before(midnight):
		return t.Format("2006-01-02 15:04:05")
	default:
		return t.Format("15:04:05")
	}
}

func (r *Reporter) date(c git.Commit) string {
	return FormatDate(c.When, r.now())
}

// stats renders [+local,-missing], or "" when both are zero.
func (r *Reporter) stats(local, missing int) string {
	switch {
	case local == 0 && missing == 0:
		return ""
	case local == 0:
		return fmt.Sprintf(" [%s]", r.st.sub.Render(fmt.Sprintf("-%d", missing)))
	case missing == 0:
		return fmt.Sprintf(" [%s]", r.st.add.Render(fmt.Sprintf("+%d", local)))
	default:
		return fmt.Sprintf(" [%s,%s]",
			r.st.add.Render(fmt.Sprintf("+%d", local)),
			r.st.sub.Render(fmt.Sprintf("-%d", missing)))
	}
}

// baseTag renders "->origin/main" for remote bases and "d:name" otherwise.
func (r *Reporter) baseTag(base string) (string, error) {
	remote, err := r.s.IsRemote(base)
	if err != nil {
		return "", err
	}
	if remote {
		return "->" + r.st.remote.Render(base), nil
	}
	return "d:" + r.st.base.Render(base), nil
}

// path renders a repository relative path, relative to the working
// directory when asked to.
func (r *Reporter) path(p string, relative bool) string {
	if !relative || r.cwd == "" {
		return p
	}
	rel, err := filepath.Rel(r.cwd, filepath.Join(r.s.Git.Root(), p))
	if err != nil {
		return p
	}
	return rel
}

// branchOrCurrent returns the named branch, or the checked out one.
func (r *Reporter) branchOrCurrent(l *branch.List, name string) (*branch.Branch, error) {
	if name == "" {
		cur := l.Current()
		if cur == nil {
			return nil, fmt.Errorf("HEAD is detached, use --branch")
		}
		return cur, nil
	}
	b := l.Find(name)
	if b == nil {
		return nil, fmt.Errorf("no such branch %s", name)
	}
	return b, nil
}
