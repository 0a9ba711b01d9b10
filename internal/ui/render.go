package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/henri123lemoine/gt/internal/branch"
	"github.com/henri123lemoine/gt/internal/git"
)

// State constants mirror app.State values.
const (
	StateBrowsing = iota
	StateFilter
	StateHelp
	StateConfirmDelete
	StateRename
	StateSelectDiffbase
	StateSelectFiles
	StateNewBranchName
)

// HelpBinding represents a keybinding for help display.
type HelpBinding struct {
	Keys string
	Desc string
}

// HelpSection represents a section of help bindings.
type HelpSection struct {
	Title    string
	Bindings []HelpBinding
}

// Notice is the one-line message shown under the branch list.
type Notice struct {
	Text string
	Warn bool
}

// FileChoice is one row of the file selector.
type FileChoice struct {
	Entry    git.DiffEntry
	Selected bool
}

// RenderParams contains all parameters needed for rendering.
type RenderParams struct {
	State  int
	Width  int
	Height int

	Current   string
	Branches  []branch.Summary
	NameWidth int
	Cursor    int
	Notice    Notice

	FilterInput string

	// Target is the branch an action applies to.
	Target string
	// TargetLocal is the number of commits lost by deleting Target.
	TargetLocal int

	NameInput string
	NameError string

	Candidates      []string
	CandidateCursor int
	RemoteMode      bool

	Files      []FileChoice
	FileCursor int

	HelpSections   []HelpSection
	ShowHelpFooter bool
}

// MinWidth is the absolute minimum terminal width we try to support.
const MinWidth = 30

// MinHeight is the absolute minimum terminal height we try to support.
const MinHeight = 8

// Render renders the full UI.
func Render(p RenderParams) string {
	if p.Width < MinWidth {
		p.Width = MinWidth
	}
	if p.Height < MinHeight {
		p.Height = MinHeight
	}

	switch p.State {
	case StateHelp:
		return renderHelp(p)
	case StateConfirmDelete:
		return renderConfirmDelete(p)
	case StateRename:
		return renderNameInput(p, "RENAME BRANCH", "Current: ")
	case StateNewBranchName:
		return renderNameInput(p, "NEW BRANCH", "From: ")
	case StateSelectDiffbase:
		return renderSelectDiffbase(p)
	case StateSelectFiles:
		return renderSelectFiles(p)
	default:
		return renderList(p)
	}
}

// BranchLine renders one branch of the list. Names are padded to width
// display cells so the columns after them line up.
func BranchLine(s branch.Summary, width int, selected bool) string {
	var b strings.Builder

	name := runewidth.FillRight(s.Name, width)
	switch {
	case selected:
		b.WriteString(SelectedStyle.Render(SymbolCursor + " " + name))
	case s.Current:
		b.WriteString(SymbolCurrent + " " + CurrentBranchStyle.Render(name))
	default:
		b.WriteString("  " + BranchStyle.Render(name))
	}

	if s.Local > 0 || s.Missing > 0 {
		b.WriteString(" " + counts(s.Local, s.Missing))
	}

	if s.Current && s.Uncommitted {
		b.WriteString(" -- " + ModifiedStyle.Render("MOD") + " --")
	}

	switch {
	case s.Remote != "" && s.RemoteGone:
		b.WriteString(" gone: " + DimStyle.Render(s.Remote))
	case s.Remote != "":
		b.WriteString(" -> " + RemoteStyle.Render(s.Remote))
	case s.SelfDiffbase:
		b.WriteString(" d: " + DimStyle.Render("<self>"))
	case s.DiffbaseMissing:
		b.WriteString(" d: " + WarnStyle.Render(s.Diffbase) + " (no such branch)")
	case !s.DiffbaseIsDefault:
		b.WriteString(" d: " + DiffbaseStyle.Render(s.Diffbase))
	}

	return strings.TrimRight(b.String(), " ")
}

func counts(local, missing int) string {
	switch {
	case local > 0 && missing > 0:
		return "[" + LocalStyle.Render(fmt.Sprintf("+%d", local)) + "," +
			MissingStyle.Render(fmt.Sprintf("-%d", missing)) + "]"
	case local > 0:
		return "[" + LocalStyle.Render(fmt.Sprintf("+%d", local)) + "]"
	default:
		return "[" + MissingStyle.Render(fmt.Sprintf("-%d", missing)) + "]"
	}
}

// window returns the slice [start, end) of n rows that keeps cursor visible
// within size rows.
func window(cursor, n, size int) (int, int) {
	if size < 1 {
		size = 1
	}
	if n <= size {
		return 0, n
	}
	start := 0
	if cursor >= size {
		start = cursor - size + 1
	}
	return start, start + size
}

func divider(width int) string {
	return DividerStyle.Render(strings.Repeat(SymbolDivider, width))
}

func renderList(p RenderParams) string {
	var b strings.Builder
	contentWidth := p.Width - 4

	title := "Manage branches"
	if p.Current != "" {
		title = fmt.Sprintf("Manage branches from '%s':", p.Current)
	}
	b.WriteString(TitleStyle.Render(title) + "\n")
	b.WriteString(divider(contentWidth) + "\n")

	if p.State == StateFilter {
		b.WriteString("Filter: " + p.FilterInput + "\n\n")
	}

	// Box padding, title, divider, notice and footer.
	reserved := 10
	if p.State == StateFilter {
		reserved += 2
	}
	start, end := window(p.Cursor, len(p.Branches), p.Height-reserved)

	if len(p.Branches) == 0 {
		b.WriteString(PathStyle.Render("  No matching branches") + "\n")
	}
	if start > 0 {
		b.WriteString(PathStyle.Render(fmt.Sprintf("  ↑ %d more above", start)) + "\n")
	}
	for i := start; i < end; i++ {
		b.WriteString(BranchLine(p.Branches[i], p.NameWidth, i == p.Cursor) + "\n")
	}
	if end < len(p.Branches) {
		b.WriteString(PathStyle.Render(fmt.Sprintf("  ↓ %d more below", len(p.Branches)-end)) + "\n")
	}

	if p.Notice.Text != "" {
		b.WriteString("\n")
		if p.Notice.Warn {
			b.WriteString(WarnStyle.Render(p.Notice.Text))
		} else {
			b.WriteString(p.Notice.Text)
		}
		b.WriteString("\n")
	}

	if p.ShowHelpFooter {
		b.WriteString("\n" + divider(contentWidth) + "\n")
		if p.State == StateFilter {
			b.WriteString(HelpStyle.Render("enter apply • esc clear"))
		} else {
			b.WriteString(HelpStyle.Render(compactHelp(
				"enter checkout • D delete • m rename • d diffbase • B remote • n new • / filter • ? help • q quit",
				"enter•D•m•d•B•n•/•?•q",
				p.Width,
			)))
		}
	}

	return wrapInBox(strings.TrimRight(b.String(), "\n"), p.Width, p.Height)
}

func renderConfirmDelete(p RenderParams) string {
	var b strings.Builder
	contentWidth := p.Width - 4

	b.WriteString(HeaderStyle.Render("DELETE BRANCH") + "\n")
	b.WriteString(divider(contentWidth) + "\n\n")

	b.WriteString(fmt.Sprintf("Do you really want to delete branch %s with %s commits?\n\n",
		BranchStyle.Render(p.Target), LocalStyle.Render(fmt.Sprintf("+%d", p.TargetLocal))))
	b.WriteString(SelectedStyle.Render("[y/n]"))

	b.WriteString("\n\n" + divider(contentWidth) + "\n")
	b.WriteString(HelpStyle.Render("y delete • n/esc cancel"))

	return wrapInBox(b.String(), p.Width, p.Height)
}

func renderNameInput(p RenderParams, header, label string) string {
	var b strings.Builder
	contentWidth := p.Width - 4

	b.WriteString(HeaderStyle.Render(header) + "\n")
	b.WriteString(divider(contentWidth) + "\n\n")

	b.WriteString(label + BranchStyle.Render(p.Target) + "\n\n")
	b.WriteString("New name:\n")
	b.WriteString(p.NameInput + "\n")
	if p.NameError != "" {
		b.WriteString("\n" + ErrorStyle.Render(p.NameError) + "\n")
	}

	b.WriteString("\n" + divider(contentWidth) + "\n")
	b.WriteString(HelpStyle.Render("enter confirm • tab complete • esc cancel"))

	return wrapInBox(b.String(), p.Width, p.Height)
}

func renderSelectDiffbase(p RenderParams) string {
	var b strings.Builder
	contentWidth := p.Width - 4

	header := "SET DIFFBASE"
	if p.RemoteMode {
		header = "SET REMOTE DIFFBASE"
	}
	b.WriteString(HeaderStyle.Render(header) + "\n")
	b.WriteString(divider(contentWidth) + "\n\n")
	b.WriteString("Diffbase for " + BranchStyle.Render(p.Target) + ":\n\n")

	start, end := window(p.CandidateCursor, len(p.Candidates), p.Height-12)
	if start > 0 {
		b.WriteString(PathStyle.Render(fmt.Sprintf("  ↑ %d more above", start)) + "\n")
	}
	for i := start; i < end; i++ {
		if i == p.CandidateCursor {
			b.WriteString(SelectedStyle.Render(SymbolCursor+" "+p.Candidates[i]) + "\n")
		} else {
			b.WriteString("  " + NormalStyle.Render(p.Candidates[i]) + "\n")
		}
	}
	if end < len(p.Candidates) {
		b.WriteString(PathStyle.Render(fmt.Sprintf("  ↓ %d more below", len(p.Candidates)-end)) + "\n")
	}

	b.WriteString("\n" + divider(contentWidth) + "\n")
	b.WriteString(HelpStyle.Render("enter select • c clear • esc cancel"))

	return wrapInBox(b.String(), p.Width, p.Height)
}

func renderSelectFiles(p RenderParams) string {
	var b strings.Builder
	contentWidth := p.Width - 4

	b.WriteString(HeaderStyle.Render("NEW BRANCH") + "\n")
	b.WriteString(divider(contentWidth) + "\n\n")
	b.WriteString("Files to move from " + BranchStyle.Render(p.Target) + ":\n\n")

	start, end := window(p.FileCursor, len(p.Files), p.Height-12)
	if start > 0 {
		b.WriteString(PathStyle.Render(fmt.Sprintf("  ↑ %d more above", start)) + "\n")
	}
	for i := start; i < end; i++ {
		b.WriteString(fileLine(p.Files[i], i == p.FileCursor) + "\n")
	}
	if end < len(p.Files) {
		b.WriteString(PathStyle.Render(fmt.Sprintf("  ↓ %d more below", len(p.Files)-end)) + "\n")
	}

	b.WriteString("\n" + divider(contentWidth) + "\n")
	b.WriteString(HelpStyle.Render(compactHelp(
		"space toggle • a all • n none • enter continue • esc cancel",
		"space•a•n•enter•esc",
		p.Width,
	)))

	return wrapInBox(b.String(), p.Width, p.Height)
}

func fileLine(f FileChoice, selected bool) string {
	box := SymbolUnchecked
	if f.Selected {
		box = SymbolChecked
	}
	path := f.Entry.Path()
	if f.Entry.Change == git.ChangeRename || f.Entry.Change == git.ChangeCopy {
		path = f.Entry.NewPath + " <- " + f.Entry.OldPath
	}
	line := fmt.Sprintf("%s %c %s", box, f.Entry.Change.Letter(), path)
	if selected {
		return SelectedStyle.Render(SymbolCursor + " " + line)
	}
	return "  " + line
}

func renderHelp(p RenderParams) string {
	var b strings.Builder
	contentWidth := p.Width - 4

	b.WriteString(HeaderStyle.Render("HELP") + "\n")
	b.WriteString(divider(contentWidth) + "\n\n")

	for i, section := range p.HelpSections {
		b.WriteString(TitleStyle.Render(section.Title) + "\n")
		for _, binding := range section.Bindings {
			b.WriteString(PathStyle.Render("  "+runewidth.FillRight(binding.Keys, 12)) + " " + binding.Desc + "\n")
		}
		if i < len(p.HelpSections)-1 {
			b.WriteString("\n")
		}
	}

	b.WriteString("\n" + divider(contentWidth) + "\n")
	b.WriteString(HelpStyle.Render("Press any key to close"))

	return wrapInBox(b.String(), p.Width, p.Height)
}

// wrapInBox wraps content in a box.
func wrapInBox(content string, width, height int) string {
	boxWidth := width - 2
	if boxWidth < MinWidth-2 {
		boxWidth = MinWidth - 2
	}
	return BoxStyle.Width(boxWidth).Render(content)
}

// compactHelp returns a shortened help string for small terminals.
func compactHelp(full, compact string, width int) string {
	if width >= 80 {
		return full
	}
	return compact
}
