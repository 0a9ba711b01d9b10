package app

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/henri123lemoine/gt/internal/branch"
	"github.com/henri123lemoine/gt/internal/config"
	"github.com/henri123lemoine/gt/internal/debug"
	"github.com/henri123lemoine/gt/internal/git"
	"github.com/henri123lemoine/gt/internal/ui"
)

// State represents the current UI state.
type State int

const (
	StateBrowsing State = iota
	StateFilter
	StateHelp
	StateConfirmDelete
	StateRename
	StateSelectDiffbase
	StateSelectFiles
	StateNewBranchName
)

// Model is the branch browser.
//
// Every repository call runs inside Update. The session is single
// threaded and the list is rebuilt after each mutation.
type Model struct {
	// Configuration
	config  *config.Config
	session *branch.Session

	// Data
	list      *branch.List
	summaries []branch.Summary
	visible   []int // indexes into list.Branches after filtering
	cursor    int

	// State
	state  State
	notice ui.Notice
	err    error

	// Filter
	filterInput textinput.Model

	// Rename and new branch name
	nameInput textinput.Model
	nameErr   string

	// Branch the current action applies to
	target      *branch.Branch
	targetLocal int

	// Diffbase selector
	candidates      []string
	candidateCursor int
	remoteMode      bool

	// File selector
	files      []ui.FileChoice
	fileCursor int

	// UI
	width  int
	height int
	keys   KeyMap

	shouldQuit bool
}

// New creates a Model and loads the branch list.
func New(cfg *config.Config, session *branch.Session) (Model, error) {
	filterInput := textinput.New()
	filterInput.Placeholder = "filter..."
	filterInput.CharLimit = 50

	nameInput := textinput.New()
	nameInput.Placeholder = "branch-name"
	nameInput.CharLimit = 100
	nameInput.ShowSuggestions = true

	m := Model{
		config:      cfg,
		session:     session,
		keys:        KeyMapFromConfig(&cfg.Keys),
		filterInput: filterInput,
		nameInput:   nameInput,
		state:       StateBrowsing,
	}
	if err := m.reload(""); err != nil {
		return m, err
	}
	if cur := m.list.Current(); cur != nil {
		m.focus(cur.Name)
	}
	return m, nil
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Interrupt quits from any state.
		if msg.Type == tea.KeyCtrlC {
			return m.quit(nil)
		}
		return m.handleKeyPress(msg)
	}
	return m, nil
}

// handleKeyPress handles key presses based on current state.
func (m Model) handleKeyPress(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.state {
	case StateBrowsing:
		return m.handleBrowsingKeys(msg)
	case StateFilter:
		return m.handleFilterKeys(msg)
	case StateHelp:
		m.state = StateBrowsing
		return m, nil
	case StateConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	case StateRename, StateNewBranchName:
		return m.handleNameKeys(msg)
	case StateSelectDiffbase:
		return m.handleSelectDiffbaseKeys(msg)
	case StateSelectFiles:
		return m.handleSelectFilesKeys(msg)
	}
	return m, nil
}

// moveCursor applies the navigation bindings to cursor over n rows.
func (m Model) moveCursor(msg tea.KeyMsg, cursor, n int) (int, bool) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if cursor > 0 {
			cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if cursor < n-1 {
			cursor++
		}
	case key.Matches(msg, m.keys.Home):
		cursor = 0
	case key.Matches(msg, m.keys.End):
		cursor = max(n-1, 0)
	default:
		return cursor, false
	}
	return cursor, true
}

// handleBrowsingKeys moves the cursor or dispatches an action.
func (m Model) handleBrowsingKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	if cursor, ok := m.moveCursor(msg, m.cursor, len(m.visible)); ok {
		m.cursor = cursor
		return m, nil
	}
	if entry, ok := lookupAction(m.keys, msg); ok {
		return m.dispatch(entry)
	}
	return m, nil
}

// dispatch evaluates the guard of an action and runs its handler.
func (m Model) dispatch(entry actionEntry) (Model, tea.Cmd) {
	m.notice = ui.Notice{}
	b := m.selected()
	if entry.needsBranch && b == nil {
		return m, nil
	}
	if b != nil {
		debug.Log("action %s on %s", entry.action, b.Name)
	}
	if entry.guard != nil {
		if err := entry.guard(m.list, b); err != nil {
			return m.reject(entry.action, b, err)
		}
	}
	return entry.handle(m, b)
}

// reject reports a guard rejection and returns to browsing. Errors that
// are not rejections end the session.
func (m Model) reject(action Action, b *branch.Branch, err error) (Model, tea.Cmd) {
	debug.Log("%s rejected: %v", action, err)
	switch {
	case errors.Is(err, branch.ErrDefaultBranch):
		m.warn("Not allowed to %s default branch.", action.verb())
	case errors.Is(err, branch.ErrAlreadyCurrent):
		m.info("Already on branch %s", b.Name)
	case errors.Is(err, branch.ErrUncommitted):
		if action == ActionNewBranch {
			m.warn("Uncommitted on current branch.")
		} else if cur := m.list.Current(); cur != nil {
			m.warn("Current branch %s has uncommitted changes.", cur.Name)
		} else {
			m.warn("Working tree has uncommitted changes.")
		}
	case errors.Is(err, branch.ErrNoCandidates):
		m.info("No possible diffbase branches for %s", b.Name)
	case errors.Is(err, branch.ErrSameDiffbase):
		base, _ := b.Diffbase()
		m.info("Same diffbase as before: %s", base)
	case errors.Is(err, branch.ErrSameName):
		m.info("Same name as before: %s", b.Name)
	case errors.Is(err, branch.ErrSelfDiffbase):
		m.warn("Branch %s cannot be its own diffbase.", b.Name)
	case errors.Is(err, branch.ErrDiffbaseMissing):
		base, _ := b.Diffbase()
		m.warn("Diffbase %s of %s does not exist.", base, b.Name)
	default:
		return m.fail(err)
	}
	m.state = StateBrowsing
	return m, nil
}

// fail ends the session with err.
func (m Model) fail(err error) (Model, tea.Cmd) {
	debug.Log("fatal: %v", err)
	m.err = err
	m.shouldQuit = true
	return m, tea.Quit
}

func (m *Model) info(format string, args ...any) {
	m.notice = ui.Notice{Text: fmt.Sprintf(format, args...)}
}

func (m *Model) warn(format string, args ...any) {
	m.notice = ui.Notice{Text: fmt.Sprintf(format, args...), Warn: true}
}

// Actions

func (m Model) checkout(b *branch.Branch) (Model, tea.Cmd) {
	if err := m.list.Checkout(b); err != nil {
		return m.fail(err)
	}
	if m.config.Branch.ExitAfterCheckout {
		m.shouldQuit = true
		return m, tea.Quit
	}
	if err := m.reload(b.Name); err != nil {
		return m.fail(err)
	}
	m.info("Checked out %s", b.Name)
	return m, nil
}

func (m Model) startDelete(b *branch.Branch) (Model, tea.Cmd) {
	local, err := m.list.CanDelete(b)
	if err != nil {
		return m.reject(ActionDelete, b, err)
	}
	if local == 0 {
		return m.deleteBranch(b)
	}
	m.target = b
	m.targetLocal = local
	m.state = StateConfirmDelete
	return m, nil
}

func (m Model) deleteBranch(b *branch.Branch) (Model, tea.Cmd) {
	var notes []string
	if b.IsCurrent() {
		def, err := m.session.DefaultBranch()
		if err != nil {
			return m.fail(err)
		}
		notes = append(notes, fmt.Sprintf("Checking out default branch %s!", def))
	}
	if err := m.list.Delete(b); err != nil {
		return m.fail(err)
	}
	notes = append(notes, fmt.Sprintf("Deleted branch %s!", b.Name))

	pos := m.cursor
	if err := m.reload(""); err != nil {
		return m.fail(err)
	}
	m.cursor = min(pos, max(len(m.visible)-1, 0))
	m.state = StateBrowsing
	m.info("%s", strings.Join(notes, " "))
	return m, nil
}

func (m Model) handleConfirmDeleteKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		return m.deleteBranch(m.target)
	case "n", "N", "q", "esc":
		m.state = StateBrowsing
		m.info("Delete canceled.")
	}
	return m, nil
}

func (m Model) startRename(b *branch.Branch) (Model, tea.Cmd) {
	m.target = b
	m.state = StateRename
	return m.focusNameInput()
}

func (m Model) focusNameInput() (Model, tea.Cmd) {
	m.nameErr = ""
	m.nameInput.Reset()
	m.nameInput.SetSuggestions(branch.CompletionPrefixes(m.list.Names()))
	cmd := m.nameInput.Focus()
	return m, cmd
}

func (m Model) handleNameKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.nameInput.Blur()
		m.state = StateBrowsing
		return m, nil
	case tea.KeyEnter:
		name := strings.TrimSpace(m.nameInput.Value())
		if m.state == StateRename {
			return m.renameBranch(name)
		}
		return m.createBranch(name)
	case tea.KeySpace:
		return m, nil
	case tea.KeyRunes:
		msg.Runes = validRunes(msg.Runes)
		if len(msg.Runes) == 0 {
			return m, nil
		}
	}

	m.nameErr = ""
	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

// validRunes drops runes a branch name may not contain.
func validRunes(runes []rune) []rune {
	out := runes[:0:0]
	for _, r := range runes {
		if branch.ValidNameChar(r) {
			out = append(out, r)
		}
	}
	return out
}

// nameRejected reports whether err is a name validation failure, which
// keeps the name input open.
func nameRejected(err error) bool {
	for _, target := range []error{
		branch.ErrNameEmpty,
		branch.ErrNameInvalidChar,
		branch.ErrNameNoLetter,
		branch.ErrNameBadStart,
		branch.ErrNameBadEnd,
		branch.ErrNameDoubleSlash,
		branch.ErrNameRemotePrefix,
		branch.ErrNameAlreadyExists,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (m Model) renameBranch(name string) (Model, tea.Cmd) {
	err := m.list.Rename(m.target, name)
	switch {
	case err == nil:
	case nameRejected(err):
		m.nameErr = err.Error()
		return m, nil
	default:
		m.nameInput.Blur()
		return m.reject(ActionRename, m.target, err)
	}

	m.nameInput.Blur()
	if err := m.reload(name); err != nil {
		return m.fail(err)
	}
	m.state = StateBrowsing
	m.info("Renamed %s to %s", m.target.Name, name)
	return m, nil
}

func (m Model) startDiffbase(b *branch.Branch) (Model, tea.Cmd) {
	candidates, err := m.list.DiffbaseCandidates(b)
	if err != nil {
		return m.reject(ActionSetDiffbase, b, err)
	}
	return m.selectDiffbase(b, candidates, false)
}

func (m Model) startRemoteDiffbase(b *branch.Branch) (Model, tea.Cmd) {
	candidates, err := m.list.RemoteCandidates(b)
	if err != nil {
		return m.reject(ActionSetDiffbaseRemote, b, err)
	}
	return m.selectDiffbase(b, candidates, true)
}

func (m Model) selectDiffbase(b *branch.Branch, candidates []string, remote bool) (Model, tea.Cmd) {
	m.target = b
	m.candidates = candidates
	m.remoteMode = remote
	m.candidateCursor = 0
	if base, err := b.Diffbase(); err == nil {
		for i, c := range candidates {
			if c == base {
				m.candidateCursor = i
			}
		}
	}
	m.state = StateSelectDiffbase
	return m, nil
}

func (m Model) handleSelectDiffbaseKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	if cursor, ok := m.moveCursor(msg, m.candidateCursor, len(m.candidates)); ok {
		m.candidateCursor = cursor
		return m, nil
	}

	switch msg.String() {
	case "enter":
		if len(m.candidates) == 0 {
			return m, nil
		}
		return m.applyDiffbase(m.candidates[m.candidateCursor])
	case "c":
		return m.applyDiffbase("")
	case "q", "esc":
		m.state = StateBrowsing
	}
	return m, nil
}

// applyDiffbase stores base as the diffbase of the target, or clears the
// configured diffbase when base is empty.
func (m Model) applyDiffbase(base string) (Model, tea.Cmd) {
	b := m.target
	action := ActionSetDiffbase
	if m.remoteMode {
		action = ActionSetDiffbaseRemote
	}

	var err error
	if base == "" {
		err = m.list.ClearDiffbase(b)
	} else {
		err = m.list.SetDiffbase(b, base)
	}
	if err != nil {
		return m.reject(action, b, err)
	}

	if err := m.reload(b.Name); err != nil {
		return m.fail(err)
	}
	m.state = StateBrowsing
	if base == "" {
		m.info("Cleared diffbase of %s", b.Name)
	} else {
		m.info("Diffbase of %s set to %s", b.Name, base)
	}
	return m, nil
}

func (m Model) startNewBranch(source *branch.Branch) (Model, tea.Cmd) {
	if _, err := m.list.StartPoint(source); err != nil {
		return m.reject(ActionNewBranch, source, err)
	}
	files, err := m.list.SplitFiles(source)
	if err != nil {
		return m.fail(err)
	}

	m.target = source
	m.files = make([]ui.FileChoice, len(files))
	for i, f := range files {
		m.files[i] = ui.FileChoice{Entry: f}
	}
	m.fileCursor = 0
	if len(m.files) > 0 {
		m.state = StateSelectFiles
		return m, nil
	}
	m.state = StateNewBranchName
	return m.focusNameInput()
}

func (m Model) handleSelectFilesKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	if cursor, ok := m.moveCursor(msg, m.fileCursor, len(m.files)); ok {
		m.fileCursor = cursor
		return m, nil
	}

	switch msg.String() {
	case " ":
		m.files = slices.Clone(m.files)
		m.files[m.fileCursor].Selected = !m.files[m.fileCursor].Selected
	case "a":
		m.selectAllFiles(true)
	case "n":
		m.selectAllFiles(false)
	case "enter":
		m.state = StateNewBranchName
		return m.focusNameInput()
	case "q", "esc":
		m.state = StateBrowsing
	}
	return m, nil
}

func (m *Model) selectAllFiles(selected bool) {
	m.files = slices.Clone(m.files)
	for i := range m.files {
		m.files[i].Selected = selected
	}
}

func (m Model) createBranch(name string) (Model, tea.Cmd) {
	var selected []git.DiffEntry
	for _, f := range m.files {
		if f.Selected {
			selected = append(selected, f.Entry)
		}
	}

	err := m.list.CreateBranch(m.target, name, selected)
	switch {
	case err == nil:
	case nameRejected(err):
		m.nameErr = err.Error()
		return m, nil
	default:
		return m.fail(err)
	}

	m.nameInput.Blur()
	if err := m.reload(name); err != nil {
		return m.fail(err)
	}
	m.state = StateBrowsing
	if len(selected) > 0 {
		m.info("Created branch %s with %d file(s) from %s", name, len(selected), m.target.Name)
	} else {
		m.info("Created branch %s", name)
	}
	return m, nil
}

func (m Model) startFilter(*branch.Branch) (Model, tea.Cmd) {
	m.state = StateFilter
	cmd := m.filterInput.Focus()
	return m, cmd
}

func (m Model) handleFilterKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.state = StateBrowsing
		m.filterInput.Reset()
		m.filterInput.Blur()
		m.applyFilter()
		return m, nil
	case tea.KeyEnter:
		m.state = StateBrowsing
		m.filterInput.Blur()
		return m, nil
	case tea.KeyUp:
		m.cursor = max(m.cursor-1, 0)
		return m, nil
	case tea.KeyDown:
		m.cursor = min(m.cursor+1, max(len(m.visible)-1, 0))
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.applyFilter()
	return m, cmd
}

// branchSource implements fuzzy.Source over branch names.
type branchSource []*branch.Branch

func (s branchSource) String(i int) string {
	return s[i].Name
}

func (s branchSource) Len() int {
	return len(s)
}

// applyFilter filters branches based on current filter input using fuzzy matching.
func (m *Model) applyFilter() {
	filter := m.filterInput.Value()
	visible := make([]int, 0, len(m.list.Branches))
	if filter == "" {
		for i := range m.list.Branches {
			visible = append(visible, i)
		}
	} else {
		for _, match := range fuzzy.FindFrom(filter, branchSource(m.list.Branches)) {
			visible = append(visible, match.Index)
		}
	}
	m.visible = visible

	// Ensure cursor is in bounds
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) showHelp(*branch.Branch) (Model, tea.Cmd) {
	m.state = StateHelp
	return m, nil
}

func (m Model) quit(*branch.Branch) (Model, tea.Cmd) {
	m.shouldQuit = true
	return m, tea.Quit
}

// reload rebuilds the branch list and moves the cursor to focus when it is
// listed.
func (m *Model) reload(focus string) error {
	done := debug.Timed("reload branches")
	defer done()

	l, err := m.session.List()
	if err != nil {
		return err
	}
	summaries, err := l.Summaries()
	if err != nil {
		return err
	}
	m.list = l
	m.summaries = summaries
	m.applyFilter()
	if focus != "" {
		m.focus(focus)
	}
	return nil
}

func (m *Model) focus(name string) {
	for i, idx := range m.visible {
		if m.list.Branches[idx].Name == name {
			m.cursor = i
			return
		}
	}
}

func (m Model) selected() *branch.Branch {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return nil
	}
	return m.list.Branches[m.visible[m.cursor]]
}

// View renders the UI.
func (m Model) View() string {
	if m.shouldQuit {
		return ""
	}

	branches := make([]branch.Summary, len(m.visible))
	for i, idx := range m.visible {
		branches[i] = m.summaries[idx]
	}
	current := ""
	if cur := m.list.Current(); cur != nil {
		current = cur.Name
	}
	target := ""
	if m.target != nil {
		target = m.target.Name
	}

	return ui.Render(ui.RenderParams{
		State:           int(m.state),
		Width:           m.width,
		Height:          m.height,
		Current:         current,
		Branches:        branches,
		NameWidth:       m.list.Width,
		Cursor:          m.cursor,
		Notice:          m.notice,
		FilterInput:     m.filterInput.View(),
		Target:          target,
		TargetLocal:     m.targetLocal,
		NameInput:       m.nameInput.View(),
		NameError:       m.nameErr,
		Candidates:      m.candidates,
		CandidateCursor: m.candidateCursor,
		RemoteMode:      m.remoteMode,
		Files:           m.files,
		FileCursor:      m.fileCursor,
		HelpSections:    m.keys.HelpSections(),
		ShowHelpFooter:  m.config.UI.ShowHelpFooter,
	})
}

// ShouldQuit returns true if the app should quit.
func (m Model) ShouldQuit() bool {
	return m.shouldQuit
}

// Err returns the error that ended the session, if any.
func (m Model) Err() error {
	return m.err
}
