package app

import (
	"errors"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/henri123lemoine/gt/internal/branch"
	"github.com/henri123lemoine/gt/internal/config"
	"github.com/henri123lemoine/gt/internal/git"
	"github.com/henri123lemoine/gt/internal/git/gittest"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

// forkRepo has master at C1..C4 and other forked at C1 with C2 and C3.
// other is checked out.
func forkRepo() *gittest.Repo {
	repo := gittest.New("other")
	repo.CommitOn("master", "C1", map[string]string{"a.txt": "a"})
	repo.Branch("other", "master")
	repo.CommitOn("other", "C2", map[string]string{"b.txt": "b"})
	repo.CommitOn("other", "C3", map[string]string{"c.txt": "c", "a.txt": ""})
	repo.CommitOn("master", "C4", map[string]string{"d.txt": "d"})
	return repo
}

func newModel(t *testing.T, cfg *config.Config, repo *gittest.Repo) Model {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	m, err := New(cfg, branch.NewSession(repo, nil))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.width, m.height = 120, 40
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press sends each key in turn and returns the last command.
func press(m Model, keys ...string) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m, cmd
}

// typeText types s one rune at a time.
func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = press(m, string(r))
	}
	return m
}

func selectedName(m Model) string {
	if b := m.selected(); b != nil {
		return b.Name
	}
	return ""
}

func TestNewModelFocusesCurrentBranch(t *testing.T) {
	m := newModel(t, nil, forkRepo())

	if m.state != StateBrowsing {
		t.Errorf("Expected initial state StateBrowsing, got %d", m.state)
	}
	if got := selectedName(m); got != "other" {
		t.Errorf("Expected cursor on other, got %q", got)
	}
	if len(m.summaries) != 2 || m.summaries[0].Name != "master" {
		t.Errorf("Expected master listed first, got %+v", m.summaries)
	}
}

func TestViewReportsMissingDiffbase(t *testing.T) {
	repo := forkRepo()
	repo.Config["branch.other.diffbase"] = "gone"
	m := newModel(t, nil, repo)

	if view := m.View(); !strings.Contains(view, "d: gone (no such branch)") {
		t.Errorf("Expected missing diffbase reported, got:\n%s", view)
	}
}

func TestCursorNavigation(t *testing.T) {
	repo := forkRepo()
	repo.Branch("merged", "master")
	m := newModel(t, nil, repo)

	m, _ = press(m, "g")
	if m.cursor != 0 {
		t.Errorf("Expected cursor 0 after home, got %d", m.cursor)
	}
	m, _ = press(m, "down", "j")
	if m.cursor != 2 {
		t.Errorf("Expected cursor 2 after two downs, got %d", m.cursor)
	}
	m, _ = press(m, "j")
	if m.cursor != 2 {
		t.Errorf("Expected cursor to stay at 2, got %d", m.cursor)
	}
	m, _ = press(m, "k", "G")
	if m.cursor != 2 {
		t.Errorf("Expected cursor 2 after end, got %d", m.cursor)
	}
}

func TestDefaultBranchIsProtected(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"D", "Not allowed to delete default branch."},
		{"m", "Not allowed to rename default branch."},
		{"d", "Not allowed to set diffbase on default branch."},
		{"B", "Not allowed to set diffbase on default branch."},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			repo := forkRepo()
			m := newModel(t, nil, repo)
			m, _ = press(m, "g", tt.key)

			if m.state != StateBrowsing {
				t.Errorf("Expected StateBrowsing, got %d", m.state)
			}
			if m.notice.Text != tt.want || !m.notice.Warn {
				t.Errorf("Expected warning %q, got %+v", tt.want, m.notice)
			}
			if repo.Mutated() {
				t.Errorf("Expected no mutation, got %v", repo.Calls)
			}
		})
	}
}

func TestCheckoutAlreadyCurrent(t *testing.T) {
	repo := forkRepo()
	m := newModel(t, nil, repo)

	m, _ = press(m, "enter")
	if m.notice.Text != "Already on branch other" || m.notice.Warn {
		t.Errorf("Unexpected notice %+v", m.notice)
	}
	if repo.Mutated() {
		t.Errorf("Expected no mutation, got %v", repo.Calls)
	}
}

func TestCheckoutRejectedWhenDirty(t *testing.T) {
	repo := forkRepo()
	repo.Unstaged = []git.DiffEntry{{OldPath: "a.txt", NewPath: "a.txt"}}
	m := newModel(t, nil, repo)

	m, _ = press(m, "g", "enter")
	if m.notice.Text != "Current branch other has uncommitted changes." {
		t.Errorf("Unexpected notice %+v", m.notice)
	}
	if repo.Mutated() {
		t.Errorf("Expected no mutation, got %v", repo.Calls)
	}
}

func TestCheckout(t *testing.T) {
	repo := forkRepo()
	m := newModel(t, nil, repo)

	m, cmd := press(m, "g", "enter")
	if cmd != nil {
		t.Error("Expected checkout to keep browsing")
	}
	if !reflect.DeepEqual(repo.Calls, []string{"Checkout master"}) {
		t.Errorf("Unexpected calls %v", repo.Calls)
	}
	if cur := m.list.Current(); cur == nil || cur.Name != "master" {
		t.Errorf("Expected master to be current after refresh")
	}
	if got := selectedName(m); got != "master" {
		t.Errorf("Expected cursor on master, got %q", got)
	}
	if m.notice.Text != "Checked out master" {
		t.Errorf("Unexpected notice %+v", m.notice)
	}
}

func TestCheckoutExitsWhenConfigured(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Branch.ExitAfterCheckout = true
	m := newModel(t, cfg, forkRepo())

	m, cmd := press(m, "g", "enter")
	if !m.ShouldQuit() || cmd == nil {
		t.Error("Expected the session to end after checkout")
	}
	if m.Err() != nil {
		t.Errorf("Unexpected error %v", m.Err())
	}
}

func TestDeleteNeedsConfirmationWithLocalCommits(t *testing.T) {
	repo := forkRepo()
	m := newModel(t, nil, repo)

	m, _ = press(m, "D")
	if m.state != StateConfirmDelete {
		t.Fatalf("Expected StateConfirmDelete, got %d", m.state)
	}
	if m.targetLocal != 2 {
		t.Errorf("Expected 2 local commits, got %d", m.targetLocal)
	}
	if !strings.Contains(m.View(), "Do you really want to delete branch other with +2 commits?") {
		t.Error("Expected the confirmation to name the commit count")
	}

	m, _ = press(m, "n")
	if m.state != StateBrowsing || m.notice.Text != "Delete canceled." {
		t.Errorf("Expected cancel, got state %d notice %+v", m.state, m.notice)
	}
	if repo.Mutated() {
		t.Errorf("Expected no mutation, got %v", repo.Calls)
	}

	m, _ = press(m, "D", "y")
	want := []string{"Checkout master", "DeleteBranch other"}
	if !reflect.DeepEqual(repo.Calls, want) {
		t.Errorf("Expected calls %v, got %v", want, repo.Calls)
	}
	if m.notice.Text != "Checking out default branch master! Deleted branch other!" {
		t.Errorf("Unexpected notice %+v", m.notice)
	}
	if names := m.list.Names(); !reflect.DeepEqual(names, []string{"master"}) {
		t.Errorf("Expected only master left, got %v", names)
	}
	if m.cursor != 0 {
		t.Errorf("Expected cursor clamped to 0, got %d", m.cursor)
	}
}

func TestDeleteWithoutLocalCommitsSkipsConfirmation(t *testing.T) {
	repo := forkRepo()
	repo.Branch("merged", "master")
	m := newModel(t, nil, repo)

	m, _ = press(m, "g", "j")
	if got := selectedName(m); got != "merged" {
		t.Fatalf("Expected cursor on merged, got %q", got)
	}
	m, _ = press(m, "D")
	if !reflect.DeepEqual(repo.Calls, []string{"DeleteBranch merged"}) {
		t.Errorf("Unexpected calls %v", repo.Calls)
	}
	if m.state != StateBrowsing || m.notice.Text != "Deleted branch merged!" {
		t.Errorf("Unexpected state %d notice %+v", m.state, m.notice)
	}
}

func TestRename(t *testing.T) {
	repo := forkRepo()
	m := newModel(t, nil, repo)

	m, _ = press(m, "m")
	if m.state != StateRename {
		t.Fatalf("Expected StateRename, got %d", m.state)
	}
	m = typeText(m, "feature")
	m, _ = press(m, "enter")

	if !reflect.DeepEqual(repo.Calls, []string{"RenameBranch other feature"}) {
		t.Errorf("Unexpected calls %v", repo.Calls)
	}
	if m.state != StateBrowsing {
		t.Errorf("Expected StateBrowsing, got %d", m.state)
	}
	if got := selectedName(m); got != "feature" {
		t.Errorf("Expected cursor on feature, got %q", got)
	}
}

func TestRenameDropsInvalidCharacters(t *testing.T) {
	m := newModel(t, nil, forkRepo())

	m, _ = press(m, "m")
	m = typeText(m, "a b!c")
	if got := m.nameInput.Value(); got != "abc" {
		t.Errorf("Expected %q, got %q", "abc", got)
	}
}

func TestRenameRejectsInvalidNameInline(t *testing.T) {
	tests := []struct {
		name string
		want error
	}{
		{"-bad", branch.ErrNameBadStart},
		{"bad/", branch.ErrNameBadEnd},
		{"a//b", branch.ErrNameDoubleSlash},
		{"master", branch.ErrNameAlreadyExists},
		{"origin/x", branch.ErrNameRemotePrefix},
		{"123", branch.ErrNameNoLetter},
		{"", branch.ErrNameEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := forkRepo()
			repo.RemoteBranch("origin/master", "master")
			m := newModel(t, nil, repo)

			m, _ = press(m, "m")
			m = typeText(m, tt.name)
			m, _ = press(m, "enter")

			if m.state != StateRename {
				t.Errorf("Expected to stay in StateRename, got %d", m.state)
			}
			if !strings.Contains(m.nameErr, tt.want.Error()) {
				t.Errorf("Expected error %q, got %q", tt.want, m.nameErr)
			}
			if repo.Mutated() {
				t.Errorf("Expected no mutation, got %v", repo.Calls)
			}

			m, _ = press(m, "esc")
			if m.state != StateBrowsing {
				t.Errorf("Expected esc to return to browsing, got %d", m.state)
			}
		})
	}
}

func TestRenameToSameNameIsInformational(t *testing.T) {
	repo := forkRepo()
	m := newModel(t, nil, repo)

	m, _ = press(m, "m")
	m = typeText(m, "other")
	m, _ = press(m, "enter")

	if m.state != StateBrowsing || m.notice.Text != "Same name as before: other" || m.notice.Warn {
		t.Errorf("Unexpected state %d notice %+v", m.state, m.notice)
	}
	if repo.Mutated() {
		t.Errorf("Expected no mutation, got %v", repo.Calls)
	}
}

func TestSetDiffbase(t *testing.T) {
	repo := forkRepo()
	repo.Branch("base", "master")
	m := newModel(t, nil, repo)

	m, _ = press(m, "d")
	if m.state != StateSelectDiffbase {
		t.Fatalf("Expected StateSelectDiffbase, got %d", m.state)
	}
	if !reflect.DeepEqual(m.candidates, []string{"master", "base"}) {
		t.Errorf("Unexpected candidates %v", m.candidates)
	}
	if m.candidateCursor != 0 {
		t.Errorf("Expected cursor on the current diffbase, got %d", m.candidateCursor)
	}

	m, _ = press(m, "j", "enter")
	if !reflect.DeepEqual(repo.Calls, []string{"ConfigSet branch.other.diffbase base"}) {
		t.Errorf("Unexpected calls %v", repo.Calls)
	}
	if m.notice.Text != "Diffbase of other set to base" {
		t.Errorf("Unexpected notice %+v", m.notice)
	}
	if got := selectedName(m); got != "other" {
		t.Errorf("Expected cursor to stay on other, got %q", got)
	}

	m, _ = press(m, "d", "c")
	if m.notice.Text != "Cleared diffbase of other" {
		t.Errorf("Unexpected notice %+v", m.notice)
	}
	if _, ok := repo.Config["branch.other.diffbase"]; ok {
		t.Error("Expected diffbase to be cleared")
	}

	calls := len(repo.Calls)
	m, _ = press(m, "d", "c")
	if m.notice.Text != "Same diffbase as before: master" {
		t.Errorf("Unexpected notice %+v", m.notice)
	}
	m, _ = press(m, "d", "enter")
	if m.notice.Text != "Same diffbase as before: master" {
		t.Errorf("Unexpected notice %+v", m.notice)
	}
	if len(repo.Calls) != calls {
		t.Errorf("Expected no further mutation, got %v", repo.Calls[calls:])
	}
}

func TestSetDiffbaseAbort(t *testing.T) {
	repo := forkRepo()
	m := newModel(t, nil, repo)

	for _, k := range []string{"q", "esc"} {
		m, _ = press(m, "d", k)
		if m.state != StateBrowsing {
			t.Errorf("Expected %s to abort, got state %d", k, m.state)
		}
	}
	if repo.Mutated() {
		t.Errorf("Expected no mutation, got %v", repo.Calls)
	}
}

func TestSetDiffbaseWithoutCandidates(t *testing.T) {
	repo := forkRepo()
	repo.Config["branch.master.diffbase"] = "other"
	m := newModel(t, nil, repo)

	m, _ = press(m, "d")
	if m.state != StateBrowsing || m.notice.Text != "No possible diffbase branches for other" {
		t.Errorf("Unexpected state %d notice %+v", m.state, m.notice)
	}
}

func TestSetRemoteDiffbase(t *testing.T) {
	repo := forkRepo()
	repo.RemoteBranch("origin/master", "master")
	m := newModel(t, nil, repo)

	m, _ = press(m, "B")
	if m.state != StateSelectDiffbase || !m.remoteMode {
		t.Fatalf("Expected remote diffbase selection, got state %d", m.state)
	}
	if !reflect.DeepEqual(m.candidates, []string{"origin/master"}) {
		t.Errorf("Unexpected candidates %v", m.candidates)
	}
	m, _ = press(m, "enter")
	if !reflect.DeepEqual(repo.Calls, []string{"ConfigSet branch.other.diffbase origin/master"}) {
		t.Errorf("Unexpected calls %v", repo.Calls)
	}
}

func TestNewBranchSplitsSelectedFiles(t *testing.T) {
	repo := forkRepo()
	m := newModel(t, nil, repo)

	m, _ = press(m, "n")
	if m.state != StateSelectFiles {
		t.Fatalf("Expected StateSelectFiles, got %d", m.state)
	}
	if len(m.files) != 3 {
		t.Fatalf("Expected 3 files, got %d", len(m.files))
	}
	for _, f := range m.files {
		if f.Selected {
			t.Errorf("Expected %s unselected by default", f.Entry.Path())
		}
	}

	m, _ = press(m, "a")
	for _, f := range m.files {
		if !f.Selected {
			t.Errorf("Expected %s selected after all", f.Entry.Path())
		}
	}
	m, _ = press(m, "n", " ", "j", "j", " ")
	var picked []string
	for _, f := range m.files {
		if f.Selected {
			picked = append(picked, f.Entry.Path())
		}
	}
	if !reflect.DeepEqual(picked, []string{"a.txt", "c.txt"}) {
		t.Errorf("Unexpected selection %v", picked)
	}

	m, _ = press(m, "enter")
	if m.state != StateNewBranchName {
		t.Fatalf("Expected StateNewBranchName, got %d", m.state)
	}
	m = typeText(m, "split")
	m, _ = press(m, "enter")

	want := []string{
		"CreateBranch split refs/heads/master",
		"RemoveFile a.txt",
		"WriteFile c.txt",
		"Stage a.txt c.txt",
	}
	if !reflect.DeepEqual(repo.Calls, want) {
		t.Errorf("Expected calls %v, got %v", want, repo.Calls)
	}
	if m.state != StateBrowsing || selectedName(m) != "split" {
		t.Errorf("Expected browsing on split, got state %d on %q", m.state, selectedName(m))
	}
}

func TestNewBranchFromDefault(t *testing.T) {
	repo := forkRepo()
	m := newModel(t, nil, repo)

	m, _ = press(m, "g", "n")
	if m.state != StateNewBranchName {
		t.Fatalf("Expected StateNewBranchName, got %d", m.state)
	}
	m = typeText(m, "topic")
	m, _ = press(m, "enter")
	if !reflect.DeepEqual(repo.Calls, []string{"CreateBranch topic refs/heads/master"}) {
		t.Errorf("Unexpected calls %v", repo.Calls)
	}
}

func TestNewBranchRejectedWhenDirty(t *testing.T) {
	repo := forkRepo()
	repo.Staged = []git.DiffEntry{{OldPath: "a.txt", NewPath: "a.txt"}}
	m := newModel(t, nil, repo)

	m, _ = press(m, "n")
	if m.state != StateBrowsing || m.notice.Text != "Uncommitted on current branch." {
		t.Errorf("Unexpected state %d notice %+v", m.state, m.notice)
	}
}

func TestNewBranchAbortFromFileSelector(t *testing.T) {
	repo := forkRepo()
	m := newModel(t, nil, repo)

	m, _ = press(m, "n", "q")
	if m.state != StateBrowsing {
		t.Errorf("Expected StateBrowsing, got %d", m.state)
	}
	if repo.Mutated() {
		t.Errorf("Expected no mutation, got %v", repo.Calls)
	}
}

func TestMutationFailureEndsSession(t *testing.T) {
	repo := forkRepo()
	repo.Fail["Checkout"] = errors.New("boom")
	m := newModel(t, nil, repo)

	m, cmd := press(m, "g", "enter")
	if !m.ShouldQuit() || cmd == nil {
		t.Error("Expected the session to end")
	}
	if m.Err() == nil || !strings.Contains(m.Err().Error(), "boom") {
		t.Errorf("Expected checkout error, got %v", m.Err())
	}
	if m.View() != "" {
		t.Error("Expected an empty view after quitting")
	}
}

func TestFuzzyFilter(t *testing.T) {
	repo := forkRepo()
	repo.Branch("feature/login", "master")
	m := newModel(t, nil, repo)

	m, _ = press(m, "/")
	if m.state != StateFilter {
		t.Fatalf("Expected StateFilter, got %d", m.state)
	}
	m = typeText(m, "login")
	if len(m.visible) != 1 || selectedName(m) != "feature/login" {
		t.Errorf("Expected only feature/login, got %v", m.visible)
	}

	m, _ = press(m, "esc")
	if m.state != StateBrowsing || len(m.visible) != 3 {
		t.Errorf("Expected filter cleared, got state %d with %d visible", m.state, len(m.visible))
	}
}

func TestHelp(t *testing.T) {
	m := newModel(t, nil, forkRepo())

	m, _ = press(m, "?")
	if m.state != StateHelp {
		t.Fatalf("Expected StateHelp, got %d", m.state)
	}
	if !strings.Contains(m.View(), "set remote diffbase") {
		t.Error("Expected help to list the bindings")
	}
	m, _ = press(m, "x")
	if m.state != StateBrowsing {
		t.Errorf("Expected any key to close help, got %d", m.state)
	}
}

func TestQuit(t *testing.T) {
	m := newModel(t, nil, forkRepo())
	m, cmd := press(m, "q")
	if !m.ShouldQuit() || cmd == nil {
		t.Error("Expected q to quit")
	}

	m = newModel(t, nil, forkRepo())
	m, _ = press(m, "m")
	m, _ = press(m, "ctrl+c")
	if !m.ShouldQuit() {
		t.Error("Expected ctrl+c to quit from the name input")
	}
	if m.Err() != nil {
		t.Errorf("Unexpected error %v", m.Err())
	}
}

func TestWindowSizeMessage(t *testing.T) {
	m := newModel(t, nil, forkRepo())

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	if m.width != 120 || m.height != 40 {
		t.Errorf("Expected 120x40, got %dx%d", m.width, m.height)
	}
	if !strings.Contains(m.View(), "Manage branches from 'other':") {
		t.Error("Expected the list title to name the current branch")
	}
}

func TestKeyMapFromConfig(t *testing.T) {
	keysConfig := &config.KeysConfig{
		Up:       "up,k,w",
		Checkout: "enter, c",
		Quit:     "q,ctrl+c,esc",
	}

	km := KeyMapFromConfig(keysConfig)

	if !key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'w'}}, km.Up) {
		t.Error("Expected 'w' to match Up binding")
	}
	if !key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}}, km.Checkout) {
		t.Error("Expected 'c' to match Checkout binding")
	}
	if !key.Matches(tea.KeyMsg{Type: tea.KeyEsc}, km.Quit) {
		t.Error("Expected esc to match Quit binding")
	}
	if !key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'D'}}, km.Delete) {
		t.Error("Expected unset Delete to keep its default")
	}
	if km.Checkout.Help().Desc != "checkout" {
		t.Errorf("Expected help text to survive override, got %q", km.Checkout.Help().Desc)
	}
}

func TestActionTable(t *testing.T) {
	km := DefaultKeyMap()
	tests := map[string]Action{
		"enter": ActionCheckout,
		"D":     ActionDelete,
		"m":     ActionRename,
		"d":     ActionSetDiffbase,
		"B":     ActionSetDiffbaseRemote,
		"n":     ActionNewBranch,
		"/":     ActionFilter,
		"?":     ActionHelp,
		"q":     ActionQuit,
		"x":     ActionNone,
	}
	for k, want := range tests {
		entry, ok := lookupAction(km, keyMsg(k))
		if want == ActionNone {
			if ok {
				t.Errorf("Expected %q to be unbound, got %s", k, entry.action)
			}
			continue
		}
		if !ok || entry.action != want {
			t.Errorf("Expected %q to map to %s, got %s", k, want, entry.action)
		}
	}
}

func TestParseKeys(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a, b ,,c", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		if got := parseKeys(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseKeys(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
