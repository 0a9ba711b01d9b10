package ui

import (
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"

	"github.com/henri123lemoine/gt/internal/branch"
	"github.com/henri123lemoine/gt/internal/git"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func TestBranchLine(t *testing.T) {
	tests := []struct {
		name     string
		summary  branch.Summary
		width    int
		selected bool
		want     string
	}{
		{
			name: "current with changes",
			summary: branch.Summary{
				Name: "feature", Current: true, Uncommitted: true,
				Local: 2, Missing: 1, Diffbase: "master", DiffbaseIsDefault: true,
			},
			width: 10,
			want:  "* feature    [+2,-1] -- MOD --",
		},
		{
			name: "uncommitted only shown on current",
			summary: branch.Summary{
				Name: "feature", Uncommitted: true, Local: 1,
				Diffbase: "master", DiffbaseIsDefault: true,
			},
			width: 7,
			want:  "  feature [+1]",
		},
		{
			name: "diffbase deleted",
			summary: branch.Summary{
				Name: "feat", Diffbase: "gone-base", DiffbaseMissing: true,
			},
			width: 6,
			want:  "  feat   d: gone-base (no such branch)",
		},
		{
			name: "remote wins over deleted diffbase",
			summary: branch.Summary{
				Name: "feat", Diffbase: "gone-base", DiffbaseMissing: true, Remote: "origin/feat",
			},
			width: 4,
			want:  "  feat -> origin/feat",
		},
		{
			name:    "missing only",
			summary: branch.Summary{Name: "old", Missing: 3, Diffbase: "master", DiffbaseIsDefault: true},
			width:   3,
			want:    "  old [-3]",
		},
		{
			name: "remote",
			summary: branch.Summary{
				Name: "master", Default: true, Diffbase: "origin/master", Remote: "origin/master",
			},
			width: 6,
			want:  "  master -> origin/master",
		},
		{
			name: "remote wins over diffbase",
			summary: branch.Summary{
				Name: "topic", Diffbase: "feature", Remote: "origin/topic",
			},
			width: 5,
			want:  "  topic -> origin/topic",
		},
		{
			name:    "remote gone",
			summary: branch.Summary{Name: "topic", Diffbase: "master", DiffbaseIsDefault: true, Remote: "origin/topic", RemoteGone: true},
			width:   5,
			want:    "  topic gone: origin/topic",
		},
		{
			name:    "self diffbase",
			summary: branch.Summary{Name: "topic", Diffbase: "topic", SelfDiffbase: true},
			width:   5,
			want:    "  topic d: <self>",
		},
		{
			name:    "custom diffbase",
			summary: branch.Summary{Name: "topic", Local: 1, Diffbase: "feature"},
			width:   8,
			want:    "  topic    [+1] d: feature",
		},
		{
			name:    "padding trimmed when nothing follows",
			summary: branch.Summary{Name: "topic", Diffbase: "master", DiffbaseIsDefault: true},
			width:   12,
			want:    "  topic",
		},
		{
			name:     "selected",
			summary:  branch.Summary{Name: "topic", Diffbase: "master", DiffbaseIsDefault: true, Local: 1},
			width:    5,
			selected: true,
			want:     "› topic [+1]",
		},
		{
			name:    "wide runes",
			summary: branch.Summary{Name: "日本", Local: 1, Diffbase: "master", DiffbaseIsDefault: true},
			width:   6,
			want:    "  日本   [+1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BranchLine(tt.summary, tt.width, tt.selected))
		})
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		cursor, n, size int
		start, end      int
	}{
		{0, 3, 10, 0, 3},
		{0, 20, 5, 0, 5},
		{4, 20, 5, 0, 5},
		{5, 20, 5, 1, 6},
		{19, 20, 5, 15, 20},
		{2, 20, 0, 2, 3},
	}
	for _, tt := range tests {
		start, end := window(tt.cursor, tt.n, tt.size)
		assert.Equal(t, tt.start, start, "start for %+v", tt)
		assert.Equal(t, tt.end, end, "end for %+v", tt)
	}
}

func TestRenderList(t *testing.T) {
	out := Render(RenderParams{
		State:   StateBrowsing,
		Width:   100,
		Height:  30,
		Current: "feature",
		Branches: []branch.Summary{
			{Name: "master", Default: true, Diffbase: "master", SelfDiffbase: true},
			{Name: "feature", Current: true, Local: 1, Diffbase: "master", DiffbaseIsDefault: true},
		},
		NameWidth:      7,
		Cursor:         1,
		Notice:         Notice{Text: "Deleted branch old!"},
		ShowHelpFooter: true,
	})

	assert.Contains(t, out, "Manage branches from 'feature':")
	assert.Contains(t, out, "› feature [+1]")
	assert.Contains(t, out, "Deleted branch old!")
	assert.Contains(t, out, "enter checkout")
}

func TestRenderListWithoutFooter(t *testing.T) {
	out := Render(RenderParams{
		State:    StateBrowsing,
		Width:    100,
		Height:   30,
		Branches: []branch.Summary{{Name: "master", Default: true}},
	})
	assert.NotContains(t, out, "enter checkout")
}

func TestRenderListScrolls(t *testing.T) {
	var branches []branch.Summary
	for _, name := range strings.Split("a b c d e f g h i j k l m n o p", " ") {
		branches = append(branches, branch.Summary{Name: name, DiffbaseIsDefault: true})
	}
	out := Render(RenderParams{
		State:     StateBrowsing,
		Width:     60,
		Height:    MinHeight,
		Branches:  branches,
		NameWidth: 1,
		Cursor:    10,
	})
	assert.Contains(t, out, "more above")
	assert.Contains(t, out, "more below")
	assert.Contains(t, out, "› k")
}

func TestRenderConfirmDelete(t *testing.T) {
	out := Render(RenderParams{State: StateConfirmDelete, Width: 80, Height: 20, Target: "topic", TargetLocal: 2})
	assert.Contains(t, out, "DELETE BRANCH")
	assert.Contains(t, out, "Do you really want to delete branch topic with +2 commits?")
}

func TestRenderSelectFiles(t *testing.T) {
	out := Render(RenderParams{
		State:  StateSelectFiles,
		Width:  80,
		Height: 20,
		Target: "feature",
		Files: []FileChoice{
			{Entry: git.DiffEntry{NewPath: "a.txt", Change: git.ChangeModify}, Selected: true},
			{Entry: git.DiffEntry{OldPath: "old.txt", NewPath: "new.txt", Change: git.ChangeRename}},
		},
		FileCursor: 1,
	})
	assert.Contains(t, out, "[x] M a.txt")
	assert.Contains(t, out, "› [ ] R new.txt <- old.txt")
}

func TestRenderSelectDiffbase(t *testing.T) {
	out := Render(RenderParams{
		State:           StateSelectDiffbase,
		Width:           80,
		Height:          20,
		Target:          "topic",
		Candidates:      []string{"feature", "master"},
		CandidateCursor: 1,
		RemoteMode:      true,
	})
	assert.Contains(t, out, "SET REMOTE DIFFBASE")
	assert.Contains(t, out, "› master")
}
