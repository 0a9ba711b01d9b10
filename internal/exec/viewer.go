// Package exec handles executing external commands.
package exec

import (
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/henri123lemoine/gt/internal/debug"
)

// Pair is one old/new file pair handed to the diff viewer. A missing side is
// an empty file.
type Pair struct {
	Old string
	New string
}

// RunViewer executes the viewer command over pairs, attached to the terminal.
func RunViewer(command, root string, pairs []Pair) error {
	expanded := expandTemplate(command, root, pairs)
	debug.Log("viewer: %s", expanded)

	// Execute via shell
	cmd := exec.Command("sh", "-c", expanded)
	cmd.Dir = root
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	return cmd.Run()
}

// expandTemplate expands template variables in the command.
// Values are shell-quoted.
func expandTemplate(command, root string, pairs []Pair) string {
	files := make([]string, 0, 2*len(pairs))
	for _, p := range pairs {
		files = append(files, shellQuote(p.Old), shellQuote(p.New))
	}

	result := command

	// {files} - old/new paths, pairwise
	result = strings.ReplaceAll(result, "{files}", strings.Join(files, " "))

	// {root} - repository root
	result = strings.ReplaceAll(result, "{root}", shellQuote(root))

	return result
}

var safeShellWord = regexp.MustCompile(`^[A-Za-z0-9_./:@%+=,-]+$`)

// shellQuote single-quotes s unless it only holds characters the shell
// takes literally.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if safeShellWord.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
