package main

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runGt(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(append([]string{"gt"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// gitRepo creates a repository with master and a feature branch one commit
// ahead, checked out on feature.
func gitRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	git := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
	}
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}

	git("init", "-q")
	git("symbolic-ref", "HEAD", "refs/heads/master")
	git("config", "user.email", "test@test.com")
	git("config", "user.name", "Test User")
	git("config", "commit.gpgsign", "false")
	write("README.md", "# Test\n")
	git("add", "-A")
	git("commit", "-q", "-m", "initial")
	git("checkout", "-q", "-b", "feature")
	write("feature.txt", "feature\n")
	git("add", "-A")
	git("commit", "-q", "-m", "add feature")
	return dir
}

func TestRunHelp(t *testing.T) {
	code, out, _ := runGt(t, "--help")
	assert.Equal(t, 0, code)
	for _, cmd := range []string{"branch", "status", "diff", "log", "config"} {
		assert.Contains(t, out, cmd)
	}
}

func TestRunUnknownCommand(t *testing.T) {
	code, _, _ := runGt(t, "frobnicate")
	assert.Equal(t, 1, code)
}

func TestConfigPathHonorsXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	code, out, _ := runGt(t, "config", "path")
	assert.Equal(t, 0, code)
	assert.Equal(t, filepath.Join(dir, "gt", "config.toml")+"\n", out)
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path := filepath.Join(dir, "gt", "config.toml")

	code, out, _ := runGt(t, "config", "init")
	require.Equal(t, 0, code)
	assert.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "default_branch_candidates")

	code, _, errOut := runGt(t, "config", "init")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "already exists")

	code, _, _ = runGt(t, "config", "init", "--force")
	assert.Equal(t, 0, code)
}

func TestConfigShowReportsWarnings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[diff]\ncontext = -2\n"), 0644))

	code, out, errOut := runGt(t, "--config-file", path, "config", "show")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "context = -2")
	assert.Contains(t, errOut, "Warning:")
}

func TestStatusOutsideRepository(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	code, _, errOut := runGt(t, "-C", t.TempDir(), "status")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Error:")
}

func TestStatus(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := gitRepo(t)

	code, out, errOut := runGt(t, "-C", dir, "--color", "never", "status")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Commits on feature")
	assert.Contains(t, out, "+ add feature")

	code, out, _ = runGt(t, "-C", dir, "--color", "never", "status", "--files")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "feature.txt")
}

func TestStatusRelativeToRepositoryFlag(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := gitRepo(t)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(filepath.Dir(dir)))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	code, out, errOut := runGt(t, "-C", filepath.Join(filepath.Base(dir), "sub"), "--color", "never", "status", "--relative")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, filepath.Join("..", "feature.txt"))
}

func TestStatusUnknownBranch(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := gitRepo(t)

	code, _, errOut := runGt(t, "-C", dir, "status", "--branch", "missing")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Error: no such branch missing")
}

func TestLog(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := gitRepo(t)

	code, out, errOut := runGt(t, "-C", dir, "--color", "never", "log")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "add feature")
}
