// Package gittest provides an in-memory git.Backend for tests.
//
// Repo models a commit graph with per-commit file snapshots, local and
// remote branches, a config store and a working tree. Every mutating call is
// recorded in Calls so tests can assert that an operation did not touch the
// repository.
package gittest

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing/filemode"

	"github.com/henri123lemoine/gt/internal/git"
)

type commit struct {
	git.Commit
	seq   int
	files map[string]string // path -> blob id
}

// Repo is an in-memory repository.
type Repo struct {
	RootDir string

	// Head is the full ref name of the checked out branch, "" when detached.
	Head string

	// Staged and Unstaged are returned by DiffIndex and DiffWorktree.
	Staged   []git.DiffEntry
	Unstaged []git.DiffEntry

	// Dirs lists repository relative paths that IsDir reports as directories.
	Dirs map[string]bool
	// DirErr is returned by IsDir when set.
	DirErr error

	// Worktree holds files written through WriteFile; removed files map to nil.
	Worktree map[string][]byte
	// WorktreeModes holds the mode each WriteFile call was given.
	WorktreeModes map[string]filemode.FileMode

	// Modes sets the tree entry mode DiffTrees reports for a path.
	Modes map[string]filemode.FileMode

	Config     map[string]string
	RemoteList []string
	RepoState  git.RepoState

	// Fail makes the named method return the given error.
	Fail map[string]error

	// Calls records mutating calls as "Method arg...".
	Calls []string

	// LogCalls counts Log invocations.
	LogCalls int

	refs    map[string]string // full ref name -> hash
	commits map[string]*commit
	blobs   map[string][]byte
	seq     int
	clock   time.Time
}

var _ git.Backend = (*Repo)(nil)

// New returns an empty repository with the given branch checked out.
func New(branch string) *Repo {
	return &Repo{
		RootDir:  "/repo",
		Head:     git.HeadsPrefix + branch,
		Dirs:     map[string]bool{},
		Worktree:      map[string][]byte{},
		WorktreeModes: map[string]filemode.FileMode{},
		Modes:         map[string]filemode.FileMode{},
		Config:        map[string]string{},
		Fail:          map[string]error{},
		refs:          map[string]string{},
		commits:       map[string]*commit{},
		blobs:         map[string][]byte{},
		clock:         time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// CommitOn adds a commit on top of branch (creating the branch when missing)
// and returns its hash. files maps paths to contents; an empty content
// deletes the path.
func (r *Repo) CommitOn(branch, subject string, files map[string]string) string {
	refName := git.HeadsPrefix + branch
	return r.commitRef(refName, subject, files)
}

// CommitOnRemote adds a commit on a remote-tracking branch such as origin/main.
func (r *Repo) CommitOnRemote(name, subject string, files map[string]string) string {
	return r.commitRef(git.RemotesPrefix+name, subject, files)
}

func (r *Repo) commitRef(refName, subject string, files map[string]string) string {
	r.seq++
	r.clock = r.clock.Add(time.Hour)

	snapshot := map[string]string{}
	var parents []string
	if parent, ok := r.refs[refName]; ok {
		parents = []string{parent}
		for p, id := range r.commits[parent].files {
			snapshot[p] = id
		}
	}
	for p, content := range files {
		if content == "" {
			delete(snapshot, p)
			continue
		}
		id := fmt.Sprintf("b%039x", len(r.blobs)+1)
		r.blobs[id] = []byte(content)
		snapshot[p] = id
	}

	hash := fmt.Sprintf("%040x", r.seq)
	r.commits[hash] = &commit{
		Commit: git.Commit{
			Hash:    hash,
			Parents: parents,
			Author:  "Test User",
			When:    r.clock,
			Subject: subject,
		},
		seq:   r.seq,
		files: snapshot,
	}
	r.refs[refName] = hash
	return hash
}

// Branch creates a local branch pointing at the same commit as from, which
// may be a short local name or a hash.
func (r *Repo) Branch(name, from string) {
	r.refs[git.HeadsPrefix+name] = r.resolve(from)
}

// RemoteBranch creates a remote-tracking branch such as origin/main.
func (r *Repo) RemoteBranch(name, from string) {
	r.refs[git.RemotesPrefix+name] = r.resolve(from)
	remote, _, _ := strings.Cut(name, "/")
	for _, existing := range r.RemoteList {
		if existing == remote {
			return
		}
	}
	r.RemoteList = append(r.RemoteList, remote)
}

// Track configures branch to track remote/merge.
func (r *Repo) Track(branch, remote, merge string) {
	r.Config["branch."+branch+".remote"] = remote
	r.Config["branch."+branch+".merge"] = git.HeadsPrefix + merge
}

// HashOf returns the commit a short local branch name points to.
func (r *Repo) HashOf(branch string) string {
	return r.refs[git.HeadsPrefix+branch]
}

// Mutated reports whether any mutating call was made.
func (r *Repo) Mutated() bool {
	return len(r.Calls) > 0
}

func (r *Repo) resolve(name string) string {
	if h, ok := r.refs[name]; ok {
		return h
	}
	if h, ok := r.refs[git.HeadsPrefix+name]; ok {
		return h
	}
	if h, ok := r.refs[git.RemotesPrefix+name]; ok {
		return h
	}
	return name
}

func (r *Repo) fail(method string) error {
	return r.Fail[method]
}

func (r *Repo) record(method string, args ...string) error {
	r.Calls = append(r.Calls, strings.TrimSpace(method+" "+strings.Join(args, " ")))
	return r.fail(method)
}

func (r *Repo) Root() string { return r.RootDir }

func (r *Repo) CurrentBranch() (string, error) {
	if err := r.fail("CurrentBranch"); err != nil {
		return "", err
	}
	return r.Head, nil
}

func (r *Repo) ListBranches() ([]git.Ref, error) {
	if err := r.fail("ListBranches"); err != nil {
		return nil, err
	}
	return r.listRefs(git.HeadsPrefix), nil
}

func (r *Repo) ListRemoteBranches() ([]git.Ref, error) {
	if err := r.fail("ListRemoteBranches"); err != nil {
		return nil, err
	}
	return r.listRefs(git.RemotesPrefix), nil
}

func (r *Repo) listRefs(prefix string) []git.Ref {
	var refs []git.Ref
	for name, hash := range r.refs {
		if strings.HasPrefix(name, prefix) {
			refs = append(refs, git.Ref{Name: name, Hash: hash})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs
}

func (r *Repo) ResolveRef(name string) (git.Ref, bool, error) {
	if err := r.fail("ResolveRef"); err != nil {
		return git.Ref{}, false, err
	}
	hash, ok := r.refs[name]
	if !ok {
		return git.Ref{}, false, nil
	}
	return git.Ref{Name: name, Hash: hash}, true, nil
}

func (r *Repo) Remotes() ([]string, error) {
	if err := r.fail("Remotes"); err != nil {
		return nil, err
	}
	return append([]string(nil), r.RemoteList...), nil
}

func (r *Repo) reachable(hash string) map[string]bool {
	seen := map[string]bool{}
	stack := []string{hash}
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c, ok := r.commits[h]
		if !ok || seen[h] {
			continue
		}
		seen[h] = true
		stack = append(stack, c.Parents...)
	}
	return seen
}

func (r *Repo) Log(include, exclude string, max int) ([]git.Commit, error) {
	r.LogCalls++
	if err := r.fail("Log"); err != nil {
		return nil, err
	}
	in := r.reachable(r.resolve(include))
	if exclude != "" {
		for h := range r.reachable(r.resolve(exclude)) {
			delete(in, h)
		}
	}

	var list []*commit
	for h := range in {
		list = append(list, r.commits[h])
	}
	sort.Slice(list, func(i, j int) bool { return list[i].seq > list[j].seq })
	if max > 0 && len(list) > max {
		list = list[:max]
	}

	out := make([]git.Commit, 0, len(list))
	for _, c := range list {
		out = append(out, c.Commit)
	}
	return out, nil
}

func (r *Repo) Commit(hash string) (git.Commit, error) {
	if err := r.fail("Commit"); err != nil {
		return git.Commit{}, err
	}
	c, ok := r.commits[hash]
	if !ok {
		return git.Commit{}, fmt.Errorf("no commit %s", hash)
	}
	return c.Commit, nil
}

func (r *Repo) DiffTrees(oldCommit, newCommit string) ([]git.DiffEntry, error) {
	if err := r.fail("DiffTrees"); err != nil {
		return nil, err
	}
	a, ok := r.commits[oldCommit]
	if !ok {
		return nil, fmt.Errorf("no commit %s", oldCommit)
	}
	b, ok := r.commits[newCommit]
	if !ok {
		return nil, fmt.Errorf("no commit %s", newCommit)
	}

	paths := map[string]bool{}
	for p := range a.files {
		paths[p] = true
	}
	for p := range b.files {
		paths[p] = true
	}
	sorted := make([]string, 0, len(paths))
	for p := range paths {
		sorted = append(sorted, p)
	}
	sort.Strings(sorted)

	var entries []git.DiffEntry
	for _, p := range sorted {
		oldID, inOld := a.files[p]
		newID, inNew := b.files[p]
		switch {
		case inOld && !inNew:
			entries = append(entries, git.DiffEntry{OldPath: p, NewPath: git.NullPath, OldID: oldID, Change: git.ChangeDelete})
		case !inOld && inNew:
			entries = append(entries, git.DiffEntry{OldPath: git.NullPath, NewPath: p, NewID: newID, Change: git.ChangeAdd, NewMode: r.Modes[p]})
		case string(r.blobs[oldID]) != string(r.blobs[newID]):
			entries = append(entries, git.DiffEntry{OldPath: p, NewPath: p, OldID: oldID, NewID: newID, Change: git.ChangeModify, NewMode: r.Modes[p]})
		}
	}
	return entries, nil
}

func (r *Repo) DiffIndex() ([]git.DiffEntry, error) {
	if err := r.fail("DiffIndex"); err != nil {
		return nil, err
	}
	return r.Staged, nil
}

func (r *Repo) DiffWorktree() ([]git.DiffEntry, error) {
	if err := r.fail("DiffWorktree"); err != nil {
		return nil, err
	}
	return r.Unstaged, nil
}

func (r *Repo) ReadBlob(id string) ([]byte, error) {
	if err := r.fail("ReadBlob"); err != nil {
		return nil, err
	}
	data, ok := r.blobs[id]
	if !ok {
		return nil, fmt.Errorf("no blob %s", id)
	}
	return data, nil
}

func (r *Repo) IsDir(p string) (bool, error) {
	if r.DirErr != nil {
		return false, r.DirErr
	}
	return r.Dirs[path.Clean(p)], nil
}

func (r *Repo) WriteFile(p string, data []byte, mode filemode.FileMode) error {
	if err := r.record("WriteFile", p); err != nil {
		return err
	}
	r.Worktree[p] = data
	r.WorktreeModes[p] = mode
	return nil
}

func (r *Repo) RemoveFile(p string) error {
	if err := r.record("RemoveFile", p); err != nil {
		return err
	}
	r.Worktree[p] = nil
	return nil
}

func (r *Repo) Stage(paths ...string) error {
	return r.record("Stage", paths...)
}

func (r *Repo) Checkout(branch string) error {
	if err := r.record("Checkout", branch); err != nil {
		return err
	}
	if _, ok := r.refs[git.HeadsPrefix+branch]; !ok {
		return fmt.Errorf("pathspec %q did not match", branch)
	}
	r.Head = git.HeadsPrefix + branch
	return nil
}

func (r *Repo) CreateBranch(name, startPoint string) error {
	if err := r.record("CreateBranch", name, startPoint); err != nil {
		return err
	}
	if _, ok := r.refs[git.HeadsPrefix+name]; ok {
		return fmt.Errorf("branch %q already exists", name)
	}
	r.refs[git.HeadsPrefix+name] = r.resolve(startPoint)
	r.Head = git.HeadsPrefix + name
	return nil
}

func (r *Repo) RenameBranch(oldName, newName string) error {
	if err := r.record("RenameBranch", oldName, newName); err != nil {
		return err
	}
	hash, ok := r.refs[git.HeadsPrefix+oldName]
	if !ok {
		return fmt.Errorf("no branch %q", oldName)
	}
	delete(r.refs, git.HeadsPrefix+oldName)
	r.refs[git.HeadsPrefix+newName] = hash
	if r.Head == git.HeadsPrefix+oldName {
		r.Head = git.HeadsPrefix + newName
	}
	oldSection := "branch." + oldName + "."
	for k, v := range r.Config {
		if rest, ok := strings.CutPrefix(k, oldSection); ok {
			delete(r.Config, k)
			r.Config["branch."+newName+"."+rest] = v
		}
	}
	return nil
}

func (r *Repo) DeleteBranch(name string) error {
	if err := r.record("DeleteBranch", name); err != nil {
		return err
	}
	if r.Head == git.HeadsPrefix+name {
		return errors.New("cannot delete the checked out branch")
	}
	delete(r.refs, git.HeadsPrefix+name)
	return nil
}

func (r *Repo) ConfigGet(key string) (string, bool, error) {
	if err := r.fail("ConfigGet"); err != nil {
		return "", false, err
	}
	v, ok := r.Config[key]
	return v, ok, nil
}

func (r *Repo) ConfigSet(key, value string) error {
	if err := r.record("ConfigSet", key, value); err != nil {
		return err
	}
	r.Config[key] = value
	return nil
}

func (r *Repo) ConfigUnset(key string) error {
	if err := r.record("ConfigUnset", key); err != nil {
		return err
	}
	delete(r.Config, key)
	return nil
}

func (r *Repo) State() (git.RepoState, error) {
	if err := r.fail("State"); err != nil {
		return git.StateSafe, err
	}
	return r.RepoState, nil
}
