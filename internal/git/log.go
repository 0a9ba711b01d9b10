package git

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const logFormat = "--format=%H%x1f%P%x1f%an%x1f%ct%x1f%s"

// Log lists commits reachable from include but not from exclude, newest first.
func (r *Repo) Log(include, exclude string, max int) ([]Commit, error) {
	args := []string{"log", "-z", logFormat}
	if max > 0 {
		args = append(args, "-n", strconv.Itoa(max))
	}
	args = append(args, include)
	if exclude != "" {
		args = append(args, "^"+exclude)
	}
	args = append(args, "--")

	output, err := r.git(args...)
	if err != nil {
		return nil, err
	}
	return parseLog(output)
}

// parseLog parses NUL separated records produced with logFormat.
func parseLog(output string) ([]Commit, error) {
	var commits []Commit
	for _, record := range strings.Split(output, "\x00") {
		record = strings.TrimPrefix(record, "\n")
		if record == "" {
			continue
		}
		fields := strings.SplitN(record, "\x1f", 5)
		if len(fields) != 5 {
			return nil, fmt.Errorf("unexpected log record %q", record)
		}
		ts, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("commit %s: bad timestamp: %w", fields[0], err)
		}
		commits = append(commits, Commit{
			Hash:    fields[0],
			Parents: strings.Fields(fields[1]),
			Author:  fields[2],
			When:    time.Unix(ts, 0),
			Subject: fields[4],
		})
	}
	return commits, nil
}

// Commit reads a single commit object.
func (r *Repo) Commit(hash string) (Commit, error) {
	c, err := r.objects.CommitObject(plumbing.NewHash(hash))
	if err != nil {
		return Commit{}, fmt.Errorf("read commit %s: %w", hash, err)
	}
	return commitFromObject(c), nil
}

func commitFromObject(c *object.Commit) Commit {
	parents := make([]string, 0, len(c.ParentHashes))
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}
	subject, _, _ := strings.Cut(strings.TrimSpace(c.Message), "\n")
	return Commit{
		Hash:    c.Hash.String(),
		Parents: parents,
		Author:  c.Author.Name,
		When:    c.Committer.When,
		Subject: subject,
	}
}
