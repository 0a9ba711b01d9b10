package branch

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Name validation errors.
var (
	ErrNameEmpty         = errors.New("branch name is empty")
	ErrNameInvalidChar   = errors.New("branch name may only contain letters, digits, '-', '_' and '/'")
	ErrNameNoLetter      = errors.New("branch name must contain a letter")
	ErrNameBadStart      = errors.New("branch name may not start with '/', '-' or '_'")
	ErrNameBadEnd        = errors.New("branch name may not end with '/', '-' or '_'")
	ErrNameDoubleSlash   = errors.New("branch name may not contain '//'")
	ErrNameRemotePrefix  = errors.New("branch name may not start with a remote name")
	ErrNameAlreadyExists = errors.New("branch already exists")
)

// ValidNameChar reports whether r may appear in a branch name.
func ValidNameChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-', r == '_', r == '/':
		return true
	}
	return false
}

// ValidateName checks a proposed branch name against the existing branch
// names and the configured remotes.
func ValidateName(name string, existing, remotes []string) error {
	if name == "" {
		return ErrNameEmpty
	}

	hasLetter := false
	for _, r := range name {
		if !ValidNameChar(r) {
			return fmt.Errorf("%w: %q", ErrNameInvalidChar, r)
		}
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			hasLetter = true
		}
	}
	if !hasLetter {
		return ErrNameNoLetter
	}
	if strings.ContainsAny(name[:1], "/-_") {
		return ErrNameBadStart
	}
	if strings.ContainsAny(name[len(name)-1:], "/-_") {
		return ErrNameBadEnd
	}
	if strings.Contains(name, "//") {
		return ErrNameDoubleSlash
	}
	first, _, _ := strings.Cut(name, "/")
	if slices.Contains(remotes, first) {
		return fmt.Errorf("%w: %s", ErrNameRemotePrefix, first)
	}
	if slices.Contains(existing, name) {
		return fmt.Errorf("%w: %s", ErrNameAlreadyExists, name)
	}
	return nil
}

// CompletionPrefixes returns every directory-like prefix of the given names:
// "a/b/c" contributes "a/" and "a/b/".
func CompletionPrefixes(names []string) []string {
	seen := map[string]bool{}
	for _, name := range names {
		for i, r := range name {
			if r == '/' {
				seen[name[:i+1]] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
