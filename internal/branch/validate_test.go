package branch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateName(t *testing.T) {
	existing := []string{"master", "feature/a"}
	remotes := []string{"origin"}

	tests := []struct {
		name string
		want error
	}{
		{"feature/b", nil},
		{"fix-123_x", nil},
		{"a1", nil},
		{"", ErrNameEmpty},
		{"with space", ErrNameInvalidChar},
		{"dots.are.bad", ErrNameInvalidChar},
		{"ünicode", ErrNameInvalidChar},
		{"123/456", ErrNameNoLetter},
		{"/lead", ErrNameBadStart},
		{"-lead", ErrNameBadStart},
		{"_lead", ErrNameBadStart},
		{"trail/", ErrNameBadEnd},
		{"trail-", ErrNameBadEnd},
		{"trail_", ErrNameBadEnd},
		{"a//b", ErrNameDoubleSlash},
		{"origin/x", ErrNameRemotePrefix},
		{"origin", ErrNameRemotePrefix},
		{"originals/x", nil},
		{"feature/a", ErrNameAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.name, existing, remotes)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestCompletionPrefixes(t *testing.T) {
	names := []string{"master", "feature/a", "feature/ui/b", "fix/c"}

	assert.Equal(t, []string{"feature/", "feature/ui/", "fix/"}, CompletionPrefixes(names))
	assert.Empty(t, CompletionPrefixes([]string{"master"}))
}
