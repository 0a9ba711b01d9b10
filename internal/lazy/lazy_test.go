package lazy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueComputesOnce(t *testing.T) {
	calls := 0
	v := New(func() (int, error) {
		calls++
		return 42, nil
	})

	assert.False(t, v.Done())
	for i := 0; i < 3; i++ {
		got, err := v.Get()
		require.NoError(t, err)
		assert.Equal(t, 42, got)
	}
	assert.Equal(t, 1, calls)
	assert.True(t, v.Done())
}

func TestValueCachesError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	v := New(func() (string, error) {
		calls++
		return "", boom
	})

	_, err := v.Get()
	assert.ErrorIs(t, err, boom)
	_, err = v.Get()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}
