package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandStr(t *testing.T) {
	s := RandStr(32)

	assert.Len(t, s, 32)
	for _, r := range s {
		assert.True(t, strings.ContainsRune(letters, r), "unexpected rune %q", r)
	}
}

func TestNewID(t *testing.T) {
	seen := map[string]bool{}

	for range 100 {
		id, err := NewID()
		require.NoError(t, err)
		require.Len(t, id, idLength)
		require.False(t, seen[id], "duplicate id %s", id)

		seen[id] = true
	}
}
