package random

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDStartsWithBase36Timestamp(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	id := NewID(now, New())

	prefix := strconv.FormatInt(now.UnixMilli(), 36)
	require.True(t, strings.HasPrefix(id, prefix))
	assert.Len(t, id, len(prefix)+idSuffixLength)
}

func TestNewIDSuffixUsesBase36Alphabet(t *testing.T) {
	id := NewID(time.Now(), New())

	for _, c := range id {
		assert.Contains(t, Base36Alphabet, string(c))
	}
}

func TestNewIDIsPracticallyUnique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)

	for i := 0; i < 1000; i++ {
		id := NewID(now, New())
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestCryptoRandomStringEmptyInputs(t *testing.T) {
	r := New()

	assert.Empty(t, r.String(0, Base36Alphabet))
	assert.Empty(t, r.String(5, ""))
}
