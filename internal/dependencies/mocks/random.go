package mocks

import (
	"fmt"

	"github.com/mcoot/scorepad/internal/dependencies/random"
)

// MockRandom returns queued strings, then zero-padded sequence numbers so
// generated IDs stay distinct
type MockRandom struct {
	// StringResults is a queue of results to return from String
	StringResults []string
	stringIndex   int

	// generated counts strings produced after the queue ran out
	generated int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// String returns the next queued result or the next sequence number
func (r *MockRandom) String(length int, alphabet string) string {
	if r.stringIndex >= len(r.StringResults) {
		r.generated++
		return fmt.Sprintf("%0*d", length, r.generated)
	}
	result := r.StringResults[r.stringIndex]
	r.stringIndex++
	return result
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.StringResults = append(r.StringResults, values...)
}

// Reset clears all queued results and restarts the sequence
func (r *MockRandom) Reset() {
	r.StringResults = nil
	r.stringIndex = 0
	r.generated = 0
}
