package factory

import (
	"context"
	"time"

	"github.com/mcoot/scorepad/internal/dependencies/mocks"
	"github.com/mcoot/scorepad/internal/storage"
	"github.com/mcoot/scorepad/internal/storage/memory"
	"github.com/mcoot/scorepad/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App on an in-memory backend with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithStorage(memory.New())
}

// NewTestAppWithStorage creates a test App on the given backend, running
// startup recovery like New does
func NewTestAppWithStorage(kv storage.Storage) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(kv, mockClock, mockRandom, time.Millisecond, testutil.NopLogger())
	app.recover(context.Background())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
