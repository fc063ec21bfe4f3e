package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/scorepad/internal/factory"
)

func TestRunServerFlushesBackupOnShutdown(t *testing.T) {
	testApp := factory.NewTestApp()
	app = testApp.App
	t.Cleanup(func() { app = nil })

	ctx := context.Background()
	require.NoError(t, app.Storage.Set(ctx, "customGames", []byte(`[{"id":"g1"}]`)))

	stopped, cancel := context.WithCancel(ctx)
	cancel()
	require.NoError(t, runServer(stopped, "127.0.0.1", 0))

	backup, err := app.Storage.Get(ctx, "customGames_backup")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"g1"}]`, string(backup))
}
