package factory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/scorepad/internal/config"
	"github.com/mcoot/scorepad/internal/model"
	"github.com/mcoot/scorepad/internal/services/store"
	"github.com/mcoot/scorepad/internal/services/transfer"
	"github.com/mcoot/scorepad/internal/storage/memory"
	"github.com/mcoot/scorepad/internal/testutil"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

// Test: create a game, score a session, review it, then delete the game
func (s *IntegrationSuite) TestCompleteScoringFlow() {
	// Step 1: Create a game
	game, err := s.app.Repository.CreateGame(s.ctx, "Yahtzee", []string{"Ann", "Bob", "Cy"})
	s.Require().NoError(err)

	// Step 2: Play two rounds
	view, err := s.app.Play.Begin(s.ctx, game.ID, nil, "")
	s.Require().NoError(err)
	for p, v := range []int{10, 20, 5} {
		_, err = s.app.Play.SetScore(view.ID, 0, p, v)
		s.Require().NoError(err)
	}
	_, err = s.app.Play.AddRound(view.ID)
	s.Require().NoError(err)
	_, err = s.app.Play.SetScoreInput(view.ID, 1, 0, "15")
	s.Require().NoError(err)

	// Step 3: Finish
	record, err := s.app.Play.Finish(s.ctx, view.ID)
	s.Require().NoError(err)
	s.Equal("Ann", record.Winner)
	s.Equal([]model.PlayerTotal{{Player: "Ann", Total: 25}, {Player: "Bob", Total: 20}, {Player: "Cy", Total: 5}}, record.PlayerTotals)

	// Step 4: History shows it
	entries, err := s.app.Repository.SessionsForGame(s.ctx, game.ID, game.Title)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)

	// Step 5: Deleting the game removes the session
	removed, err := s.app.Repository.DeleteGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Equal(1, removed)
	all, _ := s.app.Repository.ListSessions(s.ctx)
	s.Empty(all)
}

// Test: startup recovery restores a wiped primary from its backup
func (s *IntegrationSuite) TestStartupRecoversFromBackup() {
	kv := memory.New()
	first := NewTestAppWithStorage(kv)
	_, err := first.Repository.CreateGame(s.ctx, "Catan", []string{"A"})
	s.Require().NoError(err)
	s.Require().NoError(kv.Set(s.ctx, string(store.CustomGames), []byte("[]")))

	second := NewTestAppWithStorage(kv)
	s.True(second.Recovered)

	games, err := second.Repository.ListGames(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(games, 1)
	s.Equal("Catan", games[0].Title)
}

// Test: an export can be restored into a fresh store
func (s *IntegrationSuite) TestExportRestoresIntoNewStore() {
	_, err := s.app.Repository.CreateGame(s.ctx, "Hanabi", []string{"A", "B"})
	s.Require().NoError(err)

	doc, err := s.app.Transfer.Export(s.ctx)
	s.Require().NoError(err)
	data, err := doc.Encode()
	s.Require().NoError(err)

	fresh := NewTestApp()
	_, err = fresh.Transfer.Import(s.ctx, data, transfer.Always)
	s.Require().NoError(err)

	games, _ := fresh.Repository.ListGames(s.ctx)
	s.Len(games, 1)
}

// Test: the backup worker runs against the wired store
func (s *IntegrationSuite) TestBackupWorkerRefreshesShadows() {
	_, err := s.app.Repository.CreateGame(s.ctx, "Azul", []string{"A"})
	s.Require().NoError(err)
	s.Require().NoError(s.app.Storage.Set(s.ctx, store.CustomGames.BackupKey(), []byte("[]")))

	refreshed, err := s.app.Backup.Tick(s.ctx)
	s.Require().NoError(err)
	s.True(refreshed)

	backup, err := s.app.Storage.Get(s.ctx, store.CustomGames.BackupKey())
	s.Require().NoError(err)
	s.Contains(string(backup), "Azul")
}

// Test: storage failures surface without corrupting in-memory play
func (s *IntegrationSuite) TestStorageFailureDuringFinish() {
	kv := testutil.NewFailingStorage()
	app := NewTestAppWithStorage(kv)
	game, err := app.Repository.CreateGame(s.ctx, "Uno", []string{"A", "B"})
	s.Require().NoError(err)

	view, err := app.Play.Begin(s.ctx, game.ID, nil, "")
	s.Require().NoError(err)
	kv.FailAll()

	_, err = app.Play.Finish(s.ctx, view.ID)
	s.ErrorIs(err, model.ErrStorageFailure)
	_, err = app.Play.Get(view.ID)
	s.NoError(err)
}

func TestNewOpensConfiguredStorage(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{
		Storage:        config.StorageSQLite,
		DBPath:         filepath.Join(t.TempDir(), "scores.db"),
		BackupInterval: time.Minute,
	}

	app, err := New(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = app.Close() }()

	if _, err := app.Repository.CreateGame(ctx, "Go", []string{"Black", "White"}); err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
}

func TestOpenStorageRejectsUnknownBackend(t *testing.T) {
	_, err := OpenStorage(&config.Config{Storage: "floppy"})
	if err == nil {
		t.Fatal("expected error for unknown storage")
	}
}
