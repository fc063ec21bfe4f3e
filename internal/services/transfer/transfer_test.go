package transfer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/scorepad/internal/dependencies/mocks"
	"github.com/mcoot/scorepad/internal/model"
	"github.com/mcoot/scorepad/internal/services/store"
	"github.com/mcoot/scorepad/internal/testutil"
)

type TransferSuite struct {
	suite.Suite
	kv      *testutil.FailingStorage
	store   *store.Store
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestTransferSuite(t *testing.T) {
	suite.Run(t, new(TransferSuite))
}

func (s *TransferSuite) SetupTest() {
	s.kv = testutil.NewFailingStorage()
	s.clock = mocks.NewMockClock(time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC))
	s.store = store.New(s.kv, s.clock, testutil.NopLogger())
	s.service = New(s.store, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *TransferSuite) seed() {
	s.Require().NoError(s.store.Write(s.ctx, store.CustomGames, []model.Game{
		{ID: "g1", Title: "Hearts", DefaultPlayers: []string{"A", "B"}, CreatedAt: s.clock.Now(), UpdatedAt: s.clock.Now()},
	}))
	s.Require().NoError(s.store.Write(s.ctx, store.GenericSessions, []model.Session{{
		Kind:         model.SessionKindRounds,
		ID:           "s1",
		GameID:       "g1",
		GameTitle:    "Hearts",
		Date:         "2024-06-14",
		Players:      []string{"A", "B"},
		Rounds:       [][]int{{3, 4}},
		Finished:     true,
		Winner:       "B",
		PlayerTotals: []model.PlayerTotal{{Player: "B", Total: 4}, {Player: "A", Total: 3}},
	}}))
	s.Require().NoError(s.kv.Set(s.ctx, string(store.UnifiedSessions), []byte(
		`[{"id":"u1","gameType":"Wingspan","players":["A"],"finished":true,"winner":"A",`+
			`"scores":[{"playerName":"A","total":88,"birds":40}],"gameSpecificData":{"rounds":4}}]`)))
}

func (s *TransferSuite) snapshot() ([]model.Game, []model.Session, []model.Session) {
	games, _, err := store.Read[model.Game](s.ctx, s.store, store.CustomGames)
	s.Require().NoError(err)
	generic, _, err := store.Read[model.Session](s.ctx, s.store, store.GenericSessions)
	s.Require().NoError(err)
	unified, _, err := store.Read[model.Session](s.ctx, s.store, store.UnifiedSessions)
	s.Require().NoError(err)
	return games, generic, unified
}

// Export

func (s *TransferSuite) TestExportIncludesEveryCollection() {
	s.seed()

	doc, err := s.service.Export(s.ctx)
	s.Require().NoError(err)

	s.Equal(CurrentVersion, doc.Version)
	s.Equal(s.clock.Now(), doc.Exported)
	s.Len(doc.CustomGames, 1)
	s.Len(doc.GenericSessions, 1)
	s.Len(doc.BuiltInGameSessions, 1)
	s.Require().Len(doc.AllSessions, 2)
	s.Equal(model.SessionID("s1"), doc.AllSessions[0].ID)
	s.Equal(model.SessionID("u1"), doc.AllSessions[1].ID)
}

func (s *TransferSuite) TestExportEmptyStoreWritesEmptyLists() {
	doc, err := s.service.Export(s.ctx)
	s.Require().NoError(err)

	data, err := doc.Encode()
	s.Require().NoError(err)

	var fields map[string]json.RawMessage
	s.Require().NoError(json.Unmarshal(data, &fields))
	s.JSONEq(`[]`, string(fields["customGames"]))
	s.JSONEq(`[]`, string(fields["genericSessions"]))
	s.JSONEq(`[]`, string(fields["builtInGameSessions"]))
	s.JSONEq(`"2.0"`, string(fields["version"]))
}

func (s *TransferSuite) TestFileName() {
	s.Equal("game-scoring-backup-2024-06-15.json", FileName(s.clock.Now()))
}

// Import

func (s *TransferSuite) TestImportOfExportIsIdempotent() {
	s.seed()
	gamesBefore, genericBefore, unifiedBefore := s.snapshot()

	doc, err := s.service.Export(s.ctx)
	s.Require().NoError(err)
	data, err := doc.Encode()
	s.Require().NoError(err)

	for _, c := range store.Collections {
		s.Require().NoError(s.store.Write(s.ctx, c, []any{}))
	}

	plan, err := s.service.Import(s.ctx, data, Always)
	s.Require().NoError(err)
	s.Equal(FormatCurrent, plan.Format)

	games, generic, unified := s.snapshot()
	s.Equal(gamesBefore, games)
	s.Equal(genericBefore, generic)
	s.Equal(unifiedBefore, unified)
}

func (s *TransferSuite) TestImportKeepsBuiltInBreakdown() {
	s.seed()
	doc, _ := s.service.Export(s.ctx)
	data, _ := doc.Encode()

	_, err := s.service.Import(s.ctx, data, Always)
	s.Require().NoError(err)

	raw, err := s.kv.Get(s.ctx, string(store.UnifiedSessions))
	s.Require().NoError(err)
	s.Contains(string(raw), `"birds":40`)
	s.Contains(string(raw), `"gameSpecificData":{"rounds":4}`)
}

func (s *TransferSuite) TestImportCurrentMissingFieldsBecomeEmpty() {
	s.seed()

	plan, err := s.service.Import(s.ctx, []byte(`{"version":"2.0","customGames":[]}`), Always)
	s.Require().NoError(err)
	s.True(plan.ReplacesUnified)

	games, generic, unified := s.snapshot()
	s.Empty(games)
	s.Empty(generic)
	s.Empty(unified)
}

func (s *TransferSuite) TestImportLegacyLeavesUnifiedUntouched() {
	s.seed()
	before, err := s.kv.Get(s.ctx, string(store.UnifiedSessions))
	s.Require().NoError(err)

	plan, err := s.service.Import(s.ctx, []byte(`{
		"games": [{"id":"g7","title":"Rummy","defaultPlayers":["X","Y"]}],
		"sessions": [{"id":"s7","gameId":"g7","players":["X","Y"],"rounds":[[1,2]],"finished":true,"winner":"Y"}]
	}`), Always)
	s.Require().NoError(err)
	s.Equal(FormatLegacy, plan.Format)
	s.False(plan.ReplacesUnified)

	games, generic, _ := s.snapshot()
	s.Require().Len(games, 1)
	s.Equal(model.GameID("g7"), games[0].ID)
	s.Require().Len(generic, 1)
	s.Equal(model.SessionID("s7"), generic[0].ID)

	after, err := s.kv.Get(s.ctx, string(store.UnifiedSessions))
	s.Require().NoError(err)
	s.Equal(before, after)
}

func (s *TransferSuite) TestImportDeclinedWritesNothing() {
	s.seed()
	gamesBefore, genericBefore, unifiedBefore := s.snapshot()

	var seen Plan
	_, err := s.service.Import(s.ctx, []byte(`{"version":"2.0","customGames":[]}`), func(p Plan) bool {
		seen = p
		return false
	})
	s.ErrorIs(err, model.ErrImportDeclined)
	s.Equal(FormatCurrent, seen.Format)

	games, generic, unified := s.snapshot()
	s.Equal(gamesBefore, games)
	s.Equal(genericBefore, generic)
	s.Equal(unifiedBefore, unified)
}

func (s *TransferSuite) TestImportNilConfirmDeclines() {
	_, err := s.service.Import(s.ctx, []byte(`{"games":[],"sessions":[]}`), nil)
	s.ErrorIs(err, model.ErrImportDeclined)
}

func (s *TransferSuite) TestImportInvalidDocuments() {
	docs := map[string]string{
		"not json":           `{oops`,
		"array":              `[]`,
		"wrong version":      `{"version":"1.0","customGames":[]}`,
		"current null games": `{"version":"2.0","customGames":null}`,
		"games only":         `{"games":[]}`,
		"sessions only":      `{"sessions":[]}`,
		"bad games type":     `{"version":"2.0","customGames":"nope"}`,
		"bad sessions":       `{"games":[],"sessions":[1,2]}`,
	}

	for name, doc := range docs {
		s.Run(name, func() {
			s.SetupTest()
			s.seed()
			gamesBefore, genericBefore, unifiedBefore := s.snapshot()

			_, err := s.service.Import(s.ctx, []byte(doc), Always)
			s.ErrorIs(err, model.ErrInvalidFormat)

			games, generic, unified := s.snapshot()
			s.Equal(gamesBefore, games)
			s.Equal(genericBefore, generic)
			s.Equal(unifiedBefore, unified)
		})
	}
}

func (s *TransferSuite) TestImportStorageFailure() {
	s.kv.FailKey(string(store.GenericSessions))

	_, err := s.service.Import(s.ctx, []byte(`{"games":[],"sessions":[]}`), Always)
	s.ErrorIs(err, model.ErrStorageFailure)
}

func (s *TransferSuite) TestImportWaitsForStoreLock() {
	imported := make(chan error, 1)

	err := s.store.Update(func() error {
		go func() {
			_, err := s.service.Import(s.ctx, []byte(`{"games":[{"id":"g1","title":"Hearts","defaultPlayers":["A"]}],"sessions":[]}`), Always)
			imported <- err
		}()

		select {
		case <-imported:
			s.Fail("import finished while another update held the store")
		case <-time.After(20 * time.Millisecond):
		}

		games, _, _ := store.Read[model.Game](s.ctx, s.store, store.CustomGames)
		s.Empty(games)
		return nil
	})
	s.Require().NoError(err)

	select {
	case err := <-imported:
		s.Require().NoError(err)
	case <-time.After(time.Second):
		s.FailNow("import did not finish after the store was released")
	}
	games, _, _ := store.Read[model.Game](s.ctx, s.store, store.CustomGames)
	s.Len(games, 1)
}

func (s *TransferSuite) TestInspect() {
	plan, err := Inspect([]byte(`{"version":"2.0","customGames":[{"id":"g1"}],"builtInGameSessions":[{"id":"u1","scores":[]}]}`))
	s.Require().NoError(err)
	s.Equal(Plan{Format: FormatCurrent, Games: 1, UnifiedSessions: 1, ReplacesUnified: true}, plan)

	_, err = Inspect([]byte(`{}`))
	s.ErrorIs(err, model.ErrInvalidFormat)
}
