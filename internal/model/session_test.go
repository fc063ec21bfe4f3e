package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionKindIsDerivedOnDecode(t *testing.T) {
	tests := []struct {
		name string
		data string
		want SessionKind
	}{
		{"rounds", `{"id":"a","rounds":[[1,2]],"players":["A","B"]}`, SessionKindRounds},
		{"empty rounds", `{"id":"a","rounds":[],"players":[]}`, SessionKindRounds},
		{"scores", `{"id":"b","scores":[{"playerName":"A","total":3}]}`, SessionKindScores},
		{"rounds wins over scores", `{"id":"c","rounds":[],"scores":[]}`, SessionKindRounds},
		{"neither", `{"id":"d","players":["A"]}`, SessionKindUnknown},
		{"null rounds", `{"id":"e","rounds":null}`, SessionKindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Session
			require.NoError(t, json.Unmarshal([]byte(tt.data), &s))
			assert.Equal(t, tt.want, s.Kind)
			assert.Equal(t, tt.want, s.Variant())
		})
	}
}

func TestScoresSessionKeepsUnknownFields(t *testing.T) {
	data := `{
		"id": "u1",
		"gameType": "Yahtzee",
		"players": ["Ann"],
		"scores": [{"playerName": "Ann", "total": 250.5, "upper": 63, "bonus": {"yahtzee": 100}}],
		"gameSpecificData": {"dice": [1, 2, 3]},
		"finished": true
	}`

	var s Session
	require.NoError(t, json.Unmarshal([]byte(data), &s))
	require.Len(t, s.Scores, 1)
	assert.Equal(t, "Ann", s.Scores[0].PlayerName)
	assert.InDelta(t, 250.5, s.Scores[0].Total, 0.0001)
	assert.JSONEq(t, `63`, string(s.Scores[0].Breakdown["upper"]))

	out, err := json.Marshal(s)
	require.NoError(t, err)

	var round map[string]any
	require.NoError(t, json.Unmarshal(out, &round))
	score := round["scores"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(63), score["upper"])
	assert.Equal(t, map[string]any{"yahtzee": float64(100)}, score["bonus"])
	assert.Equal(t, map[string]any{"dice": []any{float64(1), float64(2), float64(3)}}, round["gameSpecificData"])
	assert.NotContains(t, round, "rounds")
}

func TestRoundsSessionMarshalsVariantFields(t *testing.T) {
	s := Session{
		Kind:         SessionKindRounds,
		ID:           "s1",
		GameID:       "g1",
		GameTitle:    "Rummy",
		Players:      []string{"A"},
		Finished:     true,
		PlayerTotals: []PlayerTotal{{Player: "A", Total: 4}},
	}

	out, err := json.Marshal(s)
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &fields))
	assert.JSONEq(t, `[]`, string(fields["rounds"]))
	assert.JSONEq(t, `[{"player":"A","total":4}]`, string(fields["playerTotals"]))
	assert.NotContains(t, fields, "scores")
	assert.NotContains(t, fields, "timestamp")
}

func TestUnknownSessionMarshalsCommonFieldsOnly(t *testing.T) {
	s := Session{Kind: SessionKindUnknown, ID: "x"}

	out, err := json.Marshal(s)
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &fields))
	assert.NotContains(t, fields, "rounds")
	assert.NotContains(t, fields, "scores")
}

func TestVariantInfersUnsetKind(t *testing.T) {
	assert.Equal(t, SessionKindRounds, (&Session{Rounds: [][]int{}}).Variant())
	assert.Equal(t, SessionKindScores, (&Session{Scores: []PlayerScore{}}).Variant())
	assert.Equal(t, SessionKindUnknown, (&Session{}).Variant())
}

func TestBelongsTo(t *testing.T) {
	byID := &Session{GameID: "g1"}
	byTitle := &Session{GameType: "Rummy"}

	assert.True(t, byID.BelongsTo("g1", "Other"))
	assert.False(t, byID.BelongsTo("g2", ""))
	assert.True(t, byTitle.BelongsTo("g2", "Rummy"))
	assert.False(t, byTitle.BelongsTo("", ""))
	assert.False(t, (&Session{}).BelongsTo("", ""))
}

func TestPlayedAt(t *testing.T) {
	ts := time.Date(2024, 3, 9, 18, 30, 0, 0, time.UTC)

	assert.Equal(t, ts, (&Session{Timestamp: ts, Date: "2020-01-01"}).PlayedAt())
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), (&Session{Date: "2024-02-01"}).PlayedAt())
	assert.True(t, (&Session{Date: "yesterday"}).PlayedAt().IsZero())
}

func TestTopScore(t *testing.T) {
	rounds := &Session{Kind: SessionKindRounds, PlayerTotals: []PlayerTotal{{"A", 9}, {"B", 4}}}
	top, ok := rounds.TopScore()
	assert.True(t, ok)
	assert.Equal(t, 9.0, top)

	scores := &Session{Kind: SessionKindScores, Scores: []PlayerScore{{PlayerName: "A", Total: -2}, {PlayerName: "B", Total: 7.5}}}
	top, ok = scores.TopScore()
	assert.True(t, ok)
	assert.Equal(t, 7.5, top)

	_, ok = (&Session{Kind: SessionKindScores}).TopScore()
	assert.False(t, ok)
	_, ok = (&Session{Kind: SessionKindUnknown}).TopScore()
	assert.False(t, ok)
}
