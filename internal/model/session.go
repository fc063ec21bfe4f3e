package model

import (
	"encoding/json"
	"math"
	"time"
)

// SessionID uniquely identifies a session
type SessionID string

// SessionKind discriminates the two stored session shapes
type SessionKind string

const (
	SessionKindRounds  SessionKind = "rounds"  // Round-by-round sheet from the generic score pad
	SessionKindScores  SessionKind = "scores"  // Per-player totals written by a built-in game scorer
	SessionKindUnknown SessionKind = "unknown" // Neither shape; kept so it can still be listed and deleted
)

// DateLayout is the calendar-day format used for session dates
const DateLayout = "2006-01-02"

// PlayerTotal is one player's final total in a rounds session
type PlayerTotal struct {
	Player string `json:"player"`
	Total  int    `json:"total"`
}

// PlayerScore is one player's result in a scores session.
// Any fields besides playerName and total are kept in Breakdown verbatim.
type PlayerScore struct {
	PlayerName string
	Total      float64
	Breakdown  map[string]json.RawMessage
}

// MarshalJSON flattens the breakdown next to playerName and total
func (p PlayerScore) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, len(p.Breakdown)+2)
	for k, v := range p.Breakdown {
		fields[k] = v
	}
	fields["playerName"] = p.PlayerName
	fields["total"] = p.Total
	return json.Marshal(fields)
}

// UnmarshalJSON splits playerName and total out of the score object
func (p *PlayerScore) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*p = PlayerScore{}
	if raw, ok := fields["playerName"]; ok {
		_ = json.Unmarshal(raw, &p.PlayerName)
		delete(fields, "playerName")
	}
	if raw, ok := fields["total"]; ok {
		_ = json.Unmarshal(raw, &p.Total)
		delete(fields, "total")
	}
	if len(fields) > 0 {
		p.Breakdown = fields
	}
	return nil
}

// Session is one recorded play-through of a game.
//
// Kind selects which fields are meaningful: rounds sessions use GameID,
// GameTitle, Rounds and PlayerTotals; scores sessions use GameType, Scores
// and GameSpecificData.
type Session struct {
	Kind SessionKind

	ID         SessionID
	GameID     GameID
	GameTitle  string
	GameType   string
	Date       string
	Timestamp  time.Time
	FinishedAt time.Time
	Players    []string
	Finished   bool
	Winner     string

	// Rounds variant
	Rounds       [][]int
	PlayerTotals []PlayerTotal

	// Scores variant
	Scores           []PlayerScore
	GameSpecificData json.RawMessage
}

// sessionWire is the stored JSON layout shared with the built-in scorers
type sessionWire struct {
	ID               SessionID       `json:"id"`
	GameID           GameID          `json:"gameId,omitempty"`
	GameTitle        string          `json:"gameTitle,omitempty"`
	GameType         string          `json:"gameType,omitempty"`
	Date             string          `json:"date,omitempty"`
	Timestamp        time.Time       `json:"timestamp,omitzero"`
	FinishedAt       time.Time       `json:"finishedAt,omitzero"`
	Players          []string        `json:"players"`
	Finished         bool            `json:"finished"`
	Winner           string          `json:"winner,omitempty"`
	Rounds           *[][]int        `json:"rounds,omitempty"`
	PlayerTotals     []PlayerTotal   `json:"playerTotals,omitempty"`
	Scores           *[]PlayerScore  `json:"scores,omitempty"`
	GameSpecificData json.RawMessage `json:"gameSpecificData,omitempty"`
}

// MarshalJSON writes the variant's fields in the stored layout
func (s Session) MarshalJSON() ([]byte, error) {
	w := sessionWire{
		ID:         s.ID,
		GameID:     s.GameID,
		GameTitle:  s.GameTitle,
		GameType:   s.GameType,
		Date:       s.Date,
		Timestamp:  s.Timestamp,
		FinishedAt: s.FinishedAt,
		Players:    s.Players,
		Finished:   s.Finished,
		Winner:     s.Winner,
	}

	switch s.Variant() {
	case SessionKindRounds:
		rounds := s.Rounds
		if rounds == nil {
			rounds = [][]int{}
		}
		w.Rounds = &rounds
		w.PlayerTotals = s.PlayerTotals
	case SessionKindScores:
		scores := s.Scores
		if scores == nil {
			scores = []PlayerScore{}
		}
		w.Scores = &scores
		w.GameSpecificData = s.GameSpecificData
	}

	return json.Marshal(w)
}

// UnmarshalJSON reads a stored session and derives its Kind
func (s *Session) UnmarshalJSON(data []byte) error {
	var w sessionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*s = Session{
		ID:               w.ID,
		GameID:           w.GameID,
		GameTitle:        w.GameTitle,
		GameType:         w.GameType,
		Date:             w.Date,
		Timestamp:        w.Timestamp,
		FinishedAt:       w.FinishedAt,
		Players:          w.Players,
		Finished:         w.Finished,
		Winner:           w.Winner,
		PlayerTotals:     w.PlayerTotals,
		GameSpecificData: w.GameSpecificData,
	}

	switch {
	case w.Rounds != nil:
		s.Kind = SessionKindRounds
		s.Rounds = *w.Rounds
	case w.Scores != nil:
		s.Kind = SessionKindScores
		s.Scores = *w.Scores
	default:
		s.Kind = SessionKindUnknown
	}
	return nil
}

// Variant returns the session's kind, inferring it from the populated
// fields when Kind was never set
func (s *Session) Variant() SessionKind {
	if s.Kind != "" {
		return s.Kind
	}
	switch {
	case s.Rounds != nil:
		return SessionKindRounds
	case s.Scores != nil:
		return SessionKindScores
	default:
		return SessionKindUnknown
	}
}

// BelongsTo reports whether the session was played for the given game,
// matching custom games by ID and built-in games by title
func (s *Session) BelongsTo(gameID GameID, title string) bool {
	if gameID != "" && s.GameID == gameID {
		return true
	}
	return title != "" && s.GameType == title
}

// PlayedAt returns the time used to order sessions: the timestamp when
// present, otherwise the start of the session date
func (s *Session) PlayedAt() time.Time {
	if !s.Timestamp.IsZero() {
		return s.Timestamp
	}
	if t, err := time.Parse(DateLayout, s.Date); err == nil {
		return t
	}
	return time.Time{}
}

// TopScore returns the highest total recorded in the session
func (s *Session) TopScore() (float64, bool) {
	switch s.Variant() {
	case SessionKindRounds:
		if len(s.PlayerTotals) == 0 {
			return 0, false
		}
		return float64(s.PlayerTotals[0].Total), true
	case SessionKindScores:
		if len(s.Scores) == 0 {
			return 0, false
		}
		top := math.Inf(-1)
		for _, score := range s.Scores {
			top = math.Max(top, score.Total)
		}
		return top, true
	default:
		return 0, false
	}
}
