package response

import (
	"cmp"
	"slices"
	"time"

	"github.com/mcoot/scorepad/internal/model"
	"github.com/mcoot/scorepad/internal/services/play"
	"github.com/mcoot/scorepad/internal/services/repository"
	"github.com/mcoot/scorepad/internal/services/transfer"
)

// Game represents a custom game in API responses
type Game struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	DefaultPlayers []string  `json:"default_players"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// GameFromModel converts a model.Game to a response Game
func GameFromModel(g *model.Game) Game {
	return Game{
		ID:             string(g.ID),
		Title:          g.Title,
		DefaultPlayers: g.DefaultPlayers,
		CreatedAt:      g.CreatedAt,
		UpdatedAt:      g.UpdatedAt,
	}
}

// GamesFromModel converts a list of games
func GamesFromModel(games []model.Game) []Game {
	out := make([]Game, len(games))
	for i := range games {
		out[i] = GameFromModel(&games[i])
	}
	return out
}

// PlayerTotal is one player's final total
type PlayerTotal struct {
	Player string  `json:"player"`
	Total  float64 `json:"total"`
}

// Session represents a stored session of either origin
type Session struct {
	ID           string        `json:"id"`
	Origin       string        `json:"origin"`
	Kind         string        `json:"kind"`
	GameID       string        `json:"game_id,omitempty"`
	GameTitle    string        `json:"game_title,omitempty"`
	GameType     string        `json:"game_type,omitempty"`
	Date         string        `json:"date,omitempty"`
	PlayedAt     *time.Time    `json:"played_at,omitempty"`
	Players      []string      `json:"players"`
	Finished     bool          `json:"finished"`
	Winner       string        `json:"winner,omitempty"`
	Rounds       [][]int       `json:"rounds,omitempty"`
	PlayerTotals []PlayerTotal `json:"player_totals,omitempty"`
}

// SessionFromEntry converts a repository entry. Scores sessions report
// their per-player totals as player_totals, highest first.
func SessionFromEntry(e *repository.Entry) Session {
	s := &e.Session
	out := Session{
		ID:        string(s.ID),
		Origin:    string(e.Origin),
		Kind:      string(s.Variant()),
		GameID:    string(s.GameID),
		GameTitle: s.GameTitle,
		GameType:  s.GameType,
		Date:      s.Date,
		Players:   s.Players,
		Finished:  s.Finished,
		Winner:    s.Winner,
		Rounds:    s.Rounds,
	}
	if t := s.PlayedAt(); !t.IsZero() {
		out.PlayedAt = &t
	}
	if out.Players == nil {
		out.Players = []string{}
	}

	switch s.Variant() {
	case model.SessionKindRounds:
		for _, pt := range s.PlayerTotals {
			out.PlayerTotals = append(out.PlayerTotals, PlayerTotal{Player: pt.Player, Total: float64(pt.Total)})
		}
	case model.SessionKindScores:
		for _, sc := range s.Scores {
			out.PlayerTotals = append(out.PlayerTotals, PlayerTotal{Player: sc.PlayerName, Total: sc.Total})
		}
		sortTotals(out.PlayerTotals)
	}
	return out
}

func sortTotals(totals []PlayerTotal) {
	slices.SortStableFunc(totals, func(a, b PlayerTotal) int {
		return cmp.Compare(b.Total, a.Total)
	})
}

// SessionsFromEntries converts a list of repository entries
func SessionsFromEntries(entries []repository.Entry) []Session {
	out := make([]Session, len(entries))
	for i := range entries {
		out[i] = SessionFromEntry(&entries[i])
	}
	return out
}

// ActiveSession is a session currently being scored
type ActiveSession struct {
	ID          string   `json:"id"`
	GameID      string   `json:"game_id"`
	GameTitle   string   `json:"game_title"`
	Date        string   `json:"date"`
	State       string   `json:"state"`
	Players     []string `json:"players"`
	Rounds      [][]int  `json:"rounds"`
	Totals      []int    `json:"totals"`
	RoundTotals []int    `json:"round_totals"`
	GrandTotal  int      `json:"grand_total"`
}

// ActiveSessionFromView converts a play.View
func ActiveSessionFromView(v *play.View) ActiveSession {
	return ActiveSession{
		ID:          string(v.ID),
		GameID:      string(v.GameID),
		GameTitle:   v.GameTitle,
		Date:        v.Date,
		State:       string(v.State),
		Players:     v.Players,
		Rounds:      v.Rounds,
		Totals:      v.Totals,
		RoundTotals: v.RoundTotals,
		GrandTotal:  v.GrandTotal,
	}
}

// DeleteGameResult reports the outcome of deleting a game
type DeleteGameResult struct {
	SessionsRemoved int `json:"sessions_removed"`
}

// ImportResult reports what an import replaced
type ImportResult struct {
	Format          string `json:"format"`
	Games           int    `json:"games"`
	GenericSessions int    `json:"generic_sessions"`
	UnifiedSessions int    `json:"unified_sessions"`
	ReplacedUnified bool   `json:"replaced_unified"`
}

// ImportResultFromPlan converts a transfer.Plan
func ImportResultFromPlan(p transfer.Plan) ImportResult {
	return ImportResult{
		Format:          string(p.Format),
		Games:           p.Games,
		GenericSessions: p.GenericSessions,
		UnifiedSessions: p.UnifiedSessions,
		ReplacedUnified: p.ReplacesUnified,
	}
}
