// Package session implements the scoring flow of a single play-through:
// roster setup, round-by-round score entry and finalisation.
package session

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/mcoot/scorepad/internal/dependencies/clock"
	"github.com/mcoot/scorepad/internal/dependencies/random"
	"github.com/mcoot/scorepad/internal/model"
)

// State is the lifecycle stage of a Model
type State string

const (
	StateSetup      State = "setup"       // Roster and date being chosen
	StateInProgress State = "in_progress" // Rounds being scored
	StateFinished   State = "finished"    // Frozen; totals and winner computed
)

// WinnerSeparator joins the names of tied winners
const WinnerSeparator = " & "

// MaxScore is the largest score a single cell can hold
const MaxScore = math.MaxInt32

// Model is one session's state machine. A Model has a single owner and is
// not safe for concurrent use.
type Model struct {
	clock clock.Clock

	id        model.SessionID
	gameID    model.GameID
	gameTitle string
	state     State

	players    []string
	date       string
	startedAt  time.Time
	finishedAt time.Time
	rounds     [][]int

	playerTotals []model.PlayerTotal
	winner       string
}

// New creates a Model in Setup for the given game. The roster starts as a
// copy of the game's default players.
func New(game *model.Game, clk clock.Clock, rnd random.Random) *Model {
	return &Model{
		clock:     clk,
		id:        model.SessionID(random.NewID(clk.Now(), rnd)),
		gameID:    game.ID,
		gameTitle: game.Title,
		state:     StateSetup,
		players:   slices.Clone(game.DefaultPlayers),
	}
}

// Resume rebuilds a Model from a stored rounds session. Finished records
// come back frozen; anything else resumes in progress.
func Resume(record *model.Session, clk clock.Clock) (*Model, error) {
	if record.Variant() != model.SessionKindRounds {
		return nil, fmt.Errorf("%w: only score pad sessions can be resumed", model.ErrValidation)
	}
	for i, row := range record.Rounds {
		if len(row) != len(record.Players) {
			return nil, fmt.Errorf("%w: round %d has %d scores for %d players",
				model.ErrValidation, i+1, len(row), len(record.Players))
		}
	}

	m := &Model{
		clock:        clk,
		id:           record.ID,
		gameID:       record.GameID,
		gameTitle:    record.GameTitle,
		state:        StateInProgress,
		players:      slices.Clone(record.Players),
		date:         record.Date,
		startedAt:    record.Timestamp,
		finishedAt:   record.FinishedAt,
		rounds:       cloneRounds(record.Rounds),
		playerTotals: slices.Clone(record.PlayerTotals),
		winner:       record.Winner,
	}
	if record.Finished {
		m.state = StateFinished
	}
	return m, nil
}

// ID returns the session's identifier
func (m *Model) ID() model.SessionID {
	return m.id
}

// GameID returns the identifier of the game being scored
func (m *Model) GameID() model.GameID {
	return m.gameID
}

// State returns the current lifecycle stage
func (m *Model) State() State {
	return m.state
}

// Players returns a copy of the roster
func (m *Model) Players() []string {
	return slices.Clone(m.players)
}

// Rounds returns a copy of the score rows
func (m *Model) Rounds() [][]int {
	return cloneRounds(m.rounds)
}

// Start fixes the roster and date and opens the first round. Blank player
// names become "Player N" and an empty date means today.
func (m *Model) Start(players []string, date string) error {
	if m.state != StateSetup {
		return m.stateError()
	}
	if len(players) == 0 {
		return fmt.Errorf("%w: at least one player is required", model.ErrValidation)
	}
	if date == "" {
		date = clock.Today(m.clock)
	} else if _, err := time.Parse(model.DateLayout, date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", model.ErrValidation)
	}

	m.players = model.NormalizePlayers(players)
	m.date = date
	m.startedAt = m.clock.Now()
	m.rounds = [][]int{make([]int, len(m.players))}
	m.state = StateInProgress
	return nil
}

// SetScore records a player's score for a round. Values are clamped to
// the range 0 to MaxScore.
func (m *Model) SetScore(round, player, value int) error {
	if m.state != StateInProgress {
		return m.stateError()
	}
	if round < 0 || round >= len(m.rounds) {
		return fmt.Errorf("%w: round %d of %d", model.ErrInvalidPosition, round+1, len(m.rounds))
	}
	if player < 0 || player >= len(m.players) {
		return fmt.Errorf("%w: player %d of %d", model.ErrInvalidPosition, player+1, len(m.players))
	}

	m.rounds[round][player] = min(max(value, 0), MaxScore)
	return nil
}

// SetScoreInput records a score typed by the user. Input is read like a
// numeric form field: the leading integer is used and anything
// unparseable counts as 0.
func (m *Model) SetScoreInput(round, player int, raw string) error {
	return m.SetScore(round, player, ParseScore(raw))
}

// AddRound appends an all-zero round
func (m *Model) AddRound() error {
	if m.state != StateInProgress {
		return m.stateError()
	}
	m.rounds = append(m.rounds, make([]int, len(m.players)))
	return nil
}

// Totals returns each player's sum across all rounds, in roster order
func (m *Model) Totals() []int {
	return Totals(m.players, m.rounds)
}

// RoundTotals returns the sum of every player's score for each round
func (m *Model) RoundTotals() []int {
	totals := make([]int, len(m.rounds))
	for i, row := range m.rounds {
		for _, score := range row {
			totals[i] += score
		}
	}
	return totals
}

// GrandTotal returns the sum of every score in the session
func (m *Model) GrandTotal() int {
	total := 0
	for _, t := range m.Totals() {
		total += t
	}
	return total
}

// Finish freezes the session, ranks the players and picks the winner. The
// returned record is ready to be stored.
func (m *Model) Finish() (*model.Session, error) {
	if m.state != StateInProgress {
		return nil, m.stateError()
	}
	if len(m.rounds) == 0 {
		return nil, fmt.Errorf("%w: add at least one round before finishing", model.ErrValidation)
	}

	m.playerTotals = Rank(m.players, m.Totals())
	m.winner = Winner(m.playerTotals)
	m.finishedAt = m.clock.Now()
	m.state = StateFinished

	return m.Snapshot(), nil
}

// Snapshot returns the session as a stored record. Before Finish the
// record has no totals or winner.
func (m *Model) Snapshot() *model.Session {
	return &model.Session{
		Kind:         model.SessionKindRounds,
		ID:           m.id,
		GameID:       m.gameID,
		GameTitle:    m.gameTitle,
		Date:         m.date,
		Timestamp:    m.startedAt,
		FinishedAt:   m.finishedAt,
		Players:      slices.Clone(m.players),
		Finished:     m.state == StateFinished,
		Winner:       m.winner,
		Rounds:       cloneRounds(m.rounds),
		PlayerTotals: slices.Clone(m.playerTotals),
	}
}

func (m *Model) stateError() error {
	switch m.state {
	case StateSetup:
		return model.ErrSessionNotStarted
	case StateFinished:
		return model.ErrSessionFinished
	default:
		return fmt.Errorf("%w: session already started", model.ErrValidation)
	}
}

func cloneRounds(rounds [][]int) [][]int {
	if rounds == nil {
		return nil
	}
	out := make([][]int, len(rounds))
	for i, row := range rounds {
		out[i] = slices.Clone(row)
	}
	return out
}
