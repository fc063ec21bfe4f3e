// Package play coordinates active scoring sessions between user-facing
// surfaces and the repository.
package play

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/mcoot/scorepad/internal/dependencies/clock"
	"github.com/mcoot/scorepad/internal/dependencies/random"
	"github.com/mcoot/scorepad/internal/model"
	"github.com/mcoot/scorepad/internal/services/repository"
	"github.com/mcoot/scorepad/internal/services/session"
)

// View is a read-only snapshot of an active session for display
type View struct {
	ID          model.SessionID `json:"id"`
	GameID      model.GameID    `json:"gameId"`
	GameTitle   string          `json:"gameTitle"`
	Date        string          `json:"date"`
	State       session.State   `json:"state"`
	Players     []string        `json:"players"`
	Rounds      [][]int         `json:"rounds"`
	Totals      []int           `json:"totals"`
	RoundTotals []int           `json:"roundTotals"`
	GrandTotal  int             `json:"grandTotal"`
}

// Controller owns the session models currently being scored. It is safe
// for concurrent use.
type Controller struct {
	repo   *repository.Repository
	clock  clock.Clock
	random random.Random
	logger *slog.Logger

	mu     sync.Mutex
	active map[model.SessionID]*session.Model
}

// NewController creates a new play Controller
func NewController(
	repo *repository.Repository,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		repo:   repo,
		clock:  clock,
		random: random,
		logger: logger,
		active: make(map[model.SessionID]*session.Model),
	}
}

// Begin starts scoring a session of the given game. A nil roster uses the
// game's default players; an empty date means today.
func (c *Controller) Begin(ctx context.Context, gameID model.GameID, players []string, date string) (*View, error) {
	game, err := c.repo.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	m := session.New(game, c.clock, c.random)
	if players == nil {
		players = m.Players()
	}
	if err := m.Start(players, date); err != nil {
		return nil, err
	}
	c.active[m.ID()] = m

	c.logger.Info("session started",
		slog.String("session_id", string(m.ID())),
		slog.String("game_id", string(gameID)),
		slog.Int("player_count", len(players)),
	)
	return viewOf(m), nil
}

// Get returns the current state of an active session
func (c *Controller) Get(id model.SessionID) (*View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.active[id]
	if !ok {
		return nil, model.ErrActiveSessionNotFound
	}
	return viewOf(m), nil
}

// Active lists every session currently being scored
func (c *Controller) Active() []View {
	c.mu.Lock()
	defer c.mu.Unlock()

	views := make([]View, 0, len(c.active))
	for _, m := range c.active {
		views = append(views, *viewOf(m))
	}
	slices.SortFunc(views, func(a, b View) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return views
}

// SetScore records a numeric score
func (c *Controller) SetScore(id model.SessionID, round, player, value int) (*View, error) {
	return c.mutate(id, func(m *session.Model) error {
		return m.SetScore(round, player, value)
	})
}

// SetScoreInput records a score typed as text
func (c *Controller) SetScoreInput(id model.SessionID, round, player int, raw string) (*View, error) {
	return c.mutate(id, func(m *session.Model) error {
		return m.SetScoreInput(round, player, raw)
	})
}

// AddRound appends an empty round
func (c *Controller) AddRound(id model.SessionID) (*View, error) {
	return c.mutate(id, func(m *session.Model) error {
		return m.AddRound()
	})
}

// Finish finalises the session and saves it. If saving fails the finished
// session stays active so Finish can be retried.
func (c *Controller) Finish(ctx context.Context, id model.SessionID) (*model.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.active[id]
	if !ok {
		return nil, model.ErrActiveSessionNotFound
	}

	var record *model.Session
	if m.State() == session.StateFinished {
		record = m.Snapshot()
	} else {
		var err error
		if record, err = m.Finish(); err != nil {
			return nil, err
		}
	}

	if err := c.repo.AddSession(ctx, record); err != nil {
		c.logger.Warn("finished session not saved",
			slog.String("session_id", string(id)),
			slog.String("error", err.Error()),
		)
		return record, err
	}

	delete(c.active, id)
	c.logger.Info("session finished",
		slog.String("session_id", string(id)),
		slog.String("winner", record.Winner),
	)
	return record, nil
}

// Sheet renders a stored score pad session as a read-only score table
func (c *Controller) Sheet(record *model.Session) (*View, error) {
	m, err := session.Resume(record, c.clock)
	if err != nil {
		return nil, err
	}
	return viewOf(m), nil
}

// Cancel drops an active session without saving anything
func (c *Controller) Cancel(id model.SessionID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.active[id]; !ok {
		return model.ErrActiveSessionNotFound
	}
	delete(c.active, id)

	c.logger.Info("session cancelled", slog.String("session_id", string(id)))
	return nil
}

func (c *Controller) mutate(id model.SessionID, fn func(*session.Model) error) (*View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.active[id]
	if !ok {
		return nil, model.ErrActiveSessionNotFound
	}
	if err := fn(m); err != nil {
		return nil, err
	}
	return viewOf(m), nil
}

func viewOf(m *session.Model) *View {
	snap := m.Snapshot()
	return &View{
		ID:          snap.ID,
		GameID:      snap.GameID,
		GameTitle:   snap.GameTitle,
		Date:        snap.Date,
		State:       m.State(),
		Players:     snap.Players,
		Rounds:      snap.Rounds,
		Totals:      m.Totals(),
		RoundTotals: m.RoundTotals(),
		GrandTotal:  m.GrandTotal(),
	}
}
