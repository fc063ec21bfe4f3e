// Package repository manages custom games and the two session collections
// as one logical set of sessions.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/mcoot/scorepad/internal/dependencies/clock"
	"github.com/mcoot/scorepad/internal/dependencies/random"
	"github.com/mcoot/scorepad/internal/model"
	"github.com/mcoot/scorepad/internal/services/store"
)

// Origin records which collection a session was read from
type Origin string

const (
	OriginGeneric Origin = "generic" // Recorded by the score pad
	OriginUnified Origin = "unified" // Written by a built-in game scorer
)

// Collection returns the store collection holding sessions of this origin
func (o Origin) Collection() store.Collection {
	if o == OriginUnified {
		return store.UnifiedSessions
	}
	return store.GenericSessions
}

// Entry is one element of the combined session list
type Entry struct {
	Origin  Origin        `json:"origin"`
	Session model.Session `json:"session"`
}

// Repository provides game and session CRUD on top of the store
type Repository struct {
	store  *store.Store
	clock  clock.Clock
	random random.Random
	logger *slog.Logger
}

// New creates a Repository
func New(st *store.Store, clk clock.Clock, rnd random.Random, logger *slog.Logger) *Repository {
	return &Repository{
		store:  st,
		clock:  clk,
		random: rnd,
		logger: logger,
	}
}

// Recover restores collections from their backups. Call it once before
// the first read.
func (r *Repository) Recover(ctx context.Context) (bool, error) {
	return r.store.Recover(ctx)
}

// Status reports what each collection currently holds
func (r *Repository) Status(ctx context.Context) []store.Status {
	return r.store.Status(ctx)
}

// NewID generates an identifier for a new game or session
func (r *Repository) NewID() string {
	return random.NewID(r.clock.Now(), r.random)
}

// ListGames returns every custom game in stored order
func (r *Repository) ListGames(ctx context.Context) ([]model.Game, error) {
	games, _, err := store.Read[model.Game](ctx, r.store, store.CustomGames)
	if err != nil {
		return nil, err
	}
	if games == nil {
		games = []model.Game{}
	}
	return games, nil
}

// GetGame looks up a custom game by ID
func (r *Repository) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	games, err := r.ListGames(ctx)
	if err != nil {
		return nil, err
	}
	idx := slices.IndexFunc(games, func(g model.Game) bool { return g.ID == id })
	if idx < 0 {
		return nil, model.ErrGameNotFound
	}
	return &games[idx], nil
}

// CreateGame validates and stores a new custom game
func (r *Repository) CreateGame(ctx context.Context, title string, players []string) (*model.Game, error) {
	game := &model.Game{
		Title:          strings.TrimSpace(title),
		DefaultPlayers: model.NormalizePlayers(players),
	}
	if err := r.SaveGame(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

// SaveGame inserts the game when its ID is new and otherwise replaces the
// stored copy. A missing ID is generated. UpdatedAt is always refreshed.
func (r *Repository) SaveGame(ctx context.Context, game *model.Game) error {
	if err := game.Validate(); err != nil {
		return err
	}
	return r.store.Update(func() error {
		return r.saveGame(ctx, game)
	})
}

func (r *Repository) saveGame(ctx context.Context, game *model.Game) error {
	games, err := r.ListGames(ctx)
	if err != nil {
		return err
	}

	now := r.clock.Now()
	if game.ID == "" {
		game.ID = model.GameID(r.NewID())
	}
	game.UpdatedAt = now

	idx := slices.IndexFunc(games, func(g model.Game) bool { return g.ID == game.ID })
	if idx < 0 {
		if game.CreatedAt.IsZero() {
			game.CreatedAt = now
		}
		games = append(games, *game)
	} else {
		if game.CreatedAt.IsZero() {
			game.CreatedAt = games[idx].CreatedAt
		}
		games[idx] = *game
	}

	if err := r.store.Write(ctx, store.CustomGames, games); err != nil {
		return err
	}

	r.logger.Info("game saved",
		slog.String("game_id", string(game.ID)),
		slog.String("title", game.Title),
		slog.Int("player_count", len(game.DefaultPlayers)),
	)
	return nil
}

// UpdateGame changes an existing game's title and default roster
func (r *Repository) UpdateGame(ctx context.Context, id model.GameID, title string, players []string) (*model.Game, error) {
	var game *model.Game
	err := r.store.Update(func() error {
		var err error
		game, err = r.GetGame(ctx, id)
		if err != nil {
			return err
		}
		game.Title = strings.TrimSpace(title)
		game.DefaultPlayers = model.NormalizePlayers(players)
		if err := game.Validate(); err != nil {
			return err
		}
		return r.saveGame(ctx, game)
	})
	if err != nil {
		return nil, err
	}
	return game, nil
}

// DeleteGame removes the game and every session that belongs to it, by
// game ID or by title, from both session collections. It returns how many
// sessions were removed.
func (r *Repository) DeleteGame(ctx context.Context, id model.GameID) (int, error) {
	removed := 0
	err := r.store.Update(func() error {
		var err error
		removed, err = r.deleteGame(ctx, id)
		return err
	})
	return removed, err
}

func (r *Repository) deleteGame(ctx context.Context, id model.GameID) (int, error) {
	games, err := r.ListGames(ctx)
	if err != nil {
		return 0, err
	}
	idx := slices.IndexFunc(games, func(g model.Game) bool { return g.ID == id })
	if idx < 0 {
		return 0, model.ErrGameNotFound
	}
	game := games[idx]

	removed := 0
	for _, origin := range []Origin{OriginGeneric, OriginUnified} {
		n, err := r.removeSessions(ctx, origin, func(s *model.Session) bool {
			return s.BelongsTo(game.ID, game.Title)
		})
		if err != nil {
			return removed, err
		}
		removed += n
	}

	games = slices.Delete(games, idx, idx+1)
	if err := r.store.Write(ctx, store.CustomGames, games); err != nil {
		return removed, err
	}

	r.logger.Info("game deleted",
		slog.String("game_id", string(id)),
		slog.Int("sessions_removed", removed),
	)
	return removed, nil
}

// ListSessions returns generic sessions followed by unified sessions
func (r *Repository) ListSessions(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	for _, origin := range []Origin{OriginGeneric, OriginUnified} {
		sessions, err := r.readSessions(ctx, origin)
		if err != nil {
			return nil, err
		}
		for _, s := range sessions {
			entries = append(entries, Entry{Origin: origin, Session: s})
		}
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// SessionsForGame returns the sessions recorded for a game, matching
// custom sessions by game ID and built-in sessions by title. Newest first.
func (r *Repository) SessionsForGame(ctx context.Context, gameID model.GameID, title string) ([]Entry, error) {
	all, err := r.ListSessions(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]Entry, 0, len(all))
	for _, e := range all {
		if e.Session.BelongsTo(gameID, title) {
			matched = append(matched, e)
		}
	}
	SortNewestFirst(matched)
	return matched, nil
}

// GetSession finds a session in either collection
func (r *Repository) GetSession(ctx context.Context, id model.SessionID) (*Entry, error) {
	all, err := r.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	idx := slices.IndexFunc(all, func(e Entry) bool { return e.Session.ID == id })
	if idx < 0 {
		return nil, model.ErrSessionNotFound
	}
	return &all[idx], nil
}

// AddSession stores a finished score pad session in the generic
// collection. A stored session with the same ID is replaced, so saving
// the same session twice leaves one entry.
func (r *Repository) AddSession(ctx context.Context, session *model.Session) error {
	if session.Variant() != model.SessionKindRounds {
		return fmt.Errorf("%w: only score pad sessions can be added", model.ErrValidation)
	}
	if !session.Finished {
		return fmt.Errorf("%w: session is not finished", model.ErrValidation)
	}

	err := r.store.Update(func() error {
		sessions, err := r.readSessions(ctx, OriginGeneric)
		if err != nil {
			return err
		}
		idx := slices.IndexFunc(sessions, func(s model.Session) bool { return s.ID == session.ID })
		if idx < 0 {
			sessions = append(sessions, *session)
		} else {
			sessions[idx] = *session
		}
		return r.store.Write(ctx, store.GenericSessions, sessions)
	})
	if err != nil {
		return err
	}

	r.logger.Info("session saved",
		slog.String("session_id", string(session.ID)),
		slog.String("game_id", string(session.GameID)),
		slog.String("winner", session.Winner),
	)
	return nil
}

// DeleteSession removes a session from whichever collection holds it and
// reports which one that was
func (r *Repository) DeleteSession(ctx context.Context, id model.SessionID) (Origin, error) {
	var found Origin
	err := r.store.Update(func() error {
		for _, origin := range []Origin{OriginGeneric, OriginUnified} {
			n, err := r.removeSessions(ctx, origin, func(s *model.Session) bool {
				return s.ID == id
			})
			if err != nil {
				return err
			}
			if n > 0 {
				found = origin
				return nil
			}
		}
		return model.ErrSessionNotFound
	})
	if errors.Is(err, model.ErrSessionNotFound) {
		r.logger.Warn("session not found in either collection", slog.String("session_id", string(id)))
	}
	if err != nil {
		return "", err
	}

	r.logger.Info("session deleted",
		slog.String("session_id", string(id)),
		slog.String("origin", string(found)),
	)
	return found, nil
}

func (r *Repository) readSessions(ctx context.Context, origin Origin) ([]model.Session, error) {
	sessions, _, err := store.Read[model.Session](ctx, r.store, origin.Collection())
	return sessions, err
}

// removeSessions drops matching sessions from one collection, writing only
// when something matched. Callers hold the store lock.
func (r *Repository) removeSessions(ctx context.Context, origin Origin, match func(*model.Session) bool) (int, error) {
	sessions, err := r.readSessions(ctx, origin)
	if err != nil {
		return 0, err
	}

	kept := make([]model.Session, 0, len(sessions))
	for i := range sessions {
		if !match(&sessions[i]) {
			kept = append(kept, sessions[i])
		}
	}

	removed := len(sessions) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := r.store.Write(ctx, origin.Collection(), kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// SortNewestFirst orders entries by when they were played, latest first
func SortNewestFirst(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return b.Session.PlayedAt().Compare(a.Session.PlayedAt())
	})
}
