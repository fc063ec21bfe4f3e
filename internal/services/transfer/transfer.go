// Package transfer exports every collection as one portable document and
// imports such documents, including the older games/sessions layout.
package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/scorepad/internal/dependencies/clock"
	"github.com/mcoot/scorepad/internal/model"
	"github.com/mcoot/scorepad/internal/services/store"
)

// CurrentVersion tags documents written by Export
const CurrentVersion = "2.0"

// Format identifies the layout of an import document
type Format string

const (
	FormatCurrent Format = "current" // Version 2.0, all three collections
	FormatLegacy  Format = "legacy"  // Bare games and sessions, no version
)

// Document is the export file layout
type Document struct {
	CustomGames         []model.Game    `json:"customGames"`
	GenericSessions     []model.Session `json:"genericSessions"`
	BuiltInGameSessions []model.Session `json:"builtInGameSessions"`
	AllSessions         []model.Session `json:"allSessions"`
	Exported            time.Time       `json:"exported"`
	Version             string          `json:"version"`
}

// Plan describes what an import would replace. It is shown to the user
// before anything is written.
type Plan struct {
	Format          Format `json:"format"`
	Games           int    `json:"games"`
	GenericSessions int    `json:"genericSessions"`
	UnifiedSessions int    `json:"unifiedSessions"`
	ReplacesUnified bool   `json:"replacesUnified"`
}

// Confirm decides whether a planned import goes ahead
type Confirm func(Plan) bool

// Always approves every import
func Always(Plan) bool { return true }

// Service runs exports and imports against the store
type Service struct {
	store  *store.Store
	clock  clock.Clock
	logger *slog.Logger
}

// New creates a transfer Service
func New(st *store.Store, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		store:  st,
		clock:  clk,
		logger: logger,
	}
}

// FileName returns the suggested export file name for the given day
func FileName(now time.Time) string {
	return fmt.Sprintf("game-scoring-backup-%s.json", now.Format(model.DateLayout))
}

// Export snapshots all three collections. AllSessions is the generic list
// followed by the built-in list and is informational only.
func (s *Service) Export(ctx context.Context) (*Document, error) {
	games, _, err := store.Read[model.Game](ctx, s.store, store.CustomGames)
	if err != nil {
		return nil, err
	}
	generic, _, err := store.Read[model.Session](ctx, s.store, store.GenericSessions)
	if err != nil {
		return nil, err
	}
	unified, _, err := store.Read[model.Session](ctx, s.store, store.UnifiedSessions)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		CustomGames:         nonNil(games),
		GenericSessions:     nonNil(generic),
		BuiltInGameSessions: nonNil(unified),
		AllSessions:         append(append([]model.Session{}, generic...), unified...),
		Exported:            s.clock.Now(),
		Version:             CurrentVersion,
	}

	s.logger.Info("data exported",
		slog.Int("games", len(doc.CustomGames)),
		slog.Int("generic_sessions", len(doc.GenericSessions)),
		slog.Int("unified_sessions", len(doc.BuiltInGameSessions)),
	)
	return doc, nil
}

// Encode renders the document as indented JSON
func (d *Document) Encode() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// decoded is an import document after every collection has been parsed
type decoded struct {
	plan    Plan
	games   []model.Game
	generic []model.Session
	unified []model.Session
}

// Inspect parses an import document without writing anything
func Inspect(data []byte) (Plan, error) {
	d, err := decode(data)
	if err != nil {
		return Plan{}, err
	}
	return d.plan, nil
}

// Import replaces collections with the document's contents once confirm
// approves the plan. Current documents replace all three collections;
// legacy documents leave built-in sessions untouched. Nothing is written
// if the document is invalid or the import is declined. The writes hold
// the store lock, so concurrent game and session changes land either
// before or after the import, never between its collections.
func (s *Service) Import(ctx context.Context, data []byte, confirm Confirm) (Plan, error) {
	d, err := decode(data)
	if err != nil {
		s.logger.Warn("import rejected", slog.String("error", err.Error()))
		return Plan{}, err
	}
	if confirm == nil || !confirm(d.plan) {
		return d.plan, model.ErrImportDeclined
	}

	err = s.store.Update(func() error {
		if err := s.store.Write(ctx, store.CustomGames, d.games); err != nil {
			return err
		}
		if err := s.store.Write(ctx, store.GenericSessions, d.generic); err != nil {
			return err
		}
		if d.plan.ReplacesUnified {
			return s.store.Write(ctx, store.UnifiedSessions, d.unified)
		}
		return nil
	})
	if err != nil {
		return d.plan, err
	}

	s.logger.Info("data imported",
		slog.String("format", string(d.plan.Format)),
		slog.Int("games", d.plan.Games),
		slog.Int("generic_sessions", d.plan.GenericSessions),
		slog.Int("unified_sessions", d.plan.UnifiedSessions),
	)
	return d.plan, nil
}

func decode(data []byte) (*decoded, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrInvalidFormat, err)
	}

	var version string
	if raw, ok := fields["version"]; ok {
		_ = json.Unmarshal(raw, &version)
	}

	d := &decoded{}
	switch {
	case version == CurrentVersion && present(fields, "customGames"):
		d.plan = Plan{Format: FormatCurrent, ReplacesUnified: true}
		if err := decodeList(fields, "customGames", &d.games); err != nil {
			return nil, err
		}
		if err := decodeList(fields, "genericSessions", &d.generic); err != nil {
			return nil, err
		}
		if err := decodeList(fields, "builtInGameSessions", &d.unified); err != nil {
			return nil, err
		}
	case present(fields, "games") && present(fields, "sessions"):
		d.plan = Plan{Format: FormatLegacy}
		if err := decodeList(fields, "games", &d.games); err != nil {
			return nil, err
		}
		if err := decodeList(fields, "sessions", &d.generic); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: expected version %s data or games and sessions", model.ErrInvalidFormat, CurrentVersion)
	}

	d.games = nonNil(d.games)
	d.generic = nonNil(d.generic)
	d.unified = nonNil(d.unified)
	d.plan.Games = len(d.games)
	d.plan.GenericSessions = len(d.generic)
	d.plan.UnifiedSessions = len(d.unified)
	return d, nil
}

// present reports whether key holds a value other than null, false, 0 or ""
func present(fields map[string]json.RawMessage, key string) bool {
	raw, ok := fields[key]
	if !ok {
		return false
	}
	switch string(bytes.TrimSpace(raw)) {
	case "null", "false", "0", `""`:
		return false
	}
	return true
}

func decodeList[T any](fields map[string]json.RawMessage, key string, dst *[]T) error {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %s: %w", model.ErrInvalidFormat, key, err)
	}
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
