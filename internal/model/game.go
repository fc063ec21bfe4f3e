package model

import (
	"fmt"
	"strings"
	"time"
)

// GameID uniquely identifies a custom game
type GameID string

// Game is a user-defined game with a default roster
type Game struct {
	ID             GameID    `json:"id"`
	Title          string    `json:"title"`
	DefaultPlayers []string  `json:"defaultPlayers"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// DefaultPlayerName is the name given to a roster slot left blank
func DefaultPlayerName(position int) string {
	return fmt.Sprintf("Player %d", position+1)
}

// NormalizePlayers trims each name and fills blanks with their default name
func NormalizePlayers(names []string) []string {
	players := make([]string, len(names))
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			name = DefaultPlayerName(i)
		}
		players[i] = name
	}
	return players
}

// Validate checks the game has a title and at least one default player
func (g *Game) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return fmt.Errorf("%w: game title is required", ErrValidation)
	}
	if len(g.DefaultPlayers) == 0 {
		return fmt.Errorf("%w: at least one player is required", ErrValidation)
	}
	return nil
}
