package request

// GameRequest is the request body for creating or editing a game
type GameRequest struct {
	Title          string   `json:"title"`
	DefaultPlayers []string `json:"default_players"`
}

// BeginPlayRequest is the request body for starting a session. Players
// defaults to the game's roster and Date to today.
type BeginPlayRequest struct {
	Players []string `json:"players,omitempty"`
	Date    string   `json:"date,omitempty"`
}

// SetScoreRequest sets one cell of the score sheet. Value takes precedence;
// otherwise Input is parsed like a typed form field.
type SetScoreRequest struct {
	Round  int    `json:"round"`
	Player int    `json:"player"`
	Value  *int   `json:"value,omitempty"`
	Input  string `json:"input,omitempty"`
}
