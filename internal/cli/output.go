package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mcoot/scorepad/internal/model"
	"github.com/mcoot/scorepad/internal/services/play"
	"github.com/mcoot/scorepad/internal/services/repository"
	"github.com/mcoot/scorepad/internal/services/store"
	"github.com/mcoot/scorepad/internal/services/transfer"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintf(o.w, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case []model.Game:
		o.printGames(v)
	case *model.Game:
		o.printGame(v)
	case GameDetail:
		o.printGame(v.Game)
		fmt.Fprintln(o.w)
		o.printSessions(v.Sessions)
	case []repository.Entry:
		o.printSessions(v)
	case *model.Session:
		o.printSession(&repository.Entry{Origin: repository.OriginGeneric, Session: *v})
	case SessionDetail:
		o.printSession(v.Entry)
		if v.Sheet != nil {
			fmt.Fprintln(o.w)
			o.printSheet(v.Sheet)
		}
	case *play.View:
		o.printSheet(v)
	case transfer.Plan:
		o.printPlan(v)
	case DeleteGameResult:
		fmt.Fprintf(o.w, "Deleted game %s and %d session(s)\n", v.GameID, v.SessionsRemoved)
	case RecoverResult:
		if v.Recovered {
			fmt.Fprintln(o.w, "Data recovered from backup")
		} else {
			fmt.Fprintln(o.w, "Nothing to recover")
		}
		o.printStatus(v.Collections)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// GameDetail is a game together with its session history
type GameDetail struct {
	Game     *model.Game        `json:"game"`
	Sessions []repository.Entry `json:"sessions"`
}

// SessionDetail is a stored session with its score sheet, when it has one
type SessionDetail struct {
	*repository.Entry
	Sheet *play.View `json:"sheet,omitempty"`
}

// DeleteGameResult reports a cascading game delete
type DeleteGameResult struct {
	GameID          model.GameID `json:"gameId"`
	SessionsRemoved int          `json:"sessionsRemoved"`
}

// RecoverResult reports whether recovery promoted any backup and what each
// collection holds afterwards
type RecoverResult struct {
	Recovered   bool           `json:"recovered"`
	Collections []store.Status `json:"collections"`
}

func (o *Output) printGames(games []model.Game) {
	if len(games) == 0 {
		fmt.Fprintln(o.w, "No games yet")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPLAYERS")
	for _, g := range games {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", g.ID, g.Title, strings.Join(g.DefaultPlayers, ", "))
	}
	_ = tw.Flush()
}

func (o *Output) printGame(g *model.Game) {
	fmt.Fprintf(o.w, "Game: %s (%s)\n", g.Title, g.ID)
	fmt.Fprintf(o.w, "Players: %s\n", strings.Join(g.DefaultPlayers, ", "))
	fmt.Fprintf(o.w, "Created: %s\n", g.CreatedAt.Format(model.DateLayout))
	fmt.Fprintf(o.w, "Updated: %s\n", g.UpdatedAt.Format(model.DateLayout))
}

func (o *Output) printSessions(entries []repository.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(o.w, "No sessions recorded")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tGAME\tWINNER\tTOP\tORIGIN")
	for _, e := range entries {
		top := "-"
		if score, ok := e.Session.TopScore(); ok {
			top = strconv.FormatFloat(score, 'f', -1, 64)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Session.ID, e.Session.Date, sessionTitle(&e.Session), e.Session.Winner, top, e.Origin)
	}
	_ = tw.Flush()
}

func (o *Output) printSession(e *repository.Entry) {
	s := &e.Session
	fmt.Fprintf(o.w, "Session: %s (%s)\n", s.ID, e.Origin)
	fmt.Fprintf(o.w, "Game: %s\n", sessionTitle(s))
	fmt.Fprintf(o.w, "Date: %s\n", s.Date)
	fmt.Fprintf(o.w, "Players: %s\n", strings.Join(s.Players, ", "))

	switch s.Variant() {
	case model.SessionKindRounds:
		fmt.Fprintf(o.w, "Rounds: %d\n", len(s.Rounds))
		for _, pt := range s.PlayerTotals {
			fmt.Fprintf(o.w, "  %s: %d\n", pt.Player, pt.Total)
		}
	case model.SessionKindScores:
		for _, ps := range s.Scores {
			fmt.Fprintf(o.w, "  %s: %s\n", ps.PlayerName, strconv.FormatFloat(ps.Total, 'f', -1, 64))
		}
	}
	if s.Winner != "" {
		fmt.Fprintf(o.w, "Winner: %s\n", s.Winner)
	}
}

// printSheet renders the score table with a column per round, the player
// totals and a footer of round totals
func (o *Output) printSheet(v *play.View) {
	fmt.Fprintf(o.w, "%s  %s  [%s]  %s\n", v.GameTitle, v.Date, v.State, v.ID)

	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', tabwriter.AlignRight)
	header := []string{"PLAYER"}
	for r := range v.Rounds {
		header = append(header, fmt.Sprintf("R%d", r+1))
	}
	header = append(header, "TOTAL")
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")

	for p, name := range v.Players {
		row := []string{name}
		for _, round := range v.Rounds {
			row = append(row, strconv.Itoa(round[p]))
		}
		row = append(row, strconv.Itoa(v.Totals[p]))
		fmt.Fprintln(tw, strings.Join(row, "\t")+"\t")
	}

	footer := []string{"ROUND"}
	for _, t := range v.RoundTotals {
		footer = append(footer, strconv.Itoa(t))
	}
	footer = append(footer, strconv.Itoa(v.GrandTotal))
	fmt.Fprintln(tw, strings.Join(footer, "\t")+"\t")
	_ = tw.Flush()
}

func (o *Output) printStatus(statuses []store.Status) {
	if len(statuses) == 0 {
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COLLECTION\tITEMS\tBACKUP\tUPDATED")
	for _, st := range statuses {
		items := strconv.Itoa(st.Count)
		if !st.Valid {
			items = "-"
		}
		updated := "-"
		if st.Meta != nil {
			updated = st.Meta.LastUpdated.Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", st.Collection, items, st.BackupCount, updated)
	}
	_ = tw.Flush()
}

func (o *Output) printPlan(p transfer.Plan) {
	fmt.Fprintf(o.w, "Format: %s\n", p.Format)
	fmt.Fprintf(o.w, "Custom games: %d\n", p.Games)
	fmt.Fprintf(o.w, "Sessions: %d\n", p.GenericSessions)
	if p.ReplacesUnified {
		fmt.Fprintf(o.w, "Built-in game sessions: %d\n", p.UnifiedSessions)
	} else {
		fmt.Fprintln(o.w, "Built-in game sessions: unchanged")
	}
}

func sessionTitle(s *model.Session) string {
	if s.GameTitle != "" {
		return s.GameTitle
	}
	if s.GameType != "" {
		return s.GameType
	}
	return "(unknown)"
}
