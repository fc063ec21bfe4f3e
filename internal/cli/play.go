package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/scorepad/internal/model"
	"github.com/mcoot/scorepad/internal/services/play"
)

const playHelp = `Commands:
  score R P V   set round R, player P (both from 1) to V
  round         add a new round
  totals        show player totals
  show          show the full score sheet
  finish        save the session and announce the winner
  cancel        discard the session without saving
  help          show this help`

func newPlayCmd() *cobra.Command {
	var (
		players []string
		date    string
	)

	cmd := &cobra.Command{
		Use:   "play GAME_ID",
		Short: "Score a new session interactively",
		Long: `Start a scoring session for a custom game and enter scores round by round.

The game's default players are used unless --player is given. Backups are
refreshed in the background while the session is open.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			workerDone := app.Backup.Start(ctx)
			defer func() {
				cancel()
				<-workerDone
			}()

			var roster []string
			if cmd.Flags().Changed("player") {
				roster = players
			}
			view, err := app.Play.Begin(ctx, model.GameID(args[0]), roster, date)
			if err != nil {
				return err
			}

			r := &repl{
				play: app.Play,
				id:   view.ID,
				in:   cmd.InOrStdin(),
				out:  NewOutput(opts.Output, cmd.OutOrStdout()),
			}
			r.out.Print(view)
			r.out.PrintMessage(playHelp)
			return r.run(ctx)
		},
	}

	cmd.Flags().StringArrayVarP(&players, "player", "p", nil, "Player for this session (repeatable)")
	cmd.Flags().StringVar(&date, "date", "", "Session date as YYYY-MM-DD (default today)")
	return cmd
}

// repl reads score pad commands for one active session
type repl struct {
	play *play.Controller
	id   model.SessionID
	in   io.Reader
	out  *Output
}

// run processes commands until the session is finished or cancelled.
// End of input cancels the session.
func (r *repl) run(ctx context.Context) error {
	scanner := bufio.NewScanner(r.in)
	for {
		if r.out.format != "json" {
			fmt.Fprint(r.out.w, "> ")
		}
		if !scanner.Scan() {
			break
		}
		done, err := r.exec(ctx, strings.Fields(scanner.Text()))
		if err != nil {
			r.out.PrintError(err)
		}
		if done {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if err := r.play.Cancel(r.id); err != nil && !errors.Is(err, model.ErrActiveSessionNotFound) {
		return err
	}
	r.out.PrintMessage("Input closed, session discarded")
	return nil
}

// exec runs one command and reports whether the session has ended
func (r *repl) exec(ctx context.Context, fields []string) (bool, error) {
	if len(fields) == 0 {
		return false, nil
	}

	switch strings.ToLower(fields[0]) {
	case "score", "s":
		if len(fields) != 4 {
			return false, errors.New("usage: score ROUND PLAYER VALUE")
		}
		round, err := position(fields[1], "round")
		if err != nil {
			return false, err
		}
		player, err := position(fields[2], "player")
		if err != nil {
			return false, err
		}
		view, err := r.play.SetScoreInput(r.id, round, player, fields[3])
		if err != nil {
			return false, err
		}
		r.out.Print(view)
	case "round", "r":
		view, err := r.play.AddRound(r.id)
		if err != nil {
			return false, err
		}
		r.out.Print(view)
	case "totals", "t":
		view, err := r.play.Get(r.id)
		if err != nil {
			return false, err
		}
		r.printTotals(view)
	case "show":
		view, err := r.play.Get(r.id)
		if err != nil {
			return false, err
		}
		r.out.Print(view)
	case "finish", "f":
		record, err := r.play.Finish(ctx, r.id)
		if err != nil {
			if errors.Is(err, model.ErrStorageFailure) {
				return false, fmt.Errorf("%w; type finish to retry", err)
			}
			return false, err
		}
		r.out.Print(record)
		return true, nil
	case "cancel":
		if err := r.play.Cancel(r.id); err != nil {
			return false, err
		}
		r.out.PrintMessage("Session discarded")
		return true, nil
	case "help", "?":
		r.out.PrintMessage(playHelp)
	default:
		return false, fmt.Errorf("unknown command %q, type help for a list", fields[0])
	}
	return false, nil
}

func (r *repl) printTotals(view *play.View) {
	if r.out.format == "json" {
		totals := make(map[string]int, len(view.Players))
		for i, name := range view.Players {
			totals[name] = view.Totals[i]
		}
		r.out.Print(totals)
		return
	}
	for i, name := range view.Players {
		fmt.Fprintf(r.out.w, "%s: %d\n", name, view.Totals[i])
	}
}

// position converts a 1-based index typed by the user to a 0-based one
func position(raw, what string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s must be a number from 1", model.ErrInvalidPosition, what)
	}
	return n - 1, nil
}
