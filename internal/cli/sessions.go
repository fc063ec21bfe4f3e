package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mcoot/scorepad/internal/model"
	"github.com/mcoot/scorepad/internal/services/repository"
)

func newSessionsCmd() *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "Review and delete recorded sessions",
	}

	sessionsCmd.AddCommand(newSessionsListCmd())
	sessionsCmd.AddCommand(newSessionsShowCmd())
	sessionsCmd.AddCommand(newSessionsDeleteCmd())

	return sessionsCmd
}

func newSessionsListCmd() *cobra.Command {
	var (
		gameID string
		title  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions from the score pad and the built-in games",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var (
				entries []repository.Entry
				err     error
			)
			switch {
			case gameID != "":
				game, gerr := app.Repository.GetGame(ctx, model.GameID(gameID))
				if gerr != nil {
					return gerr
				}
				entries, err = app.Repository.SessionsForGame(ctx, game.ID, game.Title)
			case title != "":
				entries, err = app.Repository.SessionsForGame(ctx, "", title)
			default:
				entries, err = app.Repository.ListSessions(ctx)
			}
			if err != nil {
				return err
			}

			NewOutput(opts.Output, cmd.OutOrStdout()).Print(entries)
			return nil
		},
	}

	cmd.Flags().StringVar(&gameID, "game", "", "Only sessions of this custom game")
	cmd.Flags().StringVar(&title, "title", "", "Only sessions of the game with this title")
	cmd.MarkFlagsMutuallyExclusive("game", "title")
	return cmd
}

func newSessionsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show SESSION_ID",
		Short: "Show one session and its score sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := app.Repository.GetSession(cmd.Context(), model.SessionID(args[0]))
			if err != nil {
				return err
			}

			detail := SessionDetail{Entry: entry}
			if entry.Session.Variant() == model.SessionKindRounds {
				if detail.Sheet, err = app.Play.Sheet(&entry.Session); err != nil {
					app.Logger.Warn("session has no score sheet",
						slog.String("session_id", string(entry.Session.ID)),
						slog.String("error", err.Error()),
					)
				}
			}
			NewOutput(opts.Output, cmd.OutOrStdout()).Print(detail)
			return nil
		},
	}
}

func newSessionsDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete SESSION_ID",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := model.SessionID(args[0])
			if !yes && !confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), fmt.Sprintf("Delete session %s?", id)) {
				return errors.New("delete cancelled")
			}

			origin, err := app.Repository.DeleteSession(cmd.Context(), id)
			if err != nil {
				return err
			}
			NewOutput(opts.Output, cmd.OutOrStdout()).PrintMessage(fmt.Sprintf("Deleted %s session %s", origin, id))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
