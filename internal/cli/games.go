package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/scorepad/internal/model"
)

func newGamesCmd() *cobra.Command {
	gamesCmd := &cobra.Command{
		Use:   "games",
		Short: "Manage custom games",
	}

	gamesCmd.AddCommand(newGamesListCmd())
	gamesCmd.AddCommand(newGamesAddCmd())
	gamesCmd.AddCommand(newGamesEditCmd())
	gamesCmd.AddCommand(newGamesShowCmd())
	gamesCmd.AddCommand(newGamesDeleteCmd())

	return gamesCmd
}

func newGamesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List custom games",
		RunE: func(cmd *cobra.Command, args []string) error {
			games, err := app.Repository.ListGames(cmd.Context())
			if err != nil {
				return err
			}
			NewOutput(opts.Output, cmd.OutOrStdout()).Print(games)
			return nil
		},
	}
}

func newGamesAddCmd() *cobra.Command {
	var players []string

	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Create a custom game",
		Long: `Create a custom game with a default roster.

Example:
  scorepad games add "Rummy" -p Ann -p Bob -p Cy`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			game, err := app.Repository.CreateGame(cmd.Context(), args[0], players)
			if err != nil {
				return err
			}
			NewOutput(opts.Output, cmd.OutOrStdout()).Print(game)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&players, "player", "p", nil, "Default player (repeatable)")
	return cmd
}

func newGamesEditCmd() *cobra.Command {
	var (
		title   string
		players []string
	)

	cmd := &cobra.Command{
		Use:   "edit GAME_ID",
		Short: "Rename a game or replace its default roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := model.GameID(args[0])

			current, err := app.Repository.GetGame(ctx, id)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("title") {
				title = current.Title
			}
			if !cmd.Flags().Changed("player") {
				players = current.DefaultPlayers
			}

			game, err := app.Repository.UpdateGame(ctx, id, title, players)
			if err != nil {
				return err
			}
			NewOutput(opts.Output, cmd.OutOrStdout()).Print(game)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringArrayVarP(&players, "player", "p", nil, "Default player (repeatable, replaces the roster)")
	return cmd
}

func newGamesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show GAME_ID",
		Short: "Show a game and its session history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			game, err := app.Repository.GetGame(ctx, model.GameID(args[0]))
			if err != nil {
				return err
			}
			sessions, err := app.Repository.SessionsForGame(ctx, game.ID, game.Title)
			if err != nil {
				return err
			}
			NewOutput(opts.Output, cmd.OutOrStdout()).Print(GameDetail{Game: game, Sessions: sessions})
			return nil
		},
	}
}

func newGamesDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete GAME_ID",
		Short: "Delete a game and every session recorded for it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			game, err := app.Repository.GetGame(ctx, model.GameID(args[0]))
			if err != nil {
				return err
			}

			question := fmt.Sprintf("Delete %q and all of its sessions?", game.Title)
			if !yes && !confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), question) {
				return errors.New("delete cancelled")
			}

			removed, err := app.Repository.DeleteGame(ctx, game.ID)
			if err != nil {
				return err
			}
			NewOutput(opts.Output, cmd.OutOrStdout()).Print(DeleteGameResult{GameID: game.ID, SessionsRemoved: removed})
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
