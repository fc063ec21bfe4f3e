package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/scorepad/internal/config"
	"github.com/mcoot/scorepad/internal/factory"
)

// Options holds flags that only affect the CLI itself
type Options struct {
	EnvFile string
	Output  string
	Verbose bool
	Storage string
	DBPath  string
	Redis   string
}

var (
	cfg  *config.Config
	opts *Options
	app  *factory.App
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts = &Options{EnvFile: ".env", Output: "text"}

	rootCmd := &cobra.Command{
		Use:   "scorepad",
		Short: "Keep score for board and card games",
		Long: `scorepad records custom games and round-by-round scoring sessions.

Data is kept in a local store with an automatic backup copy of every
collection, and can be exported to or imported from a JSON backup file.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validation runs again once flags are applied
			loaded, err := config.Load(opts.EnvFile)
			if loaded == nil {
				return err
			}
			cfg = loaded
			applyFlags(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			level := cfg.SlogLevel()
			if opts.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			app, err = factory.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			if app.Recovered {
				NewOutput(opts.Output, cmd.ErrOrStderr()).PrintMessage("Data recovered from backup")
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return closeApp()
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", opts.EnvFile, "Optional .env file with SCOREPAD_* settings")
	rootCmd.PersistentFlags().StringVar(&opts.Storage, "storage", "", "Storage backend: sqlite, redis, memory (env: SCOREPAD_STORAGE)")
	rootCmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "SQLite database path (env: SCOREPAD_DB)")
	rootCmd.PersistentFlags().StringVar(&opts.Redis, "redis-url", "", "Redis URL (env: SCOREPAD_REDIS_URL)")
	rootCmd.PersistentFlags().StringVarP(&opts.Output, "output", "o", opts.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", opts.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newGamesCmd())
	rootCmd.AddCommand(newSessionsCmd())
	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newRecoverCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

// applyFlags overrides environment settings with flags that were set
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("storage") {
		c.Storage = opts.Storage
	}
	if flags.Changed("db") {
		c.DBPath = opts.DBPath
	}
	if flags.Changed("redis-url") {
		c.RedisURL = opts.Redis
	}
}

// closeApp releases the application opened by PersistentPreRunE. Cobra
// skips post-run hooks when a command fails, so Execute calls it too.
func closeApp() error {
	if app == nil {
		return nil
	}
	err := app.Close()
	app = nil
	return err
}

// Execute runs the root command
func Execute() {
	err := NewRootCmd().Execute()
	_ = closeApp()
	if err != nil {
		os.Exit(1)
	}
}
