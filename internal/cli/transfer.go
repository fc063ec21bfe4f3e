package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/scorepad/internal/services/transfer"
)

func newExportCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every game and session to a backup file",
		Long: `Write every custom game and session to a JSON backup file.

The file is named game-scoring-backup-YYYY-MM-DD.json unless --out is given.
Use --out - to write to standard output.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := app.Transfer.Export(cmd.Context())
			if err != nil {
				return err
			}
			data, err := doc.Encode()
			if err != nil {
				return fmt.Errorf("encode export: %w", err)
			}

			if outPath == "-" {
				_, err := cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if outPath == "" {
				outPath = transfer.FileName(app.Clock.Now())
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}

			NewOutput(opts.Output, cmd.OutOrStdout()).PrintMessage(fmt.Sprintf(
				"Exported %d games and %d sessions to %s",
				len(doc.CustomGames), len(doc.AllSessions), outPath))
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Output file (default game-scoring-backup-<date>.json)")
	return cmd
}

func newImportCmd() *cobra.Command {
	var (
		yes    bool
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace stored data with a backup file",
		Long: `Replace stored games and sessions with the contents of a backup file.

Version 2.0 files replace every collection. Older files with only games and
sessions leave built-in game sessions untouched. Use - to read from standard
input (requires --yes or --dry-run). With --dry-run the file is checked and
summarized without changing anything.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				if !yes && !dryRun {
					return errors.New("--yes or --dry-run is required when reading from standard input")
				}
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			out := NewOutput(opts.Output, cmd.OutOrStdout())
			if dryRun {
				plan, err := transfer.Inspect(data)
				if err != nil {
					return err
				}
				out.Print(plan)
				return nil
			}

			approve := transfer.Always
			if !yes {
				approve = func(plan transfer.Plan) bool {
					NewOutput("text", cmd.ErrOrStderr()).Print(plan)
					return confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), "This replaces your current data. Continue?")
				}
			}

			plan, err := app.Transfer.Import(cmd.Context(), data, approve)
			if err != nil {
				return err
			}
			out.Print(plan)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Import without asking for confirmation")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only check the file and show what it would replace")
	cmd.MarkFlagsMutuallyExclusive("yes", "dry-run")
	return cmd
}
