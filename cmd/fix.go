package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/modernize/formatter"
	"github.com/gnolang/modernize/normalize"
)

var dryRun bool

var fixCmd = &cobra.Command{
	Use:   "fix [paths...]",
	Short: "Rewrite legacy usage in place",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		n, err := newNormalizer()
		if err != nil {
			return fmt.Errorf("failed to initialize normalizer: %w", err)
		}
		return runFix(ctx, cmd.OutOrStdout(), logger, n, args, dryRun)
	},
}

func init() {
	fixCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show a diff instead of writing files")
}

func runFix(ctx context.Context, w io.Writer, logger *zap.Logger, engine normalize.Engine, paths []string, dryRun bool) error {
	results, err := normalize.ProcessFiles(ctx, logger, engine, paths, !dryRun)
	if err != nil {
		return err
	}

	changed := 0
	for _, r := range results {
		if !r.Changed() {
			continue
		}
		changed++
		if !dryRun {
			fmt.Fprintf(w, "fixed %s (%d rewrites)\n", r.Filename, len(r.Applied))
			continue
		}
		diff, err := formatter.UnifiedDiff(r.Filename, r.Original, r.Text)
		if err != nil {
			return fmt.Errorf("failed to diff %s: %w", r.Filename, err)
		}
		fmt.Fprint(w, formatter.ColorizeDiff(diff))
	}

	verb := "fixed"
	if dryRun {
		verb = "would be fixed"
	}
	fmt.Fprintf(w, "%d of %d files %s\n", changed, len(results), verb)
	return nil
}
