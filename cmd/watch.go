package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/gnolang/modernize/formatter"
	"github.com/gnolang/modernize/normalize"
)

var watchWrite bool

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Report or fix legacy usage as files change",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		n, err := newNormalizer()
		if err != nil {
			return fmt.Errorf("failed to initialize normalizer: %w", err)
		}
		w := cmd.OutOrStdout()
		return normalize.Watch(ctx, logger, n, args, watchWrite, func(r normalize.FileResult) {
			if watchWrite {
				fmt.Fprintf(w, "fixed %s (%d rewrites)\n", r.Filename, len(r.Applied))
				return
			}
			fmt.Fprint(w, formatter.GenerateFormattedRewrites(r.Applied))
		})
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchWrite, "write", false, "Rewrite files instead of reporting")
}
