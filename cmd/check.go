package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/modernize/formatter"
	tt "github.com/gnolang/modernize/internal/types"
	"github.com/gnolang/modernize/normalize"
)

var (
	checkJSONOutput bool
	outPath         string
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Report legacy usage without changing files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		n, err := newNormalizer()
		if err != nil {
			return fmt.Errorf("failed to initialize normalizer: %w", err)
		}
		return runCheck(ctx, cmd.OutOrStdout(), logger, n, args, checkJSONOutput, outPath)
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkJSONOutput, "json", false, "Output rewrites in JSON format")
	checkCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
}

func runCheck(ctx context.Context, w io.Writer, logger *zap.Logger, engine normalize.Engine, paths []string, isJSON bool, jsonOutput string) error {
	results, err := normalize.ProcessFiles(ctx, logger, engine, paths, false)
	if err != nil {
		return err
	}

	if err := printRewrites(w, results, isJSON, jsonOutput); err != nil {
		return err
	}
	for _, r := range results {
		if r.Changed() {
			return ErrRewritesFound
		}
	}
	return nil
}

func printRewrites(w io.Writer, results []normalize.FileResult, isJSON bool, jsonOutput string) error {
	if !isJSON {
		for _, r := range results {
			if len(r.Applied) > 0 {
				fmt.Fprint(w, formatter.GenerateFormattedRewrites(r.Applied))
			}
		}
		return nil
	}

	byFile := make(map[string][]tt.Rewrite)
	for _, r := range results {
		if len(r.Applied) > 0 {
			byFile[r.Filename] = r.Applied
		}
	}
	d, err := json.Marshal(byFile)
	if err != nil {
		return fmt.Errorf("failed to marshal rewrites: %w", err)
	}
	if jsonOutput == "" {
		fmt.Fprintln(w, string(d))
		return nil
	}
	if err := os.WriteFile(jsonOutput, d, 0o644); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	return nil
}
