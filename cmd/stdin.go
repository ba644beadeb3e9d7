package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gnolang/modernize/formatter"
	"github.com/gnolang/modernize/normalize"
)

var showTrace bool

var stdinCmd = &cobra.Command{
	Use:   "stdin",
	Short: "Normalize standard input to standard output",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := newNormalizer()
		if err != nil {
			return fmt.Errorf("failed to initialize normalizer: %w", err)
		}
		return runStdin(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), n, showTrace)
	},
}

func init() {
	stdinCmd.Flags().BoolVar(&showTrace, "trace", false, "Print applied rewrites to standard error")
}

func runStdin(in io.Reader, out, errOut io.Writer, engine normalize.Engine, trace bool) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if !trace {
		_, err = io.WriteString(out, engine.Normalize(string(data)))
		return err
	}
	result := engine.NormalizeWithTrace(string(data))
	if _, err := io.WriteString(out, result.Text); err != nil {
		return err
	}
	_, err = io.WriteString(errOut, formatter.GenerateFormattedRewrites(result.Applied))
	return err
}
