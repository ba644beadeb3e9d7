package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gnolang/modernize/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List rules in the order they run",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := newNormalizer()
		if err != nil {
			return fmt.Errorf("failed to initialize normalizer: %w", err)
		}
		disabled := make(map[string]bool)
		for _, id := range n.Config().DisabledRules() {
			disabled[id] = true
		}
		return printRules(cmd.OutOrStdout(), n.Catalog(), disabled)
	},
}

func printRules(w io.Writer, catalog *rules.Catalog, disabled map[string]bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tID\tCATEGORY\tCONTEXT\tSTATE\tDESCRIPTION")
	for _, r := range catalog.Rules() {
		sensitive := "-"
		if r.ContextSensitive {
			sensitive = "yes"
		}
		state := "on"
		if disabled[r.ID] {
			state = "off"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", r.Order, r.ID, r.Category, sensitive, state, r.Description)
	}
	return tw.Flush()
}
