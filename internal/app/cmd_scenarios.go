package app

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"seisdisagg/internal/scenario"
)

func newScenariosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the built-in scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range scenario.List() {
				sc, err := scenario.Load(name)
				if err != nil {
					return classify(fmt.Errorf("built-in %s: %w", name, err))
				}
				fmt.Fprintf(tw, "%s\t%s\t%d sources\t%s\n", name, sc.IMT, len(sc.Sources), strings.Join(strings.Fields(sc.Description), " "))
			}
			return classify(tw.Flush())
		},
	}
}
