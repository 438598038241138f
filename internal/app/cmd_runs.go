package app

import (
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"seisdisagg/internal/output"
	"seisdisagg/internal/store"
	"seisdisagg/internal/writers"
)

type runsFlags struct {
	db       string
	scenario string
	limit    int
	output   string
	pmfs     []string
	top      int
	header   bool
}

func newRunsCmd(g *globals) *cobra.Command {
	fl := &runsFlags{}
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect disaggregation runs recorded with --db",
	}
	cmd.PersistentFlags().StringVar(&fl.db, "db", g.env.DBPath, "SQLite file holding the runs [env SEISDISAGG_DB]")

	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return classify(runsList(cmd, fl))
		},
	}
	list.Flags().StringVar(&fl.scenario, "scenario", "", "only runs of this scenario")
	list.Flags().IntVar(&fl.limit, "limit", 20, "maximum rows (0 = all)")

	show := &cobra.Command{
		Use:   "show ID",
		Short: "Re-render a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return classify(runsShow(cmd, fl, args[0]))
		},
	}
	show.Flags().StringVarP(&fl.output, "output", "o", "text", fmt.Sprintf("output format %v", writers.DisaggFormats()))
	show.Flags().StringSliceVar(&fl.pmfs, "pmf", nil, "marginals to include (default all)")
	show.Flags().IntVar(&fl.top, "top", 10, "text output: largest cells to list (0 = all)")
	show.Flags().BoolVar(&fl.header, "header", true, "tsv output: write the header row")

	rm := &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return classify(runsRemove(cmd, fl, args[0]))
		},
	}

	cmd.AddCommand(list, show, rm)
	return cmd
}

func (fl *runsFlags) open(cmd *cobra.Command) (*store.Store, error) {
	if fl.db == "" {
		return nil, usageErr(errors.New("--db (or SEISDISAGG_DB) is required"))
	}
	return store.Open(cmd.Context(), fl.db)
}

func parseRunID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, usageErr(fmt.Errorf("invalid run id %q", s))
	}
	return id, nil
}

func runsList(cmd *cobra.Command, fl *runsFlags) error {
	st, err := fl.open(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(cmd.Context(), fl.scenario, fl.limit)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "id\tcreated\tscenario\timt\timl\tstatus\tcells")
	for _, r := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%g\t%s\t%d\n",
			r.ID, r.CreatedAt.Format(time.RFC3339), r.Scenario, r.IMT, r.IML, r.Status, r.Cells)
	}
	return tw.Flush()
}

func runsShow(cmd *cobra.Command, fl *runsFlags, arg string) error {
	id, err := parseRunID(arg)
	if err != nil {
		return err
	}
	if _, ok := writers.DisaggWriters[fl.output]; !ok {
		return usageErr(fmt.Errorf("unknown output format %q (known: %v)", fl.output, writers.DisaggFormats()))
	}
	if err := checkPMFs(fl.pmfs); err != nil {
		return usageErr(err)
	}
	st, err := fl.open(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	doc, err := st.LoadRun(cmd.Context(), id)
	if err != nil {
		return err
	}
	r, err := output.FromAPI(doc)
	if err != nil {
		return err
	}
	r.PMFs, r.Top = fl.pmfs, fl.top
	return writers.WriteDisagg(fl.output, cmd.OutOrStdout(), r, writers.Options{Header: fl.header})
}

func runsRemove(cmd *cobra.Command, fl *runsFlags, arg string) error {
	id, err := parseRunID(arg)
	if err != nil {
		return err
	}
	st, err := fl.open(cmd)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.DeleteRun(cmd.Context(), id)
}
