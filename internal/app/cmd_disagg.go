package app

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"seisdisagg-core/disagg"
	"seisdisagg/internal/logging"
	"seisdisagg/internal/output"
	"seisdisagg/internal/pipeline"
	"seisdisagg/internal/scenario"
	"seisdisagg/internal/store"
	"seisdisagg/internal/writers"
	"seisdisagg/pkg/api"
)

type disaggFlags struct {
	scenario string
	output   string
	pmfs     []string
	top      int
	workers  int
	shards   int
	db       string
	header   bool
	iml      float64
}

func newDisaggCmd(g *globals) *cobra.Command {
	fl := &disaggFlags{}
	cmd := &cobra.Command{
		Use:   "disagg",
		Short: "Disaggregate hazard at the scenario site",
		Long: "Computes the 6-D disaggregation matrix (mag, dist, lon, lat, eps, trt) for the\n" +
			"scenario's intensity level and writes it with its marginal PMFs.\n\n" +
			"Exit status 4 means no rupture contributed to any bin; the all-zero\n" +
			"result is still written.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return classify(runDisagg(cmd, fl))
		},
	}
	f := cmd.Flags()
	f.StringVarP(&fl.scenario, "scenario", "s", "", "scenario file or built-in name (required)")
	f.StringVarP(&fl.output, "output", "o", "text", fmt.Sprintf("output format %v", writers.DisaggFormats()))
	f.StringSliceVar(&fl.pmfs, "pmf", nil, fmt.Sprintf("marginals to include %v (default all)", output.PMFNames()))
	f.IntVar(&fl.top, "top", 10, "text output: largest cells to list (0 = all)")
	f.IntVar(&fl.workers, "workers", g.env.Workers, "parallel shards in flight [env SEISDISAGG_WORKERS]")
	f.IntVar(&fl.shards, "shards", 0, "source shards (0 = one per worker)")
	f.StringVar(&fl.db, "db", g.env.DBPath, "SQLite file to record the run in [env SEISDISAGG_DB]")
	f.BoolVar(&fl.header, "header", true, "tsv output: write the header row")
	f.Float64Var(&fl.iml, "iml", 0, "override the scenario intensity level")
	_ = cmd.MarkFlagRequired("scenario")
	return cmd
}

func (fl *disaggFlags) validate() error {
	if _, ok := writers.DisaggWriters[fl.output]; !ok {
		return fmt.Errorf("unknown output format %q (known: %v)", fl.output, writers.DisaggFormats())
	}
	if err := checkPMFs(fl.pmfs); err != nil {
		return err
	}
	if fl.workers < 1 {
		return fmt.Errorf("--workers must be >= 1, got %d", fl.workers)
	}
	if fl.shards < 0 {
		return fmt.Errorf("--shards must be >= 0, got %d", fl.shards)
	}
	if fl.top < 0 {
		return fmt.Errorf("--top must be >= 0, got %d", fl.top)
	}
	return nil
}

func checkPMFs(names []string) error {
	for _, p := range names {
		if !slices.Contains(output.PMFNames(), p) {
			return fmt.Errorf("unknown pmf %q (known: %v)", p, output.PMFNames())
		}
	}
	return nil
}

func runDisagg(cmd *cobra.Command, fl *disaggFlags) error {
	if err := fl.validate(); err != nil {
		return usageErr(err)
	}
	ctx := cmd.Context()
	log := logging.New("disagg")

	sc, err := scenario.Load(fl.scenario)
	if err != nil {
		return usageErr(err)
	}
	if cmd.Flags().Changed("iml") {
		sc.IML = fl.iml
	}
	req, err := sc.DisaggRequest()
	if err != nil {
		return usageErr(err)
	}

	res, err := pipeline.Run(ctx, pipeline.Config{Workers: fl.workers, Shards: fl.shards}, req)
	noContribution := errors.Is(err, disagg.ErrNoContribution)
	if err != nil && !noContribution {
		return err
	}
	log.Info("disaggregated", "scenario", sc.Name, "ruptures", res.Ruptures,
		"shards", res.Shards, "shape", fmt.Sprint(res.Edges.Shape()), "no_contribution", noContribution)

	r := &output.Report{
		Meta:           metaFor(sc),
		Edges:          res.Edges,
		Matrix:         res.Matrix,
		NoContribution: noContribution,
		PMFs:           fl.pmfs,
		Top:            fl.top,
	}
	r.Meta.Ruptures = res.Ruptures

	if fl.db != "" {
		id, err := saveRun(ctx, fl.db, r)
		if err != nil {
			return err
		}
		r.Meta.RunID = id
		log.Info("run recorded", "db", fl.db, "run_id", id)
	}

	if err := writers.WriteDisagg(fl.output, cmd.OutOrStdout(), r, writers.Options{Header: fl.header}); err != nil {
		return err
	}
	if noContribution {
		return disagg.ErrNoContribution
	}
	return nil
}

func metaFor(sc *scenario.Scenario) output.Meta {
	return output.Meta{
		Scenario:        sc.Name,
		Site:            api.SiteV1{Lon: sc.Site.Lon, Lat: sc.Site.Lat, Vs30: sc.Site.Vs30},
		IMT:             sc.IMT,
		IML:             sc.IML,
		TimeSpan:        sc.TimeSpan,
		TruncationLevel: sc.TruncationLevel,
	}
}

func saveRun(ctx context.Context, path string, r *output.Report) (int64, error) {
	st, err := store.Open(ctx, path)
	if err != nil {
		return 0, err
	}
	defer st.Close()
	doc, err := output.ToAPI(r)
	if err != nil {
		return 0, err
	}
	return st.SaveRun(ctx, doc)
}
