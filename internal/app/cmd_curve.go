package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"seisdisagg-core/hazard"
	"seisdisagg/internal/logging"
	"seisdisagg/internal/output"
	"seisdisagg/internal/scenario"
	"seisdisagg/internal/writers"
)

type curveFlags struct {
	scenario string
	output   string
	header   bool
}

func newCurveCmd(g *globals) *cobra.Command {
	fl := &curveFlags{}
	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Compute hazard curves at the scenario site",
		Long: "Computes the probability of exceeding each level of the scenario's curves\n" +
			"section (or its single disaggregation level) over the time span.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return classify(runCurve(cmd, fl))
		},
	}
	f := cmd.Flags()
	f.StringVarP(&fl.scenario, "scenario", "s", "", "scenario file or built-in name (required)")
	f.StringVarP(&fl.output, "output", "o", "tsv", fmt.Sprintf("output format %v", writers.CurvesFormats()))
	f.BoolVar(&fl.header, "header", true, "tsv output: write the header row")
	_ = cmd.MarkFlagRequired("scenario")
	return cmd
}

func runCurve(cmd *cobra.Command, fl *curveFlags) error {
	if _, ok := writers.CurvesWriters[fl.output]; !ok {
		return usageErr(fmt.Errorf("unknown output format %q (known: %v)", fl.output, writers.CurvesFormats()))
	}
	sc, err := scenario.Load(fl.scenario)
	if err != nil {
		return usageErr(err)
	}
	req, err := sc.CurveRequest()
	if err != nil {
		return usageErr(err)
	}
	if err := cmd.Context().Err(); err != nil {
		return err
	}

	poes, err := hazard.Curves(req)
	if err != nil {
		return err
	}
	logging.New("curve").Info("hazard curves", "scenario", sc.Name, "imts", len(poes))

	r := &output.CurveReport{Meta: metaFor(sc), Levels: req.IMTs, PoEs: poes}
	return writers.WriteCurves(fl.output, cmd.OutOrStdout(), r, writers.Options{Header: fl.header})
}
