package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"seisdisagg/internal/config"
	"seisdisagg/internal/logging"
)

// globals holds the flags shared by every subcommand.
type globals struct {
	env       config.Env
	logLevel  string
	logFormat string
}

func newRootCmd(env config.Env) *cobra.Command {
	g := &globals{env: env}
	root := &cobra.Command{
		Use:   "seisdisagg",
		Short: "Probabilistic seismic hazard disaggregation",
		Long: "seisdisagg decomposes the probability of exceeding a ground-motion level at a\n" +
			"site into contributions by magnitude, distance, location, epsilon and\n" +
			"tectonic region type.",
		Version:           Version,
		SilenceErrors:     true,
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.initLogging(cmd)
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageErr(err) })

	f := root.PersistentFlags()
	f.StringVar(&g.logLevel, "log-level", env.LogLevel, "log level: debug, info, warn, error [env SEISDISAGG_LOG_LEVEL]")
	f.StringVar(&g.logFormat, "log-format", env.LogFormat, "log format: text or json [env SEISDISAGG_LOG_FORMAT]")

	root.AddCommand(
		newDisaggCmd(g),
		newCurveCmd(g),
		newScenariosCmd(),
		newRunsCmd(g),
		newVersionCmd(),
	)
	return root
}

func (g *globals) initLogging(cmd *cobra.Command) error {
	level, err := logging.ParseLevel(g.logLevel)
	if err != nil {
		return usageErr(err)
	}
	format, err := logging.ParseFormat(g.logFormat)
	if err != nil {
		return usageErr(err)
	}
	logging.Init(level, format, cmd.ErrOrStderr())
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "seisdisagg version %s\n", Version)
		},
	}
}
