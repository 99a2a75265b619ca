package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pion/logging"
	"github.com/spf13/cobra"

	"github.com/backkem/holopair/pkg/config"
)

var (
	configPath  string
	logLevel    string
	scheme      string
	elements    []int
	attack      int
	noDiscovery bool
	record      bool
	resultsDir  string

	cfg           config.Config
	loggerFactory logging.LoggerFactory
)

// Execute runs the CLI.
func Execute() error {
	root := &cobra.Command{
		Use:          "holopair",
		Short:        "Pair two devices with a human-verified visual check",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.LoadConfigFromPath(configPath)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("log-level") {
				c.LogLevel = logLevel
			}
			if flags.Changed("scheme") {
				c.Scheme = scheme
			}
			if flags.Changed("elements") {
				c.ElementSizes = elements
			}
			if flags.Changed("attack") {
				c.AttackProbability = &attack
			}
			if flags.Changed("no-discovery") {
				enabled := !noDiscovery
				c.Discovery = &enabled
			}
			if flags.Changed("record") {
				c.Record = record
			}
			if flags.Changed("results-dir") {
				c.ResultsDir = resultsDir
			}
			if err := c.Validate(); err != nil {
				return err
			}

			cfg = c
			loggerFactory = cfg.LoggerFactory()
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "holopair.yaml", "configuration file")
	pf.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "trace, debug, info, warn, error or disabled")
	pf.StringVar(&scheme, "scheme", config.DefaultScheme, "verification scheme: coloring or positional")
	pf.IntSliceVar(&elements, "elements", nil, "artifact sizes to pick from (default 4,6,8)")
	pf.IntVar(&attack, "attack", 0, "percent of attempts run as attack simulation (default 20)")
	pf.BoolVar(&noDiscovery, "no-discovery", false, "disable mDNS advertise/browse")
	pf.BoolVar(&record, "record", false, "record attempts to an experiment CSV (initiator)")
	pf.StringVar(&resultsDir, "results-dir", config.DefaultResultsDir, "directory for experiment CSV files")

	root.AddCommand(initiatorCmd(), responderCmd(), demoCmd(), artifactCmd())
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return root.ExecuteContext(ctx)
}
