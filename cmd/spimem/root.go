package main

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/moffa90/go-spimem/internal/config"
)

// errFailed is returned when a run ended with a failure event. The failure
// has already been reported, so main only sets the exit code.
var errFailed = errors.New("operation failed")

// globalOptions holds the persistent flags.
type globalOptions struct {
	configPath  string
	port        string
	frequency   string
	simulate    bool
	simSize     string
	simImage    string
	logLevel    string
	metricsFile string

	cfg *config.Config
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "spimem",
		Short:         "SPI NOR flash reader, verifier and eraser",
		Long:          "Identify, dump, verify and erase 25-series SPI NOR flash chips over a host SPI port",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	flags.StringVar(&opts.port, "port", "", "SPI port name (e.g. /dev/spidev0.0); empty selects the first one")
	flags.StringVar(&opts.frequency, "frequency", "", "SPI clock (e.g. 10MHz)")
	flags.BoolVar(&opts.simulate, "simulate", false, "use an in-memory chip instead of hardware")
	flags.StringVar(&opts.simSize, "sim-size", "", "simulated chip size (e.g. 8MiB)")
	flags.StringVar(&opts.simImage, "sim-image", "", "initial content of the simulated chip")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug|info|warn|error")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after the run")

	root.AddCommand(
		newDetectCmd(opts),
		newReadCmd(opts),
		newVerifyCmd(opts),
		newEraseCmd(opts),
	)
	return root
}

// load reads the configuration file, applies explicitly set flags on top and
// builds the logger.
func (o *globalOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.SPI.Port = o.port
	}
	if flags.Changed("frequency") {
		cfg.SPI.Frequency = o.frequency
	}
	if flags.Changed("simulate") {
		cfg.Simulate.Enabled = o.simulate
	}
	if flags.Changed("sim-size") {
		cfg.Simulate.Size = o.simSize
	}
	if flags.Changed("sim-image") {
		cfg.Simulate.Image = o.simImage
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("metrics-file") {
		cfg.Metrics.Textfile = o.metricsFile
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, err := newLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	o.cfg = cfg
	o.log = log
	return nil
}
