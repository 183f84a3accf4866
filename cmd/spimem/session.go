package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/moffa90/go-spimem/chip"
	"github.com/moffa90/go-spimem/chip/spisim"
	"github.com/moffa90/go-spimem/internal/config"
	"github.com/moffa90/go-spimem/metrics"
	"github.com/moffa90/go-spimem/worker"
)

// session owns the chip, the worker and the metrics for one command.
type session struct {
	ctx context.Context
	cfg *config.Config
	log zerolog.Logger
	out io.Writer

	flash  *chip.Flash
	closer io.Closer
	worker *worker.Worker

	registry *prometheus.Registry
	metrics  *metrics.Metrics
	progress *progressPrinter

	stopOnCancel func() bool

	// outcome of the current run
	last   worker.Event
	failed bool
}

// withSession opens a session, runs fn and releases the session. SIGINT and
// SIGTERM request a stop of the running mode.
func withSession(cmd *cobra.Command, opts *globalOptions, a worker.Artifact, fn func(*session) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx, opts.cfg, opts.log, a, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.close()

	return fn(s)
}

func openSession(ctx context.Context, cfg *config.Config, log zerolog.Logger, a worker.Artifact, out io.Writer) (*session, error) {
	var flashOpts []chip.FlashOption
	if cfg.SPI.MaxTxSize > 0 {
		flashOpts = append(flashOpts, chip.WithMaxTxSize(cfg.SPI.MaxTxSize))
	}

	s := &session{
		ctx: ctx,
		cfg: cfg,
		log: log,
		out: out,
	}

	if cfg.Simulate.Enabled {
		sim, size, err := newSimulator(cfg.Simulate, afero.NewOsFs())
		if err != nil {
			return nil, err
		}
		flashOpts = append(flashOpts, chip.WithSize(size))
		s.flash = chip.NewFlash(sim, flashOpts...)
		s.closer = sim
		log.Info().Stringer("chip", sim).Str("size", humanize.IBytes(uint64(size))).Msg("using simulated chip")
	} else {
		if cfg.SPI.ChipSelect != "" {
			pin, err := chip.ChipSelectPin(cfg.SPI.ChipSelect)
			if err != nil {
				return nil, err
			}
			flashOpts = append(flashOpts, chip.WithChipSelect(pin))
		}
		freq, err := cfg.SPI.ParseFrequency()
		if err != nil {
			return nil, err
		}
		flash, port, err := chip.Open(cfg.SPI.Port, freq, cfg.SPI.SPIMode(), flashOpts...)
		if err != nil {
			return nil, err
		}
		s.flash = flash
		s.closer = port
		log.Debug().Stringer("port", port).Stringer("frequency", freq).Msg("spi port open")
	}

	s.registry = prometheus.NewRegistry()
	s.metrics = metrics.NewMetrics(s.registry)
	s.progress = newProgressPrinter(out)

	s.worker = worker.New(s.flash, a,
		worker.WithLogger(workerLogger{log: log}),
		worker.WithChunkSize(cfg.Worker.ChunkSize),
		worker.WithPollInterval(cfg.Worker.PollInterval),
		worker.WithYieldInterval(cfg.Worker.YieldInterval),
		worker.WithIdentifyRetries(cfg.Worker.IdentifyRetries),
		worker.WithProgressCallback(func(p worker.Progress) {
			s.progress.update(p)
			s.metrics.ObserveProgress(p)
		}),
	)
	s.worker.SetCallback(s.observe)
	s.stopOnCancel = context.AfterFunc(ctx, s.worker.RequestStop)

	return s, nil
}

// newSimulator builds the simulated chip and returns its size.
func newSimulator(cfg config.SimulateConfig, fs afero.Fs) (*spisim.Chip, int64, error) {
	id, err := cfg.ParseJEDECID()
	if err != nil {
		return nil, 0, err
	}
	size, err := cfg.ParseSize()
	if err != nil {
		return nil, 0, err
	}

	sim := spisim.New(id, int(size))
	sim.SetEraseBusyPolls(cfg.EraseBusyPolls)

	if cfg.Image != "" {
		data, err := afero.ReadFile(fs, cfg.Image)
		if err != nil {
			return nil, 0, fmt.Errorf("simulate.image: %w", err)
		}
		if int64(len(data)) > size {
			return nil, 0, fmt.Errorf("simulate.image: %s does not fit in %s",
				humanize.IBytes(uint64(len(data))), humanize.IBytes(uint64(size)))
		}
		sim.Load(data)
	}
	return sim, size, nil
}

// observe is the worker event callback.
func (s *session) observe(ev worker.Event) {
	s.metrics.Observe(ev)
	if !ev.Terminal() {
		return
	}
	s.last = ev
	if ev.Failure() {
		s.failed = true
	}
}

// run executes one mode and maps its outcome to an error.
func (s *session) run(mode worker.Mode) error {
	s.last = -1
	s.failed = false

	s.worker.SetMode(mode)
	start := time.Now()
	err := s.worker.Run(s.ctx)
	s.progress.finish()
	elapsed := time.Since(start)

	switch {
	case s.failed:
		s.metrics.ObserveRun(mode, metrics.OutcomeFailure, elapsed)
		s.log.Error().Err(err).Stringer("event", s.last).Stringer("mode", mode).Msg("run failed")
		return errFailed
	case s.worker.Stopped() || s.ctx.Err() != nil:
		s.metrics.ObserveRun(mode, metrics.OutcomeStopped, elapsed)
		return fmt.Errorf("%s interrupted", mode)
	case err != nil:
		s.metrics.ObserveRun(mode, metrics.OutcomeFailure, elapsed)
		return err
	}

	s.metrics.ObserveRun(mode, metrics.OutcomeSuccess, elapsed)
	s.log.Info().Stringer("mode", mode).Dur("elapsed", elapsed).Msg("done")
	return nil
}

// detect identifies the chip and prints what was found.
func (s *session) detect() error {
	s.log.Info().Msg("waiting for chip")
	if err := s.run(worker.ModeChipDetect); err != nil {
		return err
	}

	info := s.flash.Info()
	if s.last == worker.EventChipUnknown {
		s.log.Warn().Stringer("id", info.ID).Msg("chip not fully identified")
	}
	fmt.Fprintf(s.out, "chip: %s, JEDEC ID %s, %s\n",
		vendorOrUnknown(info.Vendor), info.ID, humanize.IBytes(uint64(s.flash.Size())))

	if s.flash.Size() == 0 {
		return fmt.Errorf("chip %s: capacity unknown", info.ID)
	}
	return nil
}

// close releases the port and writes the metrics textfile if configured.
func (s *session) close() {
	s.stopOnCancel()

	if err := s.closer.Close(); err != nil {
		s.log.Error().Err(err).Msg("close spi port")
	}

	if path := s.cfg.Metrics.Textfile; path != "" {
		if err := metrics.WriteTextfile(path, s.registry); err != nil {
			s.log.Error().Err(err).Str("path", path).Msg("write metrics")
			return
		}
		s.log.Debug().Str("path", path).Msg("metrics written")
	}
}

func vendorOrUnknown(v string) string {
	if v == "" {
		return "unknown vendor"
	}
	return v
}
