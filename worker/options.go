package worker

import "time"

const (
	// DefaultChunkSize is the number of bytes moved per loop iteration
	DefaultChunkSize = 4096

	// MaxChunkSize bounds WithChunkSize
	MaxChunkSize = 64 * 1024

	// DefaultPollInterval is the delay between busy-status polls
	DefaultPollInterval = 200 * time.Millisecond

	// DefaultYieldInterval is the pause before every chunk and identify retry
	DefaultYieldInterval = 10 * time.Millisecond
)

// Config holds the worker configuration.
type Config struct {
	// ProgressCallback is called after every transferred chunk (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// ChunkSize is the transfer unit for read and verify
	ChunkSize int

	// PollInterval is the sleep between status polls while the chip is busy
	PollInterval time.Duration

	// YieldInterval is the pause given to other goroutines before every
	// chunk; 0 only yields the processor
	YieldInterval time.Duration

	// IdentifyRetries caps failed identification attempts in chip-detect
	// mode; 0 retries until stopped
	IdentifyRetries int
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		ChunkSize:     DefaultChunkSize,
		PollInterval:  DefaultPollInterval,
		YieldInterval: DefaultYieldInterval,
	}
}

// Option is a functional option for configuring the Worker.
type Option func(*Config)

// WithProgressCallback sets a callback function to track transfer progress.
//
// Example:
//
//	w := worker.New(flash, img,
//	    worker.WithProgressCallback(func(p worker.Progress) {
//	        fmt.Printf("%.1f%% complete\n", p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for the worker operations.
//
// Example:
//
//	w := worker.New(flash, img, worker.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithChunkSize sets the number of bytes moved per iteration.
// Values outside 1..MaxChunkSize are ignored.
//
// Example:
//
//	w := worker.New(flash, img, worker.WithChunkSize(512))
func WithChunkSize(size int) Option {
	return func(c *Config) {
		if size > 0 && size <= MaxChunkSize {
			c.ChunkSize = size
		}
	}
}

// WithPollInterval sets the delay between busy-status polls.
// Non-positive values are ignored.
//
// Example:
//
//	w := worker.New(flash, nil, worker.WithPollInterval(50*time.Millisecond))
func WithPollInterval(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.PollInterval = d
		}
	}
}

// WithYieldInterval sets the pause before every chunk. Zero only yields the
// processor; negative values are ignored.
func WithYieldInterval(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.YieldInterval = d
		}
	}
}

// WithIdentifyRetries caps the failed identification attempts in chip-detect
// mode. Zero, the default, retries until the run is stopped.
//
// Example:
//
//	w := worker.New(flash, nil, worker.WithIdentifyRetries(50))
func WithIdentifyRetries(retries int) Option {
	return func(c *Config) {
		if retries >= 0 {
			c.IdentifyRetries = retries
		}
	}
}
