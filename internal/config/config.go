// Package config handles YAML configuration loading for the spimem command
// with environment variable expansion.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"go.yaml.in/yaml/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/moffa90/go-spimem/chip"
	"github.com/moffa90/go-spimem/worker"
)

// Config is the top-level spimem configuration.
type Config struct {
	SPI      SPIConfig      `yaml:"spi"`
	Worker   WorkerConfig   `yaml:"worker"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Simulate SimulateConfig `yaml:"simulate"`
}

// SPIConfig selects the host SPI port.
type SPIConfig struct {
	Port       string `yaml:"port"`        // empty selects the first registered port
	Frequency  string `yaml:"frequency"`   // e.g. "10MHz"
	Mode       int    `yaml:"mode"`        // 0 or 3 for 25-series parts
	ChipSelect string `yaml:"chip_select"` // optional GPIO name driving CS
	MaxTxSize  int    `yaml:"max_tx_size"` // 0 uses the port limit
}

// WorkerConfig tunes the worker loop.
type WorkerConfig struct {
	ChunkSize       int           `yaml:"chunk_size"`
	PollInterval    time.Duration `yaml:"poll_interval"`
	YieldInterval   time.Duration `yaml:"yield_interval"`
	IdentifyRetries int           `yaml:"identify_retries"` // 0 = until interrupted
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// MetricsConfig controls metrics export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"` // node_exporter textfile path, empty disables
}

// SimulateConfig describes the simulated chip used instead of hardware.
type SimulateConfig struct {
	Enabled        bool   `yaml:"enabled"`
	JEDECID        string `yaml:"jedec_id"`         // six hex digits
	Size           string `yaml:"size"`             // e.g. "8 MiB"
	Image          string `yaml:"image"`            // optional initial content
	EraseBusyPolls int    `yaml:"erase_busy_polls"` // status polls reporting busy after erase
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		SPI: SPIConfig{
			Frequency: "10MHz",
		},
		Worker: WorkerConfig{
			ChunkSize:     worker.DefaultChunkSize,
			PollInterval:  worker.DefaultPollInterval,
			YieldInterval: worker.DefaultYieldInterval,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Simulate: SimulateConfig{
			JEDECID:        "EF4017",
			Size:           "8 MiB",
			EraseBusyPolls: 5,
		},
	}
}

var envPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnv replaces ${VAR} patterns with environment variable values.
func expandEnv(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		varName := string(match[2 : len(match)-1])
		if val, ok := os.LookupEnv(varName); ok {
			return []byte(val)
		}
		return match
	})
}

// Load reads and parses a YAML config file, expanding environment variables.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	data = expandEnv(data)

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks the values that cannot be caught by the YAML decoder.
func (c *Config) Validate() error {
	if _, err := c.SPI.ParseFrequency(); err != nil {
		return err
	}
	if c.SPI.Mode < 0 || c.SPI.Mode > 3 {
		return fmt.Errorf("spi.mode: %d is not a valid SPI mode", c.SPI.Mode)
	}
	if c.Worker.ChunkSize < 1 || c.Worker.ChunkSize > worker.MaxChunkSize {
		return fmt.Errorf("worker.chunk_size: %d outside 1..%d", c.Worker.ChunkSize, worker.MaxChunkSize)
	}
	if c.Worker.PollInterval <= 0 {
		return fmt.Errorf("worker.poll_interval: must be positive")
	}
	if c.Worker.YieldInterval < 0 {
		return fmt.Errorf("worker.yield_interval: must not be negative")
	}
	if c.Worker.IdentifyRetries < 0 {
		return fmt.Errorf("worker.identify_retries: must not be negative")
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	if c.Simulate.Enabled {
		if _, err := c.Simulate.ParseJEDECID(); err != nil {
			return err
		}
		if _, err := c.Simulate.ParseSize(); err != nil {
			return err
		}
	}
	return nil
}

// ParseFrequency returns the configured clock.
func (s SPIConfig) ParseFrequency() (physic.Frequency, error) {
	var f physic.Frequency
	if err := f.Set(s.Frequency); err != nil {
		return 0, fmt.Errorf("spi.frequency: %w", err)
	}
	if f <= 0 {
		return 0, fmt.Errorf("spi.frequency: must be positive")
	}
	return f, nil
}

// SPIMode returns the configured clock polarity and phase.
func (s SPIConfig) SPIMode() spi.Mode {
	return spi.Mode(s.Mode)
}

// ParseJEDECID decodes the simulated chip ID, e.g. "EF4017".
func (s SimulateConfig) ParseJEDECID() (chip.JEDECID, error) {
	var id chip.JEDECID
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(s.JEDECID), "0x"))
	if err != nil {
		return id, fmt.Errorf("simulate.jedec_id: %w", err)
	}
	if len(raw) != chip.JEDECIDSize {
		return id, fmt.Errorf("simulate.jedec_id: want %d bytes, got %d", chip.JEDECIDSize, len(raw))
	}
	copy(id[:], raw)
	return id, nil
}

// ParseSize returns the simulated capacity in bytes.
func (s SimulateConfig) ParseSize() (int64, error) {
	n, err := humanize.ParseBytes(s.Size)
	if err != nil {
		return 0, fmt.Errorf("simulate.size: %w", err)
	}
	if n == 0 || n > 1<<30 {
		return 0, fmt.Errorf("simulate.size: %s outside 1 B..1 GiB", s.Size)
	}
	return int64(n), nil
}
