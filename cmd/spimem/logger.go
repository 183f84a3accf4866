package main

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/moffa90/go-spimem/worker"
)

// newLogger builds the command logger from the log.level and log.format
// settings. Output goes to stderr so stdout stays clean for reports.
func newLogger(level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}

	var w io.Writer = os.Stderr
	if format != "json" {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// workerLogger adapts zerolog to worker.Logger.
type workerLogger struct {
	log zerolog.Logger
}

var _ worker.Logger = workerLogger{}

func (l workerLogger) Debug(msg string, kv ...interface{}) {
	l.log.Debug().Fields(kv).Msg(msg)
}

func (l workerLogger) Info(msg string, kv ...interface{}) {
	l.log.Info().Fields(kv).Msg(msg)
}

func (l workerLogger) Error(msg string, kv ...interface{}) {
	l.log.Error().Fields(kv).Msg(msg)
}
