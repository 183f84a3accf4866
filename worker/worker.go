package worker

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/moffa90/go-spimem/chip"
)

// Chip is the device facade the worker drives. Each call is synchronous and
// may fail. *chip.Flash implements it.
type Chip interface {
	Status() chip.Status
	ReadBlock(offset int64, p []byte) error
	SetWriteEnabled(enable bool) error
	EraseChip() error
	Identify() error
	InfoComplete() bool
	Size() int64
}

// Artifact is the file facade used by read and verify. *artifact.File
// implements it.
type Artifact interface {
	Open() error
	Close() error
	ReadBlock(p []byte) error
	WriteBlock(p []byte) error
	Size() int64
}

// Worker runs one mode at a time against a chip.
//
// SetMode, SetArtifact and SetCallback configure the next run and must not be
// called while Run is executing. RequestStop and Stopped are safe to call from
// any goroutine at any time.
type Worker struct {
	chip     Chip
	artifact Artifact
	callback EventCallback
	config   Config

	mode atomic.Int32
	stop atomic.Bool
}

// New creates a Worker for the given chip. The artifact may be nil when only
// chip-detect and erase are used.
//
// Example:
//
//	flash, port, _ := chip.Open("", 10*physic.MegaHertz, spi.Mode0)
//	defer port.Close()
//	w := worker.New(flash, artifact.NewOS("dump.bin"),
//	    worker.WithLogger(myLogger),
//	)
func New(c Chip, a Artifact, opts ...Option) *Worker {
	if c == nil {
		panic("chip cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Worker{
		chip:     c,
		artifact: a,
		config:   cfg,
	}
}

// SetMode selects the procedure for the next Run and clears any pending stop
// request.
func (w *Worker) SetMode(m Mode) {
	w.mode.Store(int32(m))
	w.stop.Store(false)
}

// Mode returns the selected mode.
func (w *Worker) Mode() Mode {
	return Mode(w.mode.Load())
}

// SetArtifact replaces the artifact used by read and verify.
func (w *Worker) SetArtifact(a Artifact) {
	w.artifact = a
}

// SetCallback registers the event observer. A nil callback discards events.
func (w *Worker) SetCallback(cb EventCallback) {
	w.callback = cb
}

// RequestStop asks the running procedure to stop at the next chunk boundary
// or status poll. It is idempotent and may be called before, during or after
// a run; a request made before Run is honoured by that run.
func (w *Worker) RequestStop() {
	w.stop.Store(true)
}

// Stopped reports whether a stop has been requested since the last SetMode.
func (w *Worker) Stopped() bool {
	return w.stop.Load()
}

// Run executes the selected mode synchronously on the calling goroutine.
// Cancelling ctx has the same effect as RequestStop.
//
// Outcomes are delivered through the callback. Run additionally returns an
// error describing the failure site; it returns nil when the run succeeded or
// was stopped.
func (w *Worker) Run(ctx context.Context) error {
	mode := w.Mode()
	if mode < 0 || mode >= modeCount {
		return fmt.Errorf("invalid mode %d", int(mode))
	}

	proc := modeProcs[mode]
	if proc == nil {
		return nil
	}

	start := time.Now()
	w.logDebug("run started", "mode", mode.String())

	err := proc(w, ctx)

	if err != nil {
		w.logError("run failed",
			"mode", mode.String(),
			"error", err,
			"elapsed", time.Since(start).String(),
		)
		return err
	}

	w.logInfo("run finished",
		"mode", mode.String(),
		"stopped", w.stopRequested(ctx),
		"elapsed", time.Since(start).String(),
	)
	return nil
}

// stopRequested is the cancellation check performed at every chunk boundary
// and status poll.
func (w *Worker) stopRequested(ctx context.Context) bool {
	return w.stop.Load() || ctx.Err() != nil
}

// sleep pauses for d or until ctx is done. A non-positive d only yields the
// processor.
func (w *Worker) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		runtime.Gosched()
		return
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// yield gives other goroutines a chance to run before the next chunk.
func (w *Worker) yield(ctx context.Context) {
	w.sleep(ctx, w.config.YieldInterval)
}

// emit calls the event callback if configured. A panicking callback is logged
// and does not abort the run.
func (w *Worker) emit(ev Event) {
	if w.callback == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			w.logError("event callback panicked", "event", ev.String(), "panic", r)
		}
	}()
	w.callback(ev)
}

// reportProgress calls the progress callback if configured.
func (w *Worker) reportProgress(progress Progress) {
	if w.config.ProgressCallback == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			w.logError("progress callback panicked", "panic", r)
		}
	}()
	w.config.ProgressCallback(progress)
}

// logDebug logs a debug message if a logger is configured.
func (w *Worker) logDebug(msg string, keysAndValues ...interface{}) {
	if w.config.Logger != nil {
		w.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (w *Worker) logInfo(msg string, keysAndValues ...interface{}) {
	if w.config.Logger != nil {
		w.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (w *Worker) logError(msg string, keysAndValues ...interface{}) {
	if w.config.Logger != nil {
		w.config.Logger.Error(msg, keysAndValues...)
	}
}
