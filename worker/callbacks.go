package worker

import "time"

// EventCallback receives every event of a run, synchronously, on the
// goroutine executing Run. Observer state is captured by the closure.
//
// Example:
//
//	w.SetCallback(func(ev worker.Event) {
//	    scene.Post(ev)
//	})
type EventCallback func(Event)

// Progress describes how far a read or verify has got.
// Passed to ProgressCallback after every EventBlockReaded.
type Progress struct {
	// Mode is ModeRead or ModeVerify
	Mode Mode

	// Offset is the number of bytes processed so far
	Offset int64

	// Total is the number of bytes the run will process
	Total int64

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// ElapsedTime is the time elapsed since the transfer started
	ElapsedTime time.Duration
}

// ProgressCallback is called after every transferred chunk.
// Implementations should return quickly to avoid stalling the transfer.
//
// Example:
//
//	w := worker.New(flash, img,
//	    worker.WithProgressCallback(func(p worker.Progress) {
//	        fmt.Printf("%s %.1f%%\n", p.Mode, p.Percentage)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the worker.
// This allows integration with any logging framework.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	w := worker.New(flash, img, worker.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
