// Package worker drives a serial flash chip through one of four operating
// modes: chip detection, read to file, verify against file and chip erase.
//
// # Overview
//
// A Worker owns a chip facade and, for read and verify, an artifact facade.
// The host selects a mode and calls Run on a dedicated goroutine; outcomes
// arrive through an event callback:
//
//	w := worker.New(flash, img)
//	w.SetCallback(func(ev worker.Event) {
//	    events <- ev
//	})
//
//	w.SetMode(worker.ModeChipDetect)
//	go w.Run(ctx)
//
// Each run emits zero or more EventBlockReaded events and exactly one terminal
// event, except when it is stopped, in which case it emits nothing further.
//
// # Modes
//
//   - ModeChipDetect retries identification until it succeeds, then emits
//     EventChipIdentified or EventChipUnknown.
//   - ModeRead copies the chip into an artifact the caller already opened for
//     writing, chunk by chunk, and always closes it.
//   - ModeVerify opens the artifact, compares min(chip, file) bytes and always
//     closes it.
//   - ModeChipErase waits for ready, enables writes, erases, waits again and
//     disables writes.
//
// # Stopping
//
// RequestStop may be called from any goroutine. The running procedure notices
// it at the next chunk boundary or status poll. Cancelling the context passed
// to Run has the same effect:
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//	err := w.Run(ctx)
//
// A stopped read or verify does not report ReadDone or VerifyDone. A stop
// during erase is reported as EventChipReadFail.
//
// # Configuration Options
//
//	w := worker.New(flash, img,
//	    worker.WithProgressCallback(progressFunc),
//	    worker.WithLogger(myLogger),
//	    worker.WithChunkSize(4096),
//	    worker.WithPollInterval(200*time.Millisecond),
//	    worker.WithIdentifyRetries(0),
//	)
//
// # Error Handling
//
// Events are the primary outcome channel. Run also returns an error naming
// the failure site for callers that log:
//   - IdentifyError: detection gave up after the configured retries
//   - MismatchError: first differing byte found by verify
//   - StepError: failed erase step
//   - chip.CommandError: wrapped device failure
package worker
