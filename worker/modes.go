package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/moffa90/go-spimem/chip"
)

// modeProc implements one mode.
type modeProc func(w *Worker, ctx context.Context) error

// modeProcs maps every mode to its procedure; idle runs nothing.
var modeProcs = [modeCount]modeProc{
	ModeIdle:       nil,
	ModeChipDetect: (*Worker).detectProcess,
	ModeRead:       (*Worker).readProcess,
	ModeVerify:     (*Worker).verifyProcess,
	ModeChipErase:  (*Worker).eraseProcess,
}

// readiness is the outcome of awaitReady.
type readiness int

const (
	ready readiness = iota
	errorObserved
	cancelled
)

// awaitReady polls the chip status until it is no longer busy.
func (w *Worker) awaitReady(ctx context.Context) readiness {
	for {
		w.sleep(ctx, w.config.PollInterval)
		if w.stopRequested(ctx) {
			return cancelled
		}
		switch w.chip.Status() {
		case chip.StatusError:
			return errorObserved
		case chip.StatusBusy:
			continue
		default:
			return ready
		}
	}
}

// blockSize clamps the chunk at offset to the bytes remaining before total.
func blockSize(offset, total int64, chunk int) int {
	if remaining := total - offset; remaining < int64(chunk) {
		return int(remaining)
	}
	return chunk
}

// blockDone emits EventBlockReaded and the matching progress report.
func (w *Worker) blockDone(mode Mode, offset, total int64, start time.Time) {
	w.emit(EventBlockReaded)

	percentage := 100.0
	if total > 0 {
		percentage = float64(offset) / float64(total) * 100
	}
	w.reportProgress(Progress{
		Mode:        mode,
		Offset:      offset,
		Total:       total,
		Percentage:  percentage,
		ElapsedTime: time.Since(start),
	})
}

// detectProcess retries identification until it succeeds or the run is
// stopped, then reports whether the chip description is complete.
func (w *Worker) detectProcess(ctx context.Context) error {
	attempts := 0
	for {
		err := w.chip.Identify()
		if err == nil {
			break
		}
		attempts++
		w.logDebug("identify failed", "attempt", attempts, "error", err)

		if w.stopRequested(ctx) {
			return nil
		}
		if limit := w.config.IdentifyRetries; limit > 0 && attempts > limit {
			return &IdentifyError{Attempts: attempts, Err: err}
		}
		w.yield(ctx)
	}

	if w.chip.InfoComplete() {
		w.emit(EventChipIdentified)
	} else {
		w.emit(EventChipUnknown)
	}
	return nil
}

// readProcess copies the chip into the artifact. The artifact must already be
// open for writing; it is closed on every exit path.
func (w *Worker) readProcess(ctx context.Context) error {
	if w.artifact == nil {
		return ErrNoArtifact
	}

	total := w.chip.Size()
	buf := make([]byte, w.config.ChunkSize)
	start := time.Now()

	var (
		offset  int64
		stopped bool
		runErr  error
	)
	for {
		w.yield(ctx)
		if w.stopRequested(ctx) {
			stopped = true
			break
		}
		if offset >= total {
			break
		}

		block := buf[:blockSize(offset, total, len(buf))]
		if err := w.chip.ReadBlock(offset, block); err != nil {
			w.emit(EventChipReadFail)
			runErr = fmt.Errorf("read chip at 0x%X: %w", offset, err)
			break
		}
		if err := w.artifact.WriteBlock(block); err != nil {
			w.emit(EventWriteFileFail)
			runErr = fmt.Errorf("write file at 0x%X: %w", offset, err)
			break
		}

		offset += int64(len(block))
		w.blockDone(ModeRead, offset, total, start)
	}

	if err := w.artifact.Close(); err != nil {
		w.logError("close artifact", "error", err)
		// Unflushed data means the image is incomplete.
		if runErr == nil && !stopped {
			w.emit(EventWriteFileFail)
			return fmt.Errorf("close file: %w", err)
		}
	}

	if runErr != nil {
		return runErr
	}
	if stopped {
		w.logInfo("read stopped", "offset", offset, "total", total)
		return nil
	}

	w.emit(EventReadDone)
	return nil
}

// verifyProcess compares the chip with the artifact over the shorter of the
// two sizes. It opens and closes the artifact itself.
func (w *Worker) verifyProcess(ctx context.Context) error {
	if w.artifact == nil {
		return ErrNoArtifact
	}

	total := min(w.chip.Size(), w.artifact.Size())
	if err := w.artifact.Open(); err != nil {
		return fmt.Errorf("open file: %w", err)
	}

	chipBuf := make([]byte, w.config.ChunkSize)
	fileBuf := make([]byte, w.config.ChunkSize)
	start := time.Now()

	var (
		offset  int64
		stopped bool
		runErr  error
	)
	for {
		w.yield(ctx)
		if w.stopRequested(ctx) {
			stopped = true
			break
		}
		if offset >= total {
			break
		}

		n := blockSize(offset, total, len(chipBuf))
		chipBlock, fileBlock := chipBuf[:n], fileBuf[:n]

		if err := w.chip.ReadBlock(offset, chipBlock); err != nil {
			w.emit(EventChipReadFail)
			runErr = fmt.Errorf("read chip at 0x%X: %w", offset, err)
			break
		}
		if err := w.artifact.ReadBlock(fileBlock); err != nil {
			w.emit(EventReadFileFail)
			runErr = fmt.Errorf("read file at 0x%X: %w", offset, err)
			break
		}
		if !bytes.Equal(chipBlock, fileBlock) {
			w.emit(EventVerifyFail)
			runErr = mismatch(offset, chipBlock, fileBlock)
			break
		}

		offset += int64(n)
		w.blockDone(ModeVerify, offset, total, start)
	}

	if err := w.artifact.Close(); err != nil {
		w.logError("close artifact", "error", err)
	}

	if runErr != nil {
		return runErr
	}
	if stopped {
		w.logInfo("verify stopped", "offset", offset, "total", total)
		return nil
	}

	w.emit(EventVerifyDone)
	return nil
}

// mismatch locates the first differing byte of two blocks read at offset.
func mismatch(offset int64, chipBlock, fileBlock []byte) *MismatchError {
	for i := range chipBlock {
		if chipBlock[i] != fileBlock[i] {
			return &MismatchError{Offset: offset + int64(i), Chip: chipBlock[i], File: fileBlock[i]}
		}
	}
	return &MismatchError{Offset: offset}
}

// eraseProcess runs the erase sequence and reports EventEraseDone, or
// EventChipReadFail for any failed or interrupted step.
func (w *Worker) eraseProcess(ctx context.Context) error {
	err := w.eraseSequence(ctx)
	if err != nil {
		w.emit(EventChipReadFail)
		var stepErr *StepError
		if errors.As(err, &stepErr) && errors.Is(err, errStopped) {
			w.logInfo("erase stopped", "step", stepErr.Step.String())
			return nil
		}
		return err
	}

	w.emit(EventEraseDone)
	return nil
}

func (w *Worker) eraseSequence(ctx context.Context) error {
	if err := w.awaitStep(ctx, StepAwaitReady); err != nil {
		return err
	}
	if err := w.chip.SetWriteEnabled(true); err != nil {
		return &StepError{Step: StepWriteEnable, Err: err}
	}
	if err := w.chip.EraseChip(); err != nil {
		return &StepError{Step: StepChipErase, Err: err}
	}
	if err := w.awaitStep(ctx, StepAwaitErase); err != nil {
		return err
	}
	if err := w.chip.SetWriteEnabled(false); err != nil {
		return &StepError{Step: StepWriteDisable, Err: err}
	}
	return nil
}

func (w *Worker) awaitStep(ctx context.Context, step EraseStep) error {
	switch w.awaitReady(ctx) {
	case errorObserved:
		return &StepError{Step: step, Err: errChipStatus}
	case cancelled:
		return &StepError{Step: step, Err: errStopped}
	default:
		return nil
	}
}
