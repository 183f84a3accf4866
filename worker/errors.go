package worker

import (
	"errors"
	"fmt"
)

// ErrNoArtifact is returned by Run in read or verify mode when no artifact is
// configured.
var ErrNoArtifact = errors.New("no artifact configured")

// errStopped marks a step interrupted by a stop request. It never leaves Run.
var errStopped = errors.New("stopped")

// errChipStatus is reported when the status poll observes an error.
var errChipStatus = errors.New("chip reported error status")

// IdentifyError indicates that chip detection gave up after the configured
// number of retries.
type IdentifyError struct {
	Attempts int
	Err      error
}

func (e *IdentifyError) Error() string {
	return fmt.Sprintf("chip not identified after %d attempts: %v", e.Attempts, e.Err)
}

func (e *IdentifyError) Unwrap() error { return e.Err }

// MismatchError indicates that verification found differing content.
type MismatchError struct {
	// Offset is the address of the first differing byte
	Offset int64

	// Chip is the byte read from the chip
	Chip byte

	// File is the byte read from the artifact
	File byte
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("verify mismatch at 0x%08X: chip has 0x%02X, file has 0x%02X",
		e.Offset, e.Chip, e.File)
}

// EraseStep identifies a step of the erase sequence.
type EraseStep int

const (
	StepAwaitReady EraseStep = iota + 1
	StepWriteEnable
	StepChipErase
	StepAwaitErase
	StepWriteDisable
)

func (s EraseStep) String() string {
	switch s {
	case StepAwaitReady:
		return "await ready"
	case StepWriteEnable:
		return "write enable"
	case StepChipErase:
		return "chip erase"
	case StepAwaitErase:
		return "await erase"
	case StepWriteDisable:
		return "write disable"
	default:
		return fmt.Sprintf("step %d", int(s))
	}
}

// StepError indicates which erase step failed.
type StepError struct {
	Step EraseStep
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("erase step %d (%s) failed: %v", int(e.Step), e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
