package chip

import (
	"errors"
	"fmt"
)

// ErrNotIdentified is returned by operations that need the chip size before
// Identify has succeeded.
var ErrNotIdentified = errors.New("chip not identified")

// ErrNoResponse means the JEDEC ID read back as all zeros or all ones,
// i.e. nothing is driving MISO.
var ErrNoResponse = errors.New("no response from chip")

// CommandError wraps a failed chip instruction.
type CommandError struct {
	// Op is the instruction that failed
	Op string

	// Opcode is the instruction byte
	Opcode byte

	// Err is the underlying transport or validation error
	Err error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s (0x%02X) failed: %v", e.Op, e.Opcode, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// IsCommandError returns true if the error is or wraps a CommandError.
func IsCommandError(err error) bool {
	var ce *CommandError
	return errors.As(err, &ce)
}

// opName returns a human-readable name for an opcode.
func opName(op byte) string {
	switch op {
	case OpReadJEDECID:
		return "read JEDEC ID"
	case OpReadStatus:
		return "read status"
	case OpWriteEnable:
		return "write enable"
	case OpWriteDisable:
		return "write disable"
	case OpRead:
		return "read"
	case OpRead4B:
		return "read (4-byte address)"
	case OpChipErase:
		return "chip erase"
	default:
		return fmt.Sprintf("opcode 0x%02X", op)
	}
}
