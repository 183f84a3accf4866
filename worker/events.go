package worker

import "fmt"

// Mode selects the procedure executed by Run.
type Mode int32

const (
	// ModeIdle runs nothing
	ModeIdle Mode = iota

	// ModeChipDetect identifies the chip
	ModeChipDetect

	// ModeRead copies the whole chip into the artifact
	ModeRead

	// ModeVerify compares the chip against the artifact
	ModeVerify

	// ModeChipErase erases the whole chip
	ModeChipErase

	modeCount
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeChipDetect:
		return "chip-detect"
	case ModeRead:
		return "read"
	case ModeVerify:
		return "verify"
	case ModeChipErase:
		return "chip-erase"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Event is an outcome or progress signal delivered to the callback.
// Events carry no payload.
type Event int

const (
	// EventChipIdentified: detection resolved vendor and capacity
	EventChipIdentified Event = iota

	// EventChipUnknown: the chip answered but could not be fully described
	EventChipUnknown

	// EventChipReadFail: a chip operation failed; also the erase failure event
	EventChipReadFail

	// EventWriteFileFail: writing the artifact failed during a read
	EventWriteFileFail

	// EventReadFileFail: reading the artifact failed during a verify
	EventReadFileFail

	// EventVerifyFail: chip and artifact content differ
	EventVerifyFail

	// EventBlockReaded: one chunk was transferred (read) or matched (verify)
	EventBlockReaded

	// EventReadDone: the whole chip was copied
	EventReadDone

	// EventVerifyDone: chip and artifact matched over the compared range
	EventVerifyDone

	// EventEraseDone: the erase sequence completed
	EventEraseDone
)

func (e Event) String() string {
	switch e {
	case EventChipIdentified:
		return "ChipIdentified"
	case EventChipUnknown:
		return "ChipUnknown"
	case EventChipReadFail:
		return "ChipReadFail"
	case EventWriteFileFail:
		return "WriteFileFail"
	case EventReadFileFail:
		return "ReadFileFail"
	case EventVerifyFail:
		return "VerifyFail"
	case EventBlockReaded:
		return "BlockReaded"
	case EventReadDone:
		return "ReadDone"
	case EventVerifyDone:
		return "VerifyDone"
	case EventEraseDone:
		return "EraseDone"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// Terminal reports whether the event ends a run. Only EventBlockReaded is not
// terminal.
func (e Event) Terminal() bool {
	return e != EventBlockReaded
}

// Failure reports whether the event is a terminal failure.
func (e Event) Failure() bool {
	switch e {
	case EventChipReadFail, EventWriteFileFail, EventReadFileFail, EventVerifyFail:
		return true
	default:
		return false
	}
}
