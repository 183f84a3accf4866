package chip

import "fmt"

// Status is the coarse state of the chip as seen by the worker.
type Status int

const (
	// StatusReady means no internal program/erase cycle is running
	StatusReady Status = iota

	// StatusBusy means the write-in-progress bit is set
	StatusBusy

	// StatusError means the status register could not be read
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusBusy:
		return "busy"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// JEDECID is the 3-byte identification returned by OpReadJEDECID.
type JEDECID [JEDECIDSize]byte

// Manufacturer returns the JEDEC manufacturer code (first byte).
func (id JEDECID) Manufacturer() byte { return id[0] }

// MemoryType returns the vendor specific memory type byte.
func (id JEDECID) MemoryType() byte { return id[1] }

// CapacityCode returns the capacity byte, usually log2 of the size in bytes.
func (id JEDECID) CapacityCode() byte { return id[2] }

func (id JEDECID) String() string {
	return fmt.Sprintf("%02X%02X%02X", id[0], id[1], id[2])
}

// Info describes an identified chip.
type Info struct {
	// ID is the raw JEDEC identification
	ID JEDECID

	// Vendor is the manufacturer name, empty when the code is unknown
	Vendor string

	// Size is the capacity in bytes, 0 when the capacity code is not understood
	Size int64
}

// Complete reports whether both the manufacturer and the capacity were resolved.
func (i Info) Complete() bool {
	return i.Vendor != "" && i.Size > 0
}

func (i Info) String() string {
	vendor := i.Vendor
	if vendor == "" {
		vendor = "unknown vendor"
	}
	return fmt.Sprintf("%s %s (%d bytes)", vendor, i.ID, i.Size)
}
