package chip

import "fmt"

// ParseJEDECID extracts the ID from the receive buffer of a Read JEDEC ID
// transaction (see BuildReadIDCmd).
//
// An ID of all 0x00 or all 0xFF is reported as ErrNoResponse: a floating or
// grounded MISO line reads that way when no chip answers.
func ParseJEDECID(rx []byte) (JEDECID, error) {
	var id JEDECID
	if len(rx) < 1+JEDECIDSize {
		return id, fmt.Errorf("JEDEC ID response too short: got %d bytes, expected %d", len(rx), 1+JEDECIDSize)
	}

	copy(id[:], rx[1:1+JEDECIDSize])
	if id == (JEDECID{}) || id == (JEDECID{0xFF, 0xFF, 0xFF}) {
		return id, ErrNoResponse
	}
	return id, nil
}

// ParseStatus extracts status register 1 from the receive buffer of a Read
// Status transaction (see BuildReadStatusCmd).
func ParseStatus(rx []byte) (byte, error) {
	if len(rx) < 2 {
		return 0, fmt.Errorf("status response too short: got %d bytes, expected 2", len(rx))
	}
	return rx[1], nil
}

// DecodeStatus maps status register 1 to a Status.
func DecodeStatus(reg byte) Status {
	if reg&StatusBitBusy != 0 {
		return StatusBusy
	}
	return StatusReady
}

// ResolveInfo builds an Info from a JEDEC ID using the manufacturer table and
// the power-of-two capacity convention.
func ResolveInfo(id JEDECID) Info {
	info := Info{ID: id, Vendor: VendorName(id.Manufacturer())}

	if code := id.CapacityCode(); code >= MinCapacityCode && code <= MaxCapacityCode {
		info.Size = int64(1) << code
	}
	return info
}
