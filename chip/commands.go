package chip

import "fmt"

// BuildReadIDCmd constructs a Read JEDEC ID transaction.
//
// Frame structure:
//
//	[0x9F][MFR][TYPE][CAPACITY]
//
// The three trailing bytes are clocked out as dummies and replaced by the ID
// on a full-duplex transfer.
func BuildReadIDCmd() []byte {
	return []byte{OpReadJEDECID, 0, 0, 0}
}

// BuildReadStatusCmd constructs a Read Status Register 1 transaction.
//
// Frame structure:
//
//	[0x05][SR1]
func BuildReadStatusCmd() []byte {
	return []byte{OpReadStatus, 0}
}

// BuildWriteEnableCmd constructs a Write Enable (0x06) or Write Disable (0x04)
// instruction.
func BuildWriteEnableCmd(enable bool) []byte {
	if enable {
		return []byte{OpWriteEnable}
	}
	return []byte{OpWriteDisable}
}

// BuildChipEraseCmd constructs a Chip Erase instruction.
// The write enable latch must be set beforehand or the chip ignores it.
func BuildChipEraseCmd() []byte {
	return []byte{OpChipErase}
}

// BuildReadCmd constructs a Read Data transaction for n bytes at addr.
// Parts larger than 16 MiB need a 4-byte address, selected with fourByte.
//
// Frame structure:
//
//	[0x03][A23-16][A15-8][A7-0][DUMMY...]
//	[0x13][A31-24][A23-16][A15-8][A7-0][DUMMY...]
//
// Returns the frame and the header length; data starts at that index of the
// receive buffer.
func BuildReadCmd(addr int64, n int, fourByte bool) ([]byte, int, error) {
	if n <= 0 {
		return nil, 0, fmt.Errorf("read length must be positive, got %d", n)
	}
	if addr < 0 {
		return nil, 0, fmt.Errorf("address %d is negative", addr)
	}

	limit := int64(MaxAddr3B)
	if fourByte {
		limit = MaxAddr4B
	}
	if addr+int64(n) > limit {
		return nil, 0, fmt.Errorf("read 0x%X+%d exceeds %d-byte address range", addr, n, addrBytes(fourByte))
	}

	header := 1 + addrBytes(fourByte)
	frame := make([]byte, header+n)
	if fourByte {
		frame[0] = OpRead4B
		frame[1] = byte(addr >> 24)
		frame[2] = byte(addr >> 16)
		frame[3] = byte(addr >> 8)
		frame[4] = byte(addr)
	} else {
		frame[0] = OpRead
		frame[1] = byte(addr >> 16)
		frame[2] = byte(addr >> 8)
		frame[3] = byte(addr)
	}

	return frame, header, nil
}

func addrBytes(fourByte bool) int {
	if fourByte {
		return 4
	}
	return 3
}
