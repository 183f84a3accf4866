package chip

// Instruction opcodes shared by virtually every 25-series SPI NOR flash.
// [JESD216|6.1 Basic command set], [W25Q128JV|8.1.2 Instruction Set Table 1]
const (
	// OpReadJEDECID returns manufacturer, memory type and capacity (3 bytes)
	OpReadJEDECID = 0x9F

	// OpReadStatus reads status register 1
	OpReadStatus = 0x05

	// OpWriteEnable sets the write enable latch
	OpWriteEnable = 0x06

	// OpWriteDisable clears the write enable latch
	OpWriteDisable = 0x04

	// OpRead is the normal read with a 24-bit address
	OpRead = 0x03

	// OpRead4B is the normal read with a 32-bit address (parts above 16 MiB)
	OpRead4B = 0x13

	// OpChipErase erases the whole array (0x60 is an equivalent alias)
	OpChipErase = 0xC7
)

// Status register 1 bits.
const (
	// StatusBitBusy is the write-in-progress flag
	StatusBitBusy = 0x01

	// StatusBitWEL is the write enable latch
	StatusBitWEL = 0x02
)

// Address limits.
const (
	// MaxAddr3B is the largest size addressable with a 3-byte address (16 MiB)
	MaxAddr3B = 1 << 24

	// MaxAddr4B is the largest size addressable with a 4-byte address (4 GiB)
	MaxAddr4B = 1 << 32
)

// JEDEC capacity codes accepted as a power-of-two size.
// Codes outside this range come from parts that encode capacity differently
// and leave the chip description incomplete.
const (
	MinCapacityCode = 0x10 // 64 KiB
	MaxCapacityCode = 0x20 // 4 GiB
)

// DefaultMaxTxSize bounds one SPI transaction when the port does not report
// its own limit. Linux spidev defaults to a 4096 byte buffer.
const DefaultMaxTxSize = 4096

// JEDECIDSize is the number of ID bytes returned by OpReadJEDECID.
const JEDECIDSize = 3
