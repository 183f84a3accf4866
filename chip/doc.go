// Package chip implements the instruction layer for 25-series SPI NOR flash
// chips on top of periph.io SPI connections.
//
// # Instruction Overview
//
// Every instruction is one chip-select framed, full-duplex transaction:
//
//	Read ID:      [0x9F][MFR][TYPE][CAPACITY]
//	Read status:  [0x05][SR1]
//	Write enable: [0x06]            Write disable: [0x04]
//	Chip erase:   [0xC7]
//	Read:         [0x03][A23..A0][DATA...]  (0x13 with a 32-bit address)
//
// # Command Builders
//
// Use the Build* functions to create transaction buffers and the Parse*
// functions to decode what came back:
//
//	frame := chip.BuildReadIDCmd()
//	rx := make([]byte, len(frame))
//	err := conn.Tx(frame, rx)
//	id, err := chip.ParseJEDECID(rx)
//
// # Flash Driver
//
// Flash wraps an spi.Conn and provides the operations the worker package
// consumes: Identify, Status, ReadBlock, SetWriteEnabled, EraseChip, Size and
// InfoComplete.
//
//	f, port, err := chip.Open("/dev/spidev0.0", 10*physic.MegaHertz, spi.Mode0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	if err := f.Identify(); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(f.Info())
//
// # Error Handling
//
// Transport failures are wrapped in CommandError, which names the failed
// instruction and unwraps to the underlying error:
//
//	// err.Error() returns: "read (0x03) failed: spisim: injected fault"
//
// # Reference
//
// JESD216 (SFDP) and the W25Q128JV / N25Q032 datasheets.
package chip
