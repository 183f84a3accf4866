package chip

import (
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
)

// Flash drives a 25-series SPI NOR flash over a periph.io SPI connection.
//
// Flash is not safe for concurrent use; the worker owns it for the duration
// of a run.
type Flash struct {
	conn   spi.Conn
	cs     gpio.PinOut
	maxTx  int
	size   int64
	info   Info
	probed bool
}

// FlashOption configures a Flash.
type FlashOption func(*Flash)

// WithChipSelect drives chip select from a GPIO instead of the SPI port.
// Needed on adapters such as the FT232H where CS is a plain MPSSE pin.
func WithChipSelect(pin gpio.PinOut) FlashOption {
	return func(f *Flash) {
		f.cs = pin
	}
}

// WithMaxTxSize overrides the transaction size limit reported by the port.
func WithMaxTxSize(n int) FlashOption {
	return func(f *Flash) {
		if n > 5 {
			f.maxTx = n
		}
	}
}

// WithSize forces the chip capacity. Useful for parts whose JEDEC capacity
// code does not follow the power-of-two convention.
func WithSize(size int64) FlashOption {
	return func(f *Flash) {
		if size > 0 {
			f.size = size
		}
	}
}

// NewFlash creates a Flash on an already connected SPI port.
// The connection must be configured for 8 bits per word, mode 0 or 3.
func NewFlash(c spi.Conn, opts ...FlashOption) *Flash {
	if c == nil {
		panic("spi connection cannot be nil")
	}

	f := &Flash{
		conn:  c,
		maxTx: DefaultMaxTxSize,
	}
	if l, ok := c.(conn.Limits); ok && l.MaxTxSize() > 5 {
		f.maxTx = l.MaxTxSize()
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Identify reads the JEDEC ID and resolves the chip description.
// It fails with ErrNoResponse (wrapped in a CommandError) when nothing answers.
func (f *Flash) Identify() error {
	f.probed = false

	rx, err := f.command(BuildReadIDCmd(), true)
	if err != nil {
		return err
	}

	id, err := ParseJEDECID(rx)
	if err != nil {
		return &CommandError{Op: opName(OpReadJEDECID), Opcode: OpReadJEDECID, Err: err}
	}

	f.info = ResolveInfo(id)
	f.probed = true
	return nil
}

// Info returns the description resolved by the last successful Identify.
func (f *Flash) Info() Info {
	info := f.info
	if f.size > 0 {
		info.Size = f.size
	}
	return info
}

// InfoComplete reports whether Identify succeeded and resolved both vendor and
// capacity.
func (f *Flash) InfoComplete() bool {
	return f.probed && f.Info().Complete()
}

// Size returns the chip capacity in bytes, 0 if unknown.
func (f *Flash) Size() int64 {
	return f.Info().Size
}

// ReadStatusRegister returns status register 1.
func (f *Flash) ReadStatusRegister() (byte, error) {
	rx, err := f.command(BuildReadStatusCmd(), true)
	if err != nil {
		return 0, err
	}
	return ParseStatus(rx)
}

// Status returns the busy state of the chip. A failed status read is reported
// as StatusError.
func (f *Flash) Status() Status {
	reg, err := f.ReadStatusRegister()
	if err != nil {
		return StatusError
	}
	return DecodeStatus(reg)
}

// ReadBlock fills p with the chip content starting at offset. The read is
// split into transactions no larger than the port limit.
func (f *Flash) ReadBlock(offset int64, p []byte) error {
	size := f.Size()
	if size == 0 {
		return ErrNotIdentified
	}
	if offset < 0 || offset+int64(len(p)) > size {
		return fmt.Errorf("read 0x%X+%d outside chip of %d bytes", offset, len(p), size)
	}

	fourByte := size > MaxAddr3B
	maxData := f.maxTx - 1 - addrBytes(fourByte)

	for len(p) > 0 {
		n := min(len(p), maxData)
		frame, header, err := BuildReadCmd(offset, n, fourByte)
		if err != nil {
			return err
		}

		rx, err := f.command(frame, true)
		if err != nil {
			return fmt.Errorf("at 0x%X: %w", offset, err)
		}
		copy(p, rx[header:])

		p = p[n:]
		offset += int64(n)
	}
	return nil
}

// SetWriteEnabled sets or clears the write enable latch and confirms the
// change in the status register.
func (f *Flash) SetWriteEnabled(enable bool) error {
	frame := BuildWriteEnableCmd(enable)
	if _, err := f.command(frame, false); err != nil {
		return err
	}

	reg, err := f.ReadStatusRegister()
	if err != nil {
		return err
	}
	if latched := reg&StatusBitWEL != 0; latched != enable {
		return &CommandError{
			Op:     opName(frame[0]),
			Opcode: frame[0],
			Err:    fmt.Errorf("write enable latch is %v after instruction (SR1=0x%02X)", latched, reg),
		}
	}
	return nil
}

// EraseChip issues a chip erase. It returns as soon as the instruction is
// accepted; poll Status until the chip is no longer busy.
func (f *Flash) EraseChip() error {
	_, err := f.command(BuildChipEraseCmd(), false)
	return err
}

// command runs a single transaction and returns the receive buffer when read
// is set.
func (f *Flash) command(w []byte, read bool) ([]byte, error) {
	var r []byte
	if read {
		r = make([]byte, len(w))
	}
	if err := f.tx(w, r); err != nil {
		return nil, &CommandError{Op: opName(w[0]), Opcode: w[0], Err: err}
	}
	return r, nil
}

func (f *Flash) tx(w, r []byte) error {
	if f.cs == nil {
		return f.conn.Tx(w, r)
	}

	if err := f.cs.Out(gpio.Low); err != nil {
		return err
	}
	txErr := f.conn.Tx(w, r)
	if csErr := f.cs.Out(gpio.High); csErr != nil && txErr == nil {
		return csErr
	}
	return txErr
}
