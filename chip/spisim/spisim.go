// Package spisim simulates a 25-series SPI NOR flash behind a periph.io
// spi.Conn. It understands the instructions used by package chip and can
// inject faults, which makes it usable both as a development target and in
// tests.
package spisim

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/moffa90/go-spimem/chip"
)

// ErrInjected is returned by instructions configured to fail with FailOpcode
// or FailReadAt.
var ErrInjected = errors.New("spisim: injected fault")

// Chip is a simulated flash. The zero value is not usable; call New.
type Chip struct {
	mu sync.Mutex

	id     chip.JEDECID
	mem    []byte
	status byte
	maxTx  int

	// erase state
	eraseBusyPolls int
	busyPolls      int
	erasePending   bool

	// faults
	failOps      map[byte]error
	failReadAt   int64
	unresponsive int
	statusErr    bool

	ops []byte
}

// New creates a blank (all 0xFF) chip of size bytes answering with id.
func New(id chip.JEDECID, size int) *Chip {
	mem := make([]byte, size)
	for i := range mem {
		mem[i] = 0xFF
	}
	return &Chip{
		id:         id,
		mem:        mem,
		maxTx:      chip.DefaultMaxTxSize,
		failOps:    make(map[byte]error),
		failReadAt: -1,
	}
}

// Load copies data into the array starting at address 0.
func (c *Chip) Load(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	copy(c.mem, data)
}

// Bytes returns a copy of the array.
func (c *Chip) Bytes() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.mem...)
}

// SetEraseBusyPolls sets how many status reads report busy after a chip
// erase before the erase completes.
func (c *Chip) SetEraseBusyPolls(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eraseBusyPolls = n
}

// SetMaxTxSize sets the transaction limit reported through conn.Limits.
func (c *Chip) SetMaxTxSize(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxTx = n
}

// FailOpcode makes every transaction starting with op fail with err
// (ErrInjected if err is nil). A second call with the same op replaces it.
func (c *Chip) FailOpcode(op byte, err error) {
	if err == nil {
		err = ErrInjected
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failOps[op] = err
}

// ClearFaults removes every injected fault.
func (c *Chip) ClearFaults() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failOps = make(map[byte]error)
	c.failReadAt = -1
	c.unresponsive = 0
	c.statusErr = false
}

// FailReadAt makes any read covering offset fail.
func (c *Chip) FailReadAt(offset int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failReadAt = offset
}

// Unresponsive makes the next n JEDEC ID reads return 0xFFFFFF, as a chip
// that is not yet powered or seated would.
func (c *Chip) Unresponsive(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unresponsive = n
}

// StatusError makes status register reads fail.
func (c *Chip) StatusError(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statusErr = fail
}

// Ops returns the opcodes received so far, in order.
func (c *Chip) Ops() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.ops...)
}

// String implements conn.Resource.
func (c *Chip) String() string {
	return fmt.Sprintf("spisim(%s, %d bytes)", c.id, len(c.mem))
}

// Halt implements conn.Resource.
func (c *Chip) Halt() error { return nil }

// Duplex implements conn.Conn.
func (c *Chip) Duplex() conn.Duplex { return conn.Full }

// MaxTxSize implements conn.Limits.
func (c *Chip) MaxTxSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxTx
}

// Tx implements conn.Conn. Each call is one chip-select framed instruction.
func (c *Chip) Tx(w, r []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tx(w, r)
}

// TxPackets implements spi.Conn. Packets are executed as independent
// instructions.
func (c *Chip) TxPackets(p []spi.Packet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range p {
		if err := c.tx(p[i].W, p[i].R); err != nil {
			return err
		}
	}
	return nil
}

// Connect lets the simulator stand in for an spi.Port.
func (c *Chip) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	if bits != 8 {
		return nil, fmt.Errorf("spisim: unsupported bits per word %d", bits)
	}
	return c, nil
}

// LimitSpeed implements spi.Port.
func (c *Chip) LimitSpeed(f physic.Frequency) error { return nil }

// Close implements spi.PortCloser.
func (c *Chip) Close() error { return nil }

func (c *Chip) tx(w, r []byte) error {
	if len(w) == 0 {
		return errors.New("spisim: empty transaction")
	}
	if r != nil && len(r) != len(w) {
		return fmt.Errorf("spisim: full duplex requires equal buffers, got w=%d r=%d", len(w), len(r))
	}

	op := w[0]
	c.ops = append(c.ops, op)
	if err, ok := c.failOps[op]; ok {
		return err
	}

	switch op {
	case chip.OpReadJEDECID:
		return c.readID(r)
	case chip.OpReadStatus:
		return c.readStatus(r)
	case chip.OpWriteEnable:
		if !c.busy() {
			c.status |= chip.StatusBitWEL
		}
	case chip.OpWriteDisable:
		if !c.busy() {
			c.status &^= chip.StatusBitWEL
		}
	case chip.OpChipErase:
		c.chipErase()
	case chip.OpRead:
		return c.read(w, r, 3)
	case chip.OpRead4B:
		return c.read(w, r, 4)
	default:
		return fmt.Errorf("spisim: unsupported opcode 0x%02X", op)
	}
	return nil
}

func (c *Chip) busy() bool {
	return c.erasePending
}

func (c *Chip) readID(r []byte) error {
	if r == nil || len(r) < 1+chip.JEDECIDSize {
		return nil
	}
	if c.unresponsive > 0 {
		c.unresponsive--
		for i := 1; i < len(r); i++ {
			r[i] = 0xFF
		}
		return nil
	}
	copy(r[1:], c.id[:])
	return nil
}

func (c *Chip) readStatus(r []byte) error {
	if c.statusErr {
		return ErrInjected
	}

	reg := c.status
	if c.erasePending {
		reg |= chip.StatusBitBusy
		if c.busyPolls--; c.busyPolls <= 0 {
			c.finishErase()
		}
	}
	if len(r) >= 2 {
		r[1] = reg
	}
	return nil
}

func (c *Chip) chipErase() {
	if c.busy() || c.status&chip.StatusBitWEL == 0 {
		// Ignored by real parts as well.
		return
	}
	if c.eraseBusyPolls <= 0 {
		c.finishErase()
		return
	}
	c.erasePending = true
	c.busyPolls = c.eraseBusyPolls
}

func (c *Chip) finishErase() {
	for i := range c.mem {
		c.mem[i] = 0xFF
	}
	c.erasePending = false
	c.status &^= chip.StatusBitWEL
}

func (c *Chip) read(w, r []byte, addrLen int) error {
	header := 1 + addrLen
	if len(w) < header {
		return fmt.Errorf("spisim: read header too short: %d bytes", len(w))
	}

	var addr int64
	for _, b := range w[1:header] {
		addr = addr<<8 | int64(b)
	}
	n := int64(len(w) - header)

	if c.failReadAt >= 0 && c.failReadAt >= addr && c.failReadAt < addr+n {
		return ErrInjected
	}
	if addr+n > int64(len(c.mem)) {
		return fmt.Errorf("spisim: read 0x%X+%d past end of %d byte array", addr, n, len(c.mem))
	}
	if r != nil {
		copy(r[header:], c.mem[addr:addr+n])
	}
	return nil
}
