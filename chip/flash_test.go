package chip_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/moffa90/go-spimem/chip"
	"github.com/moffa90/go-spimem/chip/spisim"
)

var winbond = chip.JEDECID{0xEF, 0x40, 0x14} // 1 MiB

func newSim(t *testing.T) (*spisim.Chip, *chip.Flash) {
	t.Helper()
	sim := spisim.New(winbond, 1<<20)
	return sim, chip.NewFlash(sim)
}

func TestFlashIdentify(t *testing.T) {
	sim, f := newSim(t)

	if f.InfoComplete() {
		t.Fatal("InfoComplete() = true before Identify")
	}
	if err := f.Identify(); err != nil {
		t.Fatalf("Identify() error = %v", err)
	}

	info := f.Info()
	if info.Vendor != "Winbond" {
		t.Errorf("Vendor = %q, want Winbond", info.Vendor)
	}
	if f.Size() != 1<<20 {
		t.Errorf("Size() = %d, want %d", f.Size(), 1<<20)
	}
	if !f.InfoComplete() {
		t.Error("InfoComplete() = false after Identify")
	}

	sim.Unresponsive(1)
	err := f.Identify()
	if !errors.Is(err, chip.ErrNoResponse) {
		t.Fatalf("Identify() error = %v, want ErrNoResponse", err)
	}
	if f.InfoComplete() {
		t.Error("InfoComplete() = true after failed Identify")
	}
}

func TestFlashReadBlockSplitsTransactions(t *testing.T) {
	sim, f := newSim(t)
	sim.SetMaxTxSize(64)
	f = chip.NewFlash(sim)

	data := make([]byte, 1<<20)
	for i := range data {
		data[i] = byte(i * 7)
	}
	sim.Load(data)

	if err := f.Identify(); err != nil {
		t.Fatalf("Identify() error = %v", err)
	}

	got := make([]byte, 1000)
	if err := f.ReadBlock(0x1234, got); err != nil {
		t.Fatalf("ReadBlock() error = %v", err)
	}
	if !bytes.Equal(got, data[0x1234:0x1234+1000]) {
		t.Error("ReadBlock() returned wrong data")
	}

	reads := 0
	for _, op := range sim.Ops() {
		if op == chip.OpRead {
			reads++
		}
	}
	// 60 data bytes per transaction after the 4-byte header
	if want := (1000 + 59) / 60; reads != want {
		t.Errorf("read transactions = %d, want %d", reads, want)
	}
}

func TestFlashReadBlockErrors(t *testing.T) {
	sim, f := newSim(t)

	if err := f.ReadBlock(0, make([]byte, 4)); !errors.Is(err, chip.ErrNotIdentified) {
		t.Errorf("ReadBlock() before Identify error = %v, want ErrNotIdentified", err)
	}

	if err := f.Identify(); err != nil {
		t.Fatalf("Identify() error = %v", err)
	}

	if err := f.ReadBlock(1<<20-2, make([]byte, 4)); err == nil {
		t.Error("expected error reading past the end")
	}

	sim.FailReadAt(100)
	err := f.ReadBlock(0, make([]byte, 256))
	if !errors.Is(err, spisim.ErrInjected) {
		t.Errorf("ReadBlock() error = %v, want injected fault", err)
	}
	if !chip.IsCommandError(err) {
		t.Error("ReadBlock() error should wrap a CommandError")
	}
}

func TestFlashEraseSequence(t *testing.T) {
	sim, f := newSim(t)
	sim.Load(bytes.Repeat([]byte{0x00}, 1<<20))
	sim.SetEraseBusyPolls(3)

	if err := f.SetWriteEnabled(true); err != nil {
		t.Fatalf("SetWriteEnabled(true) error = %v", err)
	}
	if err := f.EraseChip(); err != nil {
		t.Fatalf("EraseChip() error = %v", err)
	}

	busy := 0
	for f.Status() == chip.StatusBusy {
		busy++
		if busy > 10 {
			t.Fatal("chip never left busy state")
		}
	}
	if busy != 3 {
		t.Errorf("busy polls = %d, want 3", busy)
	}

	if err := f.SetWriteEnabled(false); err != nil {
		t.Fatalf("SetWriteEnabled(false) error = %v", err)
	}
	if !bytes.Equal(sim.Bytes(), bytes.Repeat([]byte{0xFF}, 1<<20)) {
		t.Error("chip not erased")
	}
}

func TestFlashEraseWithoutWriteEnableIsIgnored(t *testing.T) {
	sim, f := newSim(t)
	sim.Load([]byte{0x00})

	if err := f.EraseChip(); err != nil {
		t.Fatalf("EraseChip() error = %v", err)
	}
	if sim.Bytes()[0] != 0x00 {
		t.Error("erase without write enable latch should be ignored")
	}
}

func TestFlashStatusError(t *testing.T) {
	sim, f := newSim(t)
	sim.StatusError(true)

	if got := f.Status(); got != chip.StatusError {
		t.Errorf("Status() = %s, want error", got)
	}
	if err := f.SetWriteEnabled(true); err == nil {
		t.Error("SetWriteEnabled() should fail when status cannot be confirmed")
	}
}

func TestFlashWithSize(t *testing.T) {
	sim := spisim.New(chip.JEDECID{0xC2, 0x25, 0x39}, 4096)
	f := chip.NewFlash(sim, chip.WithSize(4096))

	if err := f.Identify(); err != nil {
		t.Fatalf("Identify() error = %v", err)
	}
	if f.Size() != 4096 {
		t.Errorf("Size() = %d, want 4096", f.Size())
	}
	if !f.InfoComplete() {
		t.Error("InfoComplete() = false with forced size and known vendor")
	}
}
