package chip

import (
	"errors"
	"testing"
)

func TestParseJEDECID(t *testing.T) {
	tests := []struct {
		name    string
		rx      []byte
		want    JEDECID
		wantErr error
	}{
		{
			name: "winbond W25Q128",
			rx:   []byte{0x00, 0xEF, 0x40, 0x18},
			want: JEDECID{0xEF, 0x40, 0x18},
		},
		{
			name:    "floating bus",
			rx:      []byte{0x00, 0xFF, 0xFF, 0xFF},
			wantErr: ErrNoResponse,
		},
		{
			name:    "grounded bus",
			rx:      []byte{0x00, 0x00, 0x00, 0x00},
			wantErr: ErrNoResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseJEDECID(tt.rx)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id != tt.want {
				t.Errorf("id = %s, want %s", id, tt.want)
			}
		})
	}

	if _, err := ParseJEDECID([]byte{0x00, 0xEF}); err == nil {
		t.Error("expected error for short response")
	}
}

func TestDecodeStatus(t *testing.T) {
	tests := []struct {
		reg  byte
		want Status
	}{
		{0x00, StatusReady},
		{StatusBitWEL, StatusReady},
		{StatusBitBusy, StatusBusy},
		{StatusBitBusy | StatusBitWEL, StatusBusy},
	}

	for _, tt := range tests {
		if got := DecodeStatus(tt.reg); got != tt.want {
			t.Errorf("DecodeStatus(0x%02X) = %s, want %s", tt.reg, got, tt.want)
		}
	}
}

func TestResolveInfo(t *testing.T) {
	tests := []struct {
		name         string
		id           JEDECID
		wantVendor   string
		wantSize     int64
		wantComplete bool
	}{
		{
			name:         "winbond 16 MiB",
			id:           JEDECID{0xEF, 0x40, 0x18},
			wantVendor:   "Winbond",
			wantSize:     16 << 20,
			wantComplete: true,
		},
		{
			name:         "micron N25Q032",
			id:           JEDECID{0x20, 0xBA, 0x16},
			wantVendor:   "Micron",
			wantSize:     4 << 20,
			wantComplete: true,
		},
		{
			name:       "unknown vendor",
			id:         JEDECID{0x42, 0x40, 0x17},
			wantSize:   8 << 20,
			wantVendor: "",
		},
		{
			name:       "odd capacity code",
			id:         JEDECID{0xC2, 0x25, 0x39},
			wantVendor: "Macronix",
			wantSize:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ResolveInfo(tt.id)
			if info.Vendor != tt.wantVendor {
				t.Errorf("Vendor = %q, want %q", info.Vendor, tt.wantVendor)
			}
			if info.Size != tt.wantSize {
				t.Errorf("Size = %d, want %d", info.Size, tt.wantSize)
			}
			if info.Complete() != tt.wantComplete {
				t.Errorf("Complete() = %v, want %v", info.Complete(), tt.wantComplete)
			}
		})
	}
}

func TestCommandError(t *testing.T) {
	inner := errors.New("bus fault")
	err := error(&CommandError{Op: opName(OpChipErase), Opcode: OpChipErase, Err: inner})

	if !errors.Is(err, inner) {
		t.Error("CommandError should unwrap to the transport error")
	}
	if !IsCommandError(err) {
		t.Error("IsCommandError() = false, want true")
	}
	if want := "chip erase (0xC7) failed: bus fault"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
