package chip

import (
	"bytes"
	"testing"
)

func TestBuildReadCmd(t *testing.T) {
	tests := []struct {
		name       string
		addr       int64
		n          int
		fourByte   bool
		wantHeader []byte
		wantErr    bool
		errMsg     string
	}{
		{
			name:       "3-byte address at zero",
			addr:       0,
			n:          16,
			wantHeader: []byte{OpRead, 0x00, 0x00, 0x00},
		},
		{
			name:       "3-byte address big endian",
			addr:       0x123456,
			n:          1,
			wantHeader: []byte{OpRead, 0x12, 0x34, 0x56},
		},
		{
			name:       "4-byte address",
			addr:       0x01234567,
			n:          8,
			fourByte:   true,
			wantHeader: []byte{OpRead4B, 0x01, 0x23, 0x45, 0x67},
		},
		{
			name:    "past 16 MiB without 4-byte mode",
			addr:    MaxAddr3B - 4,
			n:       8,
			wantErr: true,
			errMsg:  "exceeds 3-byte address range",
		},
		{
			name:    "zero length",
			addr:    0,
			n:       0,
			wantErr: true,
			errMsg:  "read length must be positive",
		},
		{
			name:    "negative address",
			addr:    -1,
			n:       1,
			wantErr: true,
			errMsg:  "negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, header, err := BuildReadCmd(tt.addr, tt.n, tt.fourByte)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.errMsg)
				}
				if !bytes.Contains([]byte(err.Error()), []byte(tt.errMsg)) {
					t.Errorf("error = %v, want substring %q", err, tt.errMsg)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if header != len(tt.wantHeader) {
				t.Errorf("header = %d, want %d", header, len(tt.wantHeader))
			}
			if !bytes.Equal(frame[:header], tt.wantHeader) {
				t.Errorf("header bytes = % X, want % X", frame[:header], tt.wantHeader)
			}
			if len(frame) != header+tt.n {
				t.Errorf("frame length = %d, want %d", len(frame), header+tt.n)
			}
		})
	}
}

func TestSimpleCommands(t *testing.T) {
	tests := []struct {
		name  string
		frame []byte
		want  []byte
	}{
		{"read id", BuildReadIDCmd(), []byte{OpReadJEDECID, 0, 0, 0}},
		{"read status", BuildReadStatusCmd(), []byte{OpReadStatus, 0}},
		{"write enable", BuildWriteEnableCmd(true), []byte{OpWriteEnable}},
		{"write disable", BuildWriteEnableCmd(false), []byte{OpWriteDisable}},
		{"chip erase", BuildChipEraseCmd(), []byte{OpChipErase}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !bytes.Equal(tt.frame, tt.want) {
				t.Errorf("frame = % X, want % X", tt.frame, tt.want)
			}
		})
	}
}
