package protocol

import (
	"errors"
	"testing"

	"go.einride.tech/can"
)

func announcementFrame(data [8]byte) can.Frame {
	return can.Frame{ID: CANID, Length: 8, Data: data}
}

func TestParseAnnouncement(t *testing.T) {
	tests := []struct {
		name      string
		data      [8]byte
		length    uint8
		wantID    int
		wantPPCAN byte
		wantWidth int
		wantMajor byte
		wantMinor byte
		wantErr   bool
	}{
		{
			name: "full announcement",
			// ppcan id: 0x21<<2 | 0x40>>6 = 0x85
			data:      [8]byte{0x21, 0x40, 0x03, 0x17, 0x06, 0x24, 0x45, 8},
			length:    8,
			wantID:    3,
			wantPPCAN: 0x85,
			wantWidth: 8,
			wantMajor: 2,
			wantMinor: 5,
		},
		{
			name:      "no width announced",
			data:      [8]byte{0x00, 0x00, 0x0F, 0x01, 0x01, 0x21, 0x20, 0},
			length:    8,
			wantID:    15,
			wantPPCAN: 0,
			wantWidth: NoTransferWidth,
			wantMajor: 1,
			wantMinor: 0,
		},
		{
			name:    "invalid width",
			data:    [8]byte{0, 0, 1, 1, 1, 1, 1, 5},
			length:  8,
			wantErr: true,
		},
		{
			name:    "short frame",
			data:    [8]byte{0, 0, 1},
			length:  3,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := can.Frame{ID: CANID, Length: tt.length, Data: tt.data}
			ann, err := ParseAnnouncement(f)
			if tt.wantErr {
				if err == nil {
					t.Fatal("ParseAnnouncement() succeeded unexpectedly")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAnnouncement() failed: %v", err)
			}
			if ann.ModuleID != tt.wantID {
				t.Errorf("ModuleID = %d, want %d", ann.ModuleID, tt.wantID)
			}
			if ann.PPCANID != tt.wantPPCAN {
				t.Errorf("PPCANID = 0x%02X, want 0x%02X", ann.PPCANID, tt.wantPPCAN)
			}
			if ann.TransferWidth != tt.wantWidth {
				t.Errorf("TransferWidth = %d, want %d", ann.TransferWidth, tt.wantWidth)
			}
			if ann.BootloaderMajor != tt.wantMajor || ann.BootloaderMinor != tt.wantMinor {
				t.Errorf("bootloader = v%d.%d, want v%d.%d",
					ann.BootloaderMajor, ann.BootloaderMinor, tt.wantMajor, tt.wantMinor)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	f := announcementFrame([8]byte{0, 0, 0, 19, 4, 0, 0, 0})
	status, err := ParseStatus(f)
	if err != nil {
		t.Fatalf("ParseStatus() failed: %v", err)
	}
	if status.HardwareType != 19 {
		t.Errorf("HardwareType = %d, want 19", status.HardwareType)
	}
	if status.FlashType != 4 {
		t.Errorf("FlashType = %d, want 4", status.FlashType)
	}
	if status.NeedsExtendedConfig() {
		t.Error("NeedsExtendedConfig() = true for plain status")
	}

	ext, err := ParseStatus(announcementFrame([8]byte{0, 0, 0, ExtendedConfigType, 4, 0, 0, 0}))
	if err != nil {
		t.Fatalf("ParseStatus() failed: %v", err)
	}
	if !ext.NeedsExtendedConfig() {
		t.Error("NeedsExtendedConfig() = false for sentinel hardware type")
	}
}

func TestParseAck(t *testing.T) {
	tests := []struct {
		name     string
		data     [8]byte
		length   uint8
		wantErr  bool
		wantCode byte
	}{
		{name: "ok", data: [8]byte{OpEraseSector, AckOK}, length: 2},
		{name: "module error", data: [8]byte{OpEraseSector, 0x05}, length: 2, wantErr: true, wantCode: 0x05},
		{name: "wrong opcode echo", data: [8]byte{OpWriteStart, AckOK}, length: 2, wantErr: true},
		{name: "short frame", data: [8]byte{OpEraseSector}, length: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := can.Frame{ID: CANID, Length: tt.length, Data: tt.data}
			err := ParseAck("erase sector", OpEraseSector, f)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("ParseAck() failed: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ParseAck() succeeded unexpectedly")
			}
			if tt.wantCode != 0 {
				var respErr *ResponseError
				if !errors.As(err, &respErr) {
					t.Fatalf("error is %T, want *ResponseError", err)
				}
				if respErr.Code != tt.wantCode {
					t.Errorf("Code = 0x%02X, want 0x%02X", respErr.Code, tt.wantCode)
				}
			}
		})
	}
}

func TestParseExtendedConfig(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantHW   byte
		wantName string
		wantWide int
		wantErr  bool
	}{
		{
			name:     "full config",
			raw:      `{"hardware":{"id":40,"name":"PCAN-Router FD"},"flash":{"id":14,"name":"LPC54618"},"dlc":8}` + "\x00",
			wantHW:   40,
			wantName: "PCAN-Router FD",
			wantWide: 8,
		},
		{
			name:     "trailing frame padding after NUL",
			raw:      `{"hardware":{"id":19},"flash":{"id":4}}` + "\x00\xAA\xBB",
			wantHW:   19,
			wantWide: 0,
		},
		{name: "empty", raw: "\x00", wantErr: true},
		{name: "broken json", raw: `{"hardware":` + "\x00", wantErr: true},
		{name: "invalid width", raw: `{"hardware":{"id":19},"flash":{"id":4},"dlc":7}` + "\x00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseExtendedConfig([]byte(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Fatal("ParseExtendedConfig() succeeded unexpectedly")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseExtendedConfig() failed: %v", err)
			}
			if cfg.Hardware.ID != tt.wantHW {
				t.Errorf("Hardware.ID = %d, want %d", cfg.Hardware.ID, tt.wantHW)
			}
			if cfg.Hardware.Name != tt.wantName {
				t.Errorf("Hardware.Name = %q, want %q", cfg.Hardware.Name, tt.wantName)
			}
			if cfg.TransferWidth != tt.wantWide {
				t.Errorf("TransferWidth = %d, want %d", cfg.TransferWidth, tt.wantWide)
			}
		})
	}
}
