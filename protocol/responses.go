package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.einride.tech/can"
)

// ParseAnnouncement decodes a discovery reply.
//
// Payload layout (8 bytes):
//
//	[0..1]  ppcan hardware id, packed as (d0<<2 | d1>>6)
//	[2]     module id in the low nibble
//	[3..5]  BCD build date, day/month/year
//	[6]     bootloader version, major in the high 3 bits
//	[7]     announced transfer width, 0 when unspecified
func ParseAnnouncement(f can.Frame) (*Announcement, error) {
	if f.Length != 8 {
		return nil, fmt.Errorf("announcement frame has %d data bytes, expected 8", f.Length)
	}

	width := int(f.Data[7])
	switch width {
	case NoTransferWidth, NarrowTransferWidth, WideTransferWidth:
	default:
		return nil, fmt.Errorf("announcement declares invalid transfer width %d", width)
	}

	a := &Announcement{
		ModuleID:        int(f.Data[2] & 0x0F),
		PPCANID:         byte((uint16(f.Data[0])<<2 | uint16(f.Data[1])>>6) & 0xFF),
		Day:             f.Data[3],
		Month:           f.Data[4],
		Year:            f.Data[5],
		BootloaderMajor: f.Data[6] >> 5,
		BootloaderMinor: f.Data[6] & 0x1F,
		TransferWidth:   width,
	}
	copy(a.Raw[:], f.Data[:])
	return a, nil
}

// ParseStatus decodes a status reply payload.
func ParseStatus(f can.Frame) (*Status, error) {
	if f.Length != 8 {
		return nil, fmt.Errorf("status frame has %d data bytes, expected 8", f.Length)
	}

	s := &Status{
		HardwareType: f.Data[statusHardwareTypePos],
		FlashType:    f.Data[statusFlashTypePos],
	}
	copy(s.Raw[:], f.Data[:])
	return s, nil
}

// ParseAck validates an acknowledgment frame for the given operation.
//
// Payload layout:
//
//	[0] echoed opcode
//	[1] status byte, AckOK on success
func ParseAck(op string, expectOp byte, f can.Frame) error {
	if f.Length < 2 {
		return fmt.Errorf("%s: acknowledgment frame has %d data bytes, expected at least 2", op, f.Length)
	}
	if f.Data[0] != expectOp {
		return fmt.Errorf("%s: acknowledgment echoes opcode 0x%02X, expected 0x%02X", op, f.Data[0], expectOp)
	}
	if f.Data[1] != AckOK {
		return &ResponseError{Operation: op, Code: f.Data[1]}
	}
	return nil
}

// ParseExtendedConfig decodes the JSON configuration string. raw is the
// accumulated payload of the configuration frames; everything from the
// first NUL byte on is ignored.
func ParseExtendedConfig(raw []byte) (*ExtendedConfig, error) {
	if i := bytes.IndexByte(raw, 0x00); i >= 0 {
		raw = raw[:i]
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty configuration string")
	}

	var cfg ExtendedConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decode configuration string: %w", err)
	}

	switch cfg.TransferWidth {
	case NoTransferWidth, NarrowTransferWidth, WideTransferWidth:
	default:
		return nil, fmt.Errorf("configuration declares invalid transfer width %d", cfg.TransferWidth)
	}
	return &cfg, nil
}
