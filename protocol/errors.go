package protocol

import "fmt"

// ResponseError is a non-OK status byte in an acknowledgment frame.
type ResponseError struct {
	// Operation is the command that failed.
	Operation string

	// Code is the status byte from the module.
	Code byte
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s failed: %s (0x%02X)", e.Operation, statusName(e.Code), e.Code)
}

// Module status bytes carried in acknowledgment frames.
const (
	errBusy          = 0x01
	errAddress       = 0x02
	errLength        = 0x03
	errWriteFailed   = 0x04
	errEraseFailed   = 0x05
	errNotInBootmode = 0x06
)

func statusName(code byte) string {
	switch code {
	case AckOK:
		return "success"
	case errBusy:
		return "module busy"
	case errAddress:
		return "invalid flash address"
	case errLength:
		return "invalid length"
	case errWriteFailed:
		return "flash write failed"
	case errEraseFailed:
		return "flash erase failed"
	case errNotInBootmode:
		return "module not in bootloader mode"
	default:
		return "unknown error"
	}
}
