package protocol

import (
	"encoding/binary"
	"fmt"

	"go.einride.tech/can"
)

// request assembles a frame of [OPCODE][MODULE_ID][args...].
func request(op byte, moduleID byte, args ...byte) can.Frame {
	f := can.Frame{ID: CANID, Length: uint8(2 + len(args))}
	f.Data[0] = op
	f.Data[1] = moduleID
	copy(f.Data[2:], args)
	return f
}

// QueryModulesFrame builds the broadcast discovery request. Every module
// on the bus answers with an announcement frame.
func QueryModulesFrame() can.Frame {
	return request(OpQueryModules, BroadcastID)
}

// GetStatusFrame builds the status request for one module.
func GetStatusFrame(moduleID int) can.Frame {
	return request(OpGetStatus, byte(moduleID))
}

// GetConfigFrame builds the JSON configuration request. The module answers
// with consecutive frames carrying the NUL-terminated configuration string.
func GetConfigFrame(moduleID int) can.Frame {
	return request(OpGetConfig, byte(moduleID))
}

// BootloaderSwitchFrame builds the application-to-bootloader switch command.
func BootloaderSwitchFrame(moduleID int) can.Frame {
	return request(OpBootloaderSwitch, byte(moduleID))
}

// EraseSectorFrame builds the erase command for one flash sector.
//
// Frame layout:
//
//	[OP][MODULE_ID][SECTOR_INDEX][ADDR(4, big-endian)]
func EraseSectorFrame(moduleID int, index int, addr uint32) can.Frame {
	var a [4]byte
	binary.BigEndian.PutUint32(a[:], addr)
	return request(OpEraseSector, byte(moduleID), byte(index), a[0], a[1], a[2], a[3])
}

// WriteStartFrame opens a block write of length bytes at the absolute
// flash address addr. The block data follows as raw frames built by
// WriteDataFrames; the module acknowledges after the final data frame.
//
// Frame layout:
//
//	[OP][MODULE_ID][ADDR(4, big-endian)][LEN(2, big-endian)]
func WriteStartFrame(moduleID int, addr uint32, length uint16) can.Frame {
	var a [4]byte
	binary.BigEndian.PutUint32(a[:], addr)
	var l [2]byte
	binary.BigEndian.PutUint16(l[:], length)
	return request(OpWriteStart, byte(moduleID), a[0], a[1], a[2], a[3], l[0], l[1])
}

// WriteDataFrames splits block data into raw data frames of the negotiated
// transfer width. The final frame may be shorter. Valid widths are
// NarrowTransferWidth and WideTransferWidth.
func WriteDataFrames(data []byte, width int) ([]can.Frame, error) {
	if width != NarrowTransferWidth && width != WideTransferWidth {
		return nil, fmt.Errorf("invalid transfer width %d: must be %d or %d",
			width, NarrowTransferWidth, WideTransferWidth)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("block data cannot be empty")
	}

	frames := make([]can.Frame, 0, (len(data)+width-1)/width)
	for off := 0; off < len(data); off += width {
		end := off + width
		if end > len(data) {
			end = len(data)
		}
		f := can.Frame{ID: CANID, Length: uint8(end - off)}
		copy(f.Data[:], data[off:end])
		frames = append(frames, f)
	}
	return frames, nil
}

// EndProgrammingFrame builds the end-of-programming command.
func EndProgrammingFrame(moduleID int) can.Frame {
	return request(OpEndProgramming, byte(moduleID))
}

// ResetFrame builds the module reset command. The module restarts and does
// not acknowledge.
func ResetFrame(moduleID int) can.Frame {
	return request(OpReset, byte(moduleID))
}
