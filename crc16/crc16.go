// Package crc16 computes the 16-bit checksums that PCAN router bootloaders
// expect inside the firmware image CRC array.
package crc16

import (
	"fmt"
	"io"

	"github.com/snksoft/crc"
)

// Empty is the value of an erased flash byte. Address ranges reaching past
// the end of the image are treated as erased flash.
const Empty = 0xFF

const chunkSize = 4096

// Compute returns the CRC-16/CCITT-FALSE checksum over the address range
// [addr, addr+length) of the firmware image. The range is read from the
// source image directly, so it may span any number of transfer blocks.
func Compute(img io.ReaderAt, addr, length uint32) (uint16, error) {
	h := crc.NewHash(crc.CCITT)

	buf := make([]byte, chunkSize)
	remaining := int64(length)
	off := int64(addr)

	for remaining > 0 {
		n := int64(len(buf))
		if remaining < n {
			n = remaining
		}

		read, err := img.ReadAt(buf[:n], off)
		if err != nil && err != io.EOF {
			return 0, fmt.Errorf("read image at 0x%X: %w", off, err)
		}

		// Pad a short read with erased-flash bytes.
		for i := read; i < int(n); i++ {
			buf[i] = Empty
		}

		h.Update(buf[:n])
		off += n
		remaining -= n
	}

	return uint16(h.CRC()), nil
}
