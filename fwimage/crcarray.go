package fwimage

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// CRCIdentString is the magic identifying an embedded CRC array. The image
// stores it as a NUL-terminated C string at the start of the array header.
const CRCIdentString = "CRC-Array"

// CRC array layout constants. All fields are little-endian at fixed
// offsets; the header is followed by Count entries of crcEntrySize bytes.
const (
	crcIdentSize  = 12
	crcHeaderSize = crcIdentSize + 6
	crcEntrySize  = 10

	// MaxCRCEntries bounds the entry count a header may declare.
	MaxCRCEntries = 16
)

// CRCEntry is one checksummed address range of the firmware image.
type CRCEntry struct {
	// Address is the start of the checksummed range, as an image offset.
	Address uint32

	// Length is the range length in bytes.
	Length uint32

	// CRC is the stored 16-bit checksum of the range.
	CRC uint16
}

// CRCArray is the decoded embedded checksum table.
type CRCArray struct {
	Version byte
	Day     byte
	Month   byte
	Year    byte
	Mode    byte
	Count   byte
	Entries []CRCEntry
}

// PatchableMode reports whether the array's mode is one the bootloader
// recomputes checksums for. Other modes are left untouched.
func (a *CRCArray) PatchableMode() bool {
	switch a.Mode {
	case 1, 3, 4:
		return true
	default:
		return false
	}
}

// hasCRCIdent compares the NUL-terminated ident field against the magic,
// byte for byte including the terminator.
func hasCRCIdent(buf []byte) bool {
	if len(buf) < len(CRCIdentString)+1 {
		return false
	}
	return bytes.Equal(buf[:len(CRCIdentString)], []byte(CRCIdentString)) &&
		buf[len(CRCIdentString)] == 0x00
}

// decodeCRCArray reads the array header and entries from buf, which starts
// at the array's first byte. The ident has already been validated.
func decodeCRCArray(buf []byte) (*CRCArray, error) {
	if len(buf) < crcHeaderSize {
		return nil, fmt.Errorf("CRC array header truncated: %d bytes available, need %d",
			len(buf), crcHeaderSize)
	}

	a := &CRCArray{
		Version: buf[crcIdentSize],
		Day:     buf[crcIdentSize+1],
		Month:   buf[crcIdentSize+2],
		Year:    buf[crcIdentSize+3],
		Mode:    buf[crcIdentSize+4],
		Count:   buf[crcIdentSize+5],
	}

	if a.Count > MaxCRCEntries {
		return nil, fmt.Errorf("CRC array declares %d entries, maximum is %d", a.Count, MaxCRCEntries)
	}
	need := crcHeaderSize + int(a.Count)*crcEntrySize
	if len(buf) < need {
		return nil, fmt.Errorf("CRC array entries truncated: %d bytes available, need %d",
			len(buf), need)
	}

	a.Entries = make([]CRCEntry, a.Count)
	for i := range a.Entries {
		e := buf[crcHeaderSize+i*crcEntrySize:]
		a.Entries[i] = CRCEntry{
			Address: binary.LittleEndian.Uint32(e[0:4]),
			Length:  binary.LittleEndian.Uint32(e[4:8]),
			CRC:     binary.LittleEndian.Uint16(e[8:10]),
		}
	}
	return a, nil
}

// storeEntryCRC writes a recomputed checksum back into the raw buffer at
// the entry's fixed offset.
func storeEntryCRC(buf []byte, entry int, crc uint16) {
	off := crcHeaderSize + entry*crcEntrySize + 8
	binary.LittleEndian.PutUint16(buf[off:off+2], crc)
}
