// Package hwdb holds the flashing profiles of the supported PCAN router
// hardware: per-type capability flags, flash sector maps, the offset of the
// embedded CRC array and compatibility data used to cross-check a module's
// reported hardware and flash type bytes.
package hwdb

import "fmt"

// Flags describes the per-hardware behavior of the flashing sequence.
// Each flag gates an optional phase or transformation in the orchestrator.
type Flags uint32

const (
	// FlagWideTransfer selects 8 data bytes per block-write frame
	// instead of the default 6.
	FlagWideTransfer Flags = 1 << iota

	// FlagBootloaderSwitch requires an explicit switch command to move
	// the module from application firmware into its bootloader.
	FlagBootloaderSwitch

	// FlagInvertData requires every transmitted block byte to be
	// bitwise inverted.
	FlagInvertData

	// FlagEndProgramming requires an end-of-programming command after
	// the last block has been written.
	FlagEndProgramming

	// FlagResetAfterFlash resets the module once flashing completed.
	FlagResetAfterFlash
)

// Has reports whether all bits of flag are set.
func (f Flags) Has(flag Flags) bool { return f&flag == flag }

// FlashBlock is one erasable flash sector: absolute flash address and length.
type FlashBlock struct {
	Addr uint32
	Len  uint32
}

// Profile is the immutable flashing profile of one hardware type.
type Profile struct {
	// Name is the product name shown to the operator.
	Name string

	// Flags gate the optional flashing phases for this hardware.
	Flags Flags

	// FlashTypes lists the flash type bytes this hardware may report.
	FlashTypes []byte

	// Blocks is the erasable sector map, in erase order.
	Blocks []FlashBlock

	// CRCTableOffset is the file offset of the embedded CRC array
	// inside the firmware image, 0 when the hardware has none.
	CRCTableOffset uint32

	// FlashOffset is added to every image file offset to form the
	// absolute flash address of a transmitted block.
	FlashOffset uint32

	// ImageTag is a marker string a firmware image for this hardware
	// must contain. Empty disables the check.
	ImageTag string
}

// DefaultTransferWidth returns the data length used for block-write frames
// when the module did not negotiate one.
func (p *Profile) DefaultTransferWidth() int {
	if p.Flags.Has(FlagWideTransfer) {
		return 8
	}
	return 6
}

// Lookup returns the profile for a hardware type byte.
func Lookup(hwType byte) (*Profile, bool) {
	p, ok := profiles[hwType]
	return p, ok
}

// Name returns the product name for a hardware type byte.
func Name(hwType byte) string {
	if p, ok := profiles[hwType]; ok {
		return p.Name
	}
	return fmt.Sprintf("unknown hardware %d", hwType)
}

// FlashTypeName returns the name of a flash type byte.
func FlashTypeName(flashType byte) string {
	if n, ok := flashTypeNames[flashType]; ok {
		return n
	}
	return fmt.Sprintf("unknown flash %d", flashType)
}

// IsCompatible reports whether the reported flash type byte is valid for
// the reported hardware type byte. An unknown hardware type is never
// compatible.
func IsCompatible(hwType, flashType byte) bool {
	p, ok := profiles[hwType]
	if !ok {
		return false
	}
	for _, ft := range p.FlashTypes {
		if ft == flashType {
			return true
		}
	}
	return false
}
