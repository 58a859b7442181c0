package fwimage

import (
	"fmt"

	"github.com/pcan-tools/go-pcanflash/crc16"
)

// PatchOutcome classifies what PatchBlock did to a block.
type PatchOutcome int

const (
	// PatchNone means the CRC table offset does not fall into this block.
	PatchNone PatchOutcome = iota

	// PatchNoIdent means the bytes at the table offset do not carry the
	// CRC ident string; the block is transmitted unpatched.
	PatchNoIdent

	// PatchInvalid means the header carried the ident but could not be
	// decoded; the block is transmitted unpatched.
	PatchInvalid

	// PatchUnsupportedMode means the array mode is not recomputed;
	// every stored checksum is left unchanged.
	PatchUnsupportedMode

	// PatchApplied means all entries were recomputed and stored.
	PatchApplied
)

// Patch is the result of running the CRC patch engine on one block.
type Patch struct {
	Outcome PatchOutcome

	// Array is the decoded table. Set for PatchUnsupportedMode and
	// PatchApplied; for PatchApplied the entries carry the recomputed
	// checksums.
	Array *CRCArray

	// TableOffset is the absolute image offset of the array header.
	TableOffset uint32

	// Reason explains PatchInvalid outcomes.
	Reason string
}

// PatchBlock recomputes the embedded CRC array inside a block, in place,
// before the block is transmitted.
//
// The table is only looked for in the block containing its header offset.
// Entry checksums are computed over the entry's address range read from the
// source image, not from the in-flight buffer, so ranges may span any
// number of blocks. Only the in-memory block is modified; the image itself
// is never rewritten.
//
// A tableOffset of 0 means the hardware has no embedded CRC array.
func PatchBlock(img *Image, b *Block, tableOffset uint32) (*Patch, error) {
	if tableOffset == 0 {
		return &Patch{Outcome: PatchNone}, nil
	}
	if tableOffset < b.Offset || tableOffset >= b.Offset+uint32(len(b.Data)) {
		return &Patch{Outcome: PatchNone}, nil
	}

	buf := b.Data[tableOffset-b.Offset:]
	if !hasCRCIdent(buf) {
		return &Patch{Outcome: PatchNoIdent, TableOffset: tableOffset}, nil
	}

	array, err := decodeCRCArray(buf)
	if err != nil {
		return &Patch{Outcome: PatchInvalid, TableOffset: tableOffset, Reason: err.Error()}, nil
	}

	p := &Patch{Array: array, TableOffset: tableOffset}
	if !array.PatchableMode() {
		p.Outcome = PatchUnsupportedMode
		return p, nil
	}

	for i := range array.Entries {
		crc, err := crc16.Compute(img, array.Entries[i].Address, array.Entries[i].Length)
		if err != nil {
			return nil, fmt.Errorf("compute CRC for entry %d: %w", i, err)
		}
		array.Entries[i].CRC = crc
		storeEntryCRC(buf, i, crc)
	}
	p.Outcome = PatchApplied
	return p, nil
}
