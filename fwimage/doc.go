// Package fwimage provides block access to a firmware binary and the CRC
// patch engine applied to blocks before transmission.
//
// An Image is read through a BlockReader in contiguous fixed-size blocks
// starting at offset 0. Each block buffer is pre-filled with the erased
// flash value (0xFF), so a short final read leaves the tail padded the way
// the target's flash will look after erase. Blocks consisting only of that
// value are reported by Block.Empty and skipped by the caller.
//
// Firmware images may embed a checksum table (CRC array) at a per-hardware
// offset. PatchBlock locates the table inside the block carrying its
// header, validates the ident magic, and for supported modes recomputes
// each entry's CRC-16 over the entry's address range read from the source
// image. Patching mutates only the in-memory block; the file on disk is
// never touched.
package fwimage
