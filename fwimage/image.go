package fwimage

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// DefaultBlockSize is the transfer block size of the flash protocol.
const DefaultBlockSize = 512

// Empty is the value of an erased flash byte. A block consisting only of
// this value is never transmitted.
const Empty = 0xFF

// Image is an open firmware binary. Blocks are read through a single
// forward cursor; the underlying data is never modified.
type Image struct {
	src       io.ReaderAt
	size      int64
	blockSize int
	closer    io.Closer
}

// Open opens a firmware binary from disk with the given block size.
// A blockSize of 0 selects DefaultBlockSize.
func Open(path string, blockSize int) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open firmware image: %w", err)
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat firmware image: %w", err)
	}
	img := New(f, fi.Size(), blockSize)
	img.closer = f
	return img, nil
}

// New wraps an in-memory or already open firmware binary.
// A blockSize of 0 selects DefaultBlockSize.
func New(src io.ReaderAt, size int64, blockSize int) *Image {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &Image{src: src, size: size, blockSize: blockSize}
}

// Close releases the underlying file, if the image owns one.
func (img *Image) Close() error {
	if img.closer == nil {
		return nil
	}
	return img.closer.Close()
}

// Size returns the image length in bytes.
func (img *Image) Size() int64 { return img.size }

// BlockSize returns the transfer block size.
func (img *Image) BlockSize() int { return img.blockSize }

// ReadAt implements io.ReaderAt over the source image.
func (img *Image) ReadAt(p []byte, off int64) (int, error) {
	return img.src.ReadAt(p, off)
}

// Contains reports whether the image contains the byte sequence tag.
// Used to verify that an image declares support for a hardware type.
func (img *Image) Contains(tag []byte) (bool, error) {
	if len(tag) == 0 {
		return false, nil
	}

	// Overlap reads by len(tag)-1 so a tag straddling two chunks is found.
	buf := make([]byte, 64*1024)
	var off int64
	for off < img.size {
		n, err := img.src.ReadAt(buf, off)
		if err != nil && err != io.EOF {
			return false, fmt.Errorf("scan image at 0x%X: %w", off, err)
		}
		if bytes.Contains(buf[:n], tag) {
			return true, nil
		}
		if err == io.EOF || n < len(buf) {
			break
		}
		off += int64(n - (len(tag) - 1))
	}
	return false, nil
}

// RangeEmpty reports whether every image byte in [off, off+length) equals
// the empty sentinel. Bytes past the end of the image count as empty.
// A range entirely outside the image is empty.
func (img *Image) RangeEmpty(off, length int64) (bool, error) {
	if off >= img.size || length <= 0 {
		return true, nil
	}
	if off < 0 {
		length += off
		off = 0
		if length <= 0 {
			return true, nil
		}
	}
	if off+length > img.size {
		length = img.size - off
	}

	buf := make([]byte, 64*1024)
	for length > 0 {
		n := int64(len(buf))
		if length < n {
			n = length
		}
		read, err := img.src.ReadAt(buf[:n], off)
		if err != nil && err != io.EOF {
			return false, fmt.Errorf("read image at 0x%X: %w", off, err)
		}
		for _, b := range buf[:read] {
			if b != Empty {
				return false, nil
			}
		}
		off += n
		length -= n
	}
	return true, nil
}

// Block is one fixed-size chunk of the firmware image. Data is always
// BlockSize bytes long; a short final read is padded with the empty
// sentinel so the tail matches erased flash.
type Block struct {
	// Offset is the file offset of the first byte.
	Offset uint32

	// Data is the block content, owned by the caller and safe to patch.
	Data []byte

	// Last marks the final block of the image.
	Last bool
}

// Empty reports whether every block byte equals the empty sentinel.
// Empty blocks are skipped: erase already left the flash in that state.
func (b *Block) Empty() bool {
	for _, v := range b.Data {
		if v != Empty {
			return false
		}
	}
	return true
}

// BlockReader iterates the image in strictly increasing, contiguous
// block-size steps starting at offset 0.
type BlockReader struct {
	img    *Image
	offset int64
	done   bool
}

// Blocks returns a fresh block iterator over the image.
func (img *Image) Blocks() *BlockReader {
	return &BlockReader{img: img}
}

// Next returns the next block, or nil once the image is exhausted.
func (r *BlockReader) Next() (*Block, error) {
	if r.done || r.offset >= r.img.size {
		r.done = true
		return nil, nil
	}

	data := make([]byte, r.img.blockSize)
	for i := range data {
		data[i] = Empty
	}

	n, err := r.img.src.ReadAt(data, r.offset)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read block at 0x%X: %w", r.offset, err)
	}
	if n == 0 {
		r.done = true
		return nil, nil
	}

	b := &Block{
		Offset: uint32(r.offset),
		Data:   data,
		Last:   r.offset+int64(r.img.blockSize) >= r.img.size,
	}
	r.offset += int64(r.img.blockSize)
	if b.Last {
		r.done = true
	}
	return b, nil
}
