package fwimage

import (
	"bytes"
	"testing"
)

func TestBlockIteration(t *testing.T) {
	tests := []struct {
		name       string
		imageSize  int
		blockSize  int
		wantBlocks int
	}{
		{name: "exact multiple", imageSize: 1024, blockSize: 256, wantBlocks: 4},
		{name: "short final block", imageSize: 1000, blockSize: 256, wantBlocks: 4},
		{name: "single short block", imageSize: 10, blockSize: 256, wantBlocks: 1},
		{name: "single exact block", imageSize: 256, blockSize: 256, wantBlocks: 1},
		{name: "empty image", imageSize: 0, blockSize: 256, wantBlocks: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]byte, tt.imageSize)
			for i := range data {
				data[i] = byte(i)
			}
			img := New(bytes.NewReader(data), int64(tt.imageSize), tt.blockSize)

			var offsets []uint32
			blocks := img.Blocks()
			for {
				b, err := blocks.Next()
				if err != nil {
					t.Fatalf("Next() failed: %v", err)
				}
				if b == nil {
					break
				}
				if len(b.Data) != tt.blockSize {
					t.Fatalf("block at 0x%X has %d bytes, want %d", b.Offset, len(b.Data), tt.blockSize)
				}
				offsets = append(offsets, b.Offset)
				if b.Last != (len(offsets) == tt.wantBlocks) {
					t.Errorf("block at 0x%X: Last = %v", b.Offset, b.Last)
				}
			}

			if len(offsets) != tt.wantBlocks {
				t.Fatalf("got %d blocks, want %d", len(offsets), tt.wantBlocks)
			}
			// Offsets start at 0 and increase by exactly the block size.
			for i, off := range offsets {
				if off != uint32(i*tt.blockSize) {
					t.Errorf("block %d offset = 0x%X, want 0x%X", i, off, i*tt.blockSize)
				}
			}
		})
	}
}

func TestBlockPadding(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}
	img := New(bytes.NewReader(data), 3, 8)

	b, err := img.Blocks().Next()
	if err != nil {
		t.Fatalf("Next() failed: %v", err)
	}
	want := []byte{0x01, 0x02, 0x03, Empty, Empty, Empty, Empty, Empty}
	if !bytes.Equal(b.Data, want) {
		t.Errorf("padded block = % X, want % X", b.Data, want)
	}
	if !b.Last {
		t.Error("short final block not marked Last")
	}
}

func TestBlockEmpty(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{name: "all sentinel", data: []byte{Empty, Empty, Empty}, want: true},
		{name: "one live byte", data: []byte{Empty, 0x00, Empty}, want: false},
		{name: "first byte live", data: []byte{0x7F, Empty, Empty}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Block{Data: tt.data}
			if got := b.Empty(); got != tt.want {
				t.Errorf("Empty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContains(t *testing.T) {
	data := append(make([]byte, 1000), []byte("pcan_router_fd")...)
	img := New(bytes.NewReader(data), int64(len(data)), 0)

	found, err := img.Contains([]byte("pcan_router_fd"))
	if err != nil {
		t.Fatalf("Contains() failed: %v", err)
	}
	if !found {
		t.Error("Contains() = false for present tag")
	}

	found, err = img.Contains([]byte("pcan_gps"))
	if err != nil {
		t.Fatalf("Contains() failed: %v", err)
	}
	if found {
		t.Error("Contains() = true for absent tag")
	}
}

func TestRangeEmpty(t *testing.T) {
	data := make([]byte, 512)
	for i := range data {
		data[i] = Empty
	}
	data[300] = 0x42
	img := New(bytes.NewReader(data), 512, 0)

	tests := []struct {
		name        string
		off, length int64
		want        bool
	}{
		{name: "erased range", off: 0, length: 256, want: true},
		{name: "live byte inside", off: 256, length: 256, want: false},
		{name: "past end of image", off: 512, length: 1024, want: true},
		{name: "straddles end of image", off: 400, length: 1024, want: true},
		{name: "negative start erased part", off: -100, length: 150, want: true},
		{name: "entirely before image", off: -200, length: 100, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := img.RangeEmpty(tt.off, tt.length)
			if err != nil {
				t.Fatalf("RangeEmpty() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("RangeEmpty(%d, %d) = %v, want %v", tt.off, tt.length, got, tt.want)
			}
		})
	}
}
