package main

import (
	"fmt"

	ansi "github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"

	"github.com/pcan-tools/go-pcanflash/flasher"
)

// writeProgress renders a progress bar over the write phase and plain
// phase markers for the rest of the run.
type writeProgress struct {
	bar       *progressbar.ProgressBar
	imageSize int64
	lastPhase string
}

func newWriteProgress(imageSize int64) *writeProgress {
	return &writeProgress{imageSize: imageSize}
}

func (w *writeProgress) update(p flasher.Progress) {
	if p.Phase != w.lastPhase {
		w.enterPhase(p.Phase)
		w.lastPhase = p.Phase
	}
	if p.Phase == flasher.PhaseWrite && w.bar != nil {
		_ = w.bar.Set64(int64(p.Offset))
	}
	if p.Phase == flasher.PhaseComplete && w.bar != nil {
		_ = w.bar.Finish()
		fmt.Printf("\nwrote %d blocks (%d bytes), skipped %d empty blocks in %s\n",
			p.BlocksWritten, p.BytesWritten, p.BlocksSkipped,
			p.ElapsedTime.Round(1e6))
	}
}

func (w *writeProgress) enterPhase(phase string) {
	switch phase {
	case flasher.PhaseBootloader:
		fmt.Println("switching module into bootloader ...")
	case flasher.PhaseErase:
		fmt.Println("erasing flash sectors ...")
	case flasher.PhaseWrite:
		w.bar = progressbar.NewOptions64(w.imageSize,
			progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(20),
			progressbar.OptionSetDescription("writing flash blocks"),
		)
	case flasher.PhaseEndProgramming:
		fmt.Println("\nend programming ...")
	case flasher.PhaseReset:
		fmt.Println("reset module ...")
	}
}

func (w *writeProgress) abort() {
	if w.bar != nil {
		fmt.Println()
	}
}
