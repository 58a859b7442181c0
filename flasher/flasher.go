package flasher

import (
	"context"
	"fmt"
	"time"

	"github.com/pcan-tools/go-pcanflash/fwimage"
	"github.com/pcan-tools/go-pcanflash/hwdb"
	"github.com/pcan-tools/go-pcanflash/protocol"
)

// Session drives one module-flashing run over a single transport. It owns
// the transport and the open firmware image for the duration of the run;
// all phases execute strictly sequentially.
type Session struct {
	transport Transport
	config    Config
}

// New creates a flashing session on the given transport.
func New(transport Transport, opts ...Option) *Session {
	if transport == nil {
		panic("transport cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Session{
		transport: transport,
		config:    cfg,
	}
}

// Discover queries the bus for all present modules and resolves each one:
// status decode, the extended-configuration path for the sentinel type,
// and the hardware/flash type cross-check. A mismatch is fatal before any
// destructive operation.
func (s *Session) Discover(ctx context.Context) ([]*Module, error) {
	announcements, err := s.transport.DiscoverModules(ctx)
	if err != nil {
		return nil, fmt.Errorf("module query: %w", err)
	}
	if len(announcements) == 0 {
		return nil, ErrNoModules
	}

	modules := make([]*Module, 0, len(announcements))
	for _, ann := range announcements {
		status, err := s.transport.QueryStatus(ctx, ann.ModuleID)
		if err != nil {
			return nil, fmt.Errorf("status query for module %d: %w", ann.ModuleID, err)
		}

		mod := &Module{
			ID:            ann.ModuleID,
			Announcement:  ann,
			Status:        status,
			HardwareType:  status.HardwareType,
			FlashType:     status.FlashType,
			TransferWidth: ann.TransferWidth,
		}

		if status.NeedsExtendedConfig() {
			cfg, err := s.transport.QueryExtendedConfig(ctx, ann.ModuleID)
			if err != nil {
				return nil, fmt.Errorf("configuration query for module %d: %w", ann.ModuleID, err)
			}
			mod.Extended = cfg
			mod.HardwareType = cfg.Hardware.ID
			mod.FlashType = cfg.Flash.ID
			if cfg.TransferWidth != protocol.NoTransferWidth {
				mod.TransferWidth = cfg.TransferWidth
			}
		}

		if !hwdb.IsCompatible(mod.HardwareType, mod.FlashType) {
			return nil, &TypeMismatchError{
				ModuleID:     mod.ID,
				HardwareType: mod.HardwareType,
				FlashType:    mod.FlashType,
			}
		}

		s.logInfo("found module",
			"id", mod.ID,
			"hardware", mod.Name(),
			"hw_type", mod.HardwareType,
			"flash", hwdb.FlashTypeName(mod.FlashType),
			"date", ann.BuildDate(),
			"bootloader", ann.BootloaderVersion(),
		)
		modules = append(modules, mod)
	}

	return modules, nil
}

// Flash performs the complete flashing sequence:
//  1. Discover and resolve all modules, select exactly one
//  2. Verify the image declares support for the target hardware
//  3. Switch to bootloader (hardware flag gated)
//  4. Erase all flash sectors, skipping sectors the image leaves erased
//  5. Write all non-empty blocks, CRC-patched and optionally inverted
//  6. End programming (hardware flag gated)
//  7. Reset (hardware flag gated, or forced via option)
//
// Any fatal condition aborts before the next destructive phase. A rerun is
// the recovery path: blocks are addressed by absolute offset and erase and
// write are safe to repeat.
func (s *Session) Flash(ctx context.Context, img *fwimage.Image) error {
	if img == nil {
		return fmt.Errorf("firmware image cannot be nil")
	}
	startTime := time.Now()

	s.reportProgress(Progress{Phase: PhaseDiscover})
	modules, err := s.Discover(ctx)
	if err != nil {
		return err
	}

	mod, err := s.selectModule(modules)
	if err != nil {
		return err
	}

	profile, err := s.resolveHardware(img, mod)
	if err != nil {
		return err
	}

	s.logInfo("flashing module",
		"id", mod.ID,
		"hardware", mod.Name(),
		"transfer_width", mod.TransferWidth,
		"dry_run", s.config.DryRun,
	)

	if profile.Flags.Has(hwdb.FlagBootloaderSwitch) {
		s.reportProgress(Progress{Phase: PhaseBootloader, ElapsedTime: time.Since(startTime)})
		s.logInfo("switching module into bootloader", "id", mod.ID)
		if err := s.transport.SwitchToBootloader(ctx, mod.ID); err != nil {
			return fmt.Errorf("switch to bootloader: %w", err)
		}
		if err := s.settle(ctx, mod.ID, true); err != nil {
			return err
		}
	}

	if err := s.eraseFlash(ctx, img, mod, profile, startTime); err != nil {
		return err
	}

	written, skipped, bytesWritten, err := s.writeBlocks(ctx, img, mod, profile, startTime)
	if err != nil {
		return err
	}

	if profile.Flags.Has(hwdb.FlagEndProgramming) {
		s.reportProgress(Progress{Phase: PhaseEndProgramming, ElapsedTime: time.Since(startTime)})
		s.logInfo("end programming", "id", mod.ID)
		if err := s.transport.EndProgramming(ctx, mod.ID); err != nil {
			return fmt.Errorf("end programming: %w", err)
		}
		if err := s.settle(ctx, mod.ID, true); err != nil {
			return err
		}
	}

	if profile.Flags.Has(hwdb.FlagResetAfterFlash) || s.config.ForceReset {
		s.reportProgress(Progress{Phase: PhaseReset, ElapsedTime: time.Since(startTime)})
		s.logInfo("resetting module", "id", mod.ID)
		if err := s.transport.ResetModule(ctx, mod.ID); err != nil {
			return fmt.Errorf("reset module: %w", err)
		}
		// A forced reset likely boots application firmware which does
		// not answer the status query, so only query when the reset
		// came from the hardware flags.
		if err := s.settle(ctx, mod.ID, profile.Flags.Has(hwdb.FlagResetAfterFlash)); err != nil {
			return err
		}
	}

	s.reportProgress(Progress{
		Phase:         PhaseComplete,
		BlocksWritten: written,
		BlocksSkipped: skipped,
		BytesWritten:  bytesWritten,
		ElapsedTime:   time.Since(startTime),
	})
	s.logInfo("flashing complete",
		"id", mod.ID,
		"blocks_written", written,
		"blocks_skipped", skipped,
		"bytes", bytesWritten,
		"elapsed", time.Since(startTime).Round(time.Millisecond).String(),
	)
	return nil
}

// selectModule applies the selection contract: an explicitly requested id
// must exist, a single discovered module is auto-selected, and an ambiguous
// result needs the configured Selector.
func (s *Session) selectModule(modules []*Module) (*Module, error) {
	id := s.config.ModuleID
	if id == NoModuleID {
		if len(modules) == 1 {
			return modules[0], nil
		}
		if s.config.Selector == nil {
			return nil, ErrSelectionRequired
		}
		var err error
		id, err = s.config.Selector(modules)
		if err != nil {
			return nil, fmt.Errorf("module selection: %w", err)
		}
	}

	for _, mod := range modules {
		if mod.ID == id {
			return mod, nil
		}
	}
	return nil, &ModuleNotFoundError{ID: id}
}

// resolveHardware looks up the module's profile, verifies the image
// declares support for the hardware, and applies the default transfer
// width when the module did not negotiate one.
func (s *Session) resolveHardware(img *fwimage.Image, mod *Module) (*hwdb.Profile, error) {
	profile, ok := hwdb.Lookup(mod.HardwareType)
	if !ok {
		return nil, &UnknownHardwareError{HardwareType: mod.HardwareType}
	}

	if profile.ImageTag != "" {
		found, err := img.Contains([]byte(profile.ImageTag))
		if err != nil {
			return nil, fmt.Errorf("scan image for hardware tag: %w", err)
		}
		if !found {
			return nil, &ImageSupportError{HardwareType: mod.HardwareType, Tag: profile.ImageTag}
		}
	}

	if len(profile.Blocks) == 0 {
		return nil, &NoFlashBlocksError{HardwareType: mod.HardwareType}
	}

	if mod.TransferWidth == protocol.NoTransferWidth {
		mod.TransferWidth = profile.DefaultTransferWidth()
	}
	return profile, nil
}

// eraseFlash erases every sector of the hardware's block table. Sectors
// whose image range is entirely erased are skipped, mirroring the
// empty-block skip of the write phase.
func (s *Session) eraseFlash(ctx context.Context, img *fwimage.Image, mod *Module, profile *hwdb.Profile, startTime time.Time) error {
	s.reportProgress(Progress{Phase: PhaseErase, ElapsedTime: time.Since(startTime)})
	s.logInfo("erasing flash sectors", "id", mod.ID, "sectors", len(profile.Blocks))

	for i, blk := range profile.Blocks {
		imgOff := int64(blk.Addr) - int64(profile.FlashOffset)
		empty, err := img.RangeEmpty(imgOff, int64(blk.Len))
		if err != nil {
			return fmt.Errorf("inspect image for sector %d: %w", i, err)
		}
		if empty {
			s.logDebug("sector unused, skipping erase",
				"sector", i, "addr", fmt.Sprintf("0x%X", blk.Addr))
			continue
		}

		s.logDebug("erasing sector",
			"sector", i,
			"addr", fmt.Sprintf("0x%X", blk.Addr),
			"len", fmt.Sprintf("0x%X", blk.Len),
		)
		if s.config.DryRun {
			continue
		}
		if err := s.transport.EraseSector(ctx, mod.ID, i, blk.Addr); err != nil {
			return fmt.Errorf("erase sector %d: %w", i, err)
		}
	}
	return nil
}

// writeBlocks drives the image block by block: empty blocks are skipped,
// remaining blocks run through the CRC patch engine, are inverted when the
// hardware asks for it, and go out with the module's transfer width.
func (s *Session) writeBlocks(ctx context.Context, img *fwimage.Image, mod *Module, profile *hwdb.Profile, startTime time.Time) (written, skipped, bytesWritten int, err error) {
	s.logInfo("writing flash blocks", "id", mod.ID)
	invert := profile.Flags.Has(hwdb.FlagInvertData)

	blocks := img.Blocks()
	for {
		if err := ctx.Err(); err != nil {
			return written, skipped, bytesWritten, fmt.Errorf("cancelled: %w", err)
		}

		block, err := blocks.Next()
		if err != nil {
			return written, skipped, bytesWritten, fmt.Errorf("read firmware image: %w", err)
		}
		if block == nil {
			break
		}

		if block.Empty() {
			skipped++
			continue
		}

		patch, err := fwimage.PatchBlock(img, block, profile.CRCTableOffset)
		if err != nil {
			return written, skipped, bytesWritten, fmt.Errorf("patch CRC array: %w", err)
		}
		s.logPatch(patch)

		data := block.Data
		if invert {
			data = invertBytes(data)
		}

		if !s.config.DryRun {
			addr := block.Offset + profile.FlashOffset
			if err := s.transport.WriteBlock(ctx, mod.ID, addr, data, mod.TransferWidth); err != nil {
				return written, skipped, bytesWritten, fmt.Errorf("write block at 0x%X: %w", addr, err)
			}
		}

		written++
		bytesWritten += len(data)
		s.reportProgress(Progress{
			Phase:         PhaseWrite,
			Offset:        block.Offset,
			BlocksWritten: written,
			BlocksSkipped: skipped,
			BytesWritten:  bytesWritten,
			ElapsedTime:   time.Since(startTime),
		})
	}
	return written, skipped, bytesWritten, nil
}

// logPatch reports CRC patch engine outcomes. Ident mismatches and
// unsupported modes are diagnostics only; the block still goes out.
func (s *Session) logPatch(patch *fwimage.Patch) {
	switch patch.Outcome {
	case fwimage.PatchNone:
	case fwimage.PatchNoIdent:
		s.logWarn("no CRC ident string found, omit patching of CRC value",
			"offset", fmt.Sprintf("0x%X", patch.TableOffset))
	case fwimage.PatchInvalid:
		s.logWarn("invalid CRC array, omit patching of CRC value",
			"offset", fmt.Sprintf("0x%X", patch.TableOffset), "reason", patch.Reason)
	case fwimage.PatchUnsupportedMode:
		s.logWarn("CRC array mode is not supported, omit patching of CRC value",
			"mode", patch.Array.Mode, "offset", fmt.Sprintf("0x%X", patch.TableOffset))
	case fwimage.PatchApplied:
		a := patch.Array
		s.logInfo("CRC array found",
			"offset", fmt.Sprintf("0x%X", patch.TableOffset),
			"version", fmt.Sprintf("0x%X", a.Version),
			"date", fmt.Sprintf("%d/%d/%d", a.Day, a.Month, a.Year),
			"mode", a.Mode,
		)
		for i, e := range a.Entries {
			s.logDebug("CRC entry patched",
				"entry", i,
				"address", fmt.Sprintf("0x%X", e.Address),
				"len", fmt.Sprintf("0x%X", e.Length),
				"crc", fmt.Sprintf("0x%X", e.CRC),
			)
		}
	}
}

// settle waits the fixed settle delay after a mode-changing command and
// optionally re-queries the module status.
func (s *Session) settle(ctx context.Context, moduleID int, queryStatus bool) error {
	if s.config.SettleDelay > 0 {
		select {
		case <-time.After(s.config.SettleDelay):
		case <-ctx.Done():
			return fmt.Errorf("cancelled: %w", ctx.Err())
		}
	}
	if !queryStatus {
		return nil
	}
	if _, err := s.transport.QueryStatus(ctx, moduleID); err != nil {
		return fmt.Errorf("status query after settle: %w", err)
	}
	return nil
}

// invertBytes returns a bitwise-NOT copy of data. Applied last, right
// before transmission, independent of the CRC patch logic.
func invertBytes(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = ^b
	}
	return out
}

// reportProgress calls the progress callback if configured.
func (s *Session) reportProgress(progress Progress) {
	if s.config.ProgressCallback != nil {
		s.config.ProgressCallback(progress)
	}
}

func (s *Session) logDebug(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, keysAndValues...)
	}
}

func (s *Session) logInfo(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Info(msg, keysAndValues...)
	}
}

func (s *Session) logWarn(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Warn(msg, keysAndValues...)
	}
}
