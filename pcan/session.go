package pcan

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pcan-tools/go-pcanflash/protocol"
)

// DiscoverModules broadcasts the module query and collects announcements
// until the bus stays quiet. The result is ordered by module id.
func (c *Conn) DiscoverModules(ctx context.Context) ([]*protocol.Announcement, error) {
	c.drain()
	if err := c.send(ctx, protocol.QueryModulesFrame()); err != nil {
		return nil, err
	}

	seen := make(map[int]*protocol.Announcement)
	timer := time.NewTimer(discoveryQuiet)
	defer timer.Stop()

	for {
		select {
		case frame := <-c.frames:
			ann, err := protocol.ParseAnnouncement(frame)
			if err != nil {
				return nil, fmt.Errorf("decode announcement: %w", err)
			}
			seen[ann.ModuleID] = ann
			timer.Reset(discoveryQuiet)
		case <-timer.C:
			modules := make([]*protocol.Announcement, 0, len(seen))
			for _, ann := range seen {
				modules = append(modules, ann)
			}
			sort.Slice(modules, func(i, j int) bool {
				return modules[i].ModuleID < modules[j].ModuleID
			})
			return modules, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// QueryStatus reads one module's status payload.
func (c *Conn) QueryStatus(ctx context.Context, moduleID int) (*protocol.Status, error) {
	resp, err := c.roundTrip(ctx, protocol.GetStatusFrame(moduleID))
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}
	return protocol.ParseStatus(resp)
}

// QueryExtendedConfig streams the NUL-terminated JSON configuration string
// and decodes it.
func (c *Conn) QueryExtendedConfig(ctx context.Context, moduleID int) (*protocol.ExtendedConfig, error) {
	c.drain()
	if err := c.send(ctx, protocol.GetConfigFrame(moduleID)); err != nil {
		return nil, err
	}

	var raw []byte
	for {
		frame, err := c.recv(ctx)
		if err != nil {
			return nil, fmt.Errorf("get configuration: %w", err)
		}
		raw = append(raw, frame.Data[:frame.Length]...)

		terminated := false
		for _, b := range frame.Data[:frame.Length] {
			if b == 0x00 {
				terminated = true
				break
			}
		}
		if terminated {
			return protocol.ParseExtendedConfig(raw)
		}
	}
}

// SwitchToBootloader issues the bootloader switch command. The module
// acknowledges before it restarts into the bootloader.
func (c *Conn) SwitchToBootloader(ctx context.Context, moduleID int) error {
	resp, err := c.roundTrip(ctx, protocol.BootloaderSwitchFrame(moduleID))
	if err != nil {
		return fmt.Errorf("bootloader switch: %w", err)
	}
	return protocol.ParseAck("bootloader switch", protocol.OpBootloaderSwitch, resp)
}

// EraseSector erases one flash sector and waits for the acknowledgment.
func (c *Conn) EraseSector(ctx context.Context, moduleID int, index int, addr uint32) error {
	resp, err := c.roundTrip(ctx, protocol.EraseSectorFrame(moduleID, index, addr))
	if err != nil {
		return fmt.Errorf("erase sector %d: %w", index, err)
	}
	return protocol.ParseAck("erase sector", protocol.OpEraseSector, resp)
}

// WriteBlock opens a block write and streams the data frames. The module
// acknowledges once after the final data frame.
func (c *Conn) WriteBlock(ctx context.Context, moduleID int, addr uint32, data []byte, transferWidth int) error {
	frames, err := protocol.WriteDataFrames(data, transferWidth)
	if err != nil {
		return err
	}

	c.drain()
	if err := c.send(ctx, protocol.WriteStartFrame(moduleID, addr, uint16(len(data)))); err != nil {
		return err
	}
	for _, frame := range frames {
		if err := c.send(ctx, frame); err != nil {
			return err
		}
	}

	resp, err := c.recv(ctx)
	if err != nil {
		return fmt.Errorf("write block at 0x%X: %w", addr, err)
	}
	return protocol.ParseAck("write block", protocol.OpWriteStart, resp)
}

// EndProgramming finalizes the write sequence.
func (c *Conn) EndProgramming(ctx context.Context, moduleID int) error {
	resp, err := c.roundTrip(ctx, protocol.EndProgrammingFrame(moduleID))
	if err != nil {
		return fmt.Errorf("end programming: %w", err)
	}
	return protocol.ParseAck("end programming", protocol.OpEndProgramming, resp)
}

// ResetModule restarts the module. The command is not acknowledged; the
// caller settles and re-queries the status where appropriate.
func (c *Conn) ResetModule(ctx context.Context, moduleID int) error {
	return c.send(ctx, protocol.ResetFrame(moduleID))
}
