package flasher

import (
	"github.com/pcan-tools/go-pcanflash/hwdb"
	"github.com/pcan-tools/go-pcanflash/protocol"
)

// Module is one discovered device on the bus. Populated once during
// discovery; TransferWidth may be raised to the hardware default after
// resolution, otherwise the fields stay fixed for the run.
type Module struct {
	// ID is the module's bus index, stable for the session.
	ID int

	// Announcement is the decoded discovery reply.
	Announcement *protocol.Announcement

	// Status is the decoded status payload.
	Status *protocol.Status

	// Extended is the decoded JSON configuration, nil unless the status
	// reported the extended-config sentinel.
	Extended *protocol.ExtendedConfig

	// HardwareType identifies the hardware variant, resolved from the
	// status or the extended configuration.
	HardwareType byte

	// FlashType identifies the memory technology.
	FlashType byte

	// TransferWidth is the negotiated block-write data length,
	// protocol.NoTransferWidth until resolved.
	TransferWidth int
}

// Name returns the module's product name.
func (m *Module) Name() string {
	if m.Extended != nil && m.Extended.Hardware.Name != "" {
		return m.Extended.Hardware.Name
	}
	return hwdb.Name(m.HardwareType)
}
