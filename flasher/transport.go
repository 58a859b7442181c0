package flasher

import (
	"context"

	"github.com/pcan-tools/go-pcanflash/protocol"
)

// Transport is the blocking request/acknowledgment contract the session
// drives. Each call suspends until the exchange completes or times out;
// retries, if any, happen inside the transport. A failed exchange is fatal
// for the run.
type Transport interface {
	// DiscoverModules broadcasts a query and collects the announcements
	// of all present modules.
	DiscoverModules(ctx context.Context) ([]*protocol.Announcement, error)

	// QueryStatus reads one module's 8-byte status payload.
	QueryStatus(ctx context.Context, moduleID int) (*protocol.Status, error)

	// QueryExtendedConfig reads and decodes the JSON configuration
	// string of a module reporting the extended-config sentinel.
	QueryExtendedConfig(ctx context.Context, moduleID int) (*protocol.ExtendedConfig, error)

	// SwitchToBootloader moves the module into its bootloader.
	SwitchToBootloader(ctx context.Context, moduleID int) error

	// EraseSector erases one flash sector.
	EraseSector(ctx context.Context, moduleID int, index int, addr uint32) error

	// WriteBlock transmits one block to the absolute flash address addr,
	// split into data frames of transferWidth bytes.
	WriteBlock(ctx context.Context, moduleID int, addr uint32, data []byte, transferWidth int) error

	// EndProgramming finalizes the write sequence.
	EndProgramming(ctx context.Context, moduleID int) error

	// ResetModule restarts the module. The module does not acknowledge.
	ResetModule(ctx context.Context, moduleID int) error
}
