package protocol

// CANID is the single 11-bit identifier the flash protocol runs on.
// Requests and replies share it; receivers filter on this ID.
const CANID = 0x7E7

// Request opcodes. Every request frame starts with
// [OPCODE][MODULE_ID] followed by opcode specific arguments.
const (
	// OpQueryModules asks all modules on the bus to announce themselves.
	OpQueryModules = 0x01

	// OpGetStatus requests the 8-byte status payload of one module.
	OpGetStatus = 0x02

	// OpGetConfig requests the NUL-terminated JSON configuration string.
	OpGetConfig = 0x03

	// OpWriteStart opens a block write at an absolute flash address.
	// Raw data frames of the negotiated transfer width follow.
	OpWriteStart = 0x10

	// OpEraseSector erases one flash sector by index and address.
	OpEraseSector = 0x20

	// OpBootloaderSwitch moves the module from application firmware
	// into its bootloader.
	OpBootloaderSwitch = 0x30

	// OpEndProgramming finalizes the flash write sequence.
	OpEndProgramming = 0x40

	// OpReset restarts the module.
	OpReset = 0x50
)

// BroadcastID addresses all modules at once, used for discovery only.
const BroadcastID = 0xFF

// MaxModules is the number of module indexes the protocol can address.
const MaxModules = 16

// ExtendedConfigType is the hardware/flash type byte signalling that the
// module is described via the JSON configuration string instead of the
// fixed status fields.
const ExtendedConfigType = 250

// AckOK is the status byte of a successful acknowledgment frame.
const AckOK = 0x00

// Transfer widths for block-write data frames.
const (
	// NarrowTransferWidth is the 6-byte default data length.
	NarrowTransferWidth = 6

	// WideTransferWidth is the 8-byte data length of newer hardware.
	WideTransferWidth = 8

	// NoTransferWidth marks a module that did not announce a width.
	NoTransferWidth = 0
)

// Byte positions inside the 8-byte status payload.
const (
	statusHardwareTypePos = 3
	statusFlashTypePos    = 4
)
