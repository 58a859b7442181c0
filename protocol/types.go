package protocol

import "fmt"

// Announcement is a module's reply to the discovery broadcast.
type Announcement struct {
	// ModuleID is the module's bus index (0..MaxModules-1).
	ModuleID int

	// PPCANID is the packed ppcan hardware id from the first two bytes.
	PPCANID byte

	// Day, Month and Year hold the BCD-coded firmware build date
	// (year without the century).
	Day, Month, Year byte

	// BootloaderMajor and BootloaderMinor are the bootloader version.
	BootloaderMajor byte
	BootloaderMinor byte

	// TransferWidth is the announced block-write data length,
	// NoTransferWidth when the module leaves the choice to the host.
	TransferWidth int

	// Raw is the unmodified 8-byte announcement payload.
	Raw [8]byte
}

// BuildDate formats the announced firmware build date for the operator.
func (a *Announcement) BuildDate() string {
	return fmt.Sprintf("%02X.%02X.20%02X", a.Day, a.Month, a.Year)
}

// BootloaderVersion formats the announced bootloader version.
func (a *Announcement) BootloaderVersion() string {
	return fmt.Sprintf("v%d.%d", a.BootloaderMajor, a.BootloaderMinor)
}

// Status is a module's decoded 8-byte status payload.
type Status struct {
	// HardwareType identifies the physical hardware variant. The value
	// ExtendedConfigType means the module is described via the JSON
	// configuration string.
	HardwareType byte

	// FlashType identifies the memory technology, cross-checked against
	// HardwareType. ExtendedConfigType works as for HardwareType.
	FlashType byte

	// Raw is the unmodified status payload.
	Raw [8]byte
}

// NeedsExtendedConfig reports whether the module must be resolved through
// the JSON configuration string.
func (s *Status) NeedsExtendedConfig() bool {
	return s.HardwareType == ExtendedConfigType || s.FlashType == ExtendedConfigType
}

// ExtendedConfig is the decoded JSON configuration string of modules that
// report the ExtendedConfigType sentinel.
type ExtendedConfig struct {
	Hardware struct {
		ID   byte   `json:"id"`
		Name string `json:"name"`
	} `json:"hardware"`
	Flash struct {
		ID   byte   `json:"id"`
		Name string `json:"name"`
	} `json:"flash"`

	// TransferWidth is the block-write data length, 0 when unspecified.
	TransferWidth int `json:"dlc"`
}
