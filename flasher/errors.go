package flasher

import (
	"errors"
	"fmt"

	"github.com/pcan-tools/go-pcanflash/hwdb"
)

// ErrNoModules indicates that the discovery broadcast got no answers.
var ErrNoModules = errors.New("no modules found on the bus")

// ErrSelectionRequired indicates that several modules were discovered and
// neither an explicit module id nor a Selector was configured.
var ErrSelectionRequired = errors.New("multiple modules found: an explicit module id is required")

// ModuleNotFoundError indicates that the requested module id did not
// answer the discovery broadcast.
type ModuleNotFoundError struct {
	ID int
}

func (e *ModuleNotFoundError) Error() string {
	return fmt.Sprintf("module id %d not found in module list", e.ID)
}

// TypeMismatchError indicates that a module's reported flash type does not
// match its reported hardware type.
type TypeMismatchError struct {
	ModuleID     int
	HardwareType byte
	FlashType    byte
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("module %d: flash type %d (%s) does not match hardware type %d (%s)",
		e.ModuleID, e.FlashType, hwdb.FlashTypeName(e.FlashType),
		e.HardwareType, hwdb.Name(e.HardwareType))
}

// UnknownHardwareError indicates a hardware type byte with no profile.
type UnknownHardwareError struct {
	HardwareType byte
}

func (e *UnknownHardwareError) Error() string {
	return fmt.Sprintf("no flashing profile for hardware type %d", e.HardwareType)
}

// ImageSupportError indicates that the firmware image does not declare
// support for the target hardware.
type ImageSupportError struct {
	HardwareType byte
	Tag          string
}

func (e *ImageSupportError) Error() string {
	return fmt.Sprintf("firmware image carries no %q tag for hardware type %d (%s)",
		e.Tag, e.HardwareType, hwdb.Name(e.HardwareType))
}

// NoFlashBlocksError indicates a profile without flash sectors, a
// configuration error that would make erase a no-op.
type NoFlashBlocksError struct {
	HardwareType byte
}

func (e *NoFlashBlocksError) Error() string {
	return fmt.Sprintf("no flash blocks found for hardware type %d (%s)",
		e.HardwareType, hwdb.Name(e.HardwareType))
}
