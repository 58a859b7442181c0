package flasher

import "time"

// Phase names reported through the progress callback.
const (
	PhaseDiscover       = "discover"
	PhaseBootloader     = "bootloader"
	PhaseErase          = "erase"
	PhaseWrite          = "write"
	PhaseEndProgramming = "end-programming"
	PhaseReset          = "reset"
	PhaseComplete       = "complete"
)

// Progress contains information about the flashing progress.
// Passed to ProgressCallback as phases advance and blocks are written.
type Progress struct {
	// Phase is the current phase, one of the Phase constants.
	Phase string

	// Offset is the image offset of the last handled block.
	Offset uint32

	// BlocksWritten counts the transmitted (non-empty) blocks.
	BlocksWritten int

	// BlocksSkipped counts the empty blocks that were not transmitted.
	BlocksSkipped int

	// BytesWritten is the total number of block bytes transmitted.
	BytesWritten int

	// ElapsedTime is the time since the run started.
	ElapsedTime time.Duration
}

// ProgressCallback is called during flashing to report progress.
// Implementations should return quickly to avoid stalling the bus session.
type ProgressCallback func(Progress)

// Selector chooses one module when several were discovered and no explicit
// module id was requested. It returns the module id to flash.
type Selector func(modules []*Module) (int, error)

// Logger is an optional logging interface, allowing integration with any
// logging framework.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Warn logs a warning with optional key-value pairs
	Warn(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
