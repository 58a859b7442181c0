package flasher

import "time"

// NoModuleID means no explicit module id was requested; the session
// auto-selects a single discovered module or consults the Selector.
const NoModuleID = -1

// Config holds the session configuration.
type Config struct {
	// ProgressCallback is called during flashing to report progress (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// ModuleID is the explicitly requested module, NoModuleID for none.
	ModuleID int

	// Selector resolves an ambiguous discovery result (optional).
	Selector Selector

	// DryRun suppresses the erase and write transport calls while still
	// exercising block iteration and CRC patching.
	DryRun bool

	// ForceReset resets the module after flashing even when the
	// hardware does not ask for it.
	ForceReset bool

	// SettleDelay is the fixed wait after bootloader switch, end
	// programming and reset before the next status query.
	SettleDelay time.Duration
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		ModuleID:    NoModuleID,
		SettleDelay: time.Second,
	}
}

// Option is a functional option for configuring the Session.
type Option func(*Config)

// WithProgressCallback sets a callback function to track flashing progress.
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for the session operations.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithModuleID requests one specific module id. The run fails when the id
// is not discovered on the bus.
func WithModuleID(id int) Option {
	return func(c *Config) {
		c.ModuleID = id
	}
}

// WithSelector sets the policy used when several modules are discovered
// and none was requested explicitly.
func WithSelector(sel Selector) Option {
	return func(c *Config) {
		c.Selector = sel
	}
}

// WithDryRun suppresses the erase and write transport calls. Discovery,
// hardware resolution, block iteration and CRC patching run unchanged.
func WithDryRun(dryRun bool) Option {
	return func(c *Config) {
		c.DryRun = dryRun
	}
}

// WithForceReset resets the module after flashing regardless of its
// hardware flags. The post-reset status query is skipped in that case: the
// application firmware coming up may not speak the status protocol.
func WithForceReset(reset bool) Option {
	return func(c *Config) {
		c.ForceReset = reset
	}
}

// WithSettleDelay overrides the fixed wait after bootloader switch, end
// programming and reset.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.SettleDelay = d
		}
	}
}
