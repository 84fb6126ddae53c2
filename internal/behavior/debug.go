package behavior

import "sync/atomic"

// debugLoggingEnabled gates per-tick transition logs.
// Set via EnableDebugLogging() from main after parsing config.LogLevel.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging enables or disables transition logging.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled returns true if transition logging is enabled.
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
