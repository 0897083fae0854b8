package asynclog

import "sync"

// std is the package-level convenience instance for callers that want a
// single shared logger rather than threading a *Logger handle through
// their own code. A fresh NewLogger is always available for tests and
// multi-instance use.
var (
	stdMu sync.Mutex
	std   *Logger
)

func defaultLogger() *Logger {
	stdMu.Lock()
	defer stdMu.Unlock()
	if std == nil {
		std = NewLogger()
	}
	return std
}

// Default returns the package-level Logger, constructing it on first use.
func Default() *Logger {
	return defaultLogger()
}

// Initialize configures the package-level Logger. See (*Logger).Initialize.
func Initialize(opts Options) (int, error) {
	return defaultLogger().Initialize(opts)
}

// Start starts the package-level Logger. See (*Logger).Start.
func Start() error {
	return defaultLogger().Start()
}

// Log writes through the package-level Logger. See (*Logger).Log.
func Log(level Severity, shard int, template string, args ...any) bool {
	return defaultLogger().Log(level, shard, template, args...)
}

// Stop stops the package-level Logger. See (*Logger).Stop.
func Stop() error {
	return defaultLogger().Stop()
}

// Stats reports counters from the package-level Logger. See (*Logger).Stats.
func Stats() map[Severity]int64 {
	return defaultLogger().Stats()
}
