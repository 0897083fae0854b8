package asynclog

// defaultEmptyPollYield is the number of consecutive empty TryPop polls a
// consumer takes before yielding the OS thread, when Options.EmptyPollYield
// is left at its zero value.
const defaultEmptyPollYield = 64

// Options configures a Logger's Initialize call. The zero value is valid:
// it selects runtime.NumCPU() consumers, the current working directory,
// no terminal output, no affinity hints, and the default empty-poll yield.
type Options struct {
	// Directory is the directory under which the "logs" subdirectory is
	// created. Empty means "use the current working directory".
	Directory string

	// Consumers is the number of shards/consumer goroutines. <= 0
	// substitutes runtime.NumCPU().
	Consumers int

	// EnableStdout turns on the colored terminal sink alongside the file
	// sinks.
	EnableStdout bool

	// EnableAffinityHint opts into the advisory, collision-prone CPU
	// affinity formula in pinAdvisory. Disabled by default.
	EnableAffinityHint bool

	// EmptyPollYield is the number of consecutive empty queue polls a
	// consumer takes before calling runtime.Gosched(). <= 0 substitutes
	// defaultEmptyPollYield.
	EmptyPollYield int
}

// Validate rejects Options values that were explicitly set to a negative
// number, as opposed to merely left at their zero value.
func (o Options) Validate() error {
	if o.Consumers < 0 {
		return &ConfigError{Field: "Consumers", Reason: "must be >= 0 (0 selects runtime.NumCPU)"}
	}
	if o.EmptyPollYield < 0 {
		return &ConfigError{Field: "EmptyPollYield", Reason: "must be >= 0"}
	}
	return nil
}
