//go:build linux

package asynclog

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// pinAdvisory applies an advisory (and collision-prone — two shards can
// map to the same CPU) affinity formula: (shard mod max(1, consumerCount/2))
// + 1. It is a performance knob, disabled by default
// (Options.EnableAffinityHint), and failures here are never fatal — the
// caller only logs them once.
func pinAdvisory(shard, consumerCount int) error {
	divisor := consumerCount / 2
	if divisor < 1 {
		divisor = 1
	}
	cpu := (shard % divisor) + 1

	if n := runtime.NumCPU(); n > 0 {
		cpu %= n
	}

	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("asynclog: sched_setaffinity: %w", err)
	}
	return nil
}
