package asynclog

import (
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// StatsTable is a lock-free, always-safe-to-read counters table keyed by
// severity. Consumers advance the per-severity counters (one incr per line
// written) and producers advance only the Dropped counter (in Logger.Log);
// Logger.Stats readers never block a writer.
type StatsTable struct {
	counters *xsync.MapOf[Severity, *atomic.Int64]
}

func newStatsTable() *StatsTable {
	t := &StatsTable{counters: xsync.NewMapOf[Severity, *atomic.Int64]()}
	for _, lvl := range allSeverities {
		t.counters.Store(lvl, &atomic.Int64{})
	}
	t.counters.Store(Dropped, &atomic.Int64{})
	return t
}

func (t *StatsTable) counter(level Severity) *atomic.Int64 {
	if c, ok := t.counters.Load(level); ok {
		return c
	}
	c, _ := t.counters.LoadOrStore(level, &atomic.Int64{})
	return c
}

// incr advances level's counter. Called by a consumer after a line has
// been written to its sinks.
func (t *StatsTable) incr(level Severity) {
	t.counter(level).Add(1)
}

// incrDropped advances the synthetic Dropped counter, for records that a
// producer could not enqueue within queue.push's bounded retry window.
func (t *StatsTable) incrDropped() {
	t.counter(Dropped).Add(1)
}

// snapshot returns a point-in-time copy of every counter.
func (t *StatsTable) snapshot() map[Severity]int64 {
	out := make(map[Severity]int64, severityCount+1)
	t.counters.Range(func(level Severity, c *atomic.Int64) bool {
		out[level] = c.Load()
		return true
	})
	return out
}
