package asynclog

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"
)

// consumer drains exactly one shard's queue for the lifetime of one Start
// call: publish the queue, busy-spin popping records, take a bounded yield
// after a run of empty polls, and exit only once the terminate flag is set
// and the queue is genuinely drained.
type consumer struct {
	shard         int
	consumerCount int
	queue         *queue
	sinks         *SinkSet
	stats         *StatsTable
	terminate     *atomic.Bool
	yieldAfter    int
	affinityHint  bool
}

// run is the consumer's goroutine body. publish is called exactly once,
// before the drain loop starts, with the queue this consumer owns; the
// caller uses it to make the queue visible to producers via Logger.Log.
// clear is called exactly once, on exit, before done, to retract that
// visibility — the consumer is the sole writer of its own slot on both ends
// of its lifetime. done is called exactly once, on exit, regardless of path.
func (c *consumer) run(publish func(*queue), clear func(), done func()) {
	defer done()
	defer clear()
	publish(c.queue)

	if c.affinityHint {
		runtime.LockOSThread()
		if err := pinAdvisory(c.shard, c.consumerCount); err != nil {
			slog.Warn("asynclog: advisory affinity pin failed", "shard", c.shard, "error", err)
		}
	}

	drainedOnce := false
	emptyPolls := 0
	for {
		if rec, ok := c.queue.tryPop(); ok {
			c.process(rec)
			emptyPolls = 0
			drainedOnce = false
			continue
		}

		if c.terminate.Load() {
			if !drainedOnce {
				// Release lfq's shutdown threshold and give the ring one
				// more chance before declaring this shard empty for good.
				c.queue.drain()
				drainedOnce = true
				continue
			}
			return
		}

		emptyPolls++
		if emptyPolls >= c.yieldAfter {
			runtime.Gosched()
			emptyPolls = 0
		}
	}
}

// process renders, formats, and writes one record, then advances its
// severity's counter.
func (c *consumer) process(r *Record) {
	text := r.render()
	line := formatLine(r.Timestamp, c.shard, text)
	c.sinks.writeLine(r.Level, line)
	c.stats.incr(r.Level)
}

// formatLine assembles the on-disk/terminal line grammar:
// "<timestamp>\t\tThread ID : <shard>\t<rendered>\n", with the timestamp
// decomposed in UTC and zero-padded.
func formatLine(ts time.Time, shard int, text string) string {
	u := ts.UTC()
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d.%09d\t\tThread ID : %d\t%s\n",
		u.Year(), u.Month(), u.Day(), u.Hour(), u.Minute(), u.Second(), u.Nanosecond(), shard, text)
}
