package asynclog

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Logger owns the queue array, the sink set, the consumer pool, and the
// lifecycle flags for one asynchronous logging session. It is a
// constructible handle rather than package-global state, so tests and
// multi-tenant callers can run several independent loggers side by side.
// A package-level convenience singleton wrapping one Logger lives in
// global.go for callers that just want a single shared instance.
type Logger struct {
	// lifecycleMu serializes Initialize/Start/Stop. It is never held while
	// a producer calls Log — Log only touches the atomics below.
	lifecycleMu sync.Mutex

	initialized   atomic.Bool
	running       atomic.Bool
	consumerCount atomic.Int32

	opts      Options
	directory string
	sinks     *SinkSet
	stats     atomic.Pointer[StatsTable]

	queues    []atomic.Pointer[queue]
	terminate []atomic.Bool
	wg        sync.WaitGroup
}

// NewLogger constructs an Idle Logger. It performs no I/O. A finalizer is
// registered so a caller that forgets to call Stop still has its sink files
// closed when the Logger is garbage collected; the package-level instance in
// global.go is built with NewLogger and gets the same finalizer. While its
// consumers are running they hold references to the Logger, so a started
// Logger is not collected until Stop has run.
func NewLogger() *Logger {
	l := &Logger{}
	runtime.SetFinalizer(l, (*Logger).finalize)
	return l
}

// finalize is the runtime.SetFinalizer callback. It cannot return a value,
// so it discards Stop's error; a Logger collected without an explicit Stop
// has no caller left to observe that error anyway.
func (l *Logger) finalize() {
	_ = l.Stop()
}

// Initialize allocates the queue/terminate-flag arrays and opens the six
// severity sink files (plus the terminal sink, if requested). It is
// idempotent: calling it again before Stop returns the already-active
// consumer count unchanged.
func (l *Logger) Initialize(opts Options) (int, error) {
	if err := opts.Validate(); err != nil {
		return 0, err
	}

	l.lifecycleMu.Lock()
	defer l.lifecycleMu.Unlock()

	if l.initialized.Load() {
		return int(l.consumerCount.Load()), nil
	}

	consumers := opts.Consumers
	if consumers <= 0 {
		consumers = runtime.NumCPU()
		if consumers < 1 {
			consumers = 1
		}
	}

	dir := opts.Directory
	if dir == "" {
		dir = "."
	} else if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		dir = "."
	}

	logsDir := filepath.Join(dir, "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return 0, fmt.Errorf("asynclog: failed to create log directory %s: %w", logsDir, err)
	}

	sinks, err := newSinkSet(logsDir, opts.EnableStdout)
	if err != nil {
		return 0, err
	}

	l.sinks = sinks
	l.stats.Store(newStatsTable())
	l.directory = logsDir
	l.opts = opts
	l.queues = make([]atomic.Pointer[queue], consumers)
	l.terminate = make([]atomic.Bool, consumers)
	l.consumerCount.Store(int32(consumers))
	l.initialized.Store(true)
	return consumers, nil
}

// Start spawns one consumer goroutine per shard and blocks until every
// shard has published its queue, i.e. until Log calls against any valid
// shard will succeed. It is idempotent.
func (l *Logger) Start() error {
	l.lifecycleMu.Lock()
	defer l.lifecycleMu.Unlock()

	if !l.initialized.Load() {
		return ErrNotInitialized
	}
	if l.running.Load() {
		return nil
	}

	n := int(l.consumerCount.Load())
	yieldAfter := l.opts.EmptyPollYield
	if yieldAfter <= 0 {
		yieldAfter = defaultEmptyPollYield
	}

	ready := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		shard := i
		c := &consumer{
			shard:         shard,
			consumerCount: n,
			queue:         newQueue(),
			sinks:         l.sinks,
			stats:         l.stats.Load(),
			terminate:     &l.terminate[shard],
			yieldAfter:    yieldAfter,
			affinityHint:  l.opts.EnableAffinityHint,
		}
		l.wg.Add(1)
		go c.run(
			func(q *queue) {
				l.queues[shard].Store(q)
				ready <- struct{}{}
			},
			func() {
				// The shard's consumer owns this slot and is the only writer
				// after publish; clearing it here, rather than only in Stop,
				// keeps Log's read of a since-exited shard safe even if Stop
				// hasn't reached its own cleanup loop yet.
				l.queues[shard].Store(nil)
			},
			l.wg.Done,
		)
	}

	for i := 0; i < n; i++ {
		<-ready
	}

	l.running.Store(true)
	return nil
}

// Log is the producer entry point. It rejects with false if shard is out
// of range, the Logger is not Running, or that shard's consumer has not
// yet published its queue; otherwise it constructs a Record (capturing
// args by value) and pushes it, returning true once the push is accepted.
func (l *Logger) Log(level Severity, shard int, template string, args ...any) bool {
	if !l.running.Load() {
		return false
	}
	n := int(l.consumerCount.Load())
	if shard < 0 || shard >= n {
		return false
	}
	q := l.queues[shard].Load()
	if q == nil {
		return false
	}

	ts := time.Now()
	var rec *Record
	if len(args) == 0 {
		rec = newStaticRecord(level, template, ts)
	} else {
		rec = newDeferredRecord(level, template, args, ts)
	}

	if !q.push(rec) {
		if st := l.stats.Load(); st != nil {
			st.incrDropped()
		}
		return false
	}
	return true
}

// Stop raises every shard's terminate flag, waits for every consumer to
// drain and exit, closes the sink files, and returns the Logger to Idle so
// a subsequent Initialize starts a fresh session. Every Record accepted by
// Log before Stop was called is guaranteed to be written before Stop
// returns. Stop is idempotent.
func (l *Logger) Stop() error {
	l.lifecycleMu.Lock()
	defer l.lifecycleMu.Unlock()

	if !l.initialized.Load() {
		return nil
	}

	for i := range l.terminate {
		l.terminate[i].Store(true)
	}
	l.wg.Wait()

	// Each consumer already cleared its own slot on exit; this loop is
	// defensive, not load-bearing, and keeps the queues slice itself intact
	// so a Log call still in flight when running flipped false indexes a
	// valid (if now-nil-valued) slot instead of an out-of-range one.
	for i := range l.queues {
		l.queues[i].Store(nil)
	}

	var err error
	if l.sinks != nil {
		err = l.sinks.close()
	}

	l.running.Store(false)
	l.initialized.Store(false)
	l.consumerCount.Store(0)
	l.sinks = nil

	return err
}

// Stats returns a point-in-time snapshot of the per-severity write
// counters, plus the synthetic Dropped key for records that could not be
// enqueued. It is safe to call concurrently with Log and with the consumer
// pool.
func (l *Logger) Stats() map[Severity]int64 {
	st := l.stats.Load()
	if st == nil {
		return map[Severity]int64{}
	}
	return st.snapshot()
}

// ConsumerCount reports the effective shard count chosen by the most
// recent Initialize, or 0 if the Logger is Idle.
func (l *Logger) ConsumerCount() int {
	return int(l.consumerCount.Load())
}

// Running reports whether Start has completed and Stop has not yet been
// called.
func (l *Logger) Running() bool {
	return l.running.Load()
}
