package asynclog

import (
	"runtime"
	"unsafe"

	"code.hybscloud.com/lfq"
)

// defaultQueueCapacity is the per-shard ring size. lfq rounds this up to a
// power of two internally. The ring is large enough to behave as
// unbounded under any realistic producer load; a saturated ring is
// treated as a rare, bounded-retry condition (queue.push) rather than a
// hard rejection.
const defaultQueueCapacity = 1 << 20

// queuePushRetryLimit bounds the spin in queue.push so a producer can never
// be blocked indefinitely by a saturated shard; past this many attempts the
// record is dropped and the caller accounts for it (Logger.Log, via
// StatsTable.incrDropped).
const queuePushRetryLimit = 64

// ptrQueue is satisfied structurally by the queue lfq.NewMPMCPtr returns.
// Declaring it locally (rather than naming lfq's concrete return type)
// keeps queue.go independent of that type's exact name.
type ptrQueue interface {
	Enqueue(unsafe.Pointer) error
	Dequeue() (unsafe.Pointer, error)
}

// queue is one consumer's lock-free MPMC queue of *Record, backed by
// code.hybscloud.com/lfq's zero-copy pointer ring — the exact "Zero-copy
// object passing between goroutines" pattern from that package's doc.
type queue struct {
	q ptrQueue
}

func newQueue() *queue {
	return &queue{q: lfq.NewMPMCPtr(defaultQueueCapacity)}
}

// push enqueues r, spinning briefly (never blocking on a syscall or a
// lock) if the ring is momentarily full. Returns false if r could not be
// enqueued within the bounded retry window.
func (q *queue) push(r *Record) bool {
	ptr := unsafe.Pointer(r)
	for attempt := 0; attempt < queuePushRetryLimit; attempt++ {
		err := q.q.Enqueue(ptr)
		if err == nil {
			return true
		}
		if !lfq.IsWouldBlock(err) {
			return false
		}
		runtime.Gosched()
	}
	return false
}

// tryPop is the non-blocking dequeue: it never spins or blocks waiting for
// a producer, returning immediately when the ring is empty.
func (q *queue) tryPop() (*Record, bool) {
	ptr, err := q.q.Dequeue()
	if err != nil || ptr == nil {
		return nil, false
	}
	return (*Record)(ptr), true
}

// drain releases lfq's FAA shutdown-livelock threshold (see that package's
// "Graceful Shutdown" doc section) so a consumer can fully empty its queue
// once producers are known to be done pushing to it.
func (q *queue) drain() {
	if d, ok := q.q.(lfq.Drainer); ok {
		d.Drain()
	}
}
