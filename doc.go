// Package asynclog provides a high-throughput asynchronous logger for
// multi-threaded applications: producers enqueue log records onto
// per-consumer lock-free queues, and a fixed pool of consumer goroutines
// drains those queues, renders deferred format arguments, and writes
// severity-routed lines to per-level log files and an optional colored
// terminal stream.
//
// Features:
//   - Deferred formatting: producers capture arguments without rendering
//     them on the hot path; rendering happens on the consumer goroutine.
//   - One lock-free MPMC queue per consumer shard, so producers never
//     contend with each other across shards.
//   - Six fixed severity sinks (ERROR, WARN, FAULT, INFO, DEBUG, TRACE),
//     each an append-only file, plus an optional lipgloss-colored terminal
//     sink.
//   - Explicit Initialize/Start/Log/Stop lifecycle with a drain-on-stop
//     guarantee: every accepted record is written before Stop returns.
//   - Re-initializable: Stop returns the logger to Idle so it can be
//     started again with a fresh session.
package asynclog
