package asynclog

import "time"

// Record is the unit enqueued by producers and owned, from the moment it
// is pushed, solely by the consumer that eventually pops it. No producer
// retains a reference to a Record after Log returns.
type Record struct {
	Level     Severity
	Timestamp time.Time

	template string
	args     []capturedArg
	text     string
	deferred bool
	rendered bool
}

// newStaticRecord builds a Record whose text is already final — the
// producer supplied no format arguments, so there is nothing to defer.
func newStaticRecord(level Severity, text string, ts time.Time) *Record {
	return &Record{Level: level, Timestamp: ts, text: text, rendered: true}
}

// newDeferredRecord builds a Record that captures args by value and defers
// rendering to the consumer goroutine.
func newDeferredRecord(level Severity, template string, args []any, ts time.Time) *Record {
	captured := make([]capturedArg, len(args))
	for i, a := range args {
		captured[i] = captureArg(a)
	}
	return &Record{Level: level, Timestamp: ts, template: template, args: captured, deferred: true}
}

// render materializes the final text for r. It is idempotent: a second
// call returns the already-computed text without re-running the format
// rule. Render errors never propagate to the caller — they become a
// sentinel line instead.
func (r *Record) render() string {
	if r.rendered {
		return r.text
	}
	text, err := renderTemplate(r.template, r.args)
	if err != nil {
		r.text = sentinelLine(r.template)
	} else {
		r.text = text
	}
	r.rendered = true
	r.args = nil
	return r.text
}
