package asynclog

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned by Start when Initialize has not yet
// succeeded.
var ErrNotInitialized = errors.New("asynclog: logger not initialized")

// ConfigError reports an invalid Options value rejected by Options.Validate.
// Initialize returns it without mutating any Logger state.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("asynclog: invalid option %s: %s", e.Field, e.Reason)
}

// RenderError reports that a deferred template could not be rendered,
// typically because fewer arguments were captured than the template's
// placeholders require. It is never returned to a caller; the consumer
// substitutes a sentinel line in its place and continues (see Record.render).
type RenderError struct {
	Template string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("asynclog: render error for template %q", e.Template)
}
