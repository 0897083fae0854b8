package asynclog

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss/v2"
)

// sessionBanner delimits restart boundaries in every sink, written once
// per successful Initialize.
const sessionBanner = "\n\n-------------Starting new Session---------------\n\n"

// fileSink is one append-mode severity file. Writes rely on O_APPEND
// atomicity for line-granularity safety across the many consumer
// goroutines that may share it (only one per shard in practice, but the
// sink type itself makes no such assumption). The mutex only guards the file
// pointer, so writes after Close are skipped; a write that loaded the pointer
// before a concurrent Close goes to the closed *os.File, whose error is
// discarded like any other write error.
type fileSink struct {
	mu   sync.Mutex
	file *os.File
}

func openFileSink(path string) (*fileSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &fileSink{file: f}, nil
}

func (s *fileSink) writeLine(line string) {
	s.mu.Lock()
	f := s.file
	s.mu.Unlock()
	if f == nil {
		return
	}
	// Best-effort: a failed write to a severity file is not retried and
	// not escalated.
	_, _ = f.WriteString(line)
}

func (s *fileSink) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// severityStyle maps each severity to its terminal color.
func severityStyle(level Severity) lipgloss.Style {
	switch level {
	case ERROR:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Background(lipgloss.Color("#FFFF00"))
	case WARN:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
	case FAULT:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	case INFO:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#00FFFF"))
	case DEBUG:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	case TRACE:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#FF69B4"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#FAEBD7"))
	}
}

// terminalSink writes the same line grammar as the file sinks to stdout,
// colored per severity via lipgloss.
type terminalSink struct {
	styles map[Severity]lipgloss.Style
}

func newTerminalSink() *terminalSink {
	t := &terminalSink{styles: make(map[Severity]lipgloss.Style, severityCount)}
	for _, lvl := range allSeverities {
		t.styles[lvl] = severityStyle(lvl)
	}
	return t
}

func (t *terminalSink) writeLine(level Severity, line string) {
	style, ok := t.styles[level]
	if !ok {
		style = severityStyle(level)
	}
	fmt.Fprintln(os.Stdout, style.Render(strings.TrimSuffix(line, "\n")))
}

// SinkSet owns the six severity files and the optional terminal sink. A
// SinkSet is safe for concurrent use by every consumer worker.
type SinkSet struct {
	files    [severityCount]*fileSink
	terminal *terminalSink
}

// newSinkSet opens the six severity files under dir and, if stdoutEnabled,
// builds the terminal sink. It succeeds as long as at least one severity
// file opened; a file that failed to open is simply left nil and later
// writes to it are silently dropped.
func newSinkSet(dir string, stdoutEnabled bool) (*SinkSet, error) {
	set := &SinkSet{}
	if stdoutEnabled {
		set.terminal = newTerminalSink()
	}

	var openErrs []error
	opened := 0
	for _, lvl := range allSeverities {
		path := filepath.Join(dir, lvl.String()+".log")
		fs, err := openFileSink(path)
		if err != nil {
			slog.Error("asynclog: failed to open sink file", "severity", lvl.String(), "path", path, "error", err)
			openErrs = append(openErrs, err)
			continue
		}
		fs.writeLine(sessionBanner)
		set.files[lvl] = fs
		opened++
	}

	if opened == 0 {
		return nil, fmt.Errorf("asynclog: no sink files could be opened in %s: %w", dir, errors.Join(openErrs...))
	}
	return set, nil
}

// writeLine fans line out to the file sink for level and, if enabled, the
// terminal sink. Both writes are best-effort.
func (s *SinkSet) writeLine(level Severity, line string) {
	if level.valid() {
		if fs := s.files[level]; fs != nil {
			fs.writeLine(line)
		}
	}
	if s.terminal != nil {
		s.terminal.writeLine(level, line)
	}
}

func (s *SinkSet) close() error {
	var firstErr error
	for _, fs := range s.files {
		if fs == nil {
			continue
		}
		if err := fs.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
