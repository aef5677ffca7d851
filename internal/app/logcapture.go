package app

import (
	"strings"
	"sync"

	"fyne.io/fyne/v2/data/binding"
)

// logCapture fans log writes into a string binding so the log pane follows
// whatever the service logs, keeping at most limit lines.
type logCapture struct {
	mu      sync.Mutex
	lines   []string
	limit   int
	binding binding.String
}

func newLogCapture(b binding.String, limit int) *logCapture {
	return &logCapture{binding: b, limit: limit}
}

func (l *logCapture) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	text := strings.ReplaceAll(string(p), "\r\n", "\n")
	for _, part := range strings.Split(text, "\n") {
		if part == "" {
			continue
		}
		l.lines = append(l.lines, part)
	}
	if len(l.lines) > l.limit {
		l.lines = l.lines[len(l.lines)-l.limit:]
	}
	_ = l.binding.Set(strings.Join(l.lines, "\n"))
	return len(p), nil
}
