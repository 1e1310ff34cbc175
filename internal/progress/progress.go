// Package progress tracks fleet completion for long mass-mode runs.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Tracker counts completed hosts and redraws a single status line as
// workers finish. It is safe for concurrent use by the per-host workers.
type Tracker struct {
	total     int
	completed int
	failed    int
	start     time.Time
	mu        sync.Mutex
	writer    io.Writer
	enabled   bool
}

// NewTracker creates a tracker for total hosts writing to w.
func NewTracker(total int, w io.Writer, enabled bool) *Tracker {
	return &Tracker{
		total:   total,
		start:   time.Now(),
		writer:  w,
		enabled: enabled,
	}
}

// Update records one finished host and redraws the status line.
func (t *Tracker) Update(success bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.completed++
	if !success {
		t.failed++
	}
	t.draw()
}

func (t *Tracker) draw() {
	if !t.enabled || t.writer == nil {
		return
	}
	elapsed := time.Since(t.start).Round(time.Second)
	fmt.Fprintf(t.writer, "\r[%d/%d] failed: %d, elapsed: %s",
		t.completed, t.total, t.failed, elapsed)
}

// Finish terminates the status line once all workers have joined.
func (t *Tracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.enabled && t.writer != nil && t.completed > 0 {
		fmt.Fprintln(t.writer)
	}
}

// Completed returns the number of finished hosts so far.
func (t *Tracker) Completed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completed
}
