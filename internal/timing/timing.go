// Package timing provides a minimal wall-clock timer.
package timing

import "time"

// Timer measures elapsed wall-clock time from a start point.
type Timer struct {
	start time.Time
}

// Start returns a running timer.
func Start() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the time since Start.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}
