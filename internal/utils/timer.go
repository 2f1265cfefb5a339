package utils

import "time"

// Timer measures elapsed wall-clock time between a start and a stop event.
// [NewTimer] starts the measurement immediately; call [Timer.Stop] to capture
// the elapsed duration and [Timer.GetDuration] to read it back.
type Timer struct {
	startTime time.Time
	duration  time.Duration
}

// NewTimer creates a Timer and records the current time as its start instant.
func NewTimer() *Timer {
	return &Timer{startTime: time.Now()}
}

// Start resets the start instant to now, beginning a fresh measurement. The
// same Timer can be restarted any number of times.
func (t *Timer) Start() {
	t.startTime = time.Now()
}

// Stop captures the time elapsed since construction or the last [Timer.Start].
func (t *Timer) Stop() {
	t.duration = time.Since(t.startTime)
}

// GetDuration returns the duration captured by the most recent [Timer.Stop],
// or zero if Stop has not been called yet.
func (t *Timer) GetDuration() time.Duration {
	return t.duration
}
