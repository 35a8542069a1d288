package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Timer measures elapsed play time on an injected clock.
type Timer struct {
	mu        sync.Mutex
	clock     clock.Clock
	running   bool
	startedAt time.Time
	elapsed   time.Duration // Frozen value while stopped
}

// NewTimer creates a stopped timer. A nil clock uses wall time.
func NewTimer(clk clock.Clock) *Timer {
	if clk == nil {
		clk = clock.New()
	}
	return &Timer{clock: clk}
}

// Start begins counting from zero. Calling Start while running has no effect.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return
	}
	t.running = true
	t.elapsed = 0
	t.startedAt = t.clock.Now()
}

// Stop freezes the elapsed time.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}
	t.elapsed = t.clock.Since(t.startedAt)
	t.running = false
}

// Reset stops the timer and returns elapsed time to zero.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.running = false
	t.elapsed = 0
	t.startedAt = time.Time{}
}

// Running reports whether the timer is counting.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Elapsed returns the time counted so far.
func (t *Timer) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return t.clock.Since(t.startedAt)
	}
	return t.elapsed
}

// String formats the elapsed time as MM:SS.
func (t *Timer) String() string {
	return FormatElapsed(t.Elapsed())
}

// FormatElapsed renders a duration as MM:SS. Minutes are not capped.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
