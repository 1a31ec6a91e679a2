package keypad

import (
	"sync"
	"time"
)

// Latch is a Matrix fed by momentary key events. Front panels that only
// report presses (terminal keys, pad controllers) hold a key down for Hold
// after each press.
type Latch struct {
	Hold time.Duration

	// Now is the clock; time.Now when nil.
	Now func() time.Time

	mu    sync.Mutex
	until [Rows][Columns]time.Time
	last  [2]int
}

// NewLatch creates a latch holding each press for hold.
func NewLatch(hold time.Duration) *Latch {
	return &Latch{Hold: hold, last: [2]int{-1, -1}}
}

func (l *Latch) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// Press holds the key at row, col down.
func (l *Latch) Press(row, col int) {
	if row < 0 || row >= Rows || col < 0 || col >= Columns {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.until[row][col] = l.now().Add(l.Hold)
	l.last = [2]int{row, col}
}

// PressLabel holds the key with the given legend. It reports false for
// characters that are not on the keypad.
func (l *Latch) PressLabel(label byte) bool {
	row, col, ok := Find(label)
	if ok {
		l.Press(row, col)
	}
	return ok
}

// Release lets go of every key.
func (l *Latch) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.until = [Rows][Columns]time.Time{}
}

// Columns implements Matrix.
func (l *Latch) Columns(row int) uint8 {
	if row < 0 || row >= Rows {
		return 0
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	var cols uint8
	for col, t := range l.until[row] {
		if now.Before(t) {
			cols |= 1 << col
		}
	}
	return cols
}

// Held reports whether the key at row, col is currently down.
func (l *Latch) Held(row, col int) bool {
	return l.Columns(row)&(1<<col) != 0
}

// Last is the most recently pressed key, or -1, -1.
func (l *Latch) Last() (row, col int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last[0], l.last[1]
}
