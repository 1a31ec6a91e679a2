package midi

import (
	"context"
	"sync"
	"time"

	"go-ledtone/board"
	"go-ledtone/debug"
)

// MirrorFPS is the LED refresh rate of the Launchpad mirror.
const MirrorFPS = 30

// Framer is anything that shows an 8x8 picture.
type Framer interface {
	Frame() board.Frame
}

// Mirror copies the LED matrix onto a Launchpad grid, sending only the pads
// that changed since the last refresh.
type Mirror struct {
	src Framer

	mu   sync.Mutex
	ctrl Controller
	prev map[[2]int][3]uint8
}

// NewMirror creates a mirror of src.
func NewMirror(src Framer) *Mirror {
	return &Mirror{src: src}
}

// SetController switches the target. A nil controller pauses the mirror.
// The next refresh repaints the whole grid.
func (m *Mirror) SetController(c Controller) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctrl = c
	m.prev = nil
}

// Run refreshes at MirrorFPS until the context is done.
func (m *Mirror) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / MirrorFPS)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.flush()
		}
	}
}

// flush diffs the current frame against the last one sent and returns the
// number of pads updated.
func (m *Mirror) flush() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ctrl == nil {
		return 0
	}

	grid := m.src.Frame().PadGrid()
	next := make(map[[2]int][3]uint8, len(grid)*len(grid[0]))
	var updates []LEDUpdate
	for row := range grid {
		for col, rgb := range grid[row] {
			key := [2]int{row, col}
			next[key] = rgb
			if prev, ok := m.prev[key]; !ok || prev != rgb {
				updates = append(updates, LEDUpdate{Row: row, Col: col, Color: rgb, Channel: ChannelStatic})
			}
		}
	}

	if len(updates) > 0 {
		if err := m.ctrl.SetLEDBatch(updates); err != nil {
			debug.LogEvery(30, "led", "mirror send: %v", err)
			// resend everything next time
			m.prev = nil
			return 0
		}
		debug.LogEvery(30, "led", "mirror batch=%d", len(updates))
	}
	m.prev = next
	return len(updates)
}
