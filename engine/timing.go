package engine

import (
	"time"

	"go-ledtone/render"
)

// DefaultMinPulse is the settling time between control line edges. The
// driver chip needs 20ns of latch pulse width; this leaves a wide margin.
const DefaultMinPulse = 100 * time.Nanosecond

// Timing is the tick handler. It is the only writer of the cycle index and
// the row selector, and the only reader of the active half.
type Timing struct {
	state  *State
	port   Port
	wiring *render.Wiring
	wait   Waiter

	// MinPulse separates the edges of the frame swap sequence.
	MinPulse time.Duration
}

// NewTiming creates the tick handler for a board.
func NewTiming(s *State, port Port, w *render.Wiring, wait Waiter) *Timing {
	if wait == nil {
		wait = SpinWaiter{}
	}
	return &Timing{state: s, port: port, wiring: w, wait: wait, MinPulse: DefaultMinPulse}
}

// Tick runs one tick: advance the cursor, output the next audio sample,
// swap frames every 32 ticks and stream the next grayscale word. It never
// blocks beyond the pulse waits and never allocates.
func (t *Timing) Tick() {
	s := t.state
	n := s.ticks.Load() + 1
	half := (n >> 5) & 1
	slot := int(n & (HalfWords - 1))

	swap := slot == 0
	if swap {
		row := (s.rows[half^1].Load() + 1) & (render.Rows - 1)
		s.rows[half].Store(row)
	}
	s.ticks.Store(n)

	h := &s.halves[half]
	if swap {
		// Loading filled orders the foreground's writes to the entered
		// half before any read of it. That half was vacated one swap ago.
		if s.filled.Load()+1 < n>>5 {
			s.overruns.Add(1)
		}
	}
	t.port.SetAudioCompare(h.Audio[slot])

	if swap {
		t.frameSwap(t.wiring.Rows[s.rows[half].Load()])
		s.flag.Store(true)
	}

	t.port.SendWord(h.Gray[slot])
}

// frameSwap latches the words shifted in during the last half and selects
// the next row.
func (t *Timing) frameSwap(rowCode uint8) {
	p := t.port
	p.AssertBlank()
	t.wait.WaitAtLeast(t.MinPulse)
	p.AssertLatch()
	t.wait.WaitAtLeast(t.MinPulse)
	p.DeassertLatch()
	t.wait.WaitAtLeast(t.MinPulse)
	p.DeassertBlank()
	p.SetRowDriveLine(rowCode)
}
