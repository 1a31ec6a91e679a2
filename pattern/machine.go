// Package pattern is the keypad-driven state machine that decides what the
// foreground renders into each buffer half.
//
// It runs once per frame swap. A keypress keeps the display and the tone
// alive for DebounceFrames swaps; every completed press flips the display
// between the glyph trace and the alternate trace.
package pattern

import (
	"fmt"

	"go-ledtone/keypad"
	"go-ledtone/render"
	"go-ledtone/sine"
)

// DebounceFrames is how many frame swaps a press stays active.
const DebounceFrames = 50

// TraceSteps is the pattern cadence, in frame swaps, for each frequency
// index. The glyph trace runs 8 times slower.
var TraceSteps = [16]int{
	80, 66, 54, 44,
	36, 29, 24, 20,
	16, 13, 11, 9,
	7, 6, 5, 4,
}

// Mode selects the renderer.
type Mode int

const (
	ModeGlyph Mode = iota
	ModeDomino
	ModePixel
)

func (m Mode) String() string {
	switch m {
	case ModeGlyph:
		return "glyph"
	case ModeDomino:
		return "domino"
	case ModePixel:
		return "pixel"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode accepts the names returned by Mode.String.
func ParseMode(s string) (Mode, error) {
	for _, m := range []Mode{ModeGlyph, ModeDomino, ModePixel} {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown pattern mode %q", s)
}

// Length is the number of pattern steps before the index wraps.
func (m Mode) Length() int {
	switch m {
	case ModeDomino:
		return render.DominoLength
	case ModePixel:
		return render.PixelLength
	}
	return render.GlyphLength
}

// Cadence is the number of frame swaps each step is shown for.
func (m Mode) Cadence(freq int) int {
	n := TraceSteps[freq&0xF]
	if m == ModeGlyph {
		return 8 * n
	}
	return n
}

// State is the debounce state.
type State int

const (
	Idle State = iota
	KeyDetected
	Debouncing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case KeyDetected:
		return "key"
	case Debouncing:
		return "debounce"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Frame is the decision for one buffer half.
type Frame struct {
	// Blank halves are zeroed, both grayscale and audio.
	Blank bool

	Mode      Mode
	Pattern   int
	FreqIndex int
	ToneStep  uint16
}

// Machine owns the keypad and pattern state. It is not safe for concurrent
// use; the foreground loop is its only caller.
type Machine struct {
	alternate Mode

	state    State
	active   bool
	debounce int
	key      int

	mode    Mode
	pattern int
	freq    int
	cadence int
}

// New creates a machine at rest in glyph mode. Completed presses toggle
// between glyph mode and alternate.
func New(alternate Mode) *Machine {
	if alternate == ModeGlyph {
		alternate = ModeDomino
	}
	return &Machine{
		alternate: alternate,
		mode:      ModeGlyph,
		cadence:   TraceSteps[0],
	}
}

// Step advances the machine by one frame swap using the key code scanned
// for that swap.
func (m *Machine) Step(code keypad.Code) Frame {
	fresh := false
	if code.Valid() {
		fresh = !m.active
		m.debounce = DebounceFrames
		m.active = true
		m.key = code.Value()
		m.state = KeyDetected
	} else if m.active {
		m.state = Debouncing
	}

	if m.debounce > 0 {
		m.debounce--
		if m.debounce == 0 {
			m.active = false
			m.toggleMode()
		}
	}

	if !m.active {
		m.state = Idle
		m.pattern = 0
		return Frame{Blank: true, Mode: m.mode, FreqIndex: m.freq, ToneStep: sine.ToneSteps[m.freq]}
	}

	m.freq = m.key
	if fresh {
		m.cadence = m.mode.Cadence(m.freq)
	}
	if m.pattern >= m.mode.Length() {
		m.pattern = 0
	}

	f := Frame{
		Mode:      m.mode,
		Pattern:   m.pattern,
		FreqIndex: m.freq,
		ToneStep:  sine.ToneSteps[m.freq],
	}

	if m.cadence > 0 {
		m.cadence--
	}
	if m.cadence == 0 {
		m.pattern = (m.pattern + 1) % m.mode.Length()
		m.cadence = m.mode.Cadence(m.freq)
	}

	return f
}

func (m *Machine) toggleMode() {
	if m.mode == ModeGlyph {
		m.mode = m.alternate
	} else {
		m.mode = ModeGlyph
	}
}

// State is the current debounce state.
func (m *Machine) State() State { return m.state }

// Mode is the renderer that the next press will use.
func (m *Machine) Mode() Mode { return m.mode }

// Pattern is the current pattern index.
func (m *Machine) Pattern() int { return m.pattern }

// FreqIndex is the current frequency selection.
func (m *Machine) FreqIndex() int { return m.freq }

// Cadence is the number of frame swaps until the pattern advances.
func (m *Machine) Cadence() int { return m.cadence }

// Debounce is the remaining debounce window.
func (m *Machine) Debounce() int { return m.debounce }

// Active reports whether a press is still within its debounce window.
func (m *Machine) Active() bool { return m.active }
