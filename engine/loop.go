package engine

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"go-ledtone/font"
	"go-ledtone/keypad"
	"go-ledtone/pattern"
	"go-ledtone/render"
	"go-ledtone/sine"
)

// Status is a snapshot of the foreground state for displays.
type Status struct {
	State     pattern.State
	Mode      pattern.Mode
	Pattern   int
	FreqIndex int
	Key       keypad.Code
	Blank     bool
	Swaps     uint64
	Overruns  uint64
}

// Loop is the foreground: it refills the fillable half at every frame swap.
type Loop struct {
	state   *State
	wiring  *render.Wiring
	scanner keypad.Scanner
	machine *pattern.Machine
	bitmap  font.Bitmap
	osc     sine.Oscillator

	// GlyphColor and PixelColor color the single-color traces.
	GlyphColor render.Color
	PixelColor render.Color

	// Poll is how long Run sleeps when no swap is pending. Zero spins.
	Poll time.Duration

	status atomic.Uint64
}

// NewLoop creates the foreground loop. The tone continues from where the
// Setup preload stopped, so create it after Setup.
func NewLoop(s *State, w *render.Wiring, scanner keypad.Scanner, m *pattern.Machine, bitmap font.Bitmap) *Loop {
	if bitmap == nil {
		bitmap = font.Basic
	}
	l := &Loop{
		state:      s,
		wiring:     w,
		scanner:    scanner,
		machine:    m,
		bitmap:     bitmap,
		osc:        sine.Oscillator{Phase: s.phase, Step: sine.ToneSteps[0], Center: DACCenter, Scale: DACScale},
		GlyphColor: render.Palette[0],
		PixelColor: render.Palette[1],
	}
	l.publish(pattern.Frame{Blank: true}, keypad.None)
	return l
}

// Service refills the fillable half if a frame swap is pending. It reports
// whether it did any work.
func (l *Loop) Service() bool {
	if !l.state.Pending() {
		return false
	}
	f := l.state.Fillable()

	code := l.scanner.Scan()
	fr := l.machine.Step(code)

	if fr.Blank {
		clear(f.Gray[:])
		clear(f.Audio[:])
	} else {
		l.render(fr, f)
		l.osc.Step = fr.ToneStep
		l.osc.Fill(f.Audio[:])
	}

	l.state.Complete(f)
	l.publish(fr, code)
	return true
}

func (l *Loop) render(fr pattern.Frame, f Fill) {
	switch fr.Mode {
	case pattern.ModeDomino:
		render.Domino(l.wiring, fr.Pattern, &f.Gray)
	case pattern.ModePixel:
		render.Pixel(l.wiring, render.CircleTrace[fr.Pattern%render.PixelLength], f.Row, l.PixelColor, &f.Gray)
	default:
		render.Glyph(l.wiring, l.bitmap, render.GlyphChar(fr.Pattern), f.Row, l.GlyphColor, &f.Gray)
	}
}

// Run services frame swaps until the context is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if l.Service() {
			continue
		}
		if l.Poll > 0 {
			time.Sleep(l.Poll)
		} else {
			runtime.Gosched()
		}
	}
}

// status layout, low bit first: blank:1 state:2 mode:2 pattern:6 freq:4 key:8
func (l *Loop) publish(fr pattern.Frame, code keypad.Code) {
	var v uint64
	if fr.Blank {
		v = 1
	}
	v |= uint64(l.machine.State()&3) << 1
	v |= uint64(fr.Mode&3) << 3
	v |= uint64(fr.Pattern&0x3F) << 5
	v |= uint64(fr.FreqIndex&0xF) << 11
	v |= uint64(code) << 15
	l.status.Store(v)
}

// Status returns the state published by the last Service. It is safe to
// call from any goroutine.
func (l *Loop) Status() Status {
	v := l.status.Load()
	return Status{
		Blank:     v&1 != 0,
		State:     pattern.State(v >> 1 & 3),
		Mode:      pattern.Mode(v >> 3 & 3),
		Pattern:   int(v >> 5 & 0x3F),
		FreqIndex: int(v >> 11 & 0xF),
		Key:       keypad.Code(v >> 15 & 0xFF),
		Swaps:     l.state.Swaps(),
		Overruns:  l.state.Overruns(),
	}
}
