// Package engine runs the display and tone generator: the shared double
// buffer, the tick-driven timing engine that streams it out, and the
// foreground loop that refills it.
package engine

import (
	"sync/atomic"

	"go-ledtone/render"
)

const (
	// BufferWords is the length of the grayscale and audio buffers.
	BufferWords = 2 * HalfWords
	// HalfWords is the length of one buffer half and the number of ticks
	// between frame swaps.
	HalfWords = render.HalfWords

	// DACPeriod is the PWM period of the audio output in timer counts.
	DACPeriod = 2500
	// DACCenter is the compare value of silence.
	DACCenter = DACPeriod / 2
	// DACScale is the tone amplitude, 0.45 of the period.
	DACScale = DACPeriod * 45 / 100

	// Rate is the tick rate in Hz.
	Rate = 16000
)

// Half is one half of the grayscale and audio buffers.
type Half struct {
	Gray  render.Half
	Audio [HalfWords]uint32
}

// State is the state shared between the timing engine and the foreground
// loop. At any moment one half is active and belongs to the timing engine;
// the other is fillable and belongs to the foreground. The timing engine
// hands a half over at every frame swap.
type State struct {
	halves [2]Half

	// ticks counts every tick since start. The low six bits are the cycle
	// index, so bit 5 selects the active half and ticks>>5 counts frame
	// swaps.
	ticks atomic.Uint64

	// rows is the matrix row selected while each half is active.
	rows [2]atomic.Uint32

	// flag is raised at each frame swap and cleared by the foreground once
	// it has refilled the vacated half.
	flag atomic.Bool

	// filled is the swap count at which the foreground last completed a
	// fill.
	filled   atomic.Uint64
	overruns atomic.Uint64

	// phase is where the preloaded tone stopped. Setup only.
	phase uint16
}

// NewState returns the idle state: cursor at zero, both halves zeroed and
// row 0 selected.
func NewState() *State {
	return &State{}
}

// CycleIndex is the cursor into the 64-slot buffers.
func (s *State) CycleIndex() int {
	return int(s.ticks.Load() & (BufferWords - 1))
}

// Swaps is the number of frame swaps so far.
func (s *State) Swaps() uint64 {
	return s.ticks.Load() >> 5
}

// Pending reports whether the cycle boundary flag is raised.
func (s *State) Pending() bool {
	return s.flag.Load()
}

// Overruns counts frame swaps that found their half not yet refilled.
// Each one streamed stale or partly written data.
func (s *State) Overruns() uint64 {
	return s.overruns.Load()
}

// Row is the matrix row currently driven.
func (s *State) Row() int {
	return int(s.rows[(s.ticks.Load()>>5)&1].Load())
}

// ActiveView is the timing engine's read-only view of the active half.
type ActiveView struct {
	h   *Half
	row uint8
}

// Word is the grayscale word at slot k.
func (v ActiveView) Word(k int) uint16 { return v.h.Gray[k&(HalfWords-1)] }

// Sample is the audio compare value at slot k.
func (v ActiveView) Sample(k int) uint32 { return v.h.Audio[k&(HalfWords-1)] }

// Row is the matrix row driven while the half is active.
func (v ActiveView) Row() uint8 { return v.row }

// Active returns the half being streamed. Only the timing engine may call
// it.
func (s *State) Active() ActiveView {
	h := (s.ticks.Load() >> 5) & 1
	return ActiveView{h: &s.halves[h], row: uint8(s.rows[h].Load())}
}

// Fill is the foreground's view of the fillable half.
type Fill struct {
	*Half

	// Row is the matrix row the half's words will be latched for. A half is
	// streamed while active and latched at the swap that ends it, by which
	// time the row has moved on twice from the currently active one.
	Row int

	// seq is the swap the fill answers.
	seq uint64
}

// Fillable returns the half the foreground may write. Only the foreground
// may call it, and only until it calls Complete.
func (s *State) Fillable() Fill {
	seq := s.ticks.Load() >> 5
	active := seq & 1
	row := (s.rows[active].Load() + 2) & (render.Rows - 1)
	return Fill{Half: &s.halves[active^1], Row: int(row), seq: seq}
}

// Complete hands a filled half back and clears the cycle boundary flag.
// If another swap happened meanwhile the flag stays raised.
func (s *State) Complete(f Fill) {
	s.filled.Store(f.seq)
	s.flag.Store(false)
	if s.ticks.Load()>>5 != f.seq {
		s.flag.Store(true)
	}
}

// Reset zeroes both halves and the counters. It must only be called while
// no timing engine is running.
func (s *State) Reset() {
	s.halves = [2]Half{}
	s.ticks.Store(0)
	s.rows[0].Store(0)
	s.rows[1].Store(0)
	s.flag.Store(false)
	s.filled.Store(0)
	s.overruns.Store(0)
	s.phase = 0
}

// preload writes a half directly. Setup only.
func (s *State) preload(h int) *Half {
	return &s.halves[h&1]
}
