// Package board implements the engine's port on a simulated driver chain
// and on Linux hardware.
package board

import (
	"sync"
	"sync/atomic"

	"go-ledtone/render"
)

// Channels is the number of outputs in the two-chip driver chain.
const Channels = 2 * 16

// SampleSink receives every audio compare value. Implementations are called
// from the tick and must not block.
type SampleSink interface {
	PutSample(v uint32)
}

// Frame is the 8x8 RGB picture, indexed [row][col].
type Frame [render.Rows][render.Columns][3]uint8

// PadGrid returns the frame bottom row first, the way pad grids count rows.
func (f Frame) PadGrid() [render.Rows][render.Columns][3]uint8 {
	var g [render.Rows][render.Columns][3]uint8
	for row := range f {
		g[render.Rows-1-row] = f[row]
	}
	return g
}

// Sim models two daisy-chained TLC5941 drivers behind a row driver, plus the
// PWM audio output. Words shift in MSB first through channel 0 towards
// channel 31, so the first word of a 32-word frame lands on channel 31.
//
// The port methods belong to the timing goroutine. Frame and Stats may be
// called from anywhere.
type Sim struct {
	wiring *render.Wiring
	sink   SampleSink

	shift [Channels]uint16
	gs    [Channels]uint16
	dc    [Channels]uint8

	latch, blank, mode bool
	row                int
	queued             int

	words   atomic.Uint64
	samples atomic.Uint64
	compare atomic.Uint32

	mu    sync.Mutex
	frame Frame
	stats Stats
}

// Stats counts what the chain has seen.
type Stats struct {
	Words    uint64
	Latches  uint64
	DCWrites uint64
	Rows     uint64
	BadRows  uint64
	Samples  uint64
	Compare  uint32
	Row      int
	Blank    bool
}

// NewSim creates a simulated board. sink may be nil.
func NewSim(w *render.Wiring, sink SampleSink) *Sim {
	return &Sim{wiring: w, sink: sink, row: -1, blank: true}
}

// SendWord implements engine.Serial.
func (s *Sim) SendWord(w uint16) {
	copy(s.shift[1:], s.shift[:Channels-1])
	s.shift[0] = w & 0xFFF
	s.queued++
	s.words.Add(1)
}

// WaitIdle implements engine.Serial. Simulated words arrive instantly.
func (s *Sim) WaitIdle() {
	s.queued = 0
}

// SetAudioCompare implements engine.DAC.
func (s *Sim) SetAudioCompare(v uint32) {
	s.compare.Store(v)
	s.samples.Add(1)
	if s.sink != nil {
		s.sink.PutSample(v)
	}
}

// SetRowDriveLine implements engine.Display. The driven row shows the
// grayscale registers latched last.
func (s *Sim) SetRowDriveLine(code uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.row = s.wiring.RowOf(code)
	s.stats.Rows++
	if s.row < 0 {
		s.stats.BadRows++
		return
	}
	half := s.half()
	for col := 0; col < render.Columns; col++ {
		r, g, b := s.wiring.LED(&half, col)
		s.frame[s.row][col] = render.FromIntensities(r, g, b).RGB()
	}
}

// AssertLatch implements engine.Display. The rising edge copies the shift
// register into the grayscale registers, or into the dot correction
// registers while MODE is high.
func (s *Sim) AssertLatch() {
	if s.latch {
		return
	}
	s.latch = true
	s.queued = 0

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode {
		// 16 words of two 6-bit values each
		for i := 0; i < Channels/2; i++ {
			s.dc[2*i] = uint8(s.shift[i] & 0x3F)
			s.dc[2*i+1] = uint8(s.shift[i] >> 6 & 0x3F)
		}
		s.stats.DCWrites++
		return
	}
	s.gs = s.shift
	s.stats.Latches++
}

func (s *Sim) DeassertLatch() { s.latch = false }

func (s *Sim) AssertBlank() {
	s.blank = true
	s.mu.Lock()
	s.stats.Blank = true
	s.mu.Unlock()
}

func (s *Sim) DeassertBlank() {
	s.blank = false
	s.mu.Lock()
	s.stats.Blank = false
	s.mu.Unlock()
}

func (s *Sim) AssertMode()   { s.mode = true }
func (s *Sim) DeassertMode() { s.mode = false }

// half converts the grayscale registers back to buffer slot order.
func (s *Sim) half() render.Half {
	var h render.Half
	for k := range h {
		h[k] = s.gs[Channels-1-k]
	}
	return h
}

// Frame returns the current picture.
func (s *Sim) Frame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// Stats returns the counters.
func (s *Sim) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats
	st.Words = s.words.Load()
	st.Samples = s.samples.Load()
	st.Compare = s.compare.Load()
	st.Row = s.row
	return st
}

// Grayscale returns the latched grayscale registers by channel.
func (s *Sim) Grayscale() [Channels]uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gs
}

// DotCorrection returns the dot correction registers by channel.
func (s *Sim) DotCorrection() [Channels]uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dc
}
