package engine

import (
	"time"

	"go-ledtone/debug"
	"go-ledtone/sine"
)

const (
	// DotCorrectionWord packs two 6-bit dot correction values of 8, 1/8 of
	// the maximum drive current.
	DotCorrectionWord = 0x208
	// DotCorrectionWords covers both driver chips.
	DotCorrectionWords = 16

	dotCorrectionSettle = 10 * time.Microsecond
)

// Setup brings the driver chain into grayscale mode and the shared state to
// idle. The timing engine must not be running.
func Setup(s *State, port Port, wait Waiter) {
	if wait == nil {
		wait = SpinWaiter{}
	}

	port.AssertMode()
	port.DeassertLatch()
	port.AssertBlank()
	debug.Log("engine", "driver controls configured")

	for i := 0; i < DotCorrectionWords; i++ {
		port.SendWord(DotCorrectionWord)
	}
	port.WaitIdle()
	wait.WaitAtLeast(dotCorrectionSettle)
	port.AssertLatch()
	wait.WaitAtLeast(DefaultMinPulse)
	port.DeassertLatch()
	debug.Log("engine", "dot correction written")

	s.Reset()
	port.DeassertMode()

	osc := sine.Oscillator{Step: sine.ToneSteps[0], Center: DACCenter, Scale: DACScale}
	for h := 0; h < 2; h++ {
		osc.Fill(s.preload(h).Audio[:])
	}
	s.phase = osc.Phase
	debug.Log("engine", "audio buffer preloaded at %.0f Hz", sine.Frequency(sine.ToneSteps[0], Rate))
}
