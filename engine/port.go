package engine

import "time"

// Serial streams 12-bit grayscale words to the LED driver chain.
type Serial interface {
	// SendWord queues one word. It must not block.
	SendWord(w uint16)
	// WaitIdle blocks until every queued word has been shifted out.
	WaitIdle()
}

// DAC is the PWM audio output.
type DAC interface {
	SetAudioCompare(v uint32)
}

// Display drives the control lines of the LED driver chain and the row
// driver.
type Display interface {
	SetRowDriveLine(code uint8)
	AssertLatch()
	DeassertLatch()
	AssertBlank()
	DeassertBlank()
	AssertMode()
	DeassertMode()
}

// Port is everything the timing engine writes to.
type Port interface {
	Serial
	DAC
	Display
}

// Waiter holds the control lines for a minimum pulse width.
type Waiter interface {
	WaitAtLeast(d time.Duration)
}

// SpinWaiter busy-waits. Sleeping is far too coarse for pulse widths in
// the sub-microsecond range.
type SpinWaiter struct{}

func (SpinWaiter) WaitAtLeast(d time.Duration) {
	if d <= 0 {
		return
	}
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
	}
}

// WaiterFunc adapts a function to Waiter.
type WaiterFunc func(d time.Duration)

func (f WaiterFunc) WaitAtLeast(d time.Duration) { f(d) }
