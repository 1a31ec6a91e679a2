package sine

// ToneSteps holds the phase increment per 16 kHz sample for each of the 16
// keypad frequencies, 366 Hz up to 4883 Hz.
var ToneSteps = [16]uint16{
	1500, 1783, 2119, 2518,
	2993, 3557, 4227, 5024,
	5791, 7097, 8434, 10024,
	11914, 14159, 16828, 20000,
}

// Oscillator is a phase accumulator producing offset sine samples.
type Oscillator struct {
	Phase uint16
	Step  uint16

	// samples are Center + Approx(phase, Scale)
	Center int32
	Scale  int32
}

// Next returns the sample at the current phase and advances the phase.
func (o *Oscillator) Next() uint32 {
	v := o.Center + Approx(o.Phase, o.Scale)
	o.Phase += o.Step
	if v < 0 {
		return 0
	}
	return uint32(v)
}

// Fill writes len(dst) consecutive samples.
func (o *Oscillator) Fill(dst []uint32) {
	for i := range dst {
		dst[i] = o.Next()
	}
}

// Frequency returns the tone frequency in Hz for a phase step at the given
// sample rate.
func Frequency(step uint16, sampleRate int) float64 {
	return float64(step) * float64(sampleRate) / 65536
}
