package audio

// PCM maps a PWM compare value to a signed 16-bit sample. Half the period is
// silence; zero and the full period are the rails.
func PCM(v, period uint32) int16 {
	if period == 0 {
		return 0
	}
	if v > period {
		v = period
	}
	return int16((int64(2*v) - int64(period)) * 32767 / int64(period))
}

// dcBlock is a one-pole high-pass filter. The DAC output idles at the low
// rail when blanked; speakers should not see that as a step.
type dcBlock struct {
	x1, y1 float64
}

func (f *dcBlock) next(x int16) int16 {
	y := float64(x) - f.x1 + 0.995*f.y1
	f.x1, f.y1 = float64(x), y
	switch {
	case y > 32767:
		return 32767
	case y < -32768:
		return -32768
	}
	return int16(y)
}
