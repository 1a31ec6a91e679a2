package audio

import (
	"context"
	"fmt"
	"io"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"go-ledtone/debug"
)

// Recorder writes the DAC stream to a 16-bit mono WAV file.
type Recorder struct {
	ring   *Ring
	enc    *wav.Encoder
	period uint32
	rate   int

	chunk   []int16
	buf     *goaudio.IntBuffer
	written uint64
}

// NewRecorder creates a recorder for compare values with the given PWM
// period, sampled at rate Hz.
func NewRecorder(w io.WriteSeeker, rate int, period uint32) *Recorder {
	const chunk = 2048
	return &Recorder{
		ring:   NewRing(16 * chunk),
		enc:    wav.NewEncoder(w, rate, 16, 1, 1),
		period: period,
		rate:   rate,
		chunk:  make([]int16, chunk),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: 1, SampleRate: rate},
			Data:           make([]int, 0, chunk),
			SourceBitDepth: 16,
		},
	}
}

// PutSample queues one compare value. It never blocks.
func (r *Recorder) PutSample(v uint32) {
	r.ring.Push(PCM(v, r.period))
}

// Run drains the queue into the file until the context is done, then
// finishes the file.
func (r *Recorder) Run(ctx context.Context) error {
	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			if err := r.drain(); err != nil {
				return err
			}
			return r.Close()
		case <-tick.C:
			if err := r.drain(); err != nil {
				return err
			}
		}
	}
}

func (r *Recorder) drain() error {
	for {
		n := r.ring.Pop(r.chunk)
		if n == 0 {
			return nil
		}
		r.buf.Data = r.buf.Data[:0]
		for _, s := range r.chunk[:n] {
			r.buf.Data = append(r.buf.Data, int(s))
		}
		if err := r.enc.Write(r.buf); err != nil {
			return fmt.Errorf("write wav: %w", err)
		}
		r.written += uint64(n)
	}
}

// Close flushes the remaining samples and writes the WAV header.
func (r *Recorder) Close() error {
	if err := r.drain(); err != nil {
		return err
	}
	if err := r.enc.Close(); err != nil {
		return fmt.Errorf("close wav: %w", err)
	}
	debug.Log("audio", "recorded %d samples (%.1fs), %d dropped",
		r.written, float64(r.written)/float64(r.rate), r.ring.Dropped())
	return nil
}

// Written is the number of samples in the file so far.
func (r *Recorder) Written() uint64 {
	return r.written
}
