package audio

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"

	"go-ledtone/debug"
)

// Player plays the DAC stream on the default output device.
type Player struct {
	ctx    *oto.Context
	player *oto.Player
	stream *stream
}

// NewPlayer opens the audio device. The ring should hold a few frames of
// samples; more adds latency.
func NewPlayer(rate int, period uint32, latency time.Duration) (*Player, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   latency,
	})
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	s := &stream{
		ring:   NewRing(int(latency.Seconds()*float64(rate)) * 4),
		period: period,
	}
	p := &Player{ctx: ctx, stream: s}
	p.player = ctx.NewPlayer(s)
	p.player.Play()
	debug.Log("audio", "playback at %d Hz, buffer %v", rate, latency)
	return p, nil
}

// PutSample queues one compare value. It never blocks.
func (p *Player) PutSample(v uint32) {
	p.stream.put(v)
}

// Underruns counts samples the device asked for that were not there yet.
func (p *Player) Underruns() uint64 {
	return p.stream.underruns.Load()
}

// Close stops playback.
func (p *Player) Close() error {
	err := p.player.Close()
	debug.Log("audio", "playback stopped, %d underruns, %d dropped", p.stream.underruns.Load(), p.stream.ring.Dropped())
	return err
}

// stream is the io.Reader oto pulls from.
type stream struct {
	ring   *Ring
	period uint32
	dc     dcBlock

	scratch   []int16
	underruns atomic.Uint64
}

func (s *stream) put(v uint32) {
	s.ring.Push(PCM(v, s.period))
}

// Read fills p with little-endian samples, padding with silence when the
// ring runs dry.
func (s *stream) Read(p []byte) (int, error) {
	n := len(p) / 2
	if cap(s.scratch) < n {
		s.scratch = make([]int16, n)
	}
	buf := s.scratch[:n]
	got := s.ring.Pop(buf)
	for i := got; i < n; i++ {
		buf[i] = 0
	}
	s.underruns.Add(uint64(n - got))
	for i, v := range buf {
		if i < got {
			v = s.dc.next(v)
		}
		binary.LittleEndian.PutUint16(p[2*i:], uint16(v))
	}
	return 2 * n, nil
}
