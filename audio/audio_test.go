package audio

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
)

func TestRing(t *testing.T) {
	r := NewRing(5)
	if len(r.buf) != 8 {
		t.Fatalf("ring size %d, want 8", len(r.buf))
	}
	for i := 0; i < 10; i++ {
		r.Push(int16(i))
	}
	if r.Len() != 8 || r.Dropped() != 2 {
		t.Fatalf("len %d dropped %d", r.Len(), r.Dropped())
	}

	dst := make([]int16, 3)
	if n := r.Pop(dst); n != 3 || dst[0] != 0 || dst[2] != 2 {
		t.Fatalf("pop = %d %v", n, dst)
	}
	r.Push(100)
	rest := make([]int16, 16)
	n := r.Pop(rest)
	want := []int16{3, 4, 5, 6, 7, 100}
	if n != len(want) {
		t.Fatalf("pop = %d, want %d", n, len(want))
	}
	for i, v := range want {
		if rest[i] != v {
			t.Errorf("sample %d = %d, want %d", i, rest[i], v)
		}
	}
}

func TestPCM(t *testing.T) {
	tests := []struct {
		v    uint32
		want int16
	}{
		{1250, 0},
		{0, -32767},
		{2500, 32767},
		{9999, 32767},
		{1875, 16383},
	}
	for _, tt := range tests {
		if got := PCM(tt.v, 2500); got != tt.want {
			t.Errorf("PCM(%d) = %d, want %d", tt.v, got, tt.want)
		}
	}
	if PCM(5, 0) != 0 {
		t.Error("zero period")
	}
}

func TestRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	rec := NewRecorder(f, 16000, 2500)
	for i := 0; i < 5000; i++ {
		rec.PutSample(uint32(i % 2500))
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := rec.Run(ctx); err != context.Canceled && err != nil {
		t.Fatalf("Run = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	if rec.Written() != 5000 {
		t.Errorf("written %d", rec.Written())
	}

	in, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()
	d := wav.NewDecoder(in)
	if !d.IsValidFile() {
		t.Fatal("not a valid wav file")
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if d.SampleRate != 16000 || d.BitDepth != 16 || d.NumChans != 1 {
		t.Errorf("format %d Hz %d bit %d ch", d.SampleRate, d.BitDepth, d.NumChans)
	}
	if len(buf.Data) != 5000 {
		t.Fatalf("%d samples in file", len(buf.Data))
	}
	if buf.Data[1250] != 0 || buf.Data[0] != -32767 {
		t.Errorf("samples %d %d", buf.Data[0], buf.Data[1250])
	}
}

func TestStreamRead(t *testing.T) {
	s := &stream{ring: NewRing(64), period: 2500}
	for i := 0; i < 4; i++ {
		s.put(1250)
	}
	p := make([]byte, 16)
	n, err := s.Read(p)
	if n != 16 || err != nil {
		t.Fatalf("Read = %d, %v", n, err)
	}
	for i := 0; i < 8; i++ {
		if v := int16(binary.LittleEndian.Uint16(p[2*i:])); v != 0 {
			t.Errorf("sample %d = %d", i, v)
		}
	}
	if s.underruns.Load() != 4 {
		t.Errorf("underruns = %d, want 4", s.underruns.Load())
	}
}

func TestDCBlockSettles(t *testing.T) {
	var f dcBlock
	var y int16
	for i := 0; i < 5000; i++ {
		y = f.next(-32767)
	}
	if y < -100 || y > 100 {
		t.Errorf("dc not removed: %d", y)
	}
}
