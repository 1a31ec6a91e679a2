// Package audio turns the DAC compare stream into PCM for recording and
// live playback.
package audio

import "sync/atomic"

// Ring is a single-producer single-consumer sample queue. Push never blocks;
// when the ring is full the sample is dropped.
type Ring struct {
	buf  []int16
	mask uint64

	head    atomic.Uint64 // next write
	tail    atomic.Uint64 // next read
	dropped atomic.Uint64
}

// NewRing creates a ring holding at least size samples.
func NewRing(size int) *Ring {
	n := 1
	for n < size {
		n <<= 1
	}
	return &Ring{buf: make([]int16, n), mask: uint64(n - 1)}
}

// Push appends a sample.
func (r *Ring) Push(v int16) bool {
	h := r.head.Load()
	if h-r.tail.Load() > r.mask {
		r.dropped.Add(1)
		return false
	}
	r.buf[h&r.mask] = v
	r.head.Store(h + 1)
	return true
}

// Pop moves up to len(dst) samples into dst.
func (r *Ring) Pop(dst []int16) int {
	t := r.tail.Load()
	n := int(r.head.Load() - t)
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = r.buf[(t+uint64(i))&r.mask]
	}
	r.tail.Store(t + uint64(n))
	return n
}

// Len is the number of queued samples.
func (r *Ring) Len() int {
	return int(r.head.Load() - r.tail.Load())
}

// Dropped counts samples lost to a full ring.
func (r *Ring) Dropped() uint64 {
	return r.dropped.Load()
}
