package engine

import (
	"context"
	"runtime"
	"time"

	"go-ledtone/debug"
)

// Scheduler calls a tick function at a fixed rate from wall clock time.
// There is no timer interrupt to hang the tick on, so it runs on a locked
// OS thread and catches up in bursts when it was descheduled.
type Scheduler struct {
	Tick func()
	Rate int

	// MaxBurst bounds how many late ticks are run back to back. Older
	// ticks are dropped.
	MaxBurst int

	// Slack is the minimum distance to the next tick worth sleeping for.
	Slack time.Duration

	ticks   uint64
	dropped uint64
}

// NewScheduler creates a scheduler for t at the given rate in Hz.
func NewScheduler(t *Timing, rate int) *Scheduler {
	if rate <= 0 {
		rate = Rate
	}
	return &Scheduler{
		Tick:     t.Tick,
		Rate:     rate,
		MaxBurst: HalfWords,
		Slack:    2 * time.Millisecond,
	}
}

// Run ticks until the context is done.
func (s *Scheduler) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	period := time.Second / time.Duration(s.Rate)
	start := time.Now()
	debug.Log("engine", "scheduler started: %d Hz, period %v", s.Rate, period)

	for {
		select {
		case <-ctx.Done():
			debug.Log("engine", "scheduler stopped after %d ticks, %d dropped", s.ticks, s.dropped)
			return ctx.Err()
		default:
		}

		due := uint64(time.Since(start) / period)
		if behind := due - s.ticks; due > s.ticks && behind > uint64(s.MaxBurst) {
			skip := behind - uint64(s.MaxBurst)
			s.ticks += skip
			s.dropped += skip
			debug.LogEvery(100, "engine", "scheduler late: dropped %d ticks (%d total)", skip, s.dropped)
		}
		for s.ticks < due {
			s.Tick()
			s.ticks++
		}

		next := start.Add(time.Duration(s.ticks+1) * period)
		if wait := time.Until(next); wait > s.Slack {
			time.Sleep(wait - s.Slack)
		}
	}
}

// Ticks is the number of ticks run or dropped so far. Only valid after Run
// has returned.
func (s *Scheduler) Ticks() (run, dropped uint64) {
	return s.ticks - s.dropped, s.dropped
}
