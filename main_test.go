package main

import (
	"errors"
	"strings"
	"testing"

	"go-ledtone/engine"
)

func TestCloseAllReverseOrder(t *testing.T) {
	var order []string
	mk := func(name string, err error) closer {
		return closer{name, func() error {
			order = append(order, name)
			return err
		}}
	}

	failed := closeAll([]closer{
		mk("out.wav", nil),
		mk("hardware", errors.New("spi busy")),
		mk("keypad", nil),
	})
	if failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
	if got := strings.Join(order, ","); got != "keypad,hardware,out.wav" {
		t.Errorf("close order %s", got)
	}
}

func TestExitStatsLine(t *testing.T) {
	s := engine.NewState()
	sched := &engine.Scheduler{}

	tests := []struct {
		name  string
		stats exitStats
		want  []string
		not   []string
	}{
		{"sim", exitStats{}, []string{"ticks=0", "overruns=0"}, []string{"underruns", "board_errors"}},
		{"play", exitStats{underruns: func() uint64 { return 7 }}, []string{"underruns=7"}, []string{"board_errors"}},
		{"gpio", exitStats{boardErrors: func() uint64 { return 3 }}, []string{"board_errors=3"}, []string{"underruns"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := tt.stats.line(sched, s)
			for _, w := range tt.want {
				if !strings.Contains(line, w) {
					t.Errorf("%q missing %q", line, w)
				}
			}
			for _, n := range tt.not {
				if strings.Contains(line, n) {
					t.Errorf("%q has %q", line, n)
				}
			}
		})
	}
}
