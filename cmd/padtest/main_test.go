package main

import (
	"context"
	"testing"
	"time"

	"go-ledtone/pattern"
	"go-ledtone/render"
)

func TestShowMode(t *testing.T) {
	tests := []struct {
		name  string
		model render.Wiring
		mode  pattern.Mode
	}{
		{"glyph on model2", render.Model2, pattern.ModeGlyph},
		{"domino on model2", render.Model2, pattern.ModeDomino},
		{"pixel on model1", render.Model1, pattern.ModePixel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			w := tt.model
			r := startSim(ctx, &w, tt.mode)
			if err := r.show(ctx, tt.mode, '1'); err != nil {
				t.Fatalf("show(%s): %v", tt.mode, err)
			}

			// the key is held, so the mode stays put
			time.Sleep(200 * time.Millisecond)
			st := r.loop.Status()
			if st.Blank || st.Mode != tt.mode {
				t.Errorf("status = blank %v mode %s, want lit %s", st.Blank, st.Mode, tt.mode)
			}

			cancel()
			r.wait()
			if run, _ := r.sched.Ticks(); run == 0 {
				t.Error("scheduler never ticked")
			}
		})
	}
}
