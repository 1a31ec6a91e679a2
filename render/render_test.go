package render

import (
	"testing"

	"go-ledtone/font"
)

func TestWiringPresetsValid(t *testing.T) {
	for _, w := range []Wiring{Model1, Model2} {
		if err := w.Validate(); err != nil {
			t.Errorf("%s: %v", w.Name, err)
		}
	}

	bad := Model2
	bad.Blue[0] = bad.Red[0]
	if err := bad.Validate(); err == nil {
		t.Error("collision not detected")
	}
}

func TestByName(t *testing.T) {
	w, err := ByName("model1")
	if err != nil || w.Name != "model1" {
		t.Fatalf("model1: %v %v", w.Name, err)
	}
	if _, err := ByName("model3"); err == nil {
		t.Error("expected error for unknown model")
	}
}

// unused returns the slots that no color table refers to
func unused(w *Wiring) []int {
	var used [HalfWords]bool
	for col := 0; col < Columns; col++ {
		used[w.Red[col]] = true
		used[w.Green[col]] = true
		used[w.Blue[col]] = true
	}
	var out []int
	for i, u := range used {
		if !u {
			out = append(out, i)
		}
	}
	return out
}

func stale() Half {
	var h Half
	for i := range h {
		h[i] = 0xABC
	}
	return h
}

func TestRenderersLeaveNoStaleWords(t *testing.T) {
	for _, w := range []Wiring{Model1, Model2} {
		w := w
		renders := map[string]func(*Half){
			"glyph":  func(h *Half) { Glyph(&w, font.Basic, ' ', 3, Palette[0], h) },
			"pixel":  func(h *Half) { Pixel(&w, 63, 0, Palette[1], h) },
			"domino": func(h *Half) { Domino(&w, 15, h) },
		}
		for name, fn := range renders {
			h := stale()
			fn(&h)
			for i, v := range h {
				if v != 0 {
					t.Errorf("%s/%s: slot %d kept %#x", w.Name, name, i, v)
				}
			}
		}
		if len(unused(&w)) != HalfWords-3*Columns {
			t.Errorf("%s: expected %d unused slots", w.Name, HalfWords-3*Columns)
		}
	}
}

func TestGlyphRow(t *testing.T) {
	w := Model2
	var h Half
	// row 0 of 'A' is 0x0C: columns 2 and 3
	Glyph(&w, font.Basic, 'A', 0, Palette[0], &h)
	for col := 0; col < Columns; col++ {
		r, g, b := w.LED(&h, col)
		lit := col == 2 || col == 3
		if lit && (r != 0xFF0 || g != 0 || b != 0) {
			t.Errorf("col %d: got %#x %#x %#x", col, r, g, b)
		}
		if !lit && (r|g|b) != 0 {
			t.Errorf("col %d should be dark", col)
		}
	}
}

func TestGlyphChar(t *testing.T) {
	if GlyphChar(0) != 'A' || GlyphChar(25) != 'Z' || GlyphChar(26) != 'A' {
		t.Error("glyph pattern does not wrap A..Z")
	}
}

func TestPixel(t *testing.T) {
	w := Model1
	var h Half
	pixel := uint8(3<<3 | 5)
	for row := 0; row < Rows; row++ {
		Pixel(&w, pixel, row, Palette[2], &h)
		for col := 0; col < Columns; col++ {
			_, _, b := w.LED(&h, col)
			want := row == 3 && col == 5
			if (b != 0) != want {
				t.Errorf("row %d col %d lit=%v", row, col, b != 0)
			}
		}
	}
}

func TestCircleTraceInBounds(t *testing.T) {
	seen := map[uint8]bool{}
	for _, p := range CircleTrace {
		if p >= 64 {
			t.Errorf("pixel %d off the matrix", p)
		}
		if seen[p] {
			t.Errorf("pixel %d repeated", p)
		}
		seen[p] = true
	}
}

func TestDominoCycle(t *testing.T) {
	w := Model2
	var h Half
	colors := map[Color]bool{}
	for step := 0; step < DominoLength; step++ {
		Domino(&w, step, &h)
		n := step & 0xF
		lit := 0
		for col := 0; col < Columns; col++ {
			r, g, b := w.LED(&h, col)
			if r|g|b != 0 {
				lit++
				colors[FromIntensities(r, g, b)] = true
			}
		}
		want := n + 1
		if n >= 8 {
			want = 15 - n
		}
		if lit != want {
			t.Fatalf("step %d: %d columns lit, want %d", step, lit, want)
		}
	}
	if len(colors) != DominoLength/16 {
		t.Errorf("domino used %d colors", len(colors))
	}
	for i := 0; i < DominoLength/16; i++ {
		if !colors[Palette[i]] {
			t.Errorf("palette color %d skipped", i)
		}
	}
}

func TestDominoIncrementalEquivalence(t *testing.T) {
	// applying the single-column on/off rule step by step must match the
	// stateless picture
	var cols [Columns]bool
	for step := 0; step < DominoLength; step++ {
		if step&0x8 != 0 {
			cols[7-step&7] = false
		} else {
			cols[step&7] = true
		}
		for col := 0; col < Columns; col++ {
			if cols[col] != DominoLit(step, col) {
				t.Fatalf("step %d col %d differs", step, col)
			}
		}
	}
}

func TestColorRoundTrip(t *testing.T) {
	for _, c := range Palette {
		r, g, b := c.Intensities()
		if FromIntensities(r, g, b) != c {
			t.Errorf("%#06x did not survive", uint32(c))
		}
		if r > 0xFFF || g > 0xFFF || b > 0xFFF {
			t.Errorf("%#06x exceeds 12 bits", uint32(c))
		}
	}
}
