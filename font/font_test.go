package font

import "testing"

func TestGlyphLookup(t *testing.T) {
	if g := Basic.Glyph('A'); g != glyphs['A'-First] {
		t.Fatalf("A = %v", g)
	}
	if g := Basic.Glyph(' '); g != ([8]byte{}) {
		t.Errorf("space is not blank: %v", g)
	}
	for _, c := range []byte{0, 10, 31, 128, 255} {
		if g := Basic.Glyph(c); g != ([8]byte{}) {
			t.Errorf("code %d should be blank, got %v", c, g)
		}
	}
}

func TestLettersHaveInk(t *testing.T) {
	for c := byte('A'); c <= 'Z'; c++ {
		g := Basic.Glyph(c)
		lit := 0
		for _, row := range g {
			for b := 0; b < 8; b++ {
				if row&(1<<b) != 0 {
					lit++
				}
			}
		}
		if lit < 8 {
			t.Errorf("%c has only %d pixels", c, lit)
		}
		if g[7] != 0 {
			t.Errorf("%c uses the descender row", c)
		}
	}
}
