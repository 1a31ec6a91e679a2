package render

import "go-ledtone/font"

// Pattern lengths of the trace strategies.
const (
	GlyphLength  = 26 // 'A' to 'Z'
	DominoLength = 48
)

// Glyph lights the columns of one glyph row. Bit n of the glyph row is
// column n.
func Glyph(w *Wiring, bitmap font.Bitmap, char byte, row int, c Color, half *Half) {
	clear(half[:])
	bits := bitmap.Glyph(char)[row&(Rows-1)]
	for col := 0; col < Columns; col++ {
		if bits&(1<<col) != 0 {
			w.set(half, col, c)
		} else {
			w.set(half, col, Off)
		}
	}
}

// GlyphChar is the character shown for a glyph pattern index.
func GlyphChar(pattern int) byte {
	return byte('A' + pattern%GlyphLength)
}

// Pixel lights a single LED. The pixel index is row<<3 | col; nothing is lit
// unless the pixel lies in the given row.
func Pixel(w *Wiring, pixel uint8, row int, c Color, half *Half) {
	clear(half[:])
	prow := int(pixel>>3) & (Rows - 1)
	pcol := int(pixel) & (Columns - 1)
	for col := 0; col < Columns; col++ {
		if prow == row && pcol == col {
			w.set(half, col, c)
		} else {
			w.set(half, col, Off)
		}
	}
}

// CircleTrace is the pixel sequence of a circle traced clockwise from the
// top edge.
var CircleTrace = [20]uint8{
	2, 3, 4, 5, 14, 23, 31, 39, 47, 54,
	61, 60, 59, 58, 49, 40, 32, 24, 16, 9,
}

// PixelLength is the length of the circle trace.
const PixelLength = len(CircleTrace)

// Domino renders one step of the domino trace. Each 16-step block uses one
// palette color: steps 0-7 switch columns on left to right, steps 8-15
// switch them off again from the right. The picture depends only on the
// step, so every row shows the same bars.
func Domino(w *Wiring, step int, half *Half) {
	clear(half[:])
	c := Palette[(step>>4)%len(Palette)]
	for col := 0; col < Columns; col++ {
		if DominoLit(step, col) {
			w.set(half, col, c)
		} else {
			w.set(half, col, Off)
		}
	}
}

// DominoLit reports whether a column is on after the given step.
func DominoLit(step, col int) bool {
	n := step & 0xF
	if n&0x8 == 0 {
		// filling: the column step&7 was just switched on
		return col <= n
	}
	// draining: the column 7-(step&7) was just switched off
	return col < 15-n
}
