// Package render fills one half of the grayscale buffer with the channel
// words for a single display row.
//
// A half is 32 words, one per output channel of the two daisy-chained LED
// drivers. Which channel drives which LED is a property of the board, so the
// renderers only ever address LEDs through a Wiring.
package render

import "fmt"

// HalfWords is the number of grayscale words in one buffer half.
const HalfWords = 32

// Columns and Rows of the LED matrix.
const (
	Columns = 8
	Rows    = 8
)

// Half is one 32-word grayscale half.
type Half = [HalfWords]uint16

// Wiring maps matrix columns to driver channel slots, per color, and matrix
// rows to the bit pattern on the row driver lines.
type Wiring struct {
	Name  string
	Red   [Columns]uint8
	Green [Columns]uint8
	Blue  [Columns]uint8
	Rows  [Rows]uint8
}

// Model1 is the first board revision.
var Model1 = Wiring{
	Name:  "model1",
	Red:   [Columns]uint8{4, 5, 6, 7, 8, 9, 10, 11},
	Green: [Columns]uint8{20, 21, 22, 23, 24, 25, 26, 27},
	Blue:  [Columns]uint8{12, 13, 14, 15, 28, 29, 30, 31},
	Rows: [Rows]uint8{
		1 << 2, 1 << 3, 1 << 5, 1 << 0,
		1 << 1, 1 << 4, 1 << 7, 1 << 6,
	},
}

// Model2 is the second board revision.
var Model2 = Wiring{
	Name:  "model2",
	Red:   [Columns]uint8{31, 30, 29, 28, 27, 26, 25, 24},
	Green: [Columns]uint8{4, 5, 6, 7, 8, 9, 10, 11},
	Blue:  [Columns]uint8{23, 22, 21, 20, 19, 18, 17, 16},
	Rows: [Rows]uint8{
		1 << 7, 1 << 6, 1 << 5, 1 << 4,
		1 << 0, 1 << 1, 1 << 2, 1 << 3,
	},
}

// ByName returns the wiring preset for a board name.
func ByName(name string) (Wiring, error) {
	switch name {
	case Model1.Name:
		return Model1, nil
	case Model2.Name, "":
		return Model2, nil
	}
	return Wiring{}, fmt.Errorf("unknown board model %q", name)
}

// Validate checks that the three color tables and the row table are
// permutations without collisions.
func (w Wiring) Validate() error {
	var used [HalfWords]bool
	for _, tab := range [][Columns]uint8{w.Red, w.Green, w.Blue} {
		for col, slot := range tab {
			if slot >= HalfWords {
				return fmt.Errorf("%s: column %d maps to slot %d", w.Name, col, slot)
			}
			if used[slot] {
				return fmt.Errorf("%s: slot %d used twice", w.Name, slot)
			}
			used[slot] = true
		}
	}
	var lines uint8
	for row, code := range w.Rows {
		if code == 0 || code&(code-1) != 0 {
			return fmt.Errorf("%s: row %d drive code %#x is not a single line", w.Name, row, code)
		}
		if lines&code != 0 {
			return fmt.Errorf("%s: row %d drive line shared", w.Name, row)
		}
		lines |= code
	}
	return nil
}

// RowOf returns the matrix row selected by a drive code, or -1.
func (w Wiring) RowOf(code uint8) int {
	for row, c := range w.Rows {
		if c == code {
			return row
		}
	}
	return -1
}

// set writes one LED's three channels.
func (w *Wiring) set(half *Half, col int, c Color) {
	r, g, b := c.Intensities()
	half[w.Red[col]] = r
	half[w.Green[col]] = g
	half[w.Blue[col]] = b
}

// LED reads back one LED from a half.
func (w *Wiring) LED(half *Half, col int) (r, g, b uint16) {
	return half[w.Red[col]], half[w.Green[col]], half[w.Blue[col]]
}
