// Package keypad turns the electrical state of the 4x4 keypad into key
// codes for the pattern machine.
package keypad

import "fmt"

// Size of the keypad matrix.
const (
	Rows    = 4
	Columns = 4
)

// Code is a scan result. Zero means no key; otherwise the Present marker is
// set and the low nibble holds the key value.
type Code uint8

// Present marks a code as carrying a key.
const Present Code = 0x10

// None is the code for no key pressed.
const None Code = 0

// Valid reports whether c carries a key. Anything without the marker or
// with bits above it set is treated as no key.
func (c Code) Valid() bool {
	return c&Present != 0 && c <= Present|0xF
}

// Value is the 4-bit key value.
func (c Code) Value() int {
	return int(c & 0xF)
}

func (c Code) String() string {
	if !c.Valid() {
		return "none"
	}
	return fmt.Sprintf("key(%d)", c.Value())
}

// Layout describes where the row and column numbers sit in the key value.
type Layout struct {
	RowShift uint
	ColShift uint
}

// Board layouts. The first board puts the row in the low bits.
var (
	LayoutModel1 = Layout{RowShift: 0, ColShift: 2}
	LayoutModel2 = Layout{RowShift: 2, ColShift: 0}
)

// Encode builds the code for a key at row, col.
func (l Layout) Encode(row, col int) Code {
	return Present | Code(row&3)<<l.RowShift | Code(col&3)<<l.ColShift
}

// Decode returns the row and column of a valid code.
func (l Layout) Decode(c Code) (row, col int) {
	return int(c>>l.RowShift) & 3, int(c>>l.ColShift) & 3
}

// Legend is the printed label of each key by row and column.
var Legend = [Rows][Columns]byte{
	{'1', '2', '3', 'A'},
	{'4', '5', '6', 'B'},
	{'7', '8', '9', 'C'},
	{'*', '0', '#', 'D'},
}

// Find returns the position of a legend character.
func Find(label byte) (row, col int, ok bool) {
	if label >= 'a' && label <= 'd' {
		label -= 'a' - 'A'
	}
	for r := range Legend {
		for c := range Legend[r] {
			if Legend[r][c] == label {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}
