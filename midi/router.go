package midi

import (
	"context"

	"go-ledtone/debug"
	"go-ledtone/keypad"
)

// Pads in the top-left corner of the grid form the keypad, in the same
// order as the printed legend.
const (
	padKeyTop  = 7
	padKeyLeft = 0
)

// PadKey maps a grid pad to a keypad position.
func PadKey(row, col int) (krow, kcol int, ok bool) {
	krow = padKeyTop - row
	kcol = col - padKeyLeft
	if krow < 0 || krow >= keypad.Rows || kcol < 0 || kcol >= keypad.Columns {
		return 0, 0, false
	}
	return krow, kcol, true
}

// Router presses keypad keys for controller input: pads through PadKey,
// keyboard notes by pitch class onto the 16 frequencies.
type Router struct {
	Latch  *keypad.Latch
	Layout keypad.Layout
}

// NoteKey maps a note to the keypad position whose code selects frequency
// note%16.
func (r *Router) NoteKey(note uint8) (row, col int) {
	return r.Layout.Decode(keypad.Present | keypad.Code(note&0xF))
}

// Run routes events from c until its channels close or the context is done.
func (r *Router) Run(ctx context.Context, c Controller) {
	pads, notes := c.PadEvents(), c.NoteEvents()
	for pads != nil || notes != nil {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-pads:
			if !ok {
				pads = nil
				continue
			}
			if row, col, ok := PadKey(e.Row, e.Col); ok {
				r.Latch.Press(row, col)
				debug.Log("input", "pad %d,%d -> key %c", e.Row, e.Col, keypad.Legend[row][col])
			}
		case e, ok := <-notes:
			if !ok {
				notes = nil
				continue
			}
			row, col := r.NoteKey(e.Note)
			r.Latch.Press(row, col)
			debug.Log("input", "note %d -> key %c", e.Note, keypad.Legend[row][col])
		}
	}
}
