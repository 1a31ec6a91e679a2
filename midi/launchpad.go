package midi

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go-ledtone/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Launchpad X SysEx header: F0 00 20 29 02 0C ...
var lpHeader = []byte{0x00, 0x20, 0x29, 0x02, 0x0C}

func lpSysEx(body ...byte) gomidi.Message {
	return gomidi.SysEx(append(append([]byte{}, lpHeader...), body...))
}

var ledSendCount atomic.Uint64

// LaunchpadController handles a Novation Launchpad X in programmer mode
type LaunchpadController struct {
	id       string
	outPort  drivers.Out
	inPort   drivers.In
	stopFunc func()

	sendMu sync.Mutex
	send   func(msg gomidi.Message) error

	padChan  chan PadEvent
	noteChan chan NoteEvent
	closed   atomic.Bool
}

// NewLaunchpadController opens both ports and switches the device to
// programmer mode.
func NewLaunchpadController(id string, inPort drivers.In, outPort drivers.Out) (*LaunchpadController, error) {
	lp := &LaunchpadController{
		id:       id,
		inPort:   inPort,
		outPort:  outPort,
		padChan:  make(chan PadEvent, 32),
		noteChan: make(chan NoteEvent, 32),
	}

	if outPort != nil {
		send, err := gomidi.SendTo(outPort)
		if err != nil {
			return nil, fmt.Errorf("open output %s: %w", outPort, err)
		}
		lp.send = send

		for _, msg := range []gomidi.Message{
			lpSysEx(0x00, 0x7F),       // programmer mode
			lpSysEx(0x08, 0x7F),       // full brightness
			lpSysEx(0x0A, 0x01, 0x01), // external LED feedback
		} {
			if err := lp.send(msg); err != nil {
				return nil, fmt.Errorf("configure %s: %w", id, err)
			}
		}
	}

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, lp.handle)
		if err != nil {
			return nil, fmt.Errorf("open input %s: %w", inPort, err)
		}
		lp.stopFunc = stop
	}

	debug.Log("midi", "launchpad %s ready (in=%v out=%v)", id, inPort != nil, outPort != nil)
	return lp, nil
}

// handle turns grid notes and top-row CCs into pad presses.
func (lp *LaunchpadController) handle(msg gomidi.Message, timestampms int32) {
	if lp.closed.Load() {
		return
	}
	var channel, key, value uint8
	row, col := -1, -1
	switch {
	case msg.GetNoteOn(&channel, &key, &value):
		row, col = noteToRowCol(key)
	case msg.GetControlChange(&channel, &key, &value):
		row, col = ccToRowCol(key)
	}
	if row < 0 || value == 0 {
		return
	}
	select {
	case lp.padChan <- PadEvent{Row: row, Col: col, Velocity: value}:
	default:
	}
}

func (lp *LaunchpadController) ID() string {
	return lp.id
}

func (lp *LaunchpadController) Type() ControllerType {
	return ControllerLaunchpad
}

func (lp *LaunchpadController) PadEvents() <-chan PadEvent {
	return lp.padChan
}

func (lp *LaunchpadController) NoteEvents() <-chan NoteEvent {
	return lp.noteChan
}

func (lp *LaunchpadController) SetLEDRGB(row, col int, rgb [3]uint8, channel uint8) error {
	return lp.SetLEDBatch([]LEDUpdate{{Row: row, Col: col, Color: rgb, Channel: channel}})
}

// SetLEDBatch sends one NoteOn per update, nearest palette color.
func (lp *LaunchpadController) SetLEDBatch(updates []LEDUpdate) error {
	if lp.send == nil || len(updates) == 0 {
		return nil
	}

	lp.sendMu.Lock()
	defer lp.sendMu.Unlock()

	var firstErr error
	for _, u := range updates {
		msg := gomidi.NoteOn(u.Channel, rowColToNote(u.Row, u.Col), mapRGBToLaunchpad(u.Color))
		if err := lp.send(msg); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	count := ledSendCount.Add(uint64(len(updates)))
	if count%100 < uint64(len(updates)) {
		debug.Log("lp-send", "batch count=%d (this batch=%d)", count, len(updates))
	}
	return firstErr
}

// ClearLEDs switches off the grid, the side column and the top row.
func (lp *LaunchpadController) ClearLEDs() error {
	updates := make([]LEDUpdate, 0, 80)
	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			if row == 8 && col == 8 {
				continue // no LED at 8,8
			}
			updates = append(updates, LEDUpdate{Row: row, Col: col})
		}
	}
	return lp.SetLEDBatch(updates)
}

func (lp *LaunchpadController) Close() error {
	if lp.closed.Swap(true) {
		return nil
	}
	lp.ClearLEDs()
	if lp.stopFunc != nil {
		lp.stopFunc()
	}
	close(lp.padChan)
	close(lp.noteChan)
	debug.Log("midi", "launchpad %s closed", lp.id)
	return nil
}

// lpPalette holds approximate RGB values of Launchpad X palette entries:
// {velocity, R, G, B}.
var lpPalette = [][4]uint8{
	{0, 0, 0, 0},         // off
	{5, 255, 0, 0},       // red
	{7, 180, 60, 60},     // dim red
	{9, 255, 100, 0},     // orange
	{13, 255, 200, 0},    // yellow
	{17, 0, 180, 0},      // green
	{21, 0, 255, 0},      // bright green
	{37, 0, 200, 200},    // cyan
	{45, 0, 0, 255},      // blue
	{47, 80, 150, 255},   // bright blue
	{49, 150, 0, 200},    // purple
	{53, 255, 80, 180},   // pink
	{62, 240, 128, 36},   // amber
	{84, 255, 150, 50},   // bright orange
	{97, 180, 180, 60},   // dim yellow
	{119, 255, 255, 255}, // white
}

// mapRGBToLaunchpad finds the nearest palette color for an RGB value
func mapRGBToLaunchpad(rgb [3]uint8) uint8 {
	best := uint8(0)
	bestDist := -1
	r, g, b := int(rgb[0]), int(rgb[1]), int(rgb[2])
	for _, p := range lpPalette {
		dr, dg, db := r-int(p[1]), g-int(p[2]), b-int(p[3])
		dist := dr*dr + dg*dg + db*db
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			best = p[0]
		}
	}
	return best
}

// Launchpad X note mapping
// 8x8 Grid:  Row 0 (bottom) = notes 11-18, Row 7 = notes 81-88
// Side col:  Col 8 (right side scene buttons) = notes 19, 29, 39, 49, 59, 69, 79, 89
// Top row:   Row 8 (top control row) = CC 91-98

func rowColToNote(row, col int) uint8 {
	if row == 8 {
		return uint8(91 + col)
	}
	return uint8((row+1)*10 + col + 1)
}

func noteToRowCol(note uint8) (row, col int) {
	if note >= 91 && note <= 98 {
		return 8, int(note - 91)
	}
	row = int(note/10) - 1
	col = int(note%10) - 1
	if row < 0 || row > 7 || col < 0 || col > 8 {
		return -1, -1
	}
	return row, col
}

func ccToRowCol(cc uint8) (row, col int) {
	if cc >= 91 && cc <= 98 {
		return 8, int(cc - 91)
	}
	return -1, -1
}
