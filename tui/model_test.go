package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"go-ledtone/board"
	"go-ledtone/engine"
	"go-ledtone/keypad"
	"go-ledtone/midi"
	"go-ledtone/pattern"
	"go-ledtone/theme"
)

func testModel(t *testing.T, st engine.Status) (Model, *keypad.Latch) {
	t.Helper()
	p, err := theme.Load("")
	if err != nil {
		t.Fatal(err)
	}
	latch := keypad.NewLatch(time.Hour)
	panel := Panel{
		Title:  "go-ledtone model2/sim",
		Frame:  func() board.Frame { return board.Frame{} },
		Status: func() engine.Status { return st },
		Latch:  latch,
	}
	return NewModel(context.Background(), panel, nil, theme.New(p)), latch
}

func TestKeysPressKeypad(t *testing.T) {
	m, latch := testModel(t, engine.Status{Blank: true})

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'5'}})
	m = next.(Model)
	if !latch.Held(1, 1) {
		t.Error("'5' did not press row 1 col 1")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	if !latch.Held(3, 3) {
		t.Error("'d' did not press D")
	}

	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	if latch.Held(1, 1) || latch.Held(3, 3) {
		t.Error("space did not release")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q did not quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not return tea.Quit")
	}
}

func TestViewShowsStatus(t *testing.T) {
	m, _ := testModel(t, engine.Status{
		State:     pattern.Debouncing,
		Mode:      pattern.ModeGlyph,
		Pattern:   2,
		FreqIndex: 0,
		Swaps:     1234,
	})
	out := m.View()
	for _, want := range []string{"go-ledtone model2/sim", "debounce", "glyph", "366 Hz", "1234", "[#]"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "C") {
		t.Error("glyph pattern 2 not shown as C")
	}
}

func TestPatternLabel(t *testing.T) {
	tests := []struct {
		st   engine.Status
		want string
	}{
		{engine.Status{Blank: true}, "-"},
		{engine.Status{Mode: pattern.ModeGlyph, Pattern: 25}, "Z"},
		{engine.Status{Mode: pattern.ModeDomino, Pattern: 0}, "1/48"},
		{engine.Status{Mode: pattern.ModePixel, Pattern: 19}, "20/20"},
	}
	for _, tt := range tests {
		if got := patternLabel(tt.st); got != tt.want {
			t.Errorf("patternLabel(%+v) = %q, want %q", tt.st, got, tt.want)
		}
	}
}

type fakeController struct {
	id   string
	kind midi.ControllerType
}

func (c *fakeController) ID() string                                { return c.id }
func (c *fakeController) Type() midi.ControllerType                 { return c.kind }
func (c *fakeController) PadEvents() <-chan midi.PadEvent           { return nil }
func (c *fakeController) NoteEvents() <-chan midi.NoteEvent         { return nil }
func (c *fakeController) SetLEDRGB(int, int, [3]uint8, uint8) error { return nil }
func (c *fakeController) SetLEDBatch([]midi.LEDUpdate) error        { return nil }
func (c *fakeController) ClearLEDs() error                          { return nil }
func (c *fakeController) Close() error                              { return nil }

// fakeDevices mimics the manager: controllers change before the event.
type fakeDevices struct {
	ctrls  map[string]midi.Controller
	events chan midi.DeviceEvent
}

func (d *fakeDevices) Events() <-chan midi.DeviceEvent { return d.events }

func (d *fakeDevices) Controllers() map[string]midi.Controller { return d.ctrls }

func (d *fakeDevices) GetLaunchpad() midi.Controller {
	for _, c := range d.ctrls {
		if c.Type() == midi.ControllerLaunchpad {
			return c
		}
	}
	return nil
}

func TestDeviceEventsFollowManager(t *testing.T) {
	m, _ := testModel(t, engine.Status{Blank: true})
	devs := &fakeDevices{ctrls: map[string]midi.Controller{}, events: make(chan midi.DeviceEvent, 1)}
	m.DeviceMgr = devs

	send := func(typ midi.DeviceEventType, c midi.Controller, id string) {
		t.Helper()
		next, cmd := m.Update(DeviceEventMsg(midi.DeviceEvent{Type: typ, Controller: c, ID: id}))
		m = next.(Model)
		if cmd == nil {
			t.Fatal("stopped listening for devices")
		}
	}

	kb := &fakeController{id: "KeyStep", kind: midi.ControllerKeyboard}
	devs.ctrls[kb.id] = kb
	send(midi.DeviceConnected, kb, kb.id)
	if m.controller != nil || m.inputs != 1 {
		t.Errorf("after keyboard: controller=%v inputs=%d", m.controller, m.inputs)
	}

	lp := &fakeController{id: "Launchpad X LPX MIDI", kind: midi.ControllerLaunchpad}
	devs.ctrls[lp.id] = lp
	send(midi.DeviceConnected, lp, lp.id)
	if m.controller != lp || m.inputs != 2 {
		t.Errorf("after launchpad: controller=%v inputs=%d", m.controller, m.inputs)
	}
	if !strings.Contains(m.View(), "LP:X") {
		t.Error("view does not show the launchpad")
	}

	delete(devs.ctrls, lp.id)
	send(midi.DeviceDisconnected, nil, lp.id)
	if m.controller != nil || m.inputs != 1 {
		t.Errorf("after unplug: controller=%v inputs=%d", m.controller, m.inputs)
	}
}
