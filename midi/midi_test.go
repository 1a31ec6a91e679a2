package midi

import (
	"context"
	"testing"
	"time"

	"go-ledtone/board"
	"go-ledtone/keypad"
)

func TestNoteMapping(t *testing.T) {
	for row := 0; row < 8; row++ {
		for col := 0; col < 9; col++ {
			r, c := noteToRowCol(rowColToNote(row, col))
			if r != row || c != col {
				t.Errorf("(%d,%d) -> note %d -> (%d,%d)", row, col, rowColToNote(row, col), r, c)
			}
		}
	}
	if r, c := noteToRowCol(95); r != 8 || c != 4 {
		t.Errorf("top row note = (%d,%d)", r, c)
	}
	if r, _ := noteToRowCol(5); r != -1 {
		t.Error("note 5 mapped to a pad")
	}
	if r, c := ccToRowCol(98); r != 8 || c != 7 {
		t.Errorf("cc 98 = (%d,%d)", r, c)
	}
}

func TestPaletteMatch(t *testing.T) {
	tests := []struct {
		rgb  [3]uint8
		want uint8
	}{
		{[3]uint8{0, 0, 0}, 0},
		{[3]uint8{255, 0, 0}, 5},
		{[3]uint8{0, 255, 0}, 21},
		{[3]uint8{0, 0, 255}, 45},
		{[3]uint8{240, 128, 36}, 62},
		{[3]uint8{250, 250, 250}, 119},
	}
	for _, tt := range tests {
		if got := mapRGBToLaunchpad(tt.rgb); got != tt.want {
			t.Errorf("mapRGBToLaunchpad(%v) = %d, want %d", tt.rgb, got, tt.want)
		}
	}
}

func TestPadKey(t *testing.T) {
	tests := []struct {
		row, col   int
		krow, kcol int
		ok         bool
	}{
		{7, 0, 0, 0, true},
		{7, 3, 0, 3, true},
		{4, 0, 3, 0, true},
		{3, 0, 0, 0, false},
		{7, 4, 0, 0, false},
		{8, 0, 0, 0, false},
	}
	for _, tt := range tests {
		krow, kcol, ok := PadKey(tt.row, tt.col)
		if ok != tt.ok || (ok && (krow != tt.krow || kcol != tt.kcol)) {
			t.Errorf("PadKey(%d,%d) = %d,%d,%v", tt.row, tt.col, krow, kcol, ok)
		}
	}
}

// fakeController records LED batches and exposes its event channels.
type fakeController struct {
	pads    chan PadEvent
	notes   chan NoteEvent
	batches [][]LEDUpdate
}

func newFake() *fakeController {
	return &fakeController{pads: make(chan PadEvent, 4), notes: make(chan NoteEvent, 4)}
}

func (f *fakeController) ID() string                   { return "fake" }
func (f *fakeController) Type() ControllerType         { return ControllerLaunchpad }
func (f *fakeController) PadEvents() <-chan PadEvent   { return f.pads }
func (f *fakeController) NoteEvents() <-chan NoteEvent { return f.notes }
func (f *fakeController) SetLEDRGB(row, col int, rgb [3]uint8, channel uint8) error {
	return f.SetLEDBatch([]LEDUpdate{{Row: row, Col: col, Color: rgb, Channel: channel}})
}
func (f *fakeController) SetLEDBatch(u []LEDUpdate) error {
	f.batches = append(f.batches, append([]LEDUpdate(nil), u...))
	return nil
}
func (f *fakeController) ClearLEDs() error { return nil }
func (f *fakeController) Close() error {
	close(f.pads)
	close(f.notes)
	return nil
}

type staticFrame struct{ f board.Frame }

func (s *staticFrame) Frame() board.Frame { return s.f }

func TestMirrorDiffs(t *testing.T) {
	src := &staticFrame{}
	m := NewMirror(src)
	if n := m.flush(); n != 0 {
		t.Fatalf("flushed %d with no controller", n)
	}

	c := newFake()
	m.SetController(c)
	if n := m.flush(); n != 64 {
		t.Fatalf("first flush sent %d, want 64", n)
	}
	if n := m.flush(); n != 0 {
		t.Fatalf("unchanged frame sent %d", n)
	}

	src.f[0][2] = [3]uint8{255, 0, 0}
	if n := m.flush(); n != 1 {
		t.Fatalf("one change sent %d", n)
	}
	u := c.batches[len(c.batches)-1][0]
	if u.Row != 7 || u.Col != 2 || u.Color != src.f[0][2] {
		t.Errorf("update %+v, want matrix row 0 on pad row 7", u)
	}

	m.SetController(c)
	if n := m.flush(); n != 64 {
		t.Errorf("repaint after SetController sent %d", n)
	}
}

func TestRouter(t *testing.T) {
	latch := keypad.NewLatch(time.Hour)
	r := &Router{Latch: latch, Layout: keypad.LayoutModel2}
	c := newFake()

	done := make(chan struct{})
	go func() {
		r.Run(context.Background(), c)
		close(done)
	}()

	c.pads <- PadEvent{Row: 6, Col: 1, Velocity: 100}
	c.notes <- NoteEvent{Note: 60 + 5, Velocity: 90}
	c.Close()
	<-done

	if !latch.Held(1, 1) {
		t.Error("pad 6,1 did not press key 1,1")
	}
	row, col := r.NoteKey(65)
	if !latch.Held(row, col) {
		t.Errorf("note 65 did not press key %d,%d", row, col)
	}
	if code := keypad.LayoutModel2.Encode(row, col); code.Value() != 65%16 {
		t.Errorf("note 65 selects frequency %d", code.Value())
	}
}

func TestPlanPorts(t *testing.T) {
	ins := []string{"Midi Through Port-0", "Launchpad X LPX MIDI", "Launchpad X LPX DAW", "KeyStep 32", "Launchpad X LPX MIDI"}
	outs := []string{"Midi Through Port-0", "Launchpad X LPX DAW", "Launchpad X LPX MIDI"}

	tests := []struct {
		name      string
		match     string
		keyboards bool
		want      []portPlan
	}{
		{"launchpad only", "launchpad", false, []portPlan{
			{ID: "Launchpad X LPX MIDI", In: 1, Out: 2, Type: ControllerLaunchpad},
		}},
		{"with keyboards", "lpx", true, []portPlan{
			{ID: "Launchpad X LPX MIDI", In: 1, Out: 2, Type: ControllerLaunchpad},
			{ID: "Launchpad X LPX DAW", In: 2, Out: -1, Type: ControllerKeyboard},
			{ID: "KeyStep 32", In: 3, Out: -1, Type: ControllerKeyboard},
		}},
		{"match excludes", "mini", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := planPorts(ins, outs, tt.match, tt.keyboards)
			if len(got) != len(tt.want) {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("plan %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
