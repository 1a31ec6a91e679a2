package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-ledtone/board"
	"go-ledtone/engine"
	"go-ledtone/keypad"
	"go-ledtone/midi"
	"go-ledtone/pattern"
	"go-ledtone/render"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch os.Args[1] {
	case "list":
		listPorts()
	case "detect":
		detect(ctx)
	case "leds":
		testLEDs(ctx, arg(2, "model2"), arg(3, "domino"))
	case "keys":
		keys(ctx)
	default:
		usage()
	}
}

func arg(i int, def string) string {
	if len(os.Args) > i {
		return os.Args[i]
	}
	return def
}

func usage() {
	fmt.Println("Launchpad checks for go-ledtone")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                  - List all MIDI ports")
	fmt.Println("  detect                - Wait for a Launchpad to connect")
	fmt.Println("  leds [model] [mode]   - Run the simulated matrix on the pads")
	fmt.Println("  keys                  - Print the keypad key of each pad press")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ch <- result{ins: gomidi.GetInPorts(), outs: gomidi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! The MIDI service is hung.")
	}
}

// waitLaunchpad runs a device manager until a Launchpad shows up.
func waitLaunchpad(ctx context.Context) (midi.Controller, bool) {
	dm := midi.NewDeviceManager("launchpad", false)
	go dm.Run(ctx)

	fmt.Println("Looking for a Launchpad (Ctrl+C to give up)...")
	for e := range dm.Events() {
		fmt.Printf("[%s] %s %s\n", time.Now().Format("15:04:05"), e.Type, e.ID)
		if e.Type == midi.DeviceConnected && e.Controller.Type() == midi.ControllerLaunchpad {
			return e.Controller, true
		}
	}
	return nil, false
}

func detect(ctx context.Context) {
	if c, ok := waitLaunchpad(ctx); ok {
		fmt.Printf("\nLaunchpad ready: %s (programmer mode)\n", c.ID())
		return
	}
	fmt.Println("\nLaunchpad not found")
}

// simRun is the engine running against the simulated chain.
type simRun struct {
	sim   *board.Sim
	state *engine.State
	loop  *engine.Loop
	sched *engine.Scheduler
	latch *keypad.Latch

	layout keypad.Layout
	wg     sync.WaitGroup
}

// startSim runs the engine on the model's wiring until ctx is done. Keys
// pressed on the latch stay down until released.
func startSim(ctx context.Context, w *render.Wiring, alt pattern.Mode) *simRun {
	r := &simRun{
		sim:    board.NewSim(w, nil),
		state:  engine.NewState(),
		latch:  keypad.NewLatch(time.Hour),
		layout: keypad.LayoutModel2,
	}
	engine.Setup(r.state, r.sim, nil)

	var scanner keypad.Scanner = &keypad.LineScanner{Matrix: r.latch, Layout: r.layout}
	if w.Name == render.Model1.Name {
		r.layout = keypad.LayoutModel1
		scanner = &keypad.LEDRowScanner{Matrix: r.latch, Layout: r.layout, LEDRow: r.state.Row}
	}

	r.loop = engine.NewLoop(r.state, w, scanner, pattern.New(alt), nil)
	r.sched = engine.NewScheduler(engine.NewTiming(r.state, r.sim, w, nil), engine.Rate)

	r.wg.Add(2)
	go func() { defer r.wg.Done(); r.sched.Run(ctx) }()
	go func() { defer r.wg.Done(); r.loop.Run(ctx) }()
	return r
}

// wait blocks until the engine goroutines have returned.
func (r *simRun) wait() { r.wg.Wait() }

// waitStatus polls the loop status until cond holds.
func (r *simRun) waitStatus(ctx context.Context, cond func(engine.Status) bool) error {
	tick := time.NewTicker(2 * time.Millisecond)
	defer tick.Stop()
	for !cond(r.loop.Status()) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
	return nil
}

// show holds key label down in mode. Modes only change when a press
// expires, so any other mode first needs one complete press.
func (r *simRun) show(ctx context.Context, mode pattern.Mode, label byte) error {
	if mode != pattern.ModeGlyph && r.loop.Status().Mode != mode {
		r.latch.PressLabel(label)
		if err := r.waitStatus(ctx, func(st engine.Status) bool { return !st.Blank }); err != nil {
			return err
		}
		r.latch.Release()
		if err := r.waitStatus(ctx, func(st engine.Status) bool { return st.Mode == mode }); err != nil {
			return err
		}
	}
	r.latch.PressLabel(label)
	return r.waitStatus(ctx, func(st engine.Status) bool { return !st.Blank && st.Mode == mode })
}

// testLEDs runs the engine against the simulated chain and mirrors the
// matrix onto the pads.
func testLEDs(ctx context.Context, model, mode string) {
	w, err := render.ByName(model)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	alt, err := pattern.ParseMode(mode)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	lp, ok := waitLaunchpad(ctx)
	if !ok {
		return
	}

	r := startSim(ctx, &w, alt)
	defer r.wait()

	mirror := midi.NewMirror(r.sim)
	mirror.SetController(lp)
	go mirror.Run(ctx)

	if err := r.show(ctx, alt, '1'); err != nil {
		return
	}
	fmt.Printf("Showing %s on %s. Pads in the top-left 4x4 pick the tone. Ctrl+C to stop.\n", alt, w.Name)

	for {
		select {
		case <-ctx.Done():
			r.wait()
			mirror.SetController(nil)
			lp.ClearLEDs()
			run, dropped := r.sched.Ticks()
			st := r.sim.Stats()
			fmt.Printf("\nticks=%d dropped=%d latches=%d overruns=%d\n", run, dropped, st.Latches, r.state.Overruns())
			return
		case e, ok := <-lp.PadEvents():
			if !ok {
				return
			}
			if row, col, ok := midi.PadKey(e.Row, e.Col); ok {
				r.latch.Release()
				r.latch.Press(row, col)
			}
		}
	}
}

func keys(ctx context.Context) {
	lp, ok := waitLaunchpad(ctx)
	if !ok {
		return
	}
	defer lp.ClearLEDs()

	// outline the keypad area
	var updates []midi.LEDUpdate
	for row := 0; row < render.Rows; row++ {
		for col := 0; col < render.Columns; col++ {
			if _, _, ok := midi.PadKey(row, col); ok {
				updates = append(updates, midi.LEDUpdate{Row: row, Col: col, Color: [3]uint8{0, 0, 255}})
			}
		}
	}
	if err := lp.SetLEDBatch(updates); err != nil {
		fmt.Printf("Error: %v\n", err)
	}

	fmt.Println("Press pads (Ctrl+C to exit)")
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-lp.PadEvents():
			if !ok {
				return
			}
			row, col, ok := midi.PadKey(e.Row, e.Col)
			if !ok {
				fmt.Printf("pad %d,%d (not a key)\n", e.Row, e.Col)
				continue
			}
			fmt.Printf("pad %d,%d -> key %c  model1=%v model2=%v\n", e.Row, e.Col,
				keypad.Legend[row][col], keypad.LayoutModel1.Encode(row, col), keypad.LayoutModel2.Encode(row, col))
		}
	}
}
