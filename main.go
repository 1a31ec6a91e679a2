package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"go-ledtone/audio"
	"go-ledtone/board"
	"go-ledtone/config"
	"go-ledtone/debug"
	"go-ledtone/engine"
	"go-ledtone/keypad"
	"go-ledtone/midi"
	"go-ledtone/pattern"
	"go-ledtone/render"
	"go-ledtone/theme"
	"go-ledtone/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, headless, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.Debug {
		if err := debug.Enable(""); err != nil {
			return fmt.Errorf("debug log: %w", err)
		}
		defer debug.Disable()
	}

	palette, err := theme.Load(cfg.Palette)
	if err != nil {
		return fmt.Errorf("palette: %w", err)
	}
	th := theme.New(palette)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	w, err := render.ByName(cfg.Model)
	if err != nil {
		return err
	}
	alternate, err := pattern.ParseMode(cfg.Alternate)
	if err != nil {
		return err
	}

	// Goroutines stop before anything they use is closed.
	var (
		wg      sync.WaitGroup
		closers []closer
	)
	defer func() {
		cancel()
		wg.Wait()
		closeAll(closers)
	}()
	goRun := func(name string, f func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f(ctx); err != nil && ctx.Err() == nil {
				debug.Log("main", "%s stopped: %v", name, err)
			}
		}()
	}

	var stats exitStats

	// Audio sink
	var sink board.SampleSink
	switch cfg.Audio.Output {
	case config.AudioWAV:
		f, err := os.Create(cfg.Audio.Path)
		if err != nil {
			return fmt.Errorf("create %s: %w", cfg.Audio.Path, err)
		}
		rec := audio.NewRecorder(f, cfg.Rate, engine.DACPeriod)
		closers = append(closers, closer{cfg.Audio.Path, f.Close})
		goRun("recorder", rec.Run)
		sink = rec
	case config.AudioPlay:
		player, err := audio.NewPlayer(cfg.Rate, engine.DACPeriod, time.Duration(cfg.Audio.Latency))
		if err != nil {
			return err
		}
		closers = append(closers, closer{"player", player.Close})
		sink = player
		stats.underruns = player.Underruns
	}

	// Board
	s := engine.NewState()
	var (
		port   engine.Port
		sim    *board.Sim
		matrix keypad.Matrix
		latch  = keypad.NewLatch(time.Duration(cfg.KeyHold))
	)
	switch cfg.Backend {
	case config.BackendGPIO:
		hcfg := cfg.Board(engine.DACPeriod)
		hw, err := board.OpenHardware(hcfg)
		if err != nil {
			return err
		}
		closers = append(closers, closer{"hardware", hw.Close})
		kp, err := board.OpenKeypad(hcfg)
		if err != nil {
			return err
		}
		closers = append(closers, closer{"keypad", kp.Close})
		port, matrix = hw, kp
		stats.boardErrors = func() uint64 { return hw.Errors() + kp.Errors() }
	default:
		sim = board.NewSim(&w, sink)
		port, matrix = sim, latch
	}

	layout := keypad.LayoutModel2
	var scanner keypad.Scanner = &keypad.LineScanner{Matrix: matrix, Layout: layout}
	if w.Name == render.Model1.Name {
		layout = keypad.LayoutModel1
		scanner = &keypad.LEDRowScanner{Matrix: matrix, Layout: layout, LEDRow: s.Row}
	}

	engine.Setup(s, port, nil)
	timing := engine.NewTiming(s, port, &w, nil)
	timing.MinPulse = time.Duration(cfg.MinPulse)
	sched := engine.NewScheduler(timing, cfg.Rate)
	loop := engine.NewLoop(s, &w, scanner, pattern.New(alternate), nil)

	goRun("scheduler", sched.Run)
	goRun("loop", loop.Run)
	debug.Log("main", "%s on %s backend, alternate %s", w.Name, cfg.Backend, alternate)

	if !headless && !term.IsTerminal(int(os.Stdout.Fd())) {
		debug.Log("main", "stdout is not a terminal, running headless")
		headless = true
	}
	if headless || sim == nil {
		fmt.Printf("go-ledtone: %s on %s, Ctrl+C to stop\n", w.Name, cfg.Backend)
		<-ctx.Done()
		cancel()
		wg.Wait()
		fmt.Println(stats.line(sched, s))
		return nil
	}

	// Front panel and Launchpad
	panel := tui.Panel{
		Title:  "go-ledtone · " + w.Name,
		Rate:   cfg.Rate,
		Frame:  sim.Frame,
		Status: loop.Status,
		Latch:  latch,
	}
	var devices tui.Devices
	if cfg.Launchpad.AutoConnect {
		deviceMgr := midi.NewDeviceManager(cfg.Launchpad.Match, cfg.Launchpad.Keyboards)
		devices = deviceMgr
		panel.Mirror = midi.NewMirror(sim)
		panel.Router = &midi.Router{Latch: latch, Layout: layout}
		wg.Add(1)
		go func() {
			defer wg.Done()
			deviceMgr.Run(ctx)
		}()
		goRun("mirror", panel.Mirror.Run)
	}

	m := tui.NewModel(ctx, panel, devices, th)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	cancel()
	wg.Wait()
	fmt.Println(stats.line(sched, s))
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// closer is something to release at exit, named for the log.
type closer struct {
	name  string
	close func() error
}

// closeAll closes in reverse order and logs failures. It returns how many
// failed.
func closeAll(cs []closer) int {
	failed := 0
	for i := len(cs) - 1; i >= 0; i-- {
		if err := cs[i].close(); err != nil {
			failed++
			debug.Log("main", "close %s: %v", cs[i].name, err)
		}
	}
	return failed
}

// exitStats holds the optional counters printed at exit.
type exitStats struct {
	underruns   func() uint64
	boardErrors func() uint64
}

// line formats the run summary. Only run it after the scheduler stopped.
func (st exitStats) line(sched *engine.Scheduler, s *engine.State) string {
	run, dropped := sched.Ticks()
	out := fmt.Sprintf("ticks=%d dropped=%d swaps=%d overruns=%d", run, dropped, s.Swaps(), s.Overruns())
	if st.underruns != nil {
		out += fmt.Sprintf(" underruns=%d", st.underruns())
	}
	if st.boardErrors != nil {
		out += fmt.Sprintf(" board_errors=%d", st.boardErrors())
	}
	return out
}

// loadConfig reads the config file and applies command line overrides.
func loadConfig() (*config.Config, bool, error) {
	var (
		path      = flag.String("config", "", "config file (default ~/.config/go-ledtone/config.json)")
		model     = flag.String("model", "", "board model: model1 or model2")
		backend   = flag.String("backend", "", "sim or gpio")
		alternate = flag.String("alternate", "", "pattern alternating with glyphs: domino or pixel")
		wavPath   = flag.String("wav", "", "record the DAC stream to a WAV file")
		play      = flag.Bool("play", false, "play the DAC stream")
		palette   = flag.String("palette", "", "built-in palette name or .gpl file")
		debugLog  = flag.Bool("debug", false, "write ~/.config/go-ledtone/debug.log")
		headless  = flag.Bool("headless", false, "run without the front panel")
		save      = flag.Bool("save", false, "write the resulting config back and exit")
	)
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *path != "" {
		cfg, err = config.LoadFile(*path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, false, fmt.Errorf("load config: %w", err)
	}

	if *model != "" {
		cfg.Model = *model
	}
	if *backend != "" {
		cfg.Backend = config.Backend(*backend)
	}
	if *alternate != "" {
		cfg.Alternate = *alternate
	}
	if *wavPath != "" {
		cfg.Audio.Output = config.AudioWAV
		cfg.Audio.Path = *wavPath
	}
	if *play {
		cfg.Audio.Output = config.AudioPlay
	}
	if *palette != "" {
		cfg.Palette = *palette
	}
	if *debugLog {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, false, fmt.Errorf("config: %w", err)
	}

	if *save {
		if *path != "" {
			err = cfg.SaveFile(*path)
		} else {
			err = cfg.Save()
		}
		if err != nil {
			return nil, false, fmt.Errorf("save config: %w", err)
		}
		fmt.Println("config saved")
		os.Exit(0)
	}
	return cfg, *headless, nil
}
