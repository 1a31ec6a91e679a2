package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-ledtone/board"
	"go-ledtone/debug"
	"go-ledtone/engine"
	"go-ledtone/keypad"
	"go-ledtone/midi"
	"go-ledtone/pattern"
	"go-ledtone/render"
	"go-ledtone/sine"
	"go-ledtone/theme"
	"go-ledtone/widgets"
)

// refreshRate matches the Launchpad mirror
const refreshRate = time.Second / midi.MirrorFPS

// Panel is what the front panel shows and drives.
type Panel struct {
	Title  string
	Rate   int
	Frame  func() board.Frame
	Status func() engine.Status
	Latch  *keypad.Latch

	// optional
	Mirror *midi.Mirror
	Router *midi.Router
}

// Devices is the hot-plug source, normally a *midi.DeviceManager.
type Devices interface {
	Events() <-chan midi.DeviceEvent
	Controllers() map[string]midi.Controller
	GetLaunchpad() midi.Controller
}

type Model struct {
	Panel      Panel
	DeviceMgr  Devices
	Theme      *theme.Theme
	ctx        context.Context
	quitting   bool
	controller midi.Controller // mirror target (may be nil)
	inputs     int             // connected controllers
}

type RefreshMsg time.Time

type DeviceEventMsg midi.DeviceEvent

// NewModel creates the front panel. deviceMgr may be nil when MIDI is off.
func NewModel(ctx context.Context, panel Panel, deviceMgr Devices, th *theme.Theme) Model {
	if panel.Rate == 0 {
		panel.Rate = engine.Rate
	}
	return Model{
		Panel:     panel,
		DeviceMgr: deviceMgr,
		Theme:     th,
		ctx:       ctx,
	}
}

func refresh() tea.Cmd {
	return tea.Tick(refreshRate, func(t time.Time) tea.Msg {
		return RefreshMsg(t)
	})
}

func ListenForDevices(deviceMgr Devices) tea.Cmd {
	if deviceMgr == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(refresh(), ListenForDevices(m.DeviceMgr))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "backspace", " ", "space":
			m.Panel.Latch.Release()
		default:
			if len(key) == 1 && m.Panel.Latch.PressLabel(key[0]) {
				debug.Log("input", "key %q", key)
			}
		}

	case RefreshMsg:
		return m, refresh()

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		if event.Type == midi.DeviceConnected && m.Panel.Router != nil {
			go m.Panel.Router.Run(m.ctx, event.Controller)
		}
		m.syncDevices()
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

var helpSections = []widgets.KeySection{
	{Keys: []widgets.KeyBinding{
		{Key: "0-9 a-d * #", Desc: "press key"},
		{Key: "space", Desc: "release"},
		{Key: "q", Desc: "quit"},
	}},
}

// legend names the trace colors.
func legend() string {
	return strings.Join([]string{
		widgets.RenderLegendItem(render.Palette[0].RGB(), "glyph", "A-Z"),
		widgets.RenderLegendItem(render.Palette[1].RGB(), "pixel", "circle"),
		widgets.RenderLegendItem(render.Palette[2].RGB(), "domino", "rgb sweep"),
	}, "\n")
}

// syncDevices follows the manager. The mirror stays on its Launchpad
// while that one is connected, then moves to any other.
func (m *Model) syncDevices() {
	if m.DeviceMgr == nil {
		return
	}
	ctrls := m.DeviceMgr.Controllers()
	m.inputs = len(ctrls)
	if m.controller != nil {
		if _, ok := ctrls[m.controller.ID()]; ok {
			return
		}
	}
	lp := m.DeviceMgr.GetLaunchpad()
	if lp == m.controller {
		return
	}
	m.controller = lp
	if m.Panel.Mirror != nil {
		m.Panel.Mirror.SetController(lp)
	}
	if lp != nil {
		debug.Log("ui", "mirroring to %s", lp.ID())
	}
}

// patternLabel describes the current pattern step.
func patternLabel(st engine.Status) string {
	if st.Blank {
		return "-"
	}
	switch st.Mode {
	case pattern.ModeGlyph:
		return string(render.GlyphChar(st.Pattern))
	default:
		return fmt.Sprintf("%d/%d", st.Pattern+1, st.Mode.Length())
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	th := m.Theme
	headerStyle := lipgloss.NewStyle().Foreground(th.Accent()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(th.Muted())
	labelStyle := lipgloss.NewStyle().Foreground(th.Dim()).Width(9)
	valueStyle := lipgloss.NewStyle().Foreground(th.FG())
	warnStyle := lipgloss.NewStyle().Foreground(th.Warning())

	st := m.Panel.Status()

	deviceStatus := ""
	if m.controller != nil {
		deviceStatus = "  LP:X"
	}
	if n := m.inputs; n > 0 && m.controller == nil {
		deviceStatus = fmt.Sprintf("  MIDI:%d", n)
	}
	header := headerStyle.Render(fmt.Sprintf("%s  %dHz%s", m.Panel.Title, m.Panel.Rate, deviceStatus))

	// LED matrix
	dim := [3]uint8(th.Palette.Index(theme.RoleSurface))
	grid := widgets.RenderPadGrid(m.Panel.Frame().PadGrid(), th.Symbols.LEDOn, th.Symbols.LEDOff, dim)
	grid = lipgloss.NewStyle().Padding(0, 2, 0, 1).Render(grid)

	// Keypad and status
	up := lipgloss.NewStyle().Foreground(th.Muted())
	down := lipgloss.NewStyle().Foreground(th.Cursor()).Bold(true)
	pad := widgets.RenderKeypad(keypad.Legend, m.Panel.Latch.Held, up, down)

	tone := "off"
	if !st.Blank {
		tone = fmt.Sprintf("%.0f Hz", sine.Frequency(sine.ToneSteps[st.FreqIndex], m.Panel.Rate))
	}
	norm := float64(st.FreqIndex) / float64(len(sine.ToneSteps)-1)
	bar := widgets.RenderBar(st.FreqIndex+1, len(sine.ToneSteps), 16,
		lipgloss.NewStyle().Foreground(th.Color(norm)), lipgloss.NewStyle().Foreground(th.Surface()))
	if st.Blank {
		bar = widgets.RenderBar(0, 1, 16, valueStyle, lipgloss.NewStyle().Foreground(th.Surface()))
	}

	overruns := lipgloss.NewStyle().Foreground(th.Success()).Render(fmt.Sprint(st.Overruns))
	if st.Overruns > 0 {
		overruns = warnStyle.Render(fmt.Sprint(st.Overruns))
	}

	key := string(th.Symbols.KeyFree) + " none"
	if st.Key.Valid() {
		key = string(th.Symbols.KeyHeld) + " " + st.Key.String()
	}

	rows := []string{
		labelStyle.Render("key") + valueStyle.Render(key),
		labelStyle.Render("state") + valueStyle.Render(st.State.String()),
		labelStyle.Render("mode") + valueStyle.Render(st.Mode.String()),
		labelStyle.Render("pattern") + valueStyle.Render(patternLabel(st)),
		labelStyle.Render("tone") + valueStyle.Render(tone),
		labelStyle.Render("") + bar,
		labelStyle.Render("swaps") + valueStyle.Render(fmt.Sprint(st.Swaps)),
		labelStyle.Render("overruns") + overruns,
	}
	side := lipgloss.JoinVertical(lipgloss.Left, pad, "", strings.Join(rows, "\n"))

	left := lipgloss.JoinVertical(lipgloss.Left, grid, "", legend())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, side)

	help := dimStyle.Render(widgets.RenderKeyHelp(helpSections))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(body)
	out.WriteString("\n\n")
	out.WriteString(help)
	return out.String()
}
