package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestRenderPadGridShape(t *testing.T) {
	var grid [8][8][3]uint8
	grid[7][0] = [3]uint8{255, 0, 0}
	out := RenderPadGrid(grid, '●', '·', [3]uint8{40, 40, 40})
	lines := strings.Split(out, "\n")
	if len(lines) != 8 {
		t.Fatalf("%d lines", len(lines))
	}
	if !strings.Contains(lines[0], "●") || strings.Contains(lines[1], "●") {
		t.Errorf("row 7 not drawn at the top:\n%s", out)
	}
	if n := strings.Count(out, "·"); n != 63 {
		t.Errorf("%d dark pads, want 63", n)
	}
}

func TestRenderKeypad(t *testing.T) {
	legend := [4][4]byte{
		{'1', '2', '3', 'A'},
		{'4', '5', '6', 'B'},
		{'7', '8', '9', 'C'},
		{'*', '0', '#', 'D'},
	}
	plain := lipgloss.NewStyle()
	out := RenderKeypad(legend, func(row, col int) bool { return row == 3 && col == 1 }, plain, plain.Bold(true))
	lines := strings.Split(out, "\n")
	if len(lines) != 4 || !strings.Contains(lines[3], "[0]") || !strings.Contains(lines[0], "[A]") {
		t.Errorf("keypad:\n%s", out)
	}
}

func TestRenderBar(t *testing.T) {
	s := lipgloss.NewStyle()
	if got := RenderBar(5, 10, 8, s, s); got != "████░░░░" {
		t.Errorf("bar = %q", got)
	}
	if got := RenderBar(20, 10, 4, s, s); got != "████" {
		t.Errorf("clamped bar = %q", got)
	}
	if RenderBar(1, 0, 4, s, s) != "" {
		t.Error("zero max")
	}
}

func TestRenderKeyHelp(t *testing.T) {
	out := RenderKeyHelp([]KeySection{{Title: "Keys", Keys: []KeyBinding{{"q", "quit"}}}})
	if out != "Keys\n  q            quit" {
		t.Errorf("help = %q", out)
	}
}
