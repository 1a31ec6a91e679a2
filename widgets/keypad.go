package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderKeypad draws the 4x4 keypad legend, highlighting held keys.
func RenderKeypad(legend [4][4]byte, held func(row, col int) bool, up, down lipgloss.Style) string {
	var lines []string
	for row := range legend {
		var line strings.Builder
		for col, label := range legend[row] {
			if col > 0 {
				line.WriteString(" ")
			}
			cell := "[" + string(label) + "]"
			if held(row, col) {
				line.WriteString(down.Render(cell))
			} else {
				line.WriteString(up.Render(cell))
			}
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// RenderBar draws a horizontal gauge of width cells, value of max filled.
func RenderBar(value, max, width int, fill, empty lipgloss.Style) string {
	if max <= 0 || width <= 0 {
		return ""
	}
	if value < 0 {
		value = 0
	}
	if value > max {
		value = max
	}
	n := value * width / max
	return fill.Render(strings.Repeat("█", n)) + empty.Render(strings.Repeat("░", width-n))
}
