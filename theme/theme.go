package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// LED matrix
	LEDOn  rune // ● lit
	LEDOff rune // · dark

	// Keypad
	KeyHeld rune // ■ held down
	KeyFree rune // □ up
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			LEDOn:  '●',
			LEDOff: '·',

			KeyHeld: '■',
			KeyFree: '□',
		},
	}
}

// Color roles, as palette entry indices. Shorter palettes clamp to their
// last entry.
const (
	RoleBG = iota
	RoleSurface
	RoleMuted
	RoleDim
	RoleFG
	RoleAccent
	RoleCursor
	RoleActive
	RoleWarning
	RoleSuccess
)

// Role returns the lipgloss color for a role.
func (t *Theme) Role(role int) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Index(role))
}

func (t *Theme) BG() lipgloss.Color      { return t.Role(RoleBG) }
func (t *Theme) FG() lipgloss.Color      { return t.Role(RoleFG) }
func (t *Theme) Accent() lipgloss.Color  { return t.Role(RoleAccent) }
func (t *Theme) Surface() lipgloss.Color { return t.Role(RoleSurface) }
func (t *Theme) Muted() lipgloss.Color   { return t.Role(RoleMuted) }
func (t *Theme) Dim() lipgloss.Color     { return t.Role(RoleDim) }
func (t *Theme) Active() lipgloss.Color  { return t.Role(RoleActive) }
func (t *Theme) Cursor() lipgloss.Color  { return t.Role(RoleCursor) }
func (t *Theme) Warning() lipgloss.Color { return t.Role(RoleWarning) }
func (t *Theme) Success() lipgloss.Color { return t.Role(RoleSuccess) }

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
