package render

// Color is a packed 0xBBGGRR value.
type Color uint32

// Off is all channels dark.
const Off Color = 0

// Palette is the color rotation used by the domino trace.
var Palette = [4]Color{
	0x0000FF, // red
	0x00FF00, // green
	0xFF0000, // blue
	0x2480F0, // yellow
}

// Intensities expands each 8-bit channel to a 12-bit grayscale word.
func (c Color) Intensities() (r, g, b uint16) {
	r = uint16(c&0xFF) << 4
	g = uint16((c&0xFF00)>>8) << 4
	b = uint16((c&0xFF0000)>>16) << 4
	return r, g, b
}

// RGB returns the 8-bit channels.
func (c Color) RGB() [3]uint8 {
	return [3]uint8{uint8(c), uint8(c >> 8), uint8(c >> 16)}
}

// FromIntensities packs three 12-bit words back into a Color, dropping the
// low four bits of each.
func FromIntensities(r, g, b uint16) Color {
	return Color(r>>4&0xFF) | Color(g>>4&0xFF)<<8 | Color(b>>4&0xFF)<<16
}
