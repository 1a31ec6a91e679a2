package keypad

// Matrix is the electrical keypad primitive: the column inputs seen while
// the given row is selected, one bit per column.
type Matrix interface {
	Columns(row int) uint8
}

// RowDriver is implemented by matrices with dedicated scan lines.
type RowDriver interface {
	DriveRow(row int)
}

// Scanner produces one point-in-time key code.
type Scanner interface {
	Scan() Code
}

// encode priority-encodes the column inputs; the highest column wins.
func encode(l Layout, row int, cols uint8) Code {
	if cols&0xF == 0 {
		return None
	}
	col := 0
	switch {
	case cols&0x8 != 0:
		col = 3
	case cols&0x4 != 0:
		col = 2
	case cols&0x2 != 0:
		col = 1
	}
	return l.Encode(row, col)
}

// LEDRowScanner reads the keypad row that shares its line with the LED row
// currently being driven.
type LEDRowScanner struct {
	Matrix Matrix
	Layout Layout

	// LEDRow returns the LED row on the drive lines right now.
	LEDRow func() int
}

// Scan implements Scanner.
func (s *LEDRowScanner) Scan() Code {
	row := (s.LEDRow() - 2) & 3
	if row >= Rows {
		return None
	}
	return encode(s.Layout, row, s.Matrix.Columns(row))
}

// LineScanner drives its own scan line and moves to the next row after
// every scan.
type LineScanner struct {
	Matrix Matrix
	Layout Layout

	row int
}

// Scan implements Scanner.
func (s *LineScanner) Scan() Code {
	row := s.row
	s.row = (s.row + 1) & 3
	if d, ok := s.Matrix.(RowDriver); ok {
		d.DriveRow(row)
	}
	return encode(s.Layout, row, s.Matrix.Columns(row))
}

// Row is the row the next scan will drive.
func (s *LineScanner) Row() int {
	return s.row
}
