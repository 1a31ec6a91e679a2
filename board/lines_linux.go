package board

import (
	"fmt"
	"sync/atomic"

	"github.com/warthog618/go-gpiocdev"

	"go-ledtone/render"
)

const consumer = "go-ledtone"

type cdevLines struct {
	latch, blank, mode *gpiocdev.Line
	rows               *gpiocdev.Lines
	rowVals            []int
}

func openLines(cfg HardwareConfig) (lineSet, error) {
	l := &cdevLines{rowVals: make([]int, render.Rows)}
	var err error
	req := func(offset, initial int) *gpiocdev.Line {
		if err != nil {
			return nil
		}
		var line *gpiocdev.Line
		line, err = gpiocdev.RequestLine(cfg.Chip, offset, gpiocdev.AsOutput(initial), gpiocdev.WithConsumer(consumer))
		if err != nil {
			err = fmt.Errorf("request line %d on %s: %w", offset, cfg.Chip, err)
		}
		return line
	}
	l.latch = req(cfg.Latch, 0)
	l.blank = req(cfg.Blank, 1)
	l.mode = req(cfg.Mode, 0)
	if err == nil {
		l.rows, err = gpiocdev.RequestLines(cfg.Chip, cfg.RowLines[:], gpiocdev.AsOutput(l.rowVals...), gpiocdev.WithConsumer(consumer))
		if err != nil {
			err = fmt.Errorf("request row lines on %s: %w", cfg.Chip, err)
		}
	}
	if err != nil {
		l.Close()
		return nil, err
	}
	return l, nil
}

func (l *cdevLines) setLatch(v int) error { return l.latch.SetValue(v) }
func (l *cdevLines) setBlank(v int) error { return l.blank.SetValue(v) }
func (l *cdevLines) setMode(v int) error  { return l.mode.SetValue(v) }

func (l *cdevLines) setRows(code uint8) error {
	for i := range l.rowVals {
		l.rowVals[i] = int(code>>i) & 1
	}
	return l.rows.SetValues(l.rowVals)
}

func (l *cdevLines) Close() error {
	var first error
	for _, line := range []*gpiocdev.Line{l.latch, l.blank, l.mode} {
		if line == nil {
			continue
		}
		if err := line.Close(); err != nil && first == nil {
			first = err
		}
	}
	if l.rows != nil {
		if err := l.rows.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Keypad reads a 4x4 key matrix wired to GPIO lines: the scan rows are
// outputs, the columns are pulled-down inputs.
type Keypad struct {
	rows *gpiocdev.Lines
	cols *gpiocdev.Lines

	rowVals []int
	colVals []int

	errors atomic.Uint64
}

// OpenKeypad requests the keypad lines.
func OpenKeypad(cfg HardwareConfig) (*Keypad, error) {
	rows, err := gpiocdev.RequestLines(cfg.Chip, cfg.KeyRows[:], gpiocdev.AsOutput(0, 0, 0, 0), gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("request keypad rows on %s: %w", cfg.Chip, err)
	}
	cols, err := gpiocdev.RequestLines(cfg.Chip, cfg.KeyCols[:], gpiocdev.AsInput, gpiocdev.WithPullDown, gpiocdev.WithConsumer(consumer))
	if err != nil {
		rows.Close()
		return nil, fmt.Errorf("request keypad columns on %s: %w", cfg.Chip, err)
	}
	return &Keypad{rows: rows, cols: cols, rowVals: make([]int, 4), colVals: make([]int, 4)}, nil
}

// DriveRow selects one scan row.
func (k *Keypad) DriveRow(row int) {
	for i := range k.rowVals {
		k.rowVals[i] = 0
	}
	k.rowVals[row&3] = 1
	countFailure(&k.errors, "keypad rows", k.rows.SetValues(k.rowVals))
}

// Columns returns the column inputs. On boards where the keypad rows share
// the LED row lines nothing is driven here.
func (k *Keypad) Columns(row int) uint8 {
	if countFailure(&k.errors, "keypad columns", k.cols.Values(k.colVals)) {
		return 0
	}
	var bits uint8
	for i, v := range k.colVals {
		if v != 0 {
			bits |= 1 << i
		}
	}
	return bits
}

// Errors counts failed keypad line accesses.
func (k *Keypad) Errors() uint64 {
	return k.errors.Load()
}

// Close releases the keypad lines.
func (k *Keypad) Close() error {
	err := k.cols.Close()
	if rerr := k.rows.Close(); err == nil {
		err = rerr
	}
	return err
}
