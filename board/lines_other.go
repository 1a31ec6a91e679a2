//go:build !linux

package board

import "errors"

var errNoCdev = errors.New("gpio character device is only available on linux")

func openLines(HardwareConfig) (lineSet, error) {
	return nil, errNoCdev
}

// Keypad is unavailable off linux.
type Keypad struct{}

func OpenKeypad(HardwareConfig) (*Keypad, error) { return nil, errNoCdev }

func (*Keypad) DriveRow(int)      {}
func (*Keypad) Columns(int) uint8 { return 0 }
func (*Keypad) Errors() uint64    { return 0 }
func (*Keypad) Close() error      { return nil }
