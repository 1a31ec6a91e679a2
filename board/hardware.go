package board

import (
	"fmt"
	"sync/atomic"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"go-ledtone/debug"
	"go-ledtone/render"
)

// HardwareConfig names the devices and lines of a real board.
type HardwareConfig struct {
	// Chip is the GPIO character device, e.g. "gpiochip0".
	Chip string
	// SPI is the periph SPI port name; empty selects the first one.
	SPI string
	// SPIHz is the serial clock.
	SPIHz int64
	// PWMPin is the periph name of the audio PWM pin, e.g. "GPIO18".
	PWMPin string
	// PWMHz is the PWM carrier; the compare value is a fraction of
	// DACPeriod counts.
	PWMHz     int64
	DACPeriod uint32

	Latch, Blank, Mode int
	RowLines           [render.Rows]int
	KeyRows            [4]int
	KeyCols            [4]int
}

// lineSet is the GPIO side of the hardware board.
type lineSet interface {
	setLatch(v int) error
	setBlank(v int) error
	setMode(v int) error
	setRows(code uint8) error
	Close() error
}

// Hardware drives a real board: grayscale words over SPI, audio on a PWM
// pin and the control and row lines over the GPIO character device.
//
// SendWord only queues. The queue goes out on the bus when the words are
// needed: before the latch rises and on WaitIdle.
type Hardware struct {
	cfg   HardwareConfig
	port  spi.PortCloser
	conn  spi.Conn
	pwm   gpio.PinIO
	lines lineSet

	queue []uint16
	tx    []byte

	errors atomic.Uint64
}

// OpenHardware initializes periph and requests every line.
func OpenHardware(cfg HardwareConfig) (*Hardware, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph init: %w", err)
	}

	p, err := spireg.Open(cfg.SPI)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", cfg.SPI, err)
	}
	c, err := p.Connect(physic.Frequency(cfg.SPIHz)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("connect spi: %w", err)
	}

	pin := gpioreg.ByName(cfg.PWMPin)
	if pin == nil {
		p.Close()
		return nil, fmt.Errorf("pwm pin %q not found", cfg.PWMPin)
	}

	lines, err := openLines(cfg)
	if err != nil {
		p.Close()
		return nil, err
	}

	if cfg.DACPeriod == 0 {
		cfg.DACPeriod = 2500
	}
	h := &Hardware{
		cfg:   cfg,
		port:  p,
		conn:  c,
		pwm:   pin,
		lines: lines,
		queue: make([]uint16, 0, 2*Channels),
		tx:    make([]byte, 0, 3*Channels),
	}
	debug.Log("board", "hardware open: spi %q at %d Hz, pwm %s, chip %s", cfg.SPI, cfg.SPIHz, cfg.PWMPin, cfg.Chip)
	return h, nil
}

// Close releases the bus and the lines.
func (h *Hardware) Close() error {
	h.pwm.Halt()
	err := h.lines.Close()
	if perr := h.port.Close(); err == nil {
		err = perr
	}
	return err
}

// Errors counts failed writes. The tick never sees them.
func (h *Hardware) Errors() uint64 {
	return h.errors.Load()
}

func (h *Hardware) fail(what string, err error) {
	countFailure(&h.errors, what, err)
}

// countFailure counts and logs a failed bus or line access. It reports
// whether err was set.
func countFailure(n *atomic.Uint64, what string, err error) bool {
	if err == nil {
		return false
	}
	c := n.Add(1)
	debug.LogEvery(1000, "board", "%s: %v (%d errors)", what, err, c)
	return true
}

func (h *Hardware) SendWord(w uint16) {
	h.queue = append(h.queue, w)
}

func (h *Hardware) WaitIdle() {
	h.flush()
}

func (h *Hardware) flush() {
	if len(h.queue) == 0 {
		return
	}
	h.tx = packWords(h.tx[:0], h.queue)
	h.queue = h.queue[:0]
	h.fail("spi write", h.conn.Tx(h.tx, nil))
}

func (h *Hardware) SetAudioCompare(v uint32) {
	if v > h.cfg.DACPeriod {
		v = h.cfg.DACPeriod
	}
	duty := gpio.Duty(int64(v) * int64(gpio.DutyMax) / int64(h.cfg.DACPeriod))
	h.fail("pwm", h.pwm.PWM(duty, physic.Frequency(h.cfg.PWMHz)*physic.Hertz))
}

func (h *Hardware) SetRowDriveLine(code uint8) { h.fail("row lines", h.lines.setRows(code)) }

func (h *Hardware) AssertLatch() {
	h.flush()
	h.fail("latch", h.lines.setLatch(1))
}

func (h *Hardware) DeassertLatch() { h.fail("latch", h.lines.setLatch(0)) }
func (h *Hardware) AssertBlank()   { h.fail("blank", h.lines.setBlank(1)) }
func (h *Hardware) DeassertBlank() { h.fail("blank", h.lines.setBlank(0)) }
func (h *Hardware) AssertMode()    { h.fail("mode", h.lines.setMode(1)) }
func (h *Hardware) DeassertMode()  { h.fail("mode", h.lines.setMode(0)) }
