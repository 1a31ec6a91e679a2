package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go-ledtone/board"
	"go-ledtone/pattern"
	"go-ledtone/render"
)

// Backend selects what the timing engine drives.
type Backend string

const (
	BackendSim  Backend = "sim"
	BackendGPIO Backend = "gpio"
)

// AudioOutput selects where the DAC stream goes.
type AudioOutput string

const (
	AudioNone AudioOutput = "none"
	AudioPlay AudioOutput = "play"
	AudioWAV  AudioOutput = "wav"
)

// LaunchpadConfig defines the mirrored controller
type LaunchpadConfig struct {
	Match       string `json:"match,omitempty"` // port name substring
	AutoConnect bool   `json:"autoConnect"`
	Keyboards   bool   `json:"keyboards,omitempty"`
}

// AudioConfig stores the DAC sink settings
type AudioConfig struct {
	Output  AudioOutput `json:"output"`
	Path    string      `json:"path,omitempty"`
	Latency Duration    `json:"latency,omitempty"`
}

// HardwareConfig is the JSON form of board.HardwareConfig
type HardwareConfig struct {
	Chip     string           `json:"chip"`
	SPI      string           `json:"spi,omitempty"`
	SPIHz    int64            `json:"spiHz"`
	PWMPin   string           `json:"pwmPin"`
	PWMHz    int64            `json:"pwmHz"`
	Latch    int              `json:"latch"`
	Blank    int              `json:"blank"`
	Mode     int              `json:"mode"`
	RowLines [render.Rows]int `json:"rowLines"`
	KeyRows  [4]int           `json:"keyRows"`
	KeyCols  [4]int           `json:"keyCols"`
}

// Config is the main configuration structure
type Config struct {
	Model     string          `json:"model"`
	Backend   Backend         `json:"backend"`
	Rate      int             `json:"rate"`
	MinPulse  Duration        `json:"minPulse"`
	KeyHold   Duration        `json:"keyHold"`
	Alternate string          `json:"alternate"`
	Palette   string          `json:"palette,omitempty"`
	Debug     bool            `json:"debug,omitempty"`
	Launchpad LaunchpadConfig `json:"launchpad"`
	Audio     AudioConfig     `json:"audio"`
	Hardware  HardwareConfig  `json:"hardware"`
}

// Duration is a time.Duration written as "100ns", "150ms".
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		// bare numbers are nanoseconds
		var n int64
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("duration %s: %w", b, err)
		}
		*d = Duration(n)
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Model:     render.Model2.Name,
		Backend:   BackendSim,
		Rate:      16000,
		MinPulse:  Duration(100 * time.Nanosecond),
		KeyHold:   Duration(150 * time.Millisecond),
		Alternate: pattern.ModeDomino.String(),
		Launchpad: LaunchpadConfig{
			Match:       "launchpad",
			AutoConnect: true,
		},
		Audio: AudioConfig{
			Output:  AudioNone,
			Latency: Duration(60 * time.Millisecond),
		},
		Hardware: HardwareConfig{
			Chip:     "gpiochip0",
			SPIHz:    4_000_000,
			PWMPin:   "GPIO18",
			PWMHz:    64_000,
			Latch:    25,
			Blank:    24,
			Mode:     23,
			RowLines: [render.Rows]int{5, 6, 13, 19, 26, 16, 20, 21},
			KeyRows:  [4]int{4, 17, 27, 22},
			KeyCols:  [4]int{12, 7, 8, 11},
		},
	}
}

// Board converts the hardware section for board.OpenHardware.
func (c *Config) Board(dacPeriod uint32) board.HardwareConfig {
	h := c.Hardware
	return board.HardwareConfig{
		Chip:      h.Chip,
		SPI:       h.SPI,
		SPIHz:     h.SPIHz,
		PWMPin:    h.PWMPin,
		PWMHz:     h.PWMHz,
		DACPeriod: dacPeriod,
		Latch:     h.Latch,
		Blank:     h.Blank,
		Mode:      h.Mode,
		RowLines:  h.RowLines,
		KeyRows:   h.KeyRows,
		KeyCols:   h.KeyCols,
	}
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	if _, err := render.ByName(c.Model); err != nil {
		return err
	}
	switch c.Backend {
	case BackendSim, BackendGPIO:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Rate <= 0 {
		return fmt.Errorf("rate must be positive, got %d", c.Rate)
	}
	if c.MinPulse < 0 {
		return fmt.Errorf("negative min pulse %v", time.Duration(c.MinPulse))
	}
	if _, err := pattern.ParseMode(c.Alternate); err != nil {
		return err
	}
	if c.Backend == BackendGPIO && c.Audio.Output != AudioNone {
		return fmt.Errorf("audio output %q needs the sim backend; the gpio board plays on its PWM pin", c.Audio.Output)
	}
	switch c.Audio.Output {
	case AudioNone, AudioPlay:
	case AudioWAV:
		if c.Audio.Path == "" {
			return fmt.Errorf("wav output needs a path")
		}
	default:
		return fmt.Errorf("unknown audio output %q", c.Audio.Output)
	}
	return nil
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-ledtone"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads path over the defaults, so missing keys keep their
// default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path, creating its directory.
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
