package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go-ledtone/render"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestDefaultModelMatchesWiring(t *testing.T) {
	w, err := render.ByName("")
	if err != nil {
		t.Fatal(err)
	}
	if got := DefaultConfig().Model; got != w.Name {
		t.Errorf("default model %q, wiring default %q", got, w.Name)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"model1", func(c *Config) { c.Model = "model1" }, true},
		{"unknown model", func(c *Config) { c.Model = "model9" }, false},
		{"gpio backend", func(c *Config) { c.Backend = BackendGPIO }, true},
		{"unknown backend", func(c *Config) { c.Backend = "fpga" }, false},
		{"zero rate", func(c *Config) { c.Rate = 0 }, false},
		{"negative pulse", func(c *Config) { c.MinPulse = -1 }, false},
		{"pixel alternate", func(c *Config) { c.Alternate = "pixel" }, true},
		{"unknown alternate", func(c *Config) { c.Alternate = "plasma" }, false},
		{"wav without path", func(c *Config) { c.Audio.Output = AudioWAV }, false},
		{"wav with path", func(c *Config) { c.Audio.Output = AudioWAV; c.Audio.Path = "out.wav" }, true},
		{"unknown audio", func(c *Config) { c.Audio.Output = "midi" }, false},
		{"gpio with wav", func(c *Config) {
			c.Backend = BackendGPIO
			c.Audio.Output = AudioWAV
			c.Audio.Path = "out.wav"
		}, false},
		{"gpio with play", func(c *Config) { c.Backend = BackendGPIO; c.Audio.Output = AudioPlay }, false},
		{"sim with play", func(c *Config) { c.Audio.Output = AudioPlay }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.modify(c)
			err := c.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")

	c := DefaultConfig()
	c.Model = "model1"
	c.KeyHold = Duration(80 * time.Millisecond)
	c.Hardware.RowLines[7] = 3
	if err := c.SaveFile(path); err != nil {
		t.Fatal(err)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Model != "model1" || got.KeyHold != c.KeyHold || got.Hardware.RowLines[7] != 3 {
		t.Errorf("loaded %+v", got)
	}
}

func TestLoadFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"backend":"gpio","minPulse":250}`), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Backend != BackendGPIO {
		t.Errorf("backend = %q", c.Backend)
	}
	if c.MinPulse != Duration(250) {
		t.Errorf("minPulse = %v, want 250ns", time.Duration(c.MinPulse))
	}
	if c.Rate != 16000 || c.Model != "model2" {
		t.Errorf("defaults lost: rate=%d model=%q", c.Rate, c.Model)
	}
}

func TestLoadFileMissing(t *testing.T) {
	c, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Rate != DefaultConfig().Rate {
		t.Error("missing file should give defaults")
	}
}

func TestLoadFileBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte(`{"keyHold":"soon"}`), 0644)
	if _, err := LoadFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestBoard(t *testing.T) {
	h := DefaultConfig().Board(2500)
	if h.DACPeriod != 2500 || h.Chip != "gpiochip0" || h.RowLines[0] != 5 {
		t.Errorf("board config %+v", h)
	}
}
