package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogWritesCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debug.log")
	if err := Enable(path); err != nil {
		t.Fatal(err)
	}
	defer Disable()

	Log("engine", "overruns=%d", 3)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "Debug logging started") {
		t.Error("missing start banner")
	}
	if !strings.Contains(out, "engine") || !strings.Contains(out, "overruns=3") {
		t.Errorf("log line missing:\n%s", out)
	}
}

func TestLogEvery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	if err := Enable(path); err != nil {
		t.Fatal(err)
	}
	defer Disable()

	for i := 0; i < 10; i++ {
		LogEvery(4, "board", "spi write failed")
	}

	data, _ := os.ReadFile(path)
	if n := strings.Count(string(data), "spi write failed"); n != 2 {
		t.Errorf("got %d lines, want 2", n)
	}
	if !strings.Contains(string(data), "count=8") {
		t.Errorf("missing count=8:\n%s", data)
	}
}

func TestDisabledIsSilent(t *testing.T) {
	Disable()
	if Enabled() {
		t.Fatal("still enabled")
	}
	Log("any", "dropped") // must not panic
}
