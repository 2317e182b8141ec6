package config

import (
	"path/filepath"
	"testing"
)

func TestLoadFromFileWritesDefaultsWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gones.json")

	c := New()
	if err := c.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	reloaded := New()
	if err := reloaded.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile on written defaults: %v", err)
	}
	if !reloaded.IsLoaded() {
		t.Error("expected IsLoaded to be true after reading an existing file")
	}
	if reloaded.Window.Scale != 2 {
		t.Errorf("expected default scale 2, got %d", reloaded.Window.Scale)
	}
}

func TestValidateClampsOutOfRangeValues(t *testing.T) {
	c := New()
	c.Window.Scale = -1
	c.Audio.SampleRate = 0
	c.Audio.Volume = 5.0
	c.Emulation.Region = "Dendy"

	c.validate()

	if c.Window.Scale != 1 {
		t.Errorf("expected scale clamped to 1, got %d", c.Window.Scale)
	}
	if c.Audio.SampleRate != 44100 {
		t.Errorf("expected sample rate clamped to 44100, got %d", c.Audio.SampleRate)
	}
	if c.Audio.Volume != 0.8 {
		t.Errorf("expected volume clamped to 0.8, got %f", c.Audio.Volume)
	}
	if c.Emulation.Region != "" {
		t.Errorf("expected unrecognized region cleared, got %q", c.Emulation.Region)
	}
}

func TestGetWindowResolutionScalesNESResolution(t *testing.T) {
	c := New()
	c.Window.Scale = 3

	w, h := c.GetWindowResolution()
	if w != 768 || h != 720 {
		t.Errorf("expected 768x720, got %dx%d", w, h)
	}
}

func TestSaveRequiresAPriorPath(t *testing.T) {
	c := New()
	if err := c.Save(); err == nil {
		t.Error("expected Save to fail before any file path is known")
	}
}
