// Package config handles loading and saving the reference host's
// configuration: window, video, audio, input, emulation and mapper
// settings, persisted as JSON.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds every setting the reference host (cmd/gones) needs.
type Config struct {
	Window    WindowConfig    `json:"window"`
	Video     VideoConfig     `json:"video"`
	Audio     AudioConfig     `json:"audio"`
	Input     InputConfig     `json:"input"`
	Emulation EmulationConfig `json:"emulation"`
	Mapper    MapperConfig    `json:"mapper"`
	Paths     PathsConfig     `json:"paths"`

	configPath string
	loaded     bool
}

// WindowConfig contains window-related configuration.
type WindowConfig struct {
	Fullscreen bool `json:"fullscreen"`
	Scale      int  `json:"scale"` // NES resolution multiplier
}

// VideoConfig contains video rendering configuration.
type VideoConfig struct {
	VSync  bool   `json:"vsync"`
	Filter string `json:"filter"` // "nearest", "linear"
}

// AudioConfig contains audio configuration.
type AudioConfig struct {
	Enabled    bool    `json:"enabled"`
	SampleRate int     `json:"sample_rate"`
	BufferSize int     `json:"buffer_size"`
	Volume     float32 `json:"volume"`
}

// InputConfig contains input configuration.
type InputConfig struct {
	Player1Keys KeyMapping `json:"player1_keys"`
	Player2Keys KeyMapping `json:"player2_keys"`
}

// KeyMapping maps NES controller buttons to ebiten key names.
type KeyMapping struct {
	Up     string `json:"up"`
	Down   string `json:"down"`
	Left   string `json:"left"`
	Right  string `json:"right"`
	A      string `json:"a"`
	B      string `json:"b"`
	Start  string `json:"start"`
	Select string `json:"select"`
}

// EmulationConfig contains emulation-specific settings.
type EmulationConfig struct {
	// Region overrides the cartridge header's own NTSC/PAL autodetection
	// when non-empty: "NTSC" or "PAL". Left empty, the console decides.
	Region string `json:"region"`
}

// MapperConfig controls how unsupported or malformed cartridges are handled.
type MapperConfig struct {
	// FallbackToNROM treats a ROM with an unrecognized mapper number as
	// mapper 0 instead of refusing to load it.
	FallbackToNROM bool `json:"fallback_to_nrom"`
}

// PathsConfig contains file and directory paths the host reads/writes.
type PathsConfig struct {
	ROMs     string `json:"roms"`
	SaveData string `json:"save_data"`
	Config   string `json:"config"`
}

// New returns a Config populated with the reference host's defaults.
func New() *Config {
	return &Config{
		Window: WindowConfig{
			Fullscreen: false,
			Scale:      2,
		},
		Video: VideoConfig{
			VSync:  true,
			Filter: "nearest",
		},
		Audio: AudioConfig{
			Enabled:    true,
			SampleRate: 44100,
			BufferSize: 1024,
			Volume:     0.8,
		},
		Input: InputConfig{
			Player1Keys: KeyMapping{
				Up: "W", Down: "S", Left: "A", Right: "D",
				A: "J", B: "K", Start: "Return", Select: "Space",
			},
			Player2Keys: KeyMapping{
				Up: "Up", Down: "Down", Left: "Left", Right: "Right",
				A: "N", B: "M", Start: "RShift", Select: "RCtrl",
			},
		},
		Emulation: EmulationConfig{
			Region: "",
		},
		Mapper: MapperConfig{
			FallbackToNROM: false,
		},
		Paths: PathsConfig{
			ROMs:     "./roms",
			SaveData: "./saves",
			Config:   "./config",
		},
	}
}

// LoadFromFile loads configuration from a JSON file, writing out the
// defaults first if the file doesn't exist yet.
func (c *Config) LoadFromFile(path string) error {
	c.configPath = path

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return c.SaveToFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	c.validate()

	if err := c.createDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	c.loaded = true
	return nil
}

// SaveToFile saves the configuration to a JSON file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	c.configPath = path
	return nil
}

// Save saves the configuration back to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return fmt.Errorf("no config file path set")
	}
	return c.SaveToFile(c.configPath)
}

// validate clamps out-of-range values to sane defaults rather than
// rejecting the whole file over one bad field.
func (c *Config) validate() {
	if c.Window.Scale <= 0 {
		c.Window.Scale = 1
	}
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = 44100
	}
	if c.Audio.BufferSize <= 0 {
		c.Audio.BufferSize = 1024
	}
	if c.Audio.Volume < 0.0 || c.Audio.Volume > 1.0 {
		c.Audio.Volume = 0.8
	}
	switch c.Emulation.Region {
	case "", "NTSC", "PAL":
	default:
		c.Emulation.Region = ""
	}
}

func (c *Config) createDirectories() error {
	for _, dir := range []string{c.Paths.ROMs, c.Paths.SaveData, c.Paths.Config} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetWindowResolution returns the window resolution for the configured scale.
func (c *Config) GetWindowResolution() (int, int) {
	const nesWidth, nesHeight = 256, 240
	return nesWidth * c.Window.Scale, nesHeight * c.Window.Scale
}

// IsLoaded reports whether the configuration was read from an existing file.
func (c *Config) IsLoaded() bool {
	return c.loaded
}

// GetConfigPath returns the path the configuration was loaded from or saved to.
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	return "./config/gones.json"
}
