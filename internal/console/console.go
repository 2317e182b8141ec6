// Package console is the thin facade a host program drives: it owns the
// bus and scheduler and exposes the engine's public surface (load a ROM,
// reset, feed controller state, run a frame, drain audio) without the host
// ever touching CPU/PPU/APU/Cartridge directly.
package console

import (
	"os"

	"gones/internal/bus"
	"gones/internal/cartridge"
	"gones/internal/scheduler"
)

// Region mirrors bus.Region so callers never need to import internal/bus
// themselves just to read back the active timing region.
type Region = bus.Region

const (
	NTSC = bus.NTSC
	PAL  = bus.PAL
)

// Console is the engine's external entry point.
type Console struct {
	bus       *bus.Bus
	scheduler *scheduler.Scheduler
}

// New creates a Console with no cartridge loaded.
func New() *Console {
	b := bus.New()
	return &Console{
		bus:       b,
		scheduler: scheduler.New(b),
	}
}

// LoadROM reads an iNES file from disk and attaches it to the bus,
// resetting the CPU to fetch the cartridge's reset vector. An unrecognized
// mapper number falls back to NROM rather than failing to load.
func (c *Console) LoadROM(path string) error {
	return c.LoadROMWithOptions(path, true)
}

// LoadROMWithOptions is LoadROM with explicit control over the unsupported-
// mapper fallback.
func (c *Console) LoadROMWithOptions(path string, fallbackToNROM bool) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	cart, err := cartridge.LoadFromReaderWithOptions(file, cartridge.Options{FallbackToNROM: fallbackToNROM})
	if err != nil {
		return err
	}

	c.bus.LoadCartridge(cart)
	return nil
}

// SetRegion overrides the NTSC/PAL timing region autodetected from the
// cartridge header.
func (c *Console) SetRegion(region Region) {
	c.bus.SetRegion(region)
}

// Reset performs a power-on-equivalent reset, re-reading the reset vector
// from whatever cartridge is currently loaded.
func (c *Console) Reset() {
	c.bus.Reset()
}

// SetController sets one controller's eight button states at once, in NES
// order: A, B, Select, Start, Up, Down, Left, Right.
func (c *Console) SetController(port int, buttons [8]bool) {
	c.bus.SetControllerButtons(port, buttons)
}

// RunFrame advances the emulation until the PPU completes a frame or the
// scheduler's safety ceiling trips, and returns the resulting framebuffer.
func (c *Console) RunFrame() [256 * 240]uint32 {
	c.scheduler.RunFrame()
	return c.bus.PPU.GetFrameBuffer()
}

// DrainAudio returns every audio sample generated since the last call.
func (c *Console) DrainAudio() []float32 {
	return c.bus.APU.GetSamples()
}

// Region reports the active NTSC/PAL timing region, inferred from the
// loaded cartridge's iNES header.
func (c *Console) Region() Region {
	return c.bus.Region()
}

// PRGRAM exposes the cartridge's battery-backed PRG RAM for host-side save
// persistence. Returns nil if no cartridge is loaded.
func (c *Console) PRGRAM() []byte {
	if c.bus.Cartridge == nil {
		return nil
	}
	return c.bus.Cartridge.PRGRAM()
}

// HasBattery reports whether the loaded cartridge's PRG RAM should be
// persisted across sessions.
func (c *Console) HasBattery() bool {
	return c.bus.Cartridge != nil && c.bus.Cartridge.HasBattery()
}

// CPUSnapshot is a debug introspection view of the CPU's registers.
type CPUSnapshot struct {
	A, X, Y, SP uint8
	PC          uint16
	Status      uint8
}

// DebugCPU returns a snapshot of the CPU's registers for debug tooling.
func (c *Console) DebugCPU() CPUSnapshot {
	cpu := c.bus.CPU
	return CPUSnapshot{
		A:      cpu.A,
		X:      cpu.X,
		Y:      cpu.Y,
		SP:     cpu.SP,
		PC:     cpu.PC,
		Status: cpu.GetStatusByte(),
	}
}

// DebugPPU is a debug introspection view of the PPU's scan position.
type DebugPPU struct {
	Scanline int
	Cycle    int
	Frame    uint64
}

// DebugPPU returns the PPU's current scan position for debug tooling.
func (c *Console) DebugPPUState() DebugPPU {
	return DebugPPU{
		Scanline: c.bus.PPU.GetScanline(),
		Cycle:    c.bus.PPU.GetCycle(),
		Frame:    c.bus.PPU.GetFrameCount(),
	}
}
