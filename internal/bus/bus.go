// Package bus wires the CPU, PPU, APU, cartridge and input together into
// the NES's shared address space and interrupt lines.
package bus

import (
	"gones/internal/apu"
	"gones/internal/cartridge"
	"gones/internal/cpu"
	"gones/internal/input"
	"gones/internal/memory"
	"gones/internal/ppu"
)

// Bus owns every component and the glue callbacks between them. It does not
// itself run the master clock loop - see internal/scheduler for that.
type Bus struct {
	CPU       *cpu.CPU
	PPU       *ppu.PPU
	APU       *apu.APU
	Memory    *memory.Memory
	Input     *input.InputState
	Cartridge *cartridge.Cartridge

	region Region

	DMAPending    bool
	dmaSourcePage uint8

	apuIRQ    bool
	mapperIRQ bool

	pendingDMCStall int
}

// Region selects NTSC or PAL timing for every component on the bus.
type Region int

const (
	NTSC Region = iota
	PAL
)

// New creates a bus with no cartridge loaded.
func New() *Bus {
	b := &Bus{
		PPU:   ppu.New(),
		APU:   apu.New(),
		Input: input.NewInputState(),
	}

	b.Memory = memory.New(b.PPU, b.APU, nil)
	b.Memory.SetInputSystem(b.Input)
	b.CPU = cpu.New(b.Memory)

	b.wireCallbacks()
	b.Reset()

	return b
}

func (b *Bus) wireCallbacks() {
	b.PPU.SetNMICallback(func() { b.CPU.SetNMI(true); b.CPU.SetNMI(false) })
	b.PPU.SetOpenBus(memoryOpenBus{b.Memory})
	b.PPU.SetScanlineCallback(b.tickMapperScanline)
	b.APU.SetMemoryReader(b.Memory.Read)
	b.APU.SetIRQCallback(func(asserted bool) {
		b.apuIRQ = asserted
		b.updateIRQLine()
	})
	b.APU.SetDMAStallCallback(b.ChargeDMCStall)
	b.Memory.SetDMACallback(b.RequestOAMDMA)
}

// ChargeDMCStall records CPU cycles a DMC sample fetch stole from the bus;
// the scheduler drains this once per cycle via DrainDMCStall.
func (b *Bus) ChargeDMCStall(cycles int) {
	b.pendingDMCStall += cycles
}

// DrainDMCStall returns and clears the CPU cycles owed to DMC DMA fetches
// since the last drain.
func (b *Bus) DrainDMCStall() int {
	stall := b.pendingDMCStall
	b.pendingDMCStall = 0
	return stall
}

// tickMapperScanline lets a scanline-counting mapper (MMC3) clock its IRQ
// counter on a PPU address-line A12 rising edge, independent of the APU's
// /IRQ line.
func (b *Bus) tickMapperScanline() {
	if b.Cartridge == nil {
		return
	}
	b.Cartridge.TickScanline()
	b.mapperIRQ = b.Cartridge.IRQPending()
	b.updateIRQLine()
}

// updateIRQLine asserts /IRQ on the CPU whenever either the APU's frame
// counter/DMC or the cartridge mapper is asserting it; the 2A03's single
// IRQ pin is a wired-OR of every source that can pull it low.
func (b *Bus) updateIRQLine() {
	b.CPU.SetIRQ(b.apuIRQ || b.mapperIRQ)
}

// memoryOpenBus adapts Memory's OpenBus/DriveOpenBus methods to the
// ppu.OpenBus interface without colliding with Memory's own Read/Write
// names, which already mean "CPU address bus access".
type memoryOpenBus struct {
	mem *memory.Memory
}

func (m memoryOpenBus) Read() uint8                   { return m.mem.OpenBus() }
func (m memoryOpenBus) Drive(value uint8, mask uint8) { m.mem.DriveOpenBus(value, mask) }

// SetRegion configures NTSC/PAL timing on every region-aware component.
func (b *Bus) SetRegion(region Region) {
	b.region = region
	if region == PAL {
		b.PPU.SetRegion(ppu.PAL)
		b.APU.SetRegion(apu.PAL)
	} else {
		b.PPU.SetRegion(ppu.NTSC)
		b.APU.SetRegion(apu.NTSC)
	}
}

// Region returns the bus's active timing region.
func (b *Bus) Region() Region {
	return b.region
}

// Reset resets every component to its power-up/reset state.
func (b *Bus) Reset() {
	b.CPU.Reset()
	b.PPU.Reset()
	b.APU.Reset()
	b.Input.Reset()
	b.DMAPending = false
}

// LoadCartridge attaches a cartridge, rebuilding the memory maps that depend
// on its mirroring mode and resetting the CPU to fetch the new reset vector.
func (b *Bus) LoadCartridge(cart *cartridge.Cartridge) {
	b.Cartridge = cart
	b.Memory = memory.New(b.PPU, b.APU, cart)
	b.Memory.SetInputSystem(b.Input)
	b.CPU = cpu.New(b.Memory)

	ppuMemory := memory.NewPPUMemory(cart, convertMirrorMode(cart.GetMirrorMode()))
	b.PPU.SetMemory(ppuMemory)

	if cart.Region() == cartridge.PAL {
		b.SetRegion(PAL)
	} else {
		b.SetRegion(NTSC)
	}

	b.wireCallbacks()
	b.CPU.Reset()
	b.PPU.Reset()
}

// RequestOAMDMA is invoked by a $4014 write; the scheduler is responsible
// for charging the CPU the resulting stall cycles before the transfer is
// visible to the running program.
func (b *Bus) RequestOAMDMA(sourcePage uint8) {
	b.DMAPending = true
	b.dmaSourcePage = sourcePage
}

// RunOAMDMA performs the 256-byte OAM copy. Called by the scheduler once it
// has charged the CPU stall.
func (b *Bus) RunOAMDMA() {
	base := uint16(b.dmaSourcePage) << 8
	for i := 0; i < 256; i++ {
		b.PPU.WriteOAM(uint8(i), b.Memory.Read(base+uint16(i)))
	}
	b.DMAPending = false
}

// convertMirrorMode translates the cartridge package's mirroring enum into
// the memory package's - both mirror the same iNES flag bits but the two
// packages deliberately don't import each other.
func convertMirrorMode(mode cartridge.MirrorMode) memory.MirrorMode {
	switch mode {
	case cartridge.MirrorVertical:
		return memory.MirrorVertical
	case cartridge.MirrorSingleScreen0:
		return memory.MirrorSingleScreen0
	case cartridge.MirrorSingleScreen1:
		return memory.MirrorSingleScreen1
	case cartridge.MirrorFourScreen:
		return memory.MirrorFourScreen
	default:
		return memory.MirrorHorizontal
	}
}

// SetControllerButtons sets every button of one controller at once.
func (b *Bus) SetControllerButtons(controller int, buttons [8]bool) {
	switch controller {
	case 0, 1:
		b.Input.SetButtons1(buttons)
	case 2:
		b.Input.SetButtons2(buttons)
	}
}
