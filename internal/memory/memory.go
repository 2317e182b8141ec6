// Package memory implements the CPU and PPU address buses for the NES.
package memory

// Memory represents the CPU's view of the NES memory map ($0000-$FFFF).
type Memory struct {
	ram [0x800]uint8

	ppuRegisters PPUInterface
	apuRegisters APUInterface
	inputSystem  InputInterface
	cartridge    CartridgeInterface

	dmaCallback func(uint8)

	bus openBus
}

// PPUMemory represents the PPU's own address bus ($0000-$3FFF).
type PPUMemory struct {
	vram       [0x1000]uint8
	paletteRAM [32]uint8
	cartridge  CartridgeInterface
	mirroring  MirrorMode
}

// MirrorMode represents nametable mirroring mode.
type MirrorMode uint8

const (
	MirrorHorizontal MirrorMode = iota
	MirrorVertical
	MirrorSingleScreen0
	MirrorSingleScreen1
	MirrorFourScreen
)

// PPUInterface defines the interface for PPU register access from the CPU bus.
type PPUInterface interface {
	ReadRegister(address uint16) uint8
	WriteRegister(address uint16, value uint8)
}

// APUInterface defines the interface for APU register access from the CPU bus.
type APUInterface interface {
	WriteRegister(address uint16, value uint8)
	ReadStatus() uint8
}

// InputInterface defines the interface for controller port access.
type InputInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// CartridgeInterface defines the interface the bus uses to reach a cartridge.
type CartridgeInterface interface {
	ReadPRG(address uint16) uint8
	WritePRG(address uint16, value uint8)
	ReadCHR(address uint16) uint8
	WriteCHR(address uint16, value uint8)
}

// New creates a new Memory instance. RAM starts zeroed: real hardware
// power-up RAM contents are unpredictable, but every test vector and
// reset-behavior guarantee this engine documents assumes a clean slate.
func New(ppu PPUInterface, apu APUInterface, cart CartridgeInterface) *Memory {
	return &Memory{
		ppuRegisters: ppu,
		apuRegisters: apu,
		cartridge:    cart,
	}
}

// SetInputSystem sets the input system for controller access.
func (m *Memory) SetInputSystem(input InputInterface) {
	m.inputSystem = input
}

// SetDMACallback sets the callback invoked on a write to $4014 (OAM DMA).
func (m *Memory) SetDMACallback(callback func(uint8)) {
	m.dmaCallback = callback
}

// Tick advances the bus's open-bus decay clock. The scheduler calls this
// once per CPU cycle.
func (m *Memory) Tick(cpuCycle uint64) {
	m.bus.tick(cpuCycle)
}

// OpenBus returns the CPU bus's current (decayed) residual value, for
// devices - chiefly the PPU - whose registers are only partially driven by
// their own read logic and need to merge in open-bus bits.
func (m *Memory) OpenBus() uint8 {
	return m.bus.read()
}

// DriveOpenBus lets an external device (the PPU) record which bits of the
// CPU bus it actually drove on its last register read.
func (m *Memory) DriveOpenBus(value uint8, mask uint8) {
	m.bus.driveMasked(value, mask)
}

// Read reads a byte from the given CPU address.
func (m *Memory) Read(address uint16) uint8 {
	var value uint8

	switch {
	case address < 0x2000:
		value = m.ram[address&0x07FF]
		m.bus.drive(value)

	case address < 0x4000:
		// PPU registers, mirrored every 8 bytes. The PPU drives the bus
		// bits its own register logic actually produces.
		value = m.ppuRegisters.ReadRegister(0x2000 + (address & 0x0007))

	case address < 0x4020:
		switch address {
		case 0x4015:
			value = m.apuRegisters.ReadStatus()
			m.bus.drive(value)
		case 0x4016:
			var driven uint8
			if m.inputSystem != nil {
				driven = m.inputSystem.Read(address) & 0x01
			}
			m.bus.driveMasked(driven, 0x01)
			value = driven | (m.bus.read() &^ 0x01)
		case 0x4017:
			var driven uint8
			if m.inputSystem != nil {
				driven = m.inputSystem.Read(address) & 0x01
			}
			m.bus.driveMasked(driven, 0x01)
			value = driven | (m.bus.read() &^ 0x01)
		default:
			// Write-only or unused APU/IO registers: open bus.
			value = m.bus.read()
		}

	case address >= 0x6000 && address < 0x8000:
		if m.cartridge != nil {
			value = m.cartridge.ReadPRG(address)
			m.bus.drive(value)
		} else {
			value = m.bus.read()
		}

	case address < 0x8000:
		// Cartridge expansion area ($4020-$5FFF): unmapped on this engine.
		value = m.bus.read()

	default:
		if m.cartridge != nil {
			value = m.cartridge.ReadPRG(address)
			m.bus.drive(value)
		} else {
			value = m.bus.read()
		}
	}

	return value
}

// Write writes a byte to the given CPU address. A CPU write always drives
// the full byte onto the bus regardless of what (if anything) accepts it.
func (m *Memory) Write(address uint16, value uint8) {
	m.bus.drive(value)

	switch {
	case address < 0x2000:
		m.ram[address&0x07FF] = value

	case address < 0x4000:
		m.ppuRegisters.WriteRegister(0x2000+(address&0x0007), value)

	case address < 0x4020:
		switch {
		case address == 0x4014:
			if m.dmaCallback != nil {
				m.dmaCallback(value)
			} else {
				m.performOAMDMA(value)
			}
		case address == 0x4016:
			if m.inputSystem != nil {
				m.inputSystem.Write(address, value)
			}
		case address >= 0x4000 && address <= 0x4013, address == 0x4015, address == 0x4017:
			m.apuRegisters.WriteRegister(address, value)
		}
		// $4018-$401F (APU/IO test registers) are ignored.

	case address >= 0x6000 && address < 0x8000:
		if m.cartridge != nil {
			m.cartridge.WritePRG(address, value)
		}

	case address < 0x8000:
		// Cartridge expansion area: unmapped, writes ignored.

	default:
		if m.cartridge != nil {
			m.cartridge.WritePRG(address, value)
		}
	}
}

// performOAMDMA is the fallback DMA path used when no bus-level callback is
// registered (e.g. in unit tests constructing Memory standalone); it copies
// 256 bytes into OAM without modeling the CPU stall, which the scheduler's
// TriggerOAMDMA is responsible for.
func (m *Memory) performOAMDMA(page uint8) {
	baseAddress := uint16(page) << 8
	for i := uint16(0); i < 256; i++ {
		value := m.Read(baseAddress + i)
		m.ppuRegisters.WriteRegister(0x2004, value)
	}
}

// NewPPUMemory creates a new PPU memory instance.
func NewPPUMemory(cart CartridgeInterface, mirroring MirrorMode) *PPUMemory {
	mem := &PPUMemory{
		cartridge: cart,
		mirroring: mirroring,
	}
	for i := 0; i < 32; i += 4 {
		mem.paletteRAM[i] = 0x0F
	}
	return mem
}

// Read reads from PPU address space ($0000-$3FFF).
func (pm *PPUMemory) Read(address uint16) uint8 {
	address &= 0x3FFF

	switch {
	case address < 0x2000:
		return pm.cartridge.ReadCHR(address)

	case address < 0x3000:
		return pm.readNametable(address)

	case address < 0x3F00:
		return pm.readNametable(address - 0x1000)

	default:
		return pm.readPalette(address)
	}
}

// Write writes to PPU address space ($0000-$3FFF).
func (pm *PPUMemory) Write(address uint16, value uint8) {
	address &= 0x3FFF

	switch {
	case address < 0x2000:
		pm.cartridge.WriteCHR(address, value)

	case address < 0x3000:
		pm.writeNametable(address, value)

	case address < 0x3F00:
		pm.writeNametable(address-0x1000, value)

	default:
		pm.writePalette(address, value)
	}
}

func (pm *PPUMemory) readNametable(address uint16) uint8 {
	return pm.vram[pm.getNametableIndex(address)]
}

func (pm *PPUMemory) writeNametable(address uint16, value uint8) {
	pm.vram[pm.getNametableIndex(address)] = value
}

// getNametableIndex calculates the actual VRAM index based on mirroring mode.
func (pm *PPUMemory) getNametableIndex(address uint16) uint16 {
	address &= 0x0FFF
	nametable := (address >> 10) & 3
	offset := address & 0x3FF

	switch pm.mirroring {
	case MirrorHorizontal:
		if nametable >= 2 {
			return 0x400 + offset
		}
		return offset

	case MirrorVertical:
		if nametable == 1 || nametable == 3 {
			return 0x400 + offset
		}
		return offset

	case MirrorSingleScreen0:
		return offset

	case MirrorSingleScreen1:
		return 0x400 + offset

	case MirrorFourScreen:
		return uint16(nametable)*0x400 + offset

	default:
		return offset
	}
}

// paletteIndex folds $3F10/$3F14/$3F18/$3F1C onto their $3F00/04/08/0C
// background-color aliases and wraps the whole range into 32 bytes.
func paletteIndex(address uint16) uint16 {
	index := (address - 0x3F00) & 0x1F
	if index&0x13 == 0x10 {
		index &= 0x0F
	}
	return index
}

func (pm *PPUMemory) readPalette(address uint16) uint8 {
	return pm.paletteRAM[paletteIndex(address)]
}

func (pm *PPUMemory) writePalette(address uint16, value uint8) {
	pm.paletteRAM[paletteIndex(address)] = value
}
