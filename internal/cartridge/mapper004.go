package cartridge

// Mapper004 implements MMC3 (iNES mapper 4), used by Super Mario Bros. 2/3
// and Mega Man 3-6. It switches 8KB PRG banks and 1KB/2KB CHR banks through
// an 8-register bank table, and raises a mapper IRQ from a counter the PPU
// clocks on each CHR address-line A12 rising edge.
type Mapper004 struct {
	cart *Cartridge

	prgBanks uint8 // number of 8KB PRG banks

	bankSelect uint8
	prgMode    uint8 // 0 or 1
	chrMode    uint8 // 0 or 1
	registers  [8]uint8

	mirroring MirrorMode

	prgRAMEnabled      bool
	prgRAMWriteProtect bool

	irqLatch      uint8
	irqCounter    uint16
	irqEnabled    bool
	irqPending    bool
	irqReloadFlag bool
}

// NewMapper004 creates a new MMC3 mapper bound to cart's ROM and SRAM.
func NewMapper004(cart *Cartridge) *Mapper004 {
	return &Mapper004{
		cart:          cart,
		prgBanks:      uint8(len(cart.prgROM) / 0x2000),
		mirroring:     cart.mirror,
		prgRAMEnabled: true,
	}
}

// ReadPRG reads PRG-RAM and the four 8KB PRG windows at $8000-$FFFF.
func (m *Mapper004) ReadPRG(address uint16) uint8 {
	switch {
	case address >= 0x6000 && address < 0x8000:
		if m.prgRAMEnabled {
			return m.cart.sram[address-0x6000]
		}
		return 0

	case address >= 0x8000 && address < 0xA000:
		if m.prgMode == 0 {
			return m.readPRGBank(m.registers[6], address-0x8000)
		}
		return m.readPRGBank(m.prgBanks-2, address-0x8000)

	case address >= 0xA000 && address < 0xC000:
		return m.readPRGBank(m.registers[7], address-0xA000)

	case address >= 0xC000 && address < 0xE000:
		if m.prgMode == 0 {
			return m.readPRGBank(m.prgBanks-2, address-0xC000)
		}
		return m.readPRGBank(m.registers[6], address-0xC000)

	default: // 0xE000-0xFFFF, fixed to the last bank
		return m.readPRGBank(m.prgBanks-1, address-0xE000)
	}
}

func (m *Mapper004) readPRGBank(bank uint8, offset uint16) uint8 {
	index := int(bank)*0x2000 + int(offset)
	if index >= 0 && index < len(m.cart.prgROM) {
		return m.cart.prgROM[index]
	}
	return 0
}

// WritePRG dispatches the eight even/odd register pairs at $8000-$FFFF.
func (m *Mapper004) WritePRG(address uint16, value uint8) {
	switch {
	case address >= 0x6000 && address < 0x8000:
		if m.prgRAMEnabled && !m.prgRAMWriteProtect {
			m.cart.sram[address-0x6000] = value
		}

	case address >= 0x8000 && address < 0xA000:
		if address&1 == 0 {
			m.bankSelect = value & 0x07
			m.prgMode = (value >> 6) & 0x01
			m.chrMode = (value >> 7) & 0x01
		} else {
			m.registers[m.bankSelect] = value
		}

	case address >= 0xA000 && address < 0xC000:
		if address&1 == 0 {
			if value&1 == 0 {
				m.mirroring = MirrorVertical
			} else {
				m.mirroring = MirrorHorizontal
			}
		} else {
			m.prgRAMWriteProtect = value&0x40 != 0
			m.prgRAMEnabled = value&0x80 != 0
		}

	case address >= 0xC000 && address < 0xE000:
		if address&1 == 0 {
			m.irqLatch = value
		} else {
			m.irqCounter = 0
			m.irqReloadFlag = true
		}

	default: // 0xE000-0xFFFF
		if address&1 == 0 {
			m.irqEnabled = false
			m.irqPending = false
		} else {
			m.irqEnabled = true
		}
	}
}

// ReadCHR reads the six bank-switched CHR windows, arranged 2x2KB+4x1KB
// with the order flipped by chrMode.
func (m *Mapper004) ReadCHR(address uint16) uint8 {
	index := m.chrIndex(address)
	if index >= 0 && index < len(m.cart.chrROM) {
		return m.cart.chrROM[index]
	}
	return 0
}

// WriteCHR writes to CHR-RAM only; CHR-ROM is read-only.
func (m *Mapper004) WriteCHR(address uint16, value uint8) {
	if !m.cart.hasCHRRAM {
		return
	}
	index := m.chrIndex(address)
	if index >= 0 && index < len(m.cart.chrROM) {
		m.cart.chrROM[index] = value
	}
}

func (m *Mapper004) chrIndex(address uint16) int {
	if m.chrMode == 0 {
		switch {
		case address < 0x0800:
			return int(m.registers[0]&0xFE)*0x400 + int(address)
		case address < 0x1000:
			return int(m.registers[1]&0xFE)*0x400 + int(address-0x0800)
		case address < 0x1400:
			return int(m.registers[2])*0x400 + int(address-0x1000)
		case address < 0x1800:
			return int(m.registers[3])*0x400 + int(address-0x1400)
		case address < 0x1C00:
			return int(m.registers[4])*0x400 + int(address-0x1800)
		default:
			return int(m.registers[5])*0x400 + int(address-0x1C00)
		}
	}
	switch {
	case address < 0x0400:
		return int(m.registers[2])*0x400 + int(address)
	case address < 0x0800:
		return int(m.registers[3])*0x400 + int(address-0x0400)
	case address < 0x0C00:
		return int(m.registers[4])*0x400 + int(address-0x0800)
	case address < 0x1000:
		return int(m.registers[5])*0x400 + int(address-0x0C00)
	case address < 0x1800:
		return int(m.registers[0]&0xFE)*0x400 + int(address-0x1000)
	default:
		return int(m.registers[1]&0xFE)*0x400 + int(address-0x1800)
	}
}

// TickScanline implements cartridge.ScanlineTicker, decrementing (or
// reloading) the IRQ counter on each accepted PPU address-line A12 rising
// edge. A latch of 0 reloads to 256, not 0, so the IRQ fires 256 ticks
// later rather than on the very next one.
func (m *Mapper004) TickScanline() {
	if m.irqCounter == 0 || m.irqReloadFlag {
		if m.irqLatch == 0 {
			m.irqCounter = 256
		} else {
			m.irqCounter = uint16(m.irqLatch)
		}
		m.irqReloadFlag = false
	} else {
		m.irqCounter--
	}

	if m.irqCounter == 0 && m.irqEnabled {
		m.irqPending = true
	}
}

// IRQPending implements cartridge.IRQSource.
func (m *Mapper004) IRQPending() bool {
	return m.irqPending
}

// ClearIRQ implements cartridge.IRQSource.
func (m *Mapper004) ClearIRQ() {
	m.irqPending = false
}

// MirrorMode implements cartridge.DynamicMirror.
func (m *Mapper004) MirrorMode() MirrorMode {
	return m.mirroring
}
