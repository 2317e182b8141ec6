package cartridge

// Mapper001 implements MMC1 (iNES mapper 1), used by Zelda, Metroid, and
// Mega Man 2. Every CPU write to $8000-$FFFF shifts one bit into a 5-bit
// serial register; on the fifth write the accumulated value is latched into
// one of four internal registers selected by the address.
type Mapper001 struct {
	cart *Cartridge

	prgBanks uint8 // number of 16KB PRG banks

	shiftRegister uint8
	shiftCount    uint8

	mirroring uint8 // 0=single-low, 1=single-high, 2=vertical, 3=horizontal
	prgMode   uint8 // 0/1=32KB, 2=fix first bank, 3=fix last bank
	chrMode   uint8 // 0=8KB, 1=4KB

	chrBank0 uint8
	chrBank1 uint8
	prgBank  uint8

	prgRAMEnabled bool
}

// NewMapper001 creates a new MMC1 mapper bound to cart's ROM and SRAM.
func NewMapper001(cart *Cartridge) *Mapper001 {
	return &Mapper001{
		cart:          cart,
		prgBanks:      uint8(len(cart.prgROM) / 0x4000),
		shiftRegister: 0x10,
		prgMode:       3,
		mirroring:     mirrorModeToMMC1(cart.mirror),
		prgRAMEnabled: true,
	}
}

func mirrorModeToMMC1(mode MirrorMode) uint8 {
	switch mode {
	case MirrorVertical:
		return 2
	case MirrorHorizontal:
		return 3
	case MirrorSingleScreen1:
		return 1
	default:
		return 0
	}
}

// ReadPRG reads from PRG-RAM ($6000-$7FFF) or the bank-switched PRG-ROM
// window ($8000-$FFFF).
func (m *Mapper001) ReadPRG(address uint16) uint8 {
	switch {
	case address >= 0x6000 && address < 0x8000:
		if m.prgRAMEnabled {
			return m.cart.sram[address-0x6000]
		}
		return 0

	case address >= 0x8000 && address < 0xC000:
		var bank uint8
		switch m.prgMode {
		case 0, 1:
			bank = m.prgBank & 0xFE
		case 2:
			bank = 0
		case 3:
			bank = m.prgBank
		}
		return m.readPRGBank(bank, address-0x8000)

	default: // 0xC000-0xFFFF
		var bank uint8
		switch m.prgMode {
		case 0, 1:
			bank = (m.prgBank & 0xFE) | 1
		case 2:
			bank = m.prgBank
		case 3:
			bank = m.prgBanks - 1
		}
		return m.readPRGBank(bank, address-0xC000)
	}
}

func (m *Mapper001) readPRGBank(bank uint8, offset uint16) uint8 {
	index := int(bank)*0x4000 + int(offset)
	if index >= 0 && index < len(m.cart.prgROM) {
		return m.cart.prgROM[index]
	}
	return 0
}

// WritePRG handles PRG-RAM writes and the MMC1 serial shift-register
// protocol at $8000-$FFFF.
func (m *Mapper001) WritePRG(address uint16, value uint8) {
	switch {
	case address >= 0x6000 && address < 0x8000:
		if m.prgRAMEnabled {
			m.cart.sram[address-0x6000] = value
		}

	case address >= 0x8000:
		if value&0x80 != 0 {
			m.shiftRegister = 0x10
			m.shiftCount = 0
			m.prgMode = 3
			return
		}

		m.shiftRegister = (m.shiftRegister >> 1) | ((value & 1) << 4)
		m.shiftCount++

		if m.shiftCount == 5 {
			m.writeInternalRegister(address, m.shiftRegister)
			m.shiftRegister = 0x10
			m.shiftCount = 0
		}
	}
}

func (m *Mapper001) writeInternalRegister(address uint16, value uint8) {
	switch {
	case address < 0xA000:
		m.mirroring = value & 0x03
		m.prgMode = (value >> 2) & 0x03
		m.chrMode = (value >> 4) & 0x01
	case address < 0xC000:
		m.chrBank0 = value & 0x1F
	case address < 0xE000:
		m.chrBank1 = value & 0x1F
	default:
		m.prgBank = value & 0x0F
		m.prgRAMEnabled = value&0x10 == 0
	}
}

// ReadCHR reads from the bank-switched CHR window.
func (m *Mapper001) ReadCHR(address uint16) uint8 {
	index := m.chrIndex(address)
	if index >= 0 && index < len(m.cart.chrROM) {
		return m.cart.chrROM[index]
	}
	return 0
}

// WriteCHR writes to CHR-RAM only; CHR-ROM is read-only.
func (m *Mapper001) WriteCHR(address uint16, value uint8) {
	if !m.cart.hasCHRRAM {
		return
	}
	index := m.chrIndex(address)
	if index >= 0 && index < len(m.cart.chrROM) {
		m.cart.chrROM[index] = value
	}
}

func (m *Mapper001) chrIndex(address uint16) int {
	if m.chrMode == 0 {
		bank := m.chrBank0 & 0xFE
		if address >= 0x1000 {
			bank |= 1
		}
		return int(bank)*0x1000 + int(address&0x0FFF)
	}
	if address < 0x1000 {
		return int(m.chrBank0)*0x1000 + int(address)
	}
	return int(m.chrBank1)*0x1000 + int(address-0x1000)
}

// MirrorMode implements cartridge.DynamicMirror.
func (m *Mapper001) MirrorMode() MirrorMode {
	switch m.mirroring {
	case 0:
		return MirrorSingleScreen0
	case 1:
		return MirrorSingleScreen1
	case 2:
		return MirrorVertical
	default:
		return MirrorHorizontal
	}
}
