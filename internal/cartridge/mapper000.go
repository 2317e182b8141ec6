package cartridge

// Mapper000 implements NROM (iNES mapper 0): no bank switching, 16KB or
// 32KB PRG ROM (16KB mirrored to fill the 32KB window), 8KB CHR ROM/RAM,
// and an 8KB PRG RAM window at $6000-$7FFF.
type Mapper000 struct {
	cart     *Cartridge
	prgBanks uint8 // number of 16KB PRG banks (1 or 2)
}

// NewMapper000 creates a new NROM mapper bound to cart's ROM and SRAM.
func NewMapper000(cart *Cartridge) *Mapper000 {
	return &Mapper000{
		cart:     cart,
		prgBanks: uint8(len(cart.prgROM) / 0x4000),
	}
}

// ReadPRG reads PRG-RAM at $6000-$7FFF and the 32KB PRG ROM window at
// $8000-$FFFF, mirroring a 16KB ROM to fill both halves.
func (m *Mapper000) ReadPRG(address uint16) uint8 {
	switch {
	case address >= 0x8000:
		if len(m.cart.prgROM) == 0 {
			return 0
		}
		offset := address - 0x8000
		if m.prgBanks == 1 {
			offset &= 0x3FFF
		}
		if int(offset) < len(m.cart.prgROM) {
			return m.cart.prgROM[offset]
		}
		return 0

	case address >= 0x6000 && address < 0x8000:
		return m.cart.sram[address-0x6000]

	default:
		return 0
	}
}

// WritePRG writes to PRG RAM; writes to the ROM window are ignored since
// NROM has no bank-select registers to receive them.
func (m *Mapper000) WritePRG(address uint16, value uint8) {
	if address >= 0x6000 && address < 0x8000 {
		m.cart.sram[address-0x6000] = value
	}
}

// ReadCHR reads the 8KB CHR ROM/RAM window at PPU addresses $0000-$1FFF.
func (m *Mapper000) ReadCHR(address uint16) uint8 {
	if address < 0x2000 && int(address) < len(m.cart.chrROM) {
		return m.cart.chrROM[address]
	}
	return 0
}

// WriteCHR writes to CHR RAM only; CHR ROM is read-only.
func (m *Mapper000) WriteCHR(address uint16, value uint8) {
	if address < 0x2000 && m.cart.hasCHRRAM && int(address) < len(m.cart.chrROM) {
		m.cart.chrROM[address] = value
	}
}
