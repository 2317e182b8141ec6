package cartridge

import (
	"bytes"
	"testing"
)

// buildMMC1ROM builds an iNES mapper-1 ROM with prgBankCount 16KB PRG banks
// and one 8KB CHR bank, each bank filled with its own index so reads can
// prove which bank is actually mapped in.
func buildMMC1ROM(t *testing.T, prgBankCount int) *Cartridge {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("NES\x1A")
	buf.WriteByte(uint8(prgBankCount))
	buf.WriteByte(1) // 8KB CHR
	buf.WriteByte(0x10) // mapper low nibble 1 (MMC1), horizontal mirroring
	buf.WriteByte(0x00)
	buf.Write(make([]uint8, 8))

	for bank := 0; bank < prgBankCount; bank++ {
		buf.Write(bytes.Repeat([]byte{byte(bank + 1)}, 0x4000))
	}
	buf.Write(bytes.Repeat([]byte{0xAA}, 0x2000))

	cart, err := LoadFromReader(&buf)
	if err != nil {
		t.Fatalf("buildMMC1ROM: %v", err)
	}
	return cart
}

// writeMMC1Register shifts value's low 5 bits into the MMC1 serial register
// one bit at a time, LSB first, exactly as real software does.
func writeMMC1Register(cart *Cartridge, address uint16, value uint8) {
	for i := 0; i < 5; i++ {
		bit := (value >> i) & 1
		cart.WritePRG(address, bit)
	}
}

func TestMMC1PowerOnDefaultsToPRGMode3(t *testing.T) {
	cart := buildMMC1ROM(t, 4)

	// Mode 3 fixes the last bank at $C000-$FFFF and bank 0 (the register's
	// reset value) at $8000-$BFFF.
	if got := cart.ReadPRG(0x8000); got != 1 {
		t.Errorf("expected bank 0 at $8000 on power-on, got %d", got)
	}
	if got := cart.ReadPRG(0xC000); got != 4 {
		t.Errorf("expected the last bank fixed at $C000 on power-on, got %d", got)
	}
}

func TestMMC1SwitchableBankFollowsPRGBankRegister(t *testing.T) {
	cart := buildMMC1ROM(t, 4)

	writeMMC1Register(cart, 0xE000, 2) // select PRG bank 2 for the switchable window

	if got := cart.ReadPRG(0x8000); got != 3 {
		t.Errorf("expected bank index 2 (marker 3) at $8000, got %d", got)
	}
	if got := cart.ReadPRG(0xC000); got != 4 {
		t.Errorf("expected $C000 to stay fixed at the last bank, got %d", got)
	}
}

func TestMMC1ResetBitReinitializesShiftRegister(t *testing.T) {
	cart := buildMMC1ROM(t, 4)

	cart.WritePRG(0x8000, 1) // one bit shifted in
	cart.WritePRG(0x8000, 0x80) // reset bit set: must reinitialize, not latch

	// A reset must not have completed a 5-bit shift, so the PRG bank
	// register (reset to 0) should still be selecting bank 0.
	if got := cart.ReadPRG(0x8000); got != 1 {
		t.Errorf("expected bank 0 still selected after a mid-sequence reset, got %d", got)
	}
}

func TestMMC1PRGRAMToggle(t *testing.T) {
	cart := buildMMC1ROM(t, 2)

	cart.WritePRG(0x6000, 0x42)
	if got := cart.ReadPRG(0x6000); got != 0x42 {
		t.Fatalf("expected PRG RAM enabled by default, got %d", got)
	}

	writeMMC1Register(cart, 0xE000, 0x10) // bit4 set disables PRG RAM
	cart.WritePRG(0x6000, 0x99) // must be ignored: RAM is disabled
	if got := cart.ReadPRG(0x6000); got != 0 {
		t.Errorf("expected disabled PRG RAM to read as 0, got %d", got)
	}
}

func TestMMC1CHRModeSwitchesBankGranularity(t *testing.T) {
	cart := buildMMC1ROM(t, 2)

	for i := range cart.chrROM {
		cart.chrROM[i] = byte(i / 0x1000)
	}

	writeMMC1Register(cart, 0x8000, 0x10) // chrMode=1 (4KB banks)
	writeMMC1Register(cart, 0xA000, 1)    // chrBank0 selects 4KB bank 1

	if got := cart.ReadCHR(0x0000); got != 1 {
		t.Errorf("expected 4KB CHR bank 1 mapped at $0000, got %d", got)
	}
}
