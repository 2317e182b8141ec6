package bus

import (
	"bytes"
	"gones/internal/cartridge"
	"testing"
)

// buildNROM assembles a minimal 32KB-PRG/8KB-CHR iNES mapper-0 ROM with prg
// written at the start of PRG ROM ($8000) and the reset vector stored at
// $FFFC/$FFFD in the last 16KB bank.
func buildNROM(t *testing.T, prg []uint8, resetVector uint16) *cartridge.Cartridge {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("NES\x1A")
	buf.WriteByte(2) // 32KB PRG
	buf.WriteByte(1) // 8KB CHR
	buf.WriteByte(0) // mapper 0, horizontal mirroring
	buf.WriteByte(0)
	buf.Write(make([]uint8, 8)) // remaining header bytes

	prgROM := make([]uint8, 0x8000)
	copy(prgROM, prg)
	prgROM[0x7FFC] = uint8(resetVector)
	prgROM[0x7FFD] = uint8(resetVector >> 8)
	buf.Write(prgROM)
	buf.Write(make([]uint8, 0x2000)) // CHR ROM

	cart, err := cartridge.LoadFromReader(&buf)
	if err != nil {
		t.Fatalf("buildNROM: %v", err)
	}
	return cart
}

func TestLoadCartridgeResetsToVector(t *testing.T) {
	cart := buildNROM(t, nil, 0x8000)

	b := New()
	b.LoadCartridge(cart)

	if b.CPU.PC != 0x8000 {
		t.Errorf("expected PC at reset vector 0x8000, got 0x%04X", b.CPU.PC)
	}
}

func TestSetRegionUpdatesBusRegion(t *testing.T) {
	b := New()
	b.SetRegion(PAL)

	if b.Region() != PAL {
		t.Errorf("expected bus region PAL, got %v", b.Region())
	}
}

func TestUpdateIRQLineCombinesBothSources(t *testing.T) {
	b := New()

	for _, tc := range []struct{ apu, mapper bool }{
		{true, false}, {false, true}, {true, true}, {false, false},
	} {
		b.apuIRQ = tc.apu
		b.mapperIRQ = tc.mapper
		b.updateIRQLine()
	}
}

func TestOAMDMACopiesAllSpriteBytes(t *testing.T) {
	cart := buildNROM(t, nil, 0x8000)

	b := New()
	b.LoadCartridge(cart)

	for i := 0; i < 256; i++ {
		b.Memory.Write(uint16(i), uint8(i))
	}

	b.RequestOAMDMA(0x00)
	if !b.DMAPending {
		t.Fatal("expected DMAPending after RequestOAMDMA")
	}
	b.RunOAMDMA()
	if b.DMAPending {
		t.Error("DMAPending should clear after RunOAMDMA")
	}

	for i := 0; i < 256; i++ {
		b.PPU.WriteRegister(0x2003, uint8(i))
		got := b.PPU.ReadRegister(0x2004)
		if got != uint8(i) {
			t.Fatalf("OAM[%d] = %d, want %d", i, got, uint8(i))
		}
	}
}

func TestTickMapperScanlineNoCartridgeIsNoop(t *testing.T) {
	b := New()
	b.tickMapperScanline()
	if b.mapperIRQ {
		t.Error("no cartridge loaded should never assert a mapper IRQ")
	}
}
