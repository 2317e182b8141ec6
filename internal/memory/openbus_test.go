package memory

import "testing"

// TestOpenBusRetainsDrivenBitsUntilDecay exercises the residual-charge
// behavior new reads into unmapped space rely on: a driven byte reads back
// unchanged well within the decay window.
func TestOpenBusRetainsDrivenBitsUntilDecay(t *testing.T) {
	mem := New(&MockPPU{}, &MockAPU{}, &MockCartridge{})

	mem.Tick(0)
	mem.DriveOpenBus(0xA5, 0xFF)
	mem.Tick(1000)

	if got := mem.OpenBus(); got != 0xA5 {
		t.Errorf("expected the driven byte 0xA5 to still be readable, got 0x%02X", got)
	}
}

// TestOpenBusDecaysAfterLongIdlePeriod confirms bits a device drove do
// eventually read back as 0 once enough CPU cycles pass undriven.
func TestOpenBusDecaysAfterLongIdlePeriod(t *testing.T) {
	mem := New(&MockPPU{}, &MockAPU{}, &MockCartridge{})

	mem.Tick(0)
	mem.DriveOpenBus(0xFF, 0xFF)
	mem.Tick(decayCycles + 1)

	if got := mem.OpenBus(); got != 0x00 {
		t.Errorf("expected all bits to have decayed to 0 after %d cycles, got 0x%02X", decayCycles+1, got)
	}
}

// TestOpenBusPartialMaskLeavesOtherBitsTimerAlone proves a partially driven
// read (e.g. PPUSTATUS driving only its top three bits) doesn't refresh the
// decay timer of bits it didn't touch.
func TestOpenBusPartialMaskLeavesOtherBitsTimerAlone(t *testing.T) {
	mem := New(&MockPPU{}, &MockAPU{}, &MockCartridge{})

	mem.Tick(0)
	mem.DriveOpenBus(0xFF, 0xFF) // drive every bit at cycle 0

	mem.Tick(decayCycles)        // just before the low bits decay
	mem.DriveOpenBus(0xE0, 0xE0) // refresh only bits 7-5

	mem.Tick(decayCycles + 1) // low bits are now stale, high bits are fresh
	if got := mem.OpenBus(); got != 0xE0 {
		t.Errorf("expected only the refreshed high bits to survive, got 0x%02X", got)
	}
}

// TestOpenBusReadMaskedMergesLiveAndDecayedBits mirrors how a register read
// combines bits it actually drives with open-bus bits for the rest.
func TestOpenBusReadMaskedMergesLiveAndDecayedBits(t *testing.T) {
	mem := New(&MockPPU{}, &MockAPU{}, &MockCartridge{})

	mem.Tick(0)
	mem.DriveOpenBus(0x0F, 0xFF)

	if got := mem.bus.readMasked(0xA0, 0xE0); got != 0xAF {
		t.Errorf("expected register bits 0xA0 merged with open-bus low nibble 0x0F, got 0x%02X", got)
	}
}
