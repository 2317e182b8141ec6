package apu

import "testing"

func TestNewDefaultsToNTSCTiming(t *testing.T) {
	a := New()
	if a.cpuFrequency != 1789773.0 {
		t.Errorf("expected NTSC CPU frequency, got %f", a.cpuFrequency)
	}
	if a.frameStep4 != 29830 {
		t.Errorf("expected NTSC 4-step IRQ boundary 29830, got %d", a.frameStep4)
	}
}

func TestSetRegionPAL(t *testing.T) {
	a := New()
	a.SetRegion(PAL)

	if a.cpuFrequency != 1662607.0 {
		t.Errorf("expected PAL CPU frequency, got %f", a.cpuFrequency)
	}
	if a.noisePeriods != &noisePeriodTablePAL {
		t.Error("expected PAL noise period table selected")
	}
	if a.frameStep4 != 33253 {
		t.Errorf("expected PAL 4-step IRQ boundary 33253, got %d", a.frameStep4)
	}
}

func TestFrameCounterFourStepFiresIRQ(t *testing.T) {
	a := New()
	a.writeFrameCounter(0x00) // 4-step mode, IRQ enabled

	for i := uint16(0); i < a.frameStep4; i++ {
		a.stepFrameCounter()
	}

	if !a.frameIRQFlag {
		t.Error("expected frame IRQ flag set after a full 4-step sequence")
	}
}

func TestFrameCounterFiveStepNoIRQ(t *testing.T) {
	a := New()
	a.writeFrameCounter(0x80) // 5-step mode

	for i := uint16(0); i < a.frameStep5End+1; i++ {
		a.stepFrameCounter()
	}

	if a.frameIRQFlag {
		t.Error("5-step mode must never set the frame IRQ flag")
	}
}

func TestReadStatusClearsFrameIRQAndNotifiesCallback(t *testing.T) {
	a := New()
	a.frameIRQFlag = true

	var lastAsserted bool
	notified := false
	a.SetIRQCallback(func(asserted bool) {
		notified = true
		lastAsserted = asserted
	})
	a.updateIRQ() // establish asserted=true baseline

	status := a.ReadStatus()
	if status&0x40 == 0 {
		t.Fatal("expected frame IRQ bit set in status before the read clears it")
	}
	if a.frameIRQFlag {
		t.Error("expected frame IRQ flag cleared by status read")
	}
	if !notified || lastAsserted {
		t.Error("expected IRQ callback to fire de-asserted after the flag cleared")
	}
}

func TestDMCFetchesViaMemoryReader(t *testing.T) {
	a := New()

	rom := map[uint16]uint8{0xC000: 0xAA}
	a.SetMemoryReader(func(address uint16) uint8 { return rom[address] })

	a.writeDMCSampleAddress(0x00) // sampleAddress = 0xC000
	a.writeDMCSampleLength(0x00)  // sampleLength = 1
	a.writeDMCControl(0x00)       // rate index 0, no loop/irq
	a.writeChannelEnable(0x10)    // enable DMC, starts playback

	a.fetchDMCByte(&a.dmc)

	if a.dmc.sampleBuffer != 0xAA {
		t.Errorf("expected sample buffer loaded from injected memory reader, got 0x%02X", a.dmc.sampleBuffer)
	}
	if a.dmc.sampleBufferEmpty {
		t.Error("expected sample buffer marked full after a fetch")
	}
}

func TestDMCSetsIRQAtSampleEndWithoutLoop(t *testing.T) {
	a := New()
	a.SetMemoryReader(func(address uint16) uint8 { return 0 })

	a.writeDMCSampleAddress(0x00)
	a.writeDMCSampleLength(0x00) // 1 byte
	a.writeDMCControl(0x80)      // IRQ enable, no loop
	a.writeChannelEnable(0x10)

	a.fetchDMCByte(&a.dmc)

	if !a.dmc.irqFlag {
		t.Error("expected DMC IRQ flag set after playing its last byte with loop disabled")
	}
}

func TestMixChannelsSilentWhenAllChannelsZero(t *testing.T) {
	a := New()
	sample := a.mixChannels(0, 0, 0, 0, 0)
	if sample != -1.0 {
		t.Errorf("expected silence to map to the bottom of the output range, got %f", sample)
	}
}

func TestMixChannelsClampsOverRange(t *testing.T) {
	a := New()
	// Pulse sum of 31+31 exceeds the 31-entry table; must not panic.
	sample := a.mixChannels(31, 31, 15, 15, 127)
	if sample <= -1.0 {
		t.Error("expected a non-silent mixed sample for active channels")
	}
}
