package ppu

import "testing"

// TestA12RisingEdgeFiresScanlineCallback confirms a genuine low-to-high
// transition on bit 12 of a CHR fetch address clocks the mapper IRQ hook.
func TestA12RisingEdgeFiresScanlineCallback(t *testing.T) {
	p := New()
	fired := 0
	p.SetScanlineCallback(func() { fired++ })

	p.notifyCHRAddress(0x0010) // background fetch, A12 = 0
	p.cycleCount += 100        // clear the debounce window
	p.notifyCHRAddress(0x1010) // sprite fetch, A12 = 1: rising edge

	if fired != 1 {
		t.Fatalf("expected exactly one callback on the A12 rising edge, got %d", fired)
	}
}

// TestA12FallingEdgeDoesNotFire proves only the rising edge clocks the
// counter; a high-to-low transition is silent.
func TestA12FallingEdgeDoesNotFire(t *testing.T) {
	p := New()
	fired := 0
	p.SetScanlineCallback(func() { fired++ })

	p.notifyCHRAddress(0x1010) // A12 = 1 (itself a rise from the initial low state)
	p.cycleCount += 100
	before := fired
	p.notifyCHRAddress(0x0010) // A12 = 0: falling edge, not a rise

	if fired != before {
		t.Fatalf("expected no callback on a falling A12 transition, got %d", fired-before)
	}
}

// TestA12DebounceSuppressesRapidToggling proves edges closer together than
// the 3-CPU-cycle debounce are rejected, matching MMC3's own filtering of
// the rapid toggling a naive address-line read would otherwise produce.
func TestA12DebounceSuppressesRapidToggling(t *testing.T) {
	p := New()
	fired := 0
	p.SetScanlineCallback(func() { fired++ })

	p.notifyCHRAddress(0x0010) // A12 = 0
	p.notifyCHRAddress(0x1010) // rising edge at dot 0, accepted (first ever)
	p.notifyCHRAddress(0x0010) // falling
	p.notifyCHRAddress(0x1010) // rising edge immediately after: too soon, rejected

	if fired != 1 {
		t.Fatalf("expected the second rapid rising edge to be debounced, got %d callbacks", fired)
	}
}

// TestA12DebounceAllowsEdgeAfterThreshold proves a rising edge separated by
// at least 3 CPU cycles' worth of dots is accepted.
func TestA12DebounceAllowsEdgeAfterThreshold(t *testing.T) {
	p := New()
	fired := 0
	p.SetScanlineCallback(func() { fired++ })

	p.notifyCHRAddress(0x0010)
	p.notifyCHRAddress(0x1010) // accepted rising edge

	p.cycleCount += uint64(a12DebounceCPUCycles * p.dotsPerCPUCycle)
	p.notifyCHRAddress(0x0010)
	p.notifyCHRAddress(0x1010) // another rising edge, now far enough away

	if fired != 2 {
		t.Fatalf("expected both rising edges to fire once the debounce window passed, got %d", fired)
	}
}
