package cpu

import "testing"

// TestCLIDelaysIRQByOneInstruction proves CLI's effect on interrupt
// polling lags one instruction behind its effect on the I flag itself: a
// pending IRQ does not fire on the CLI instruction that re-enables it, only
// on the instruction after.
func TestCLIDelaysIRQByOneInstruction(t *testing.T) {
	h := NewCPUTestHelper()
	h.SetupResetVector(0x8000)
	h.Memory.SetBytes(0xFFFE, 0x00, 0x90) // IRQ vector -> $9000
	h.LoadProgram(0x8000, 0x58, 0xEA)     // CLI ; NOP
	h.CPU.PC = 0x8000
	h.CPU.I = true
	h.CPU.TriggerIRQ()

	h.CPU.Step() // CLI: I becomes false, but the IRQ must not fire yet
	if h.CPU.PC != 0x8001 {
		t.Fatalf("expected PC at the NOP (0x8001) right after CLI, got 0x%04X", h.CPU.PC)
	}
	if h.CPU.I {
		t.Fatal("expected CLI to clear I immediately")
	}

	h.CPU.Step() // NOP: the IRQ polled during CLI's instruction now fires
	if h.CPU.PC != 0x9000 {
		t.Fatalf("expected the IRQ to fire after the instruction following CLI, got PC=0x%04X", h.CPU.PC)
	}
}

// TestSEIDoesNotBlockAnIRQAlreadyInFlight proves the converse: an IRQ
// pending while SEI executes still fires right after SEI, since the
// disable SEI just set hasn't taken effect for polling purposes yet.
func TestSEIDoesNotBlockAnIRQAlreadyInFlight(t *testing.T) {
	h := NewCPUTestHelper()
	h.SetupResetVector(0x8000)
	h.Memory.SetBytes(0xFFFE, 0x00, 0x90) // IRQ vector -> $9000
	h.LoadProgram(0x8000, 0x78, 0xEA)     // SEI ; NOP
	h.CPU.PC = 0x8000
	h.CPU.I = false
	h.CPU.TriggerIRQ()

	h.CPU.Step() // SEI: I becomes true, but the already-pending IRQ still fires
	if h.CPU.PC != 0x9000 {
		t.Fatalf("expected the in-flight IRQ to fire immediately after SEI, got PC=0x%04X", h.CPU.PC)
	}
}

// TestPLPDelaysIRQByOneInstruction exercises the same delay through PLP,
// which can change I from a popped stack byte rather than a literal flag.
func TestPLPDelaysIRQByOneInstruction(t *testing.T) {
	h := NewCPUTestHelper()
	h.SetupResetVector(0x8000)
	h.Memory.SetBytes(0xFFFE, 0x00, 0x90) // IRQ vector -> $9000
	h.LoadProgram(0x8000, 0x28, 0xEA)     // PLP ; NOP
	h.CPU.PC = 0x8000
	h.CPU.I = true
	h.CPU.SP = 0xFE
	h.Memory.SetBytes(0x01FF, 0x00) // status popped by PLP: I=0, all other flags clear
	h.CPU.TriggerIRQ()

	h.CPU.Step() // PLP: I becomes false, but the IRQ must not fire yet
	if h.CPU.PC != 0x8001 {
		t.Fatalf("expected PC at the NOP (0x8001) right after PLP, got 0x%04X", h.CPU.PC)
	}
	if h.CPU.I {
		t.Fatal("expected PLP to clear I from the popped status byte")
	}

	h.CPU.Step() // NOP: the IRQ polled during PLP's instruction now fires
	if h.CPU.PC != 0x9000 {
		t.Fatalf("expected the IRQ to fire after the instruction following PLP, got PC=0x%04X", h.CPU.PC)
	}
}

// TestBRKHijackedByPendingNMI proves an NMI latched before a BRK executes
// steals the vector fetch: the handler ends up at the NMI vector instead of
// the IRQ/BRK vector, while the pushed status still reports B=1.
func TestBRKHijackedByPendingNMI(t *testing.T) {
	h := NewCPUTestHelper()
	h.SetupResetVector(0x8000)
	h.Memory.SetBytes(0xFFFA, 0x00, 0xA0) // NMI vector -> $A000
	h.Memory.SetBytes(0xFFFE, 0x00, 0x90) // IRQ/BRK vector -> $9000
	h.LoadProgram(0x8000, 0x00)           // BRK
	h.CPU.PC = 0x8000
	h.CPU.SP = 0xFF
	h.CPU.TriggerNMI()

	h.CPU.Step()

	if h.CPU.PC != 0xA000 {
		t.Fatalf("expected the pending NMI to hijack BRK's vector fetch to $A000, got PC=0x%04X", h.CPU.PC)
	}
	pushedStatus := h.Memory.Read(0x01FD)
	if pushedStatus&bFlagMask == 0 {
		t.Errorf("expected the pushed status to still report B=1 even though NMI hijacked the vector, got 0x%02X", pushedStatus)
	}
}
