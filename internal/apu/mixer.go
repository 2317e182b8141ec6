package apu

// Non-linear mixer lookup tables. The NES mixes its five channels through
// analog resistor networks, not a linear sum; these tables reproduce the
// resulting voltage curve exactly rather than approximating it per-sample.
var pulseMixTable [31]float32
var tndMixTable [203]float32

func init() {
	for i := 1; i < len(pulseMixTable); i++ {
		pulseMixTable[i] = float32(95.52 / (8128.0/float64(i) + 100))
	}
	for i := 1; i < len(tndMixTable); i++ {
		tndMixTable[i] = float32(163.67 / (24329.0/float64(i) + 100))
	}
}

// mixChannels applies the NES audio mixer formula via the lookup tables
// above. Triangle and noise are weighted 3x/2x relative to DMC before
// indexing the TND table, matching the channels' relative DAC weights.
func (apu *APU) mixChannels(pulse1, pulse2, triangle, noise, dmc uint8) float32 {
	pulseSum := int(pulse1) + int(pulse2)
	if pulseSum > 30 {
		pulseSum = 30
	}

	tndSum := 3*int(triangle) + 2*int(noise) + int(dmc)
	if tndSum > 202 {
		tndSum = 202
	}

	output := pulseMixTable[pulseSum] + tndMixTable[tndSum]

	return output*2.0 - 1.0
}
