// Package sensor simulates a metal-detection sensor producing 10-bit
// readings. In real life this could be replaced with serial input from
// a microcontroller ADC.
package sensor

import (
	"math/rand/v2"
	"time"
)

// Reading bounds, mirroring a 10-bit ADC.
const (
	MinReading = 0
	MaxReading = 1023
)

// Distribution of simulated values.
const (
	baseMin = 50
	baseMax = 300

	spikeChance = 0.2 // probability a reading carries a metal-like spike
	spikeMin    = 300
	spikeMax    = 700
)

// Simulator produces fake sensor readings with occasional metal-like
// spikes. The random source is injected so tests can seed it.
type Simulator struct {
	rng *rand.Rand
}

// NewSimulator creates a Simulator backed by src. A nil src gets a
// time-seeded PCG; reproducibility across runs is not promised.
func NewSimulator(src rand.Source) *Simulator {
	if src == nil {
		seed := uint64(time.Now().UnixNano())
		src = rand.NewPCG(seed, seed>>32)
	}
	return &Simulator{rng: rand.New(src)}
}

// Next returns one simulated reading. The base value is uniform in
// [50, 300]; with 20% probability a spike uniform in [300, 700] is
// added. The result is clamped to MaxReading.
func (s *Simulator) Next() int {
	v := baseMin + s.rng.IntN(baseMax-baseMin+1)
	if s.rng.Float64() < spikeChance {
		v += spikeMin + s.rng.IntN(spikeMax-spikeMin+1)
	}
	if v > MaxReading {
		v = MaxReading
	}
	return v
}
