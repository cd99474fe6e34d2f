package combat

import "math/rand"

// Variance perturbs raw damage before it is applied. Production code uses a
// seeded math/rand source; tests inject FixedVariance to pin exact values.
type Variance interface {
	// Apply returns the varied damage for a raw value. The result is never
	// below 1 for a positive raw value.
	Apply(raw int) int
}

// randVariance applies a uniform ±5% roll, inclusive at both ends.
type randVariance struct {
	rng *rand.Rand
}

// NewRandVariance creates the production variance source backed by rng.
func NewRandVariance(rng *rand.Rand) Variance {
	return &randVariance{rng: rng}
}

func (v *randVariance) Apply(raw int) int {
	factor := 95 + v.rng.Intn(11) // 95..105
	varied := raw * factor / 100
	if varied < 1 {
		varied = 1
	}
	return varied
}

// FixedVariance passes raw damage through unchanged. For tests.
type FixedVariance struct{}

func (FixedVariance) Apply(raw int) int {
	if raw < 1 {
		return 1
	}
	return raw
}
