package simulation

import (
	"math/rand"

	"lineup-sim/models"
)

// Sampler draws plate appearance outcomes from calibrated profiles. It
// wraps a single seeded stream; identical seed and call sequence produce an
// identical outcome sequence. The same stream drives the situational
// modifiers, which is what makes call order part of the reproducibility
// contract.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler creates a sampler seeded for deterministic replay.
func NewSampler(seed int64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewSource(seed))}
}

// Sample draws one outcome by inverse-CDF walk over the profile's
// distribution in fixed enumeration order.
func (s *Sampler) Sample(p *models.PlayerProfile) models.Outcome {
	draw := s.rng.Float64()
	cum := 0.0
	for i := 0; i < models.NumOutcomes; i++ {
		cum += p.OutcomeProbs[i]
		if draw < cum {
			return models.Outcome(i)
		}
	}
	// Unreachable when the distribution sums to 1; floating point rounding
	// can leave a sliver above the final cumulative value.
	return models.OutcomeOut
}

// Reseed resets the stream without touching any calibrated profile.
func (s *Sampler) Reseed(seed int64) {
	s.rng = rand.New(rand.NewSource(seed))
}

// RNG exposes the underlying stream for the situational modifiers so every
// draw of a plate appearance cycle comes from the one seeded source.
func (s *Sampler) RNG() *rand.Rand { return s.rng }
