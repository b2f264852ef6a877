// Package rules holds the pure policy calculations of the rumor system:
// decay rates, mutation probability, spread thresholds, and the local
// content mutator. Everything here is side-effect free and parameterized
// by configuration so the policy itself is swappable.
package rules

import "github.com/ersonp/rumor-mill/internal/domain/entities"

// DecayPolicy computes how fast believability erodes. The canonical law is
//
//	effective = BaseRate * severityFactor * (1 + AgeFactor*ageDays)
//
// subtracted linearly from each believability value and floored at zero.
// Lower severities decay faster; older rumors decay faster.
type DecayPolicy struct {
	BaseRate        float64
	AgeFactor       float64
	SeverityFactors map[entities.Severity]float64
}

// DefaultDecayPolicy returns the stock decay configuration.
func DefaultDecayPolicy() DecayPolicy {
	return DecayPolicy{
		BaseRate:  0.05,
		AgeFactor: 0.1,
		SeverityFactors: map[entities.Severity]float64{
			entities.SeverityTrivial:  1.5,
			entities.SeverityMinor:    1.2,
			entities.SeverityModerate: 1.0,
			entities.SeverityMajor:    0.8,
			entities.SeverityCritical: 0.6,
		},
	}
}

// EffectiveRate returns the decay amount for one pass over a rumor of the
// given severity and age. Monotonically non-decreasing in ageDays.
func (p DecayPolicy) EffectiveRate(severity entities.Severity, ageDays float64) float64 {
	return p.EffectiveRateWithBase(p.BaseRate, severity, ageDays)
}

// EffectiveRateWithBase is EffectiveRate with an explicit base rate, used
// when a caller overrides the configured default for one decay pass.
func (p DecayPolicy) EffectiveRateWithBase(baseRate float64, severity entities.Severity, ageDays float64) float64 {
	if ageDays < 0 {
		ageDays = 0
	}
	factor, ok := p.SeverityFactors[severity]
	if !ok {
		factor = 1.0
	}
	return baseRate * factor * (1 + p.AgeFactor*ageDays)
}

// Apply subtracts the rate from a believability value, flooring at zero.
func (p DecayPolicy) Apply(believability, rate float64) float64 {
	return entities.Clamp01(believability - rate)
}
