package rules

import (
	"strings"

	"github.com/ersonp/rumor-mill/internal/domain/entities"
)

// LocationModifier scales spread and mutation behavior for a location type.
type LocationModifier struct {
	SpreadMultiplier       float64
	MutationChanceModifier float64
}

// PropagationPolicy computes mutation probability and the believability
// threshold a sender must clear for a rumor to propagate.
type PropagationPolicy struct {
	// Mutation chance curve: base + perHop*spreadCount, scaled per severity
	// and capped at MutationMax.
	MutationBase            float64
	MutationPerHop          float64
	MutationMax             float64
	SeverityMutationFactors map[entities.Severity]float64

	// Spread threshold: base + severity offset, shifted down by
	// RelationshipShift * relationshipStrength. Closer relationships make
	// weaker rumors still worth repeating.
	ThresholdBase            float64
	RelationshipShift        float64
	SeverityThresholdOffsets map[entities.Severity]float64

	// Location-type lookup, matched by keyword against the location string.
	Locations map[string]LocationModifier
}

// DefaultPropagationPolicy returns the stock propagation configuration.
func DefaultPropagationPolicy() PropagationPolicy {
	return PropagationPolicy{
		MutationBase:   0.2,
		MutationPerHop: 0.02,
		MutationMax:    0.8,
		SeverityMutationFactors: map[entities.Severity]float64{
			entities.SeverityTrivial:  1.2,
			entities.SeverityMinor:    1.1,
			entities.SeverityModerate: 1.0,
			entities.SeverityMajor:    0.9,
			entities.SeverityCritical: 0.8,
		},
		ThresholdBase:     0.3,
		RelationshipShift: 0.2,
		SeverityThresholdOffsets: map[entities.Severity]float64{
			entities.SeverityTrivial:  0.1,
			entities.SeverityMinor:    0.05,
			entities.SeverityModerate: 0,
			entities.SeverityMajor:    -0.05,
			entities.SeverityCritical: -0.1,
		},
		Locations: map[string]LocationModifier{
			"tavern":     {SpreadMultiplier: 1.5, MutationChanceModifier: 1.3},
			"market":     {SpreadMultiplier: 1.3, MutationChanceModifier: 1.2},
			"palace":     {SpreadMultiplier: 0.7, MutationChanceModifier: 1.0},
			"temple":     {SpreadMultiplier: 0.8, MutationChanceModifier: 0.9},
			"wilderness": {SpreadMultiplier: 0.3, MutationChanceModifier: 1.0},
		},
	}
}

// MutationChance returns the probability that spreading produces a new
// variant instead of reusing the existing one. More hops mean more drift.
func (p PropagationPolicy) MutationChance(severity entities.Severity, spreadCount int) float64 {
	if spreadCount < 0 {
		spreadCount = 0
	}
	factor, ok := p.SeverityMutationFactors[severity]
	if !ok {
		factor = 1.0
	}
	chance := (p.MutationBase + p.MutationPerHop*float64(spreadCount)) * factor
	if chance > p.MutationMax {
		chance = p.MutationMax
	}
	return entities.Clamp01(chance)
}

// SpreadThreshold returns the minimum believability the sender must hold
// for the rumor to propagate. relationshipStrength is trust between sender
// and receiver in [-1, 1]; stronger trust lowers the bar.
func (p PropagationPolicy) SpreadThreshold(severity entities.Severity, relationshipStrength float64) float64 {
	offset, ok := p.SeverityThresholdOffsets[severity]
	if !ok {
		offset = 0
	}
	return entities.Clamp01(p.ThresholdBase + offset - p.RelationshipShift*relationshipStrength)
}

// LocationModifier resolves modifiers for a location string by keyword
// match, e.g. "the dockside tavern" matches "tavern". Unknown locations get
// neutral modifiers.
func (p PropagationPolicy) LocationModifier(location string) LocationModifier {
	neutral := LocationModifier{SpreadMultiplier: 1.0, MutationChanceModifier: 1.0}
	if location == "" {
		return neutral
	}
	lower := strings.ToLower(location)
	for keyword, mod := range p.Locations {
		if strings.Contains(lower, keyword) {
			return mod
		}
	}
	return neutral
}
