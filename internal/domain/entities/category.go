// Package entities contains core domain data structures.
package entities

import "strings"

// Category classifies what a rumor is about.
type Category string

// Known rumor categories. Unknown inputs normalize to CategoryOther.
const (
	CategoryPolitical  Category = "political"
	CategoryPersonal   Category = "personal"
	CategorySocial     Category = "social"
	CategoryMilitary   Category = "military"
	CategoryEconomic   Category = "economic"
	CategoryReligious  Category = "religious"
	CategoryHistorical Category = "historical"
	CategoryGossip     Category = "gossip"
	CategoryOther      Category = "other"
)

// Severity is the ordinal weight of a rumor. It controls decay speed and
// narrative weight.
type Severity string

const (
	SeverityTrivial  Severity = "trivial"
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeverityMajor    Severity = "major"
	SeverityCritical Severity = "critical"
)

var severityOrder = map[Severity]int{
	SeverityTrivial:  0,
	SeverityMinor:    1,
	SeverityModerate: 2,
	SeverityMajor:    3,
	SeverityCritical: 4,
}

var knownCategories = map[Category]struct{}{
	CategoryPolitical:  {},
	CategoryPersonal:   {},
	CategorySocial:     {},
	CategoryMilitary:   {},
	CategoryEconomic:   {},
	CategoryReligious:  {},
	CategoryHistorical: {},
	CategoryGossip:     {},
	CategoryOther:      {},
}

// ParseCategory normalizes a category string. The second return value is
// false when the input was unknown and fell back to CategoryOther.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := knownCategories[c]; ok {
		return c, true
	}
	return CategoryOther, false
}

// ParseSeverity normalizes a severity string. The second return value is
// false when the input was unknown and fell back to SeverityMinor.
func ParseSeverity(s string) (Severity, bool) {
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := severityOrder[sev]; ok {
		return sev, true
	}
	return SeverityMinor, false
}

// AtLeast reports whether s meets the given minimum severity.
func (s Severity) AtLeast(minimum Severity) bool {
	a, okA := severityOrder[s]
	b, okB := severityOrder[minimum]
	if !okA || !okB {
		return false
	}
	return a >= b
}

// Clamp01 clamps v to the [0, 1] range used by truth and believability values.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
