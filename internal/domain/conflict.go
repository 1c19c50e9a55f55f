package domain

// ConflictType names the class of temporal inconsistency between stays.
type ConflictType string

const (
	// ConflictImpossible covers two simultaneous ongoing stays and stays that
	// end before they begin.
	ConflictImpossible ConflictType = "impossible"
	// ConflictOverlap is two stays in the same country covering the same days.
	ConflictOverlap ConflictType = "overlap"
	// ConflictSequence is two stays in different countries overlapping, usually
	// a missing travel-day adjustment.
	ConflictSequence ConflictType = "sequence"
)

// Severity orders conflicts for the resolver.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank returns a comparable weight: critical > high > medium > low.
// Unknown severities rank below low.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// DateConflict is a problem detected between two stays, or within a single
// stay whose dates are inverted (Stays then holds one element).
// Description and SuggestedResolution are for people; the resolver acts on
// Type and Stays only.
type DateConflict struct {
	Type                ConflictType `json:"type" yaml:"type"`
	Stays               []Stay       `json:"stays" yaml:"stays"`
	Severity            Severity     `json:"severity" yaml:"severity"`
	Description         string       `json:"description" yaml:"description"`
	SuggestedResolution string       `json:"suggested_resolution" yaml:"suggested_resolution"`
}

// ResolutionValidation reports what is left after auto-resolution.
// IsValid is false only while critical conflicts remain; anything milder is
// surfaced for manual review.
type ResolutionValidation struct {
	IsValid            bool           `json:"is_valid" yaml:"is_valid"`
	RemainingConflicts []DateConflict `json:"remaining_conflicts" yaml:"remaining_conflicts"`
	Summary            string         `json:"summary" yaml:"summary"`
}
