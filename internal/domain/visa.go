package domain

import "time"

// ResetType selects how a visa allowance is replenished.
type ResetType string

const (
	// ResetExit restarts the count once the traveler leaves and later re-enters.
	ResetExit ResetType = "exit"
	// ResetRolling counts only days inside a window trailing the reference date.
	ResetRolling ResetType = "rolling"
)

// Valid reports whether r is a known reset policy.
func (r ResetType) Valid() bool {
	return r == ResetExit || r == ResetRolling
}

// VisaRule is the allowance for one (nationality, destination[, visa type]).
// PeriodDays is the sliding window length for rolling rules and informational
// for exit rules. MaxDays <= PeriodDays is expected but not enforced.
type VisaRule struct {
	MaxDays    int       `json:"max_days" yaml:"max_days"`
	PeriodDays int       `json:"period_days" yaml:"period_days"`
	ResetType  ResetType `json:"reset_type" yaml:"reset_type"`
}

// StatusLevel classifies how much of an allowance has been used.
type StatusLevel string

const (
	StatusSafe     StatusLevel = "safe"
	StatusWarning  StatusLevel = "warning"
	StatusCritical StatusLevel = "critical"
	StatusExceeded StatusLevel = "exceeded"
)

// VisaContext carries everything about the traveler that a calculation needs
// besides the stays themselves.
// A zero ReferenceDate means "today"; tests and reproducible reports pin it.
type VisaContext struct {
	Nationality   string
	ReferenceDate time.Time
	LookbackDays  int // informational, defaults to 365
	UserKey       string
}

// VisaStatus is the computed answer for one destination country.
// Rule is nil when no rule is known; in that case usage is zero and
// WarningMessage explains why.
type VisaStatus struct {
	CountryCode      string      `json:"country_code" yaml:"country_code"`
	Rule             *VisaRule   `json:"rule" yaml:"rule"`
	DaysUsed         int         `json:"days_used" yaml:"days_used"`
	DaysRemaining    int         `json:"days_remaining" yaml:"days_remaining"`
	TotalAllowedDays int         `json:"total_allowed_days" yaml:"total_allowed_days"`
	Status           StatusLevel `json:"status" yaml:"status"`
	WarningMessage   string      `json:"warning_message,omitempty" yaml:"warning_message,omitempty"`
	RelevantStays    []Stay      `json:"relevant_stays" yaml:"relevant_stays"`
	OngoingStays     []Stay      `json:"ongoing_stays" yaml:"ongoing_stays"`
}

// ValidationResult is the outcome of projecting a candidate stay onto a
// traveler's existing stays.
// ProjectedStatus is nil when the candidate itself is incomplete.
type ValidationResult struct {
	IsValid         bool        `json:"is_valid" yaml:"is_valid"`
	Message         string      `json:"message,omitempty" yaml:"message,omitempty"`
	ProjectedStatus *VisaStatus `json:"projected_status,omitempty" yaml:"projected_status,omitempty"`
}
