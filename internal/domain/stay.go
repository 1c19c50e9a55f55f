package domain

import (
	"time"

	"github.com/google/uuid"
)

// Stay is one border-crossing segment: the traveler entered CountryCode on
// EntryDate and left on ExitDate.
//
// Dates are date-only strings (YYYY-MM-DD). ExitDate is empty while the
// traveler is still in the country. The visa engine treats Stay as a value and
// never trusts the dates to be well formed; each consumer parses them per record.
type Stay struct {
	ID           string    `json:"id" yaml:"id"`
	TravelerID   uuid.UUID `json:"traveler_id,omitzero" yaml:"-"`
	CountryCode  string    `json:"country_code" yaml:"country_code"`
	FromCountry  string    `json:"from_country,omitempty" yaml:"from_country,omitempty"`
	EntryDate    string    `json:"entry_date" yaml:"entry_date"`
	ExitDate     string    `json:"exit_date,omitempty" yaml:"exit_date,omitempty"`
	VisaType     string    `json:"visa_type,omitempty" yaml:"visa_type,omitempty"`
	EntryAirport string    `json:"entry_airport,omitempty" yaml:"entry_airport,omitempty"`
	ExitAirport  string    `json:"exit_airport,omitempty" yaml:"exit_airport,omitempty"`
	Notes        string    `json:"notes,omitempty" yaml:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitzero" yaml:"-"`
	UpdatedAt    time.Time `json:"updated_at,omitzero" yaml:"-"`
}

// IsOngoing reports whether the traveler has not yet left the country.
func (s Stay) IsOngoing() bool {
	return s.ExitDate == ""
}

// ResolvedStay is a Stay as emitted by the conflict resolver.
// Every change the resolver makes is traceable: OriginalExitDate holds the
// caller's exit date when it was changed, and ResolutionReason explains why.
type ResolvedStay struct {
	Stay `yaml:",inline"`

	OriginalExitDate string `json:"original_exit_date,omitempty" yaml:"original_exit_date,omitempty"`
	AutoResolved     bool   `json:"auto_resolved" yaml:"auto_resolved"`
	ResolutionReason string `json:"resolution_reason,omitempty" yaml:"resolution_reason,omitempty"`
}

// Stays unwraps a resolver result back into plain stays.
func Stays(resolved []ResolvedStay) []Stay {
	out := make([]Stay, len(resolved))
	for i, r := range resolved {
		out[i] = r.Stay
	}
	return out
}
