package visa

import (
	"fmt"
	"strings"

	"github.com/pkordes/visa-tracker/internal/domain"
)

// ValidateNewStay projects candidate onto existing and reports whether the
// traveler would overstay. A projected exceeded status is invalid; a critical
// one is valid but carries a warning. Incomplete candidates are rejected
// without a projection.
func (c *Calculator) ValidateNewStay(candidate domain.Stay, existing []domain.Stay, vctx domain.VisaContext) domain.ValidationResult {
	if strings.TrimSpace(candidate.CountryCode) == "" {
		return domain.ValidationResult{Message: "country code is required"}
	}
	entry, ok := domain.ParseCalendarDate(candidate.EntryDate)
	if !ok {
		return domain.ValidationResult{Message: fmt.Sprintf("entry date %q is not a valid YYYY-MM-DD date", candidate.EntryDate)}
	}
	if !candidate.IsOngoing() {
		exit, ok := domain.ParseCalendarDate(candidate.ExitDate)
		if !ok {
			return domain.ValidationResult{Message: fmt.Sprintf("exit date %q is not a valid YYYY-MM-DD date", candidate.ExitDate)}
		}
		if exit.Before(entry) {
			return domain.ValidationResult{Message: "exit date must not be before entry date"}
		}
	}

	projected := make([]domain.Stay, 0, len(existing)+1)
	for _, s := range existing {
		// An edited stay replaces its stored version instead of counting twice.
		if candidate.ID != "" && s.ID == candidate.ID {
			continue
		}
		projected = append(projected, s)
	}
	projected = append(projected, candidate)

	st := c.Status(candidate.CountryCode, projected, vctx, candidate.VisaType)
	res := domain.ValidationResult{IsValid: true, ProjectedStatus: &st}
	switch st.Status {
	case domain.StatusExceeded:
		res.IsValid = false
		res.Message = fmt.Sprintf("stay %s would exceed the %d-day allowance by %d days", describe(candidate), st.TotalAllowedDays, st.DaysUsed-st.TotalAllowedDays)
	case domain.StatusCritical:
		res.Message = fmt.Sprintf("stay %s would leave only %d of %d days", describe(candidate), st.DaysRemaining, st.TotalAllowedDays)
	}
	return res
}
