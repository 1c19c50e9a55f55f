package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/visa-tracker/internal/domain"
	"github.com/pkordes/visa-tracker/internal/repo"
)

// StayService implements business logic for Stay operations.
// It needs the traveler repo to verify the parent exists and to build the
// visa context, and the VisaService to project a stay before it is written.
type StayService struct {
	travelers repo.TravelerRepo
	stays     repo.StayRepo
	visa      *VisaService
}

// NewStayService constructs a StayService backed by the provided repos.
func NewStayService(travelers repo.TravelerRepo, stays repo.StayRepo, visa *VisaService) *StayService {
	return &StayService{travelers: travelers, stays: stays, visa: visa}
}

// Create validates the stay, projects it against the traveler's visa
// allowance, then persists it.
// Returns domain.ErrValidation if the input is malformed or the stay would
// exceed the allowance, and domain.ErrNotFound if the traveler does not exist.
// The returned ValidationResult carries any warning for a critical projection.
func (s *StayService) Create(ctx context.Context, stay domain.Stay) (domain.Stay, domain.ValidationResult, error) {
	check, err := s.admit(ctx, stay)
	if err != nil {
		return domain.Stay{}, check, fmt.Errorf("service.StayService.Create: %w", err)
	}
	result, err := s.stays.Create(ctx, normalizeStay(stay))
	if err != nil {
		return domain.Stay{}, check, fmt.Errorf("service.StayService.Create: %w", err)
	}
	return result, check, nil
}

// GetByID returns a single stay, scoped to the given traveler.
func (s *StayService) GetByID(ctx context.Context, travelerID, stayID uuid.UUID) (domain.Stay, error) {
	result, err := s.stays.GetByID(ctx, travelerID, stayID)
	if err != nil {
		return domain.Stay{}, fmt.Errorf("service.StayService.GetByID: %w", err)
	}
	return result, nil
}

// ListByTravelerID returns all stays for a traveler ordered by entry date.
// Always returns a non-nil slice so callers can safely range over it.
func (s *StayService) ListByTravelerID(ctx context.Context, travelerID uuid.UUID) ([]domain.Stay, error) {
	if _, err := s.travelers.GetByID(ctx, travelerID); err != nil {
		return nil, fmt.Errorf("service.StayService.ListByTravelerID: %w", err)
	}
	stays, err := s.stays.ListByTravelerID(ctx, travelerID)
	if err != nil {
		return nil, fmt.Errorf("service.StayService.ListByTravelerID: %w", err)
	}
	if stays == nil {
		return []domain.Stay{}, nil
	}
	return stays, nil
}

// Update validates and projects the edited stay, then persists it.
// The stored version of the stay is replaced in the projection, not counted twice.
func (s *StayService) Update(ctx context.Context, stay domain.Stay) (domain.Stay, domain.ValidationResult, error) {
	check, err := s.admit(ctx, stay)
	if err != nil {
		return domain.Stay{}, check, fmt.Errorf("service.StayService.Update: %w", err)
	}
	result, err := s.stays.Update(ctx, normalizeStay(stay))
	if err != nil {
		return domain.Stay{}, check, fmt.Errorf("service.StayService.Update: %w", err)
	}
	return result, check, nil
}

// Delete removes a stay, scoped to the given traveler.
func (s *StayService) Delete(ctx context.Context, travelerID, stayID uuid.UUID) error {
	if err := s.stays.Delete(ctx, travelerID, stayID); err != nil {
		return fmt.Errorf("service.StayService.Delete: %w", err)
	}
	return nil
}

// admit runs field validation and the visa projection shared by Create and Update.
func (s *StayService) admit(ctx context.Context, stay domain.Stay) (domain.ValidationResult, error) {
	if err := validateStay(stay); err != nil {
		return domain.ValidationResult{}, err
	}
	traveler, err := s.travelers.GetByID(ctx, stay.TravelerID)
	if err != nil {
		return domain.ValidationResult{}, err
	}
	existing, err := s.stays.ListByTravelerID(ctx, stay.TravelerID)
	if err != nil {
		return domain.ValidationResult{}, err
	}
	check := s.visa.project(traveler, existing, normalizeStay(stay))
	if !check.IsValid {
		return check, domain.Invalidf("%s", check.Message)
	}
	return check, nil
}

// validateStay enforces the field rules common to Create and Update.
//   - CountryCode (and FromCountry, if set) must be two-letter codes.
//   - EntryDate must be a calendar date; ExitDate, if set, must not precede it.
func validateStay(stay domain.Stay) error {
	if _, err := countryCode("country_code", stay.CountryCode); err != nil {
		return err
	}
	if strings.TrimSpace(stay.FromCountry) != "" {
		if _, err := countryCode("from_country", stay.FromCountry); err != nil {
			return err
		}
	}
	entry, ok := domain.ParseCalendarDate(stay.EntryDate)
	if !ok {
		return domain.Invalidf("entry_date must be a YYYY-MM-DD date")
	}
	if stay.IsOngoing() {
		return nil
	}
	exit, ok := domain.ParseCalendarDate(stay.ExitDate)
	if !ok {
		return domain.Invalidf("exit_date must be a YYYY-MM-DD date")
	}
	if exit.Before(entry) {
		return domain.Invalidf("exit_date must not be before entry_date")
	}
	return nil
}

func normalizeStay(stay domain.Stay) domain.Stay {
	stay.CountryCode = strings.ToUpper(strings.TrimSpace(stay.CountryCode))
	stay.FromCountry = strings.ToUpper(strings.TrimSpace(stay.FromCountry))
	stay.VisaType = strings.ToLower(strings.TrimSpace(stay.VisaType))
	return stay
}
