// Package service contains the business logic for the visa tracker API.
// Services validate inputs, enforce business rules, and orchestrate repo calls
// and the visa/conflict engines.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/visa-tracker/internal/domain"
	"github.com/pkordes/visa-tracker/internal/repo"
)

// TravelerService implements business logic for Traveler operations.
type TravelerService struct {
	repo repo.TravelerRepo
}

// NewTravelerService constructs a TravelerService backed by the provided TravelerRepo.
func NewTravelerService(r repo.TravelerRepo) *TravelerService {
	return &TravelerService{repo: r}
}

// Create validates and persists a new traveler.
// Returns domain.ErrValidation if the name or nationality is invalid.
func (s *TravelerService) Create(ctx context.Context, t domain.Traveler) (domain.Traveler, error) {
	t, err := normalizeTraveler(t)
	if err != nil {
		return domain.Traveler{}, err
	}
	result, err := s.repo.Create(ctx, t)
	if err != nil {
		return domain.Traveler{}, fmt.Errorf("service.TravelerService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single traveler by ID.
func (s *TravelerService) GetByID(ctx context.Context, id uuid.UUID) (domain.Traveler, error) {
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Traveler{}, fmt.Errorf("service.TravelerService.GetByID: %w", err)
	}
	return result, nil
}

// List returns one page of travelers and the total count.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TravelerService) List(ctx context.Context, p domain.PaginationParams) ([]domain.Traveler, int64, error) {
	travelers, total, err := s.repo.ListPaged(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TravelerService.List: %w", err)
	}
	if travelers == nil {
		travelers = []domain.Traveler{}
	}
	return travelers, total, nil
}

// Update validates and persists changes to an existing traveler.
func (s *TravelerService) Update(ctx context.Context, t domain.Traveler) (domain.Traveler, error) {
	t, err := normalizeTraveler(t)
	if err != nil {
		return domain.Traveler{}, err
	}
	result, err := s.repo.Update(ctx, t)
	if err != nil {
		return domain.Traveler{}, fmt.Errorf("service.TravelerService.Update: %w", err)
	}
	return result, nil
}

// Delete removes a traveler and all of their stays.
func (s *TravelerService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TravelerService.Delete: %w", err)
	}
	return nil
}

// normalizeTraveler trims the name and upper-cases the nationality.
//   - Name must be non-empty.
//   - Nationality must be a two-letter country code.
func normalizeTraveler(t domain.Traveler) (domain.Traveler, error) {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return t, domain.Invalidf("name is required")
	}
	code, err := countryCode("nationality", t.Nationality)
	if err != nil {
		return t, err
	}
	t.Nationality = code
	return t, nil
}

// countryCode upper-cases a two-letter country code or reports which field is wrong.
func countryCode(field, v string) (string, error) {
	v = strings.ToUpper(strings.TrimSpace(v))
	if len(v) != 2 || v[0] < 'A' || v[0] > 'Z' || v[1] < 'A' || v[1] > 'Z' {
		return "", domain.Invalidf("%s must be a two-letter country code", field)
	}
	return v, nil
}
