// Package domain contains the core data types for the visa tracker.
// This package has no dependencies beyond google/uuid and is imported by every
// other internal package (visa, conflict, repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Traveler is the person whose border crossings are being tracked.
// A traveler is the top-level aggregate; stays belong to a traveler.
// Nationality selects the visa rules that apply to every stay.
type Traveler struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Nationality string    `json:"nationality"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserKey returns the identity used to look up per-traveler rule overrides.
func (t Traveler) UserKey() string {
	if t.ID == uuid.Nil {
		return ""
	}
	return t.ID.String()
}

// Traveler listing page sizes.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PaginationParams selects one page of the traveler list. Page is 1-indexed.
type PaginationParams struct {
	Page  int
	Limit int
}

// NewPaginationParams applies defaults to the optional ?page and ?limit values.
// Values below 1 are ignored and Limit is clamped to MaxPageLimit.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: DefaultPageLimit}
	if page != nil && *page > 0 {
		p.Page = *page
	}
	if limit != nil && *limit > 0 {
		p.Limit = min(*limit, MaxPageLimit)
	}
	return p
}

// Offset is the number of rows to skip.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}
