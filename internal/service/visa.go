package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/visa-tracker/internal/conflict"
	"github.com/pkordes/visa-tracker/internal/domain"
	"github.com/pkordes/visa-tracker/internal/repo"
	"github.com/pkordes/visa-tracker/internal/visa"
)

// VisaService answers visa and conflict questions about a stored traveler.
// It loads the traveler's stays, builds the calculation context, and
// delegates to the pure engines in the visa and conflict packages.
type VisaService struct {
	travelers    repo.TravelerRepo
	stays        repo.StayRepo
	calc         *visa.Calculator
	resolver     *conflict.Resolver
	lookbackDays int
	now          func() time.Time
}

// VisaOption configures a VisaService.
type VisaOption func(*VisaService)

// WithLookbackDays sets the lookback recorded in every VisaContext.
func WithLookbackDays(days int) VisaOption {
	return func(s *VisaService) {
		if days > 0 {
			s.lookbackDays = days
		}
	}
}

// WithNow replaces the wall clock used when no reference date is given.
func WithNow(now func() time.Time) VisaOption {
	return func(s *VisaService) { s.now = now }
}

// NewVisaService constructs a VisaService.
func NewVisaService(travelers repo.TravelerRepo, stays repo.StayRepo, calc *visa.Calculator, resolver *conflict.Resolver, opts ...VisaOption) *VisaService {
	s := &VisaService{
		travelers:    travelers,
		stays:        stays,
		calc:         calc,
		resolver:     resolver,
		lookbackDays: visa.DefaultLookbackDays,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolution is the outcome of auto-resolving a traveler's stays.
// Updated and Deleted list the stay IDs written back when Applied is true.
type Resolution struct {
	Stays      []domain.ResolvedStay
	Validation domain.ResolutionValidation
	Applied    bool
	Updated    []string
	Deleted    []string
}

// Statuses returns the visa status of every country the traveler has visited,
// as of ref. A zero ref means today.
func (s *VisaService) Statuses(ctx context.Context, travelerID uuid.UUID, ref time.Time) ([]domain.VisaStatus, error) {
	traveler, stays, err := s.load(ctx, travelerID)
	if err != nil {
		return nil, fmt.Errorf("service.VisaService.Statuses: %w", err)
	}
	return s.calc.AllStatuses(stays, s.context(traveler, ref)), nil
}

// Status returns the visa status for one destination. An empty visaType
// uses the generic rule for the traveler's nationality.
func (s *VisaService) Status(ctx context.Context, travelerID uuid.UUID, destination, visaType string, ref time.Time) (domain.VisaStatus, error) {
	if _, err := countryCode("country", destination); err != nil {
		return domain.VisaStatus{}, err
	}
	traveler, stays, err := s.load(ctx, travelerID)
	if err != nil {
		return domain.VisaStatus{}, fmt.Errorf("service.VisaService.Status: %w", err)
	}
	return s.calc.Status(destination, stays, s.context(traveler, ref), visaType), nil
}

// ValidateCandidate is a dry run of adding (or, when candidate.ID is set,
// editing) a stay. An invalid result is not an error.
func (s *VisaService) ValidateCandidate(ctx context.Context, travelerID uuid.UUID, candidate domain.Stay) (domain.ValidationResult, error) {
	traveler, stays, err := s.load(ctx, travelerID)
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("service.VisaService.ValidateCandidate: %w", err)
	}
	candidate.TravelerID = travelerID
	return s.project(traveler, stays, normalizeStay(candidate)), nil
}

// Conflicts lists the date conflicts among the traveler's stays.
func (s *VisaService) Conflicts(ctx context.Context, travelerID uuid.UUID) ([]domain.DateConflict, error) {
	_, stays, err := s.load(ctx, travelerID)
	if err != nil {
		return nil, fmt.Errorf("service.VisaService.Conflicts: %w", err)
	}
	return s.resolver.Detector().Detect(stays), nil
}

// Resolve runs the auto-resolver over the traveler's stays. When apply is
// true, changed stays are written back and merged-away stays deleted in a
// single transaction.
func (s *VisaService) Resolve(ctx context.Context, travelerID uuid.UUID, apply bool) (Resolution, error) {
	_, stays, err := s.load(ctx, travelerID)
	if err != nil {
		return Resolution{}, fmt.Errorf("service.VisaService.Resolve: %w", err)
	}
	resolved := s.resolver.Resolve(stays, conflict.MaxPasses)
	res := Resolution{
		Stays:      resolved,
		Validation: s.resolver.Validate(resolved),
		Updated:    []string{},
		Deleted:    []string{},
	}
	if !apply {
		return res, nil
	}

	updates, deletes := changeSet(stays, resolved)
	if len(updates) > 0 || len(deletes) > 0 {
		if err := s.stays.ApplyResolution(ctx, travelerID, updates, deletes); err != nil {
			return Resolution{}, fmt.Errorf("service.VisaService.Resolve: %w", err)
		}
	}
	for _, u := range updates {
		res.Updated = append(res.Updated, u.ID)
	}
	res.Deleted = deletes
	res.Applied = true
	return res, nil
}

// changeSet diffs the resolver output against the stored stays by ID.
func changeSet(before []domain.Stay, after []domain.ResolvedStay) ([]domain.Stay, []string) {
	kept := make(map[string]domain.Stay, len(after))
	for _, r := range after {
		kept[r.ID] = r.Stay
	}
	var updates []domain.Stay
	deletes := []string{}
	for _, s := range before {
		next, ok := kept[s.ID]
		if !ok {
			deletes = append(deletes, s.ID)
			continue
		}
		if sameStay(s, next) {
			continue
		}
		updates = append(updates, next)
	}
	return updates, deletes
}

func sameStay(a, b domain.Stay) bool {
	return a.CountryCode == b.CountryCode &&
		a.FromCountry == b.FromCountry &&
		a.EntryDate == b.EntryDate &&
		a.ExitDate == b.ExitDate &&
		a.VisaType == b.VisaType &&
		a.EntryAirport == b.EntryAirport &&
		a.ExitAirport == b.ExitAirport &&
		a.Notes == b.Notes
}

// project runs ValidateNewStay as of the later of today and the day the
// candidate ends, so a planned trip is judged against the window it falls in.
func (s *VisaService) project(traveler domain.Traveler, existing []domain.Stay, candidate domain.Stay) domain.ValidationResult {
	ref := s.today()
	end := candidate.ExitDate
	if end == "" {
		end = candidate.EntryDate
	}
	if t, ok := domain.ParseCalendarDate(end); ok && t.After(ref) {
		ref = t
	}
	return s.calc.ValidateNewStay(candidate, existing, s.context(traveler, ref))
}

func (s *VisaService) load(ctx context.Context, travelerID uuid.UUID) (domain.Traveler, []domain.Stay, error) {
	traveler, err := s.travelers.GetByID(ctx, travelerID)
	if err != nil {
		return domain.Traveler{}, nil, err
	}
	stays, err := s.stays.ListByTravelerID(ctx, travelerID)
	if err != nil {
		return domain.Traveler{}, nil, err
	}
	return traveler, stays, nil
}

func (s *VisaService) context(traveler domain.Traveler, ref time.Time) domain.VisaContext {
	if ref.IsZero() {
		ref = s.today()
	}
	return domain.VisaContext{
		Nationality:   strings.ToUpper(traveler.Nationality),
		ReferenceDate: domain.CalendarDay(ref),
		LookbackDays:  s.lookbackDays,
		UserKey:       traveler.UserKey(),
	}
}

func (s *VisaService) today() time.Time {
	return domain.CalendarDay(s.now().UTC())
}
