package service_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/pkordes/visa-tracker/internal/domain"
	"github.com/pkordes/visa-tracker/internal/repo"
)

// mockTravelerRepo is a hand-written test double for repo.TravelerRepo.
// Each method is a function field; set only the ones your test needs.
type mockTravelerRepo struct {
	create    func(ctx context.Context, t domain.Traveler) (domain.Traveler, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Traveler, error)
	listPaged func(ctx context.Context, p domain.PaginationParams) ([]domain.Traveler, int64, error)
	update    func(ctx context.Context, t domain.Traveler) (domain.Traveler, error)
	delete    func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTravelerRepo) Create(ctx context.Context, t domain.Traveler) (domain.Traveler, error) {
	return m.create(ctx, t)
}
func (m *mockTravelerRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Traveler, error) {
	return m.getByID(ctx, id)
}
func (m *mockTravelerRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Traveler, int64, error) {
	return m.listPaged(ctx, p)
}
func (m *mockTravelerRepo) Update(ctx context.Context, t domain.Traveler) (domain.Traveler, error) {
	return m.update(ctx, t)
}
func (m *mockTravelerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

// mockStayRepo is a hand-written test double for repo.StayRepo.
type mockStayRepo struct {
	create           func(ctx context.Context, s domain.Stay) (domain.Stay, error)
	getByID          func(ctx context.Context, travelerID, stayID uuid.UUID) (domain.Stay, error)
	listByTravelerID func(ctx context.Context, travelerID uuid.UUID) ([]domain.Stay, error)
	update           func(ctx context.Context, s domain.Stay) (domain.Stay, error)
	delete           func(ctx context.Context, travelerID, stayID uuid.UUID) error
	applyResolution  func(ctx context.Context, travelerID uuid.UUID, updates []domain.Stay, deletes []string) error
}

func (m *mockStayRepo) Create(ctx context.Context, s domain.Stay) (domain.Stay, error) {
	return m.create(ctx, s)
}
func (m *mockStayRepo) GetByID(ctx context.Context, travelerID, stayID uuid.UUID) (domain.Stay, error) {
	return m.getByID(ctx, travelerID, stayID)
}
func (m *mockStayRepo) ListByTravelerID(ctx context.Context, travelerID uuid.UUID) ([]domain.Stay, error) {
	return m.listByTravelerID(ctx, travelerID)
}
func (m *mockStayRepo) Update(ctx context.Context, s domain.Stay) (domain.Stay, error) {
	return m.update(ctx, s)
}
func (m *mockStayRepo) Delete(ctx context.Context, travelerID, stayID uuid.UUID) error {
	return m.delete(ctx, travelerID, stayID)
}
func (m *mockStayRepo) ApplyResolution(ctx context.Context, travelerID uuid.UUID, updates []domain.Stay, deletes []string) error {
	return m.applyResolution(ctx, travelerID, updates, deletes)
}

// compile-time checks: the mocks must satisfy the repo interfaces.
var (
	_ repo.TravelerRepo = (*mockTravelerRepo)(nil)
	_ repo.StayRepo     = (*mockStayRepo)(nil)
)
