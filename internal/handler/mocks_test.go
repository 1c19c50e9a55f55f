package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/visa-tracker/internal/domain"
	"github.com/pkordes/visa-tracker/internal/handler"
	"github.com/pkordes/visa-tracker/internal/service"
)

// mockTravelerServicer is a test double for handler.TravelerServicer.
// Set only the method fields your test needs.
type mockTravelerServicer struct {
	create  func(ctx context.Context, t domain.Traveler) (domain.Traveler, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Traveler, error)
	list    func(ctx context.Context, p domain.PaginationParams) ([]domain.Traveler, int64, error)
	update  func(ctx context.Context, t domain.Traveler) (domain.Traveler, error)
	delete  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTravelerServicer) Create(ctx context.Context, t domain.Traveler) (domain.Traveler, error) {
	return m.create(ctx, t)
}
func (m *mockTravelerServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Traveler, error) {
	return m.getByID(ctx, id)
}
func (m *mockTravelerServicer) List(ctx context.Context, p domain.PaginationParams) ([]domain.Traveler, int64, error) {
	return m.list(ctx, p)
}
func (m *mockTravelerServicer) Update(ctx context.Context, t domain.Traveler) (domain.Traveler, error) {
	return m.update(ctx, t)
}
func (m *mockTravelerServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

// mockStayServicer is a test double for handler.StayServicer.
type mockStayServicer struct {
	create           func(ctx context.Context, s domain.Stay) (domain.Stay, domain.ValidationResult, error)
	getByID          func(ctx context.Context, travelerID, stayID uuid.UUID) (domain.Stay, error)
	listByTravelerID func(ctx context.Context, travelerID uuid.UUID) ([]domain.Stay, error)
	update           func(ctx context.Context, s domain.Stay) (domain.Stay, domain.ValidationResult, error)
	delete           func(ctx context.Context, travelerID, stayID uuid.UUID) error
}

func (m *mockStayServicer) Create(ctx context.Context, s domain.Stay) (domain.Stay, domain.ValidationResult, error) {
	return m.create(ctx, s)
}
func (m *mockStayServicer) GetByID(ctx context.Context, travelerID, stayID uuid.UUID) (domain.Stay, error) {
	return m.getByID(ctx, travelerID, stayID)
}
func (m *mockStayServicer) ListByTravelerID(ctx context.Context, travelerID uuid.UUID) ([]domain.Stay, error) {
	return m.listByTravelerID(ctx, travelerID)
}
func (m *mockStayServicer) Update(ctx context.Context, s domain.Stay) (domain.Stay, domain.ValidationResult, error) {
	return m.update(ctx, s)
}
func (m *mockStayServicer) Delete(ctx context.Context, travelerID, stayID uuid.UUID) error {
	return m.delete(ctx, travelerID, stayID)
}

// mockVisaServicer is a test double for handler.VisaServicer.
type mockVisaServicer struct {
	statuses          func(ctx context.Context, travelerID uuid.UUID, ref time.Time) ([]domain.VisaStatus, error)
	status            func(ctx context.Context, travelerID uuid.UUID, destination, visaType string, ref time.Time) (domain.VisaStatus, error)
	validateCandidate func(ctx context.Context, travelerID uuid.UUID, candidate domain.Stay) (domain.ValidationResult, error)
	conflicts         func(ctx context.Context, travelerID uuid.UUID) ([]domain.DateConflict, error)
	resolve           func(ctx context.Context, travelerID uuid.UUID, apply bool) (service.Resolution, error)
}

func (m *mockVisaServicer) Statuses(ctx context.Context, travelerID uuid.UUID, ref time.Time) ([]domain.VisaStatus, error) {
	return m.statuses(ctx, travelerID, ref)
}
func (m *mockVisaServicer) Status(ctx context.Context, travelerID uuid.UUID, destination, visaType string, ref time.Time) (domain.VisaStatus, error) {
	return m.status(ctx, travelerID, destination, visaType, ref)
}
func (m *mockVisaServicer) ValidateCandidate(ctx context.Context, travelerID uuid.UUID, candidate domain.Stay) (domain.ValidationResult, error) {
	return m.validateCandidate(ctx, travelerID, candidate)
}
func (m *mockVisaServicer) Conflicts(ctx context.Context, travelerID uuid.UUID) ([]domain.DateConflict, error) {
	return m.conflicts(ctx, travelerID)
}
func (m *mockVisaServicer) Resolve(ctx context.Context, travelerID uuid.UUID, apply bool) (service.Resolution, error) {
	return m.resolve(ctx, travelerID, apply)
}

// mockExportServicer is a test double for handler.ExportServicer.
type mockExportServicer struct {
	export func(ctx context.Context, travelerID uuid.UUID, ref time.Time) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context, travelerID uuid.UUID, ref time.Time) ([]domain.ExportRow, error) {
	return m.export(ctx, travelerID, ref)
}

// compile-time checks: the mocks must satisfy the handler interfaces.
var (
	_ handler.TravelerServicer = (*mockTravelerServicer)(nil)
	_ handler.StayServicer     = (*mockStayServicer)(nil)
	_ handler.VisaServicer     = (*mockVisaServicer)(nil)
	_ handler.ExportServicer   = (*mockExportServicer)(nil)
)

// ---- helpers ---------------------------------------------------------------

// mocks groups one of each servicer so tests can set only what they exercise.
type mocks struct {
	travelers *mockTravelerServicer
	stays     *mockStayServicer
	visa      *mockVisaServicer
	export    *mockExportServicer
}

func newMocks() *mocks {
	return &mocks{
		travelers: &mockTravelerServicer{},
		stays:     &mockStayServicer{},
		visa:      &mockVisaServicer{},
		export:    &mockExportServicer{},
	}
}

// router wires a Server with the mocks into its chi router, exactly as
// main.go wires it in production.
func (m *mocks) router(opts ...handler.Option) http.Handler {
	return handler.NewServer(m.travelers, m.stays, m.visa, m.export, opts...).Routes()
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(h http.Handler, method, target string, body *bytes.Buffer) *httptest.ResponseRecorder {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, body)
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}
