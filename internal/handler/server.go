// Package handler implements the HTTP handlers for the visa tracker API.
// All handlers are methods on Server and are mounted by Server.Routes on a chi
// router. Methods are split into resource files (health.go, traveler.go, etc.)
// but share the same Server struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/visa-tracker/internal/domain"
	"github.com/pkordes/visa-tracker/internal/service"
)

// TravelerServicer defines the business operations the traveler handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TravelerServicer interface {
	Create(ctx context.Context, t domain.Traveler) (domain.Traveler, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Traveler, error)
	List(ctx context.Context, p domain.PaginationParams) ([]domain.Traveler, int64, error)
	Update(ctx context.Context, t domain.Traveler) (domain.Traveler, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// StayServicer defines the business operations the stay handlers depend on.
type StayServicer interface {
	Create(ctx context.Context, s domain.Stay) (domain.Stay, domain.ValidationResult, error)
	GetByID(ctx context.Context, travelerID, stayID uuid.UUID) (domain.Stay, error)
	ListByTravelerID(ctx context.Context, travelerID uuid.UUID) ([]domain.Stay, error)
	Update(ctx context.Context, s domain.Stay) (domain.Stay, domain.ValidationResult, error)
	Delete(ctx context.Context, travelerID, stayID uuid.UUID) error
}

// VisaServicer defines the visa and conflict queries the handlers depend on.
type VisaServicer interface {
	Statuses(ctx context.Context, travelerID uuid.UUID, ref time.Time) ([]domain.VisaStatus, error)
	Status(ctx context.Context, travelerID uuid.UUID, destination, visaType string, ref time.Time) (domain.VisaStatus, error)
	ValidateCandidate(ctx context.Context, travelerID uuid.UUID, candidate domain.Stay) (domain.ValidationResult, error)
	Conflicts(ctx context.Context, travelerID uuid.UUID) ([]domain.DateConflict, error)
	Resolve(ctx context.Context, travelerID uuid.UUID, apply bool) (service.Resolution, error)
}

// ExportServicer defines the export operation the export handler depends on.
type ExportServicer interface {
	Export(ctx context.Context, travelerID uuid.UUID, ref time.Time) ([]domain.ExportRow, error)
}

// Server serves every API endpoint. Wire it in main.go via Server.Routes.
type Server struct {
	travelers TravelerServicer
	stays     StayServicer
	visa      VisaServicer
	export    ExportServicer
	openAPI   []byte
	log       *slog.Logger

	// resolveLimit guards the endpoint that rewrites stored stays.
	resolveLimit func(http.Handler) http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for unexpected errors. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithOpenAPI sets the document served at GET /openapi.yaml.
func WithOpenAPI(doc []byte) Option {
	return func(s *Server) { s.openAPI = doc }
}

// WithResolveLimit wraps POST /travelers/{id}/conflicts/resolve in mw.
func WithResolveLimit(mw func(http.Handler) http.Handler) Option {
	return func(s *Server) { s.resolveLimit = mw }
}

// NewServer constructs the Server with all its dependencies.
func NewServer(travelers TravelerServicer, stays StayServicer, visa VisaServicer, export ExportServicer, opts ...Option) *Server {
	s := &Server{
		travelers: travelers,
		stays:     stays,
		visa:      visa,
		export:    export,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil, nil)
}

// Routes returns a chi router with every endpoint mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/travelers", func(r chi.Router) {
		r.Post("/", s.CreateTraveler)
		r.Get("/", s.ListTravelers)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetTraveler)
			r.Put("/", s.UpdateTraveler)
			r.Delete("/", s.DeleteTraveler)

			r.Post("/stays", s.CreateStay)
			r.Get("/stays", s.ListStays)
			r.Post("/stays/validate", s.ValidateStay)
			r.Get("/stays/{stayID}", s.GetStay)
			r.Put("/stays/{stayID}", s.UpdateStay)
			r.Delete("/stays/{stayID}", s.DeleteStay)

			r.Get("/visa-status", s.ListVisaStatuses)
			r.Get("/visa-status/{country}", s.GetVisaStatus)

			r.Get("/conflicts", s.ListConflicts)
			r.Group(func(r chi.Router) {
				if s.resolveLimit != nil {
					r.Use(s.resolveLimit)
				}
				r.Post("/conflicts/resolve", s.ResolveConflicts)
			})

			r.Get("/export.csv", s.ExportStays)
		})
	})

	return r
}
