package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/visa-tracker/internal/domain"
)

// TravelerRequest is the body of POST /travelers and PUT /travelers/{id}.
type TravelerRequest struct {
	Name        string  `json:"name"`
	Nationality string  `json:"nationality"`
	Notes       *string `json:"notes,omitempty"`
}

// Traveler is the JSON representation of a traveler.
type Traveler struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Nationality string    `json:"nationality"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// TravelerList is the body of GET /travelers.
type TravelerList struct {
	Data       []Traveler `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// CreateTraveler handles POST /travelers.
func (s *Server) CreateTraveler(w http.ResponseWriter, r *http.Request) {
	var body TravelerRequest
	if !decodeBody(w, r, &body) {
		return
	}

	created, err := s.travelers.Create(r.Context(), requestToTraveler(uuid.Nil, body))
	if err != nil {
		s.serviceError(w, r, err, "traveler not found")
		return
	}
	writeJSON(w, http.StatusCreated, travelerToResponse(created))
}

// ListTravelers handles GET /travelers.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListTravelers(w http.ResponseWriter, r *http.Request) {
	page, ok := queryInt(w, r, "page")
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	params := domain.NewPaginationParams(page, limit)

	travelers, total, err := s.travelers.List(r.Context(), params)
	if err != nil {
		s.serviceError(w, r, err, "traveler not found")
		return
	}

	data := make([]Traveler, len(travelers))
	for i, t := range travelers {
		data[i] = travelerToResponse(t)
	}
	writeJSON(w, http.StatusOK, TravelerList{
		Data:       data,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: int(total)},
	})
}

// GetTraveler handles GET /travelers/{id}.
func (s *Server) GetTraveler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	t, err := s.travelers.GetByID(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err, "traveler not found")
		return
	}
	writeJSON(w, http.StatusOK, travelerToResponse(t))
}

// UpdateTraveler handles PUT /travelers/{id}.
func (s *Server) UpdateTraveler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var body TravelerRequest
	if !decodeBody(w, r, &body) {
		return
	}

	updated, err := s.travelers.Update(r.Context(), requestToTraveler(id, body))
	if err != nil {
		s.serviceError(w, r, err, "traveler not found")
		return
	}
	writeJSON(w, http.StatusOK, travelerToResponse(updated))
}

// DeleteTraveler handles DELETE /travelers/{id}.
func (s *Server) DeleteTraveler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := s.travelers.Delete(r.Context(), id); err != nil {
		s.serviceError(w, r, err, "traveler not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

func requestToTraveler(id uuid.UUID, body TravelerRequest) domain.Traveler {
	t := domain.Traveler{ID: id, Name: body.Name, Nationality: body.Nationality}
	if body.Notes != nil {
		t.Notes = *body.Notes
	}
	return t
}

func travelerToResponse(t domain.Traveler) Traveler {
	resp := Traveler{
		ID:          t.ID,
		Name:        t.Name,
		Nationality: t.Nationality,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Notes != "" {
		resp.Notes = &t.Notes
	}
	return resp
}
