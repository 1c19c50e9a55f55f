package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/visa-tracker/internal/domain"
)

// StayRequest is the body of the stay create, update, and validate endpoints.
// ExitDate is omitted while the traveler is still in the country.
type StayRequest struct {
	// StayID is only read by POST /stays/validate, to dry-run an edit.
	StayID       *string             `json:"stay_id,omitempty"`
	CountryCode  string              `json:"country_code"`
	FromCountry  *string             `json:"from_country,omitempty"`
	EntryDate    openapi_types.Date  `json:"entry_date"`
	ExitDate     *openapi_types.Date `json:"exit_date,omitempty"`
	VisaType     *string             `json:"visa_type,omitempty"`
	EntryAirport *string             `json:"entry_airport,omitempty"`
	ExitAirport  *string             `json:"exit_airport,omitempty"`
	Notes        *string             `json:"notes,omitempty"`
}

// Stay is the JSON representation of a stay.
// Warning is set on writes whose projection leaves the traveler critically
// close to the allowance.
type Stay struct {
	ID           string              `json:"id"`
	TravelerID   uuid.UUID           `json:"traveler_id"`
	CountryCode  string              `json:"country_code"`
	FromCountry  *string             `json:"from_country,omitempty"`
	EntryDate    openapi_types.Date  `json:"entry_date"`
	ExitDate     *openapi_types.Date `json:"exit_date,omitempty"`
	Ongoing      bool                `json:"ongoing"`
	VisaType     *string             `json:"visa_type,omitempty"`
	EntryAirport *string             `json:"entry_airport,omitempty"`
	ExitAirport  *string             `json:"exit_airport,omitempty"`
	Notes        *string             `json:"notes,omitempty"`
	Warning      *string             `json:"warning,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// CreateStay handles POST /travelers/{id}/stays.
// A stay that would exceed the allowance is rejected with 422.
func (s *Server) CreateStay(w http.ResponseWriter, r *http.Request) {
	travelerID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	stay, ok := decodeStay(w, r, travelerID)
	if !ok {
		return
	}

	created, check, err := s.stays.Create(r.Context(), stay)
	if err != nil {
		s.serviceError(w, r, err, "traveler not found")
		return
	}
	writeJSON(w, http.StatusCreated, stayToResponse(created, check.Message))
}

// ListStays handles GET /travelers/{id}/stays.
func (s *Server) ListStays(w http.ResponseWriter, r *http.Request) {
	travelerID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	stays, err := s.stays.ListByTravelerID(r.Context(), travelerID)
	if err != nil {
		s.serviceError(w, r, err, "traveler not found")
		return
	}

	data := make([]Stay, len(stays))
	for i, st := range stays {
		data[i] = stayToResponse(st, "")
	}
	writeJSON(w, http.StatusOK, map[string][]Stay{"data": data})
}

// GetStay handles GET /travelers/{id}/stays/{stayID}.
func (s *Server) GetStay(w http.ResponseWriter, r *http.Request) {
	travelerID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	stayID, ok := pathUUID(w, r, "stayID")
	if !ok {
		return
	}
	st, err := s.stays.GetByID(r.Context(), travelerID, stayID)
	if err != nil {
		s.serviceError(w, r, err, "stay not found")
		return
	}
	writeJSON(w, http.StatusOK, stayToResponse(st, ""))
}

// UpdateStay handles PUT /travelers/{id}/stays/{stayID}.
func (s *Server) UpdateStay(w http.ResponseWriter, r *http.Request) {
	travelerID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	stayID, ok := pathUUID(w, r, "stayID")
	if !ok {
		return
	}
	stay, ok := decodeStay(w, r, travelerID)
	if !ok {
		return
	}
	stay.ID = stayID.String()

	updated, check, err := s.stays.Update(r.Context(), stay)
	if err != nil {
		s.serviceError(w, r, err, "stay not found")
		return
	}
	writeJSON(w, http.StatusOK, stayToResponse(updated, check.Message))
}

// DeleteStay handles DELETE /travelers/{id}/stays/{stayID}.
func (s *Server) DeleteStay(w http.ResponseWriter, r *http.Request) {
	travelerID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	stayID, ok := pathUUID(w, r, "stayID")
	if !ok {
		return
	}
	if err := s.stays.Delete(r.Context(), travelerID, stayID); err != nil {
		s.serviceError(w, r, err, "stay not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

// decodeStay reads a StayRequest body into a domain.Stay for travelerID.
func decodeStay(w http.ResponseWriter, r *http.Request, travelerID uuid.UUID) (domain.Stay, bool) {
	var body StayRequest
	if !decodeBody(w, r, &body) {
		return domain.Stay{}, false
	}
	if body.EntryDate.Time.IsZero() {
		badRequest(w, "entry_date is required")
		return domain.Stay{}, false
	}
	return requestToStay(travelerID, body), true
}

func requestToStay(travelerID uuid.UUID, body StayRequest) domain.Stay {
	st := domain.Stay{
		TravelerID:   travelerID,
		CountryCode:  body.CountryCode,
		FromCountry:  deref(body.FromCountry),
		EntryDate:    domain.FormatCalendarDate(body.EntryDate.Time),
		VisaType:     deref(body.VisaType),
		EntryAirport: deref(body.EntryAirport),
		ExitAirport:  deref(body.ExitAirport),
		Notes:        deref(body.Notes),
	}
	if body.StayID != nil {
		st.ID = *body.StayID
	}
	if body.ExitDate != nil {
		st.ExitDate = domain.FormatCalendarDate(body.ExitDate.Time)
	}
	return st
}

func stayToResponse(st domain.Stay, warning string) Stay {
	resp := Stay{
		ID:           st.ID,
		TravelerID:   st.TravelerID,
		CountryCode:  st.CountryCode,
		FromCountry:  optional(st.FromCountry),
		EntryDate:    toDate(st.EntryDate),
		Ongoing:      st.IsOngoing(),
		VisaType:     optional(st.VisaType),
		EntryAirport: optional(st.EntryAirport),
		ExitAirport:  optional(st.ExitAirport),
		Notes:        optional(st.Notes),
		Warning:      optional(warning),
		CreatedAt:    st.CreatedAt,
		UpdatedAt:    st.UpdatedAt,
	}
	if !st.IsOngoing() {
		d := toDate(st.ExitDate)
		resp.ExitDate = &d
	}
	return resp
}

// toDate converts a stored YYYY-MM-DD string; stored dates are always valid.
func toDate(s string) openapi_types.Date {
	t, _ := domain.ParseCalendarDate(s)
	return openapi_types.Date{Time: t}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
