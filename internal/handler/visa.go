package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/visa-tracker/internal/domain"
)

// ResolveResponse is the body of POST /travelers/{id}/conflicts/resolve.
type ResolveResponse struct {
	Stays      []domain.ResolvedStay       `json:"stays"`
	Validation domain.ResolutionValidation `json:"validation"`
	Applied    bool                        `json:"applied"`
	Updated    []string                    `json:"updated"`
	Deleted    []string                    `json:"deleted"`
}

// ListVisaStatuses handles GET /travelers/{id}/visa-status.
// ?date= pins the reference date (default: today, UTC).
func (s *Server) ListVisaStatuses(w http.ResponseWriter, r *http.Request) {
	travelerID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	ref, ok := queryDate(w, r, "date")
	if !ok {
		return
	}
	statuses, err := s.visa.Statuses(r.Context(), travelerID, ref)
	if err != nil {
		s.serviceError(w, r, err, "traveler not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]domain.VisaStatus{"data": statuses})
}

// GetVisaStatus handles GET /travelers/{id}/visa-status/{country}.
// ?visa_type= selects a traveler-specific override rule.
func (s *Server) GetVisaStatus(w http.ResponseWriter, r *http.Request) {
	travelerID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	ref, ok := queryDate(w, r, "date")
	if !ok {
		return
	}
	country := chi.URLParam(r, "country")
	status, err := s.visa.Status(r.Context(), travelerID, country, r.URL.Query().Get("visa_type"), ref)
	if err != nil {
		s.serviceError(w, r, err, "traveler not found")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// ValidateStay handles POST /travelers/{id}/stays/validate.
// The response is 200 whether or not the candidate is valid.
func (s *Server) ValidateStay(w http.ResponseWriter, r *http.Request) {
	travelerID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	candidate, ok := decodeStay(w, r, travelerID)
	if !ok {
		return
	}
	result, err := s.visa.ValidateCandidate(r.Context(), travelerID, candidate)
	if err != nil {
		s.serviceError(w, r, err, "traveler not found")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ListConflicts handles GET /travelers/{id}/conflicts.
func (s *Server) ListConflicts(w http.ResponseWriter, r *http.Request) {
	travelerID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	conflicts, err := s.visa.Conflicts(r.Context(), travelerID)
	if err != nil {
		s.serviceError(w, r, err, "traveler not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]domain.DateConflict{"data": conflicts})
}

// ResolveConflicts handles POST /travelers/{id}/conflicts/resolve.
// Without ?apply=true this is a dry run.
func (s *Server) ResolveConflicts(w http.ResponseWriter, r *http.Request) {
	travelerID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	apply := false
	if raw := r.URL.Query().Get("apply"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(w, "apply must be true or false")
			return
		}
		apply = v
	}

	res, err := s.visa.Resolve(r.Context(), travelerID, apply)
	if err != nil {
		s.serviceError(w, r, err, "traveler not found")
		return
	}
	writeJSON(w, http.StatusOK, ResolveResponse{
		Stays:      res.Stays,
		Validation: res.Validation,
		Applied:    res.Applied,
		Updated:    res.Updated,
		Deleted:    res.Deleted,
	})
}
