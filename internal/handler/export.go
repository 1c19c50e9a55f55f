// export.go implements GET /travelers/{id}/export.csv.
// Returns one CSV line per stay with the destination's current status level.

package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/pkordes/visa-tracker/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"traveler_id", "traveler_name", "nationality",
	"stay_id", "country_code", "from_country", "entry_date", "exit_date",
	"visa_type", "days_stayed", "notes", "country_status",
}

// ExportStays handles GET /travelers/{id}/export.csv.
// ?date= pins the reference date used for ongoing stays and status levels.
func (s *Server) ExportStays(w http.ResponseWriter, r *http.Request) {
	travelerID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	ref, ok := queryDate(w, r, "date")
	if !ok {
		return
	}
	rows, err := s.export.Export(r.Context(), travelerID, ref)
	if err != nil {
		s.serviceError(w, r, err, "traveler not found")
		return
	}

	body := buildCSV(rows)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="stays-%s.csv"`, travelerID))
	w.Header().Set("Content-Length", strconv.Itoa(body.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = body.WriteTo(w)
}

// buildCSV encodes domain rows as CSV, header first.
func buildCSV(rows []domain.ExportRow) *bytes.Buffer {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write(rowToCSVRecord(r))
	}
	cw.Flush()
	return &buf
}

func rowToCSVRecord(r domain.ExportRow) []string {
	return []string{
		r.TravelerID,
		r.TravelerName,
		r.Nationality,
		r.StayID,
		r.CountryCode,
		r.FromCountry,
		r.EntryDate,
		r.ExitDate,
		r.VisaType,
		strconv.Itoa(r.DaysStayed),
		r.Notes,
		string(r.CountryStatus),
	}
}
