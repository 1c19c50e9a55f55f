package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/visa-tracker/internal/domain"
)

// ExportService assembles a flat export of a traveler's stays annotated with
// the current visa status of each destination.
type ExportService struct {
	visa *VisaService
}

// NewExportService constructs an ExportService on top of a VisaService.
func NewExportService(visa *VisaService) *ExportService {
	return &ExportService{visa: visa}
}

// Export returns one ExportRow per stay, in entry-date order, with status
// levels computed as of ref (zero means today).
// A traveler with no stays yields an empty, non-nil slice.
func (s *ExportService) Export(ctx context.Context, travelerID uuid.UUID, ref time.Time) ([]domain.ExportRow, error) {
	traveler, stays, err := s.visa.load(ctx, travelerID)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	vctx := s.visa.context(traveler, ref)
	levels := make(map[string]domain.StatusLevel)
	for _, st := range s.visa.calc.AllStatuses(stays, vctx) {
		levels[st.CountryCode] = st.Status
	}

	rows := make([]domain.ExportRow, 0, len(stays))
	for _, st := range stays {
		rows = append(rows, domain.ExportRow{
			TravelerID:    traveler.ID.String(),
			TravelerName:  traveler.Name,
			Nationality:   traveler.Nationality,
			StayID:        st.ID,
			CountryCode:   st.CountryCode,
			FromCountry:   st.FromCountry,
			EntryDate:     st.EntryDate,
			ExitDate:      st.ExitDate,
			VisaType:      st.VisaType,
			DaysStayed:    daysStayed(st, vctx.ReferenceDate),
			Notes:         st.Notes,
			CountryStatus: levels[st.CountryCode],
		})
	}
	return rows, nil
}

// daysStayed counts an ongoing stay up to ref.
func daysStayed(st domain.Stay, ref time.Time) int {
	entry, ok := domain.ParseCalendarDate(st.EntryDate)
	if !ok {
		return 0
	}
	exit := ref
	if !st.IsOngoing() {
		if exit, ok = domain.ParseCalendarDate(st.ExitDate); !ok {
			return 0
		}
	}
	if exit.Before(entry) {
		return 0
	}
	return domain.StayDuration(entry, exit)
}
