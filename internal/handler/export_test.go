package handler_test

import (
	"context"
	"encoding/csv"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/visa-tracker/internal/domain"
)

func TestExportStays_CSV(t *testing.T) {
	m := newMocks()
	travelerID := uuid.New()
	m.export.export = func(_ context.Context, id uuid.UUID, ref time.Time) ([]domain.ExportRow, error) {
		assert.Equal(t, travelerID, id)
		assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), ref)
		return []domain.ExportRow{
			{
				TravelerID: id.String(), TravelerName: "Alex Rivera", Nationality: "US",
				StayID: "a", CountryCode: "JP", EntryDate: "2024-01-01", ExitDate: "2024-01-30",
				DaysStayed: 30, Notes: "ski, then Tokyo", CountryStatus: domain.StatusSafe,
			},
			{
				TravelerID: id.String(), TravelerName: "Alex Rivera", Nationality: "US",
				StayID: "b", CountryCode: "TH", EntryDate: "2024-03-01",
				DaysStayed: 15, CountryStatus: domain.StatusSafe,
			},
		}, nil
	}

	rec := do(m.router(), http.MethodGet, travelerPath(travelerID, "/export.csv?date=2024-03-15"), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), travelerID.String())

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "traveler_id", records[0][0])
	assert.Equal(t, "country_status", records[0][11])
	assert.Equal(t, "ski, then Tokyo", records[1][10])
	assert.Equal(t, "30", records[1][9])
	assert.Equal(t, "", records[2][7], "ongoing stay has no exit date")
}

func TestExportStays_NotFound_404(t *testing.T) {
	m := newMocks()
	m.export.export = func(_ context.Context, _ uuid.UUID, _ time.Time) ([]domain.ExportRow, error) {
		return nil, domain.ErrNotFound
	}

	rec := do(m.router(), http.MethodGet, travelerPath(uuid.New(), "/export.csv"), nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
