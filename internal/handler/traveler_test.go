package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/visa-tracker/internal/domain"
	"github.com/pkordes/visa-tracker/internal/handler"
)

func travelerFixture() domain.Traveler {
	return domain.Traveler{
		ID:          uuid.New(),
		Name:        "Alex Rivera",
		Nationality: "US",
		Notes:       "digital nomad",
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
}

func TestCreateTraveler_201(t *testing.T) {
	m := newMocks()
	var got domain.Traveler
	m.travelers.create = func(_ context.Context, tr domain.Traveler) (domain.Traveler, error) {
		got = tr
		out := travelerFixture()
		out.Name, out.Nationality = tr.Name, tr.Nationality
		return out, nil
	}

	rec := do(m.router(), http.MethodPost, "/travelers",
		jsonBody(t, map[string]any{"name": "Alex Rivera", "nationality": "us"}))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Alex Rivera", got.Name)
	assert.Equal(t, "us", got.Nationality, "normalization belongs to the service")
	var body handler.Traveler
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.NotEqual(t, uuid.Nil, body.ID)
	assert.Nil(t, body.Notes)
}

func TestCreateTraveler_ValidationError_422(t *testing.T) {
	m := newMocks()
	m.travelers.create = func(_ context.Context, _ domain.Traveler) (domain.Traveler, error) {
		return domain.Traveler{}, fmt.Errorf("service.TravelerService.Create: %w", fmt.Errorf("%w: name is required", domain.ErrValidation))
	}

	rec := do(m.router(), http.MethodPost, "/travelers", jsonBody(t, map[string]any{"name": "", "nationality": "US"}))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	detail := decodeError(t, rec)
	assert.Equal(t, "validation_error", detail.Code)
	assert.Equal(t, "name is required", detail.Message)
}

func TestCreateTraveler_MalformedJSON_400(t *testing.T) {
	m := newMocks()

	rec := do(m.router(), http.MethodPost, "/travelers", jsonBody(t, "not an object"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", decodeError(t, rec).Code)
}

func TestCreateTraveler_UnknownField_400(t *testing.T) {
	m := newMocks()

	rec := do(m.router(), http.MethodPost, "/travelers",
		jsonBody(t, map[string]any{"name": "A", "nationality": "US", "passport": "X123"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateTraveler_InternalError_500HidesDetails(t *testing.T) {
	m := newMocks()
	m.travelers.create = func(_ context.Context, _ domain.Traveler) (domain.Traveler, error) {
		return domain.Traveler{}, errors.New("pq: connection refused on 10.0.0.5")
	}

	rec := do(m.router(), http.MethodPost, "/travelers", jsonBody(t, map[string]any{"name": "A", "nationality": "US"}))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	detail := decodeError(t, rec)
	assert.Equal(t, "internal_error", detail.Code)
	assert.NotContains(t, detail.Message, "10.0.0.5")
}

func TestListTravelers_Pagination(t *testing.T) {
	m := newMocks()
	var gotParams domain.PaginationParams
	m.travelers.list = func(_ context.Context, p domain.PaginationParams) ([]domain.Traveler, int64, error) {
		gotParams = p
		return []domain.Traveler{travelerFixture()}, 41, nil
	}

	rec := do(m.router(), http.MethodGet, "/travelers?page=3&limit=500", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.PaginationParams{Page: 3, Limit: 100}, gotParams)
	var body handler.TravelerList
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Len(t, body.Data, 1)
	assert.Equal(t, handler.Pagination{Page: 3, Limit: 100, Total: 41}, body.Pagination)
}

func TestListTravelers_BadPage_422(t *testing.T) {
	rec := do(newMocks().router(), http.MethodGet, "/travelers?page=two", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetTraveler_200(t *testing.T) {
	m := newMocks()
	tr := travelerFixture()
	m.travelers.getByID = func(_ context.Context, id uuid.UUID) (domain.Traveler, error) {
		assert.Equal(t, tr.ID, id)
		return tr, nil
	}

	rec := do(m.router(), http.MethodGet, "/travelers/"+tr.ID.String(), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body handler.Traveler
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, tr.ID, body.ID)
	require.NotNil(t, body.Notes)
	assert.Equal(t, "digital nomad", *body.Notes)
}

func TestGetTraveler_NotFound_404(t *testing.T) {
	m := newMocks()
	m.travelers.getByID = func(_ context.Context, _ uuid.UUID) (domain.Traveler, error) {
		return domain.Traveler{}, fmt.Errorf("service.TravelerService.GetByID: %w", domain.ErrNotFound)
	}

	rec := do(m.router(), http.MethodGet, "/travelers/"+uuid.NewString(), nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "traveler not found", decodeError(t, rec).Message)
}

func TestGetTraveler_BadUUID_422(t *testing.T) {
	rec := do(newMocks().router(), http.MethodGet, "/travelers/not-a-uuid", nil)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "id must be a UUID", decodeError(t, rec).Message)
}

func TestUpdateTraveler_UsesPathID(t *testing.T) {
	m := newMocks()
	id := uuid.New()
	m.travelers.update = func(_ context.Context, tr domain.Traveler) (domain.Traveler, error) {
		assert.Equal(t, id, tr.ID)
		return tr, nil
	}

	rec := do(m.router(), http.MethodPut, "/travelers/"+id.String(),
		jsonBody(t, map[string]any{"name": "Alex", "nationality": "GB", "notes": "moved"}))

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteTraveler_204(t *testing.T) {
	m := newMocks()
	m.travelers.delete = func(_ context.Context, _ uuid.UUID) error { return nil }

	rec := do(m.router(), http.MethodDelete, "/travelers/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
