package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/visa-tracker/internal/domain"
)

// StayRepo defines the persistence operations for Stays.
// All write and single-read operations are scoped by travelerID to enforce ownership.
type StayRepo interface {
	// Create inserts a new stay and returns the persisted record.
	Create(ctx context.Context, stay domain.Stay) (domain.Stay, error)

	// GetByID retrieves a single stay, scoped to the given traveler.
	// Returns domain.ErrNotFound if no stay with that ID exists under that traveler.
	GetByID(ctx context.Context, travelerID, stayID uuid.UUID) (domain.Stay, error)

	// ListByTravelerID returns all stays for a traveler ordered by entry_date ascending.
	ListByTravelerID(ctx context.Context, travelerID uuid.UUID) ([]domain.Stay, error)

	// Update overwrites the mutable fields of a stay, scoped to stay.TravelerID.
	// Returns domain.ErrNotFound if no stay with that ID exists under that traveler.
	Update(ctx context.Context, stay domain.Stay) (domain.Stay, error)

	// Delete removes a stay, scoped to the given traveler.
	// Returns domain.ErrNotFound if no stay with that ID exists under that traveler.
	Delete(ctx context.Context, travelerID, stayID uuid.UUID) error

	// ApplyResolution writes a conflict resolution in one transaction: every
	// stay in updates is overwritten and every ID in deletes is removed.
	// Nothing is written if any statement fails.
	ApplyResolution(ctx context.Context, travelerID uuid.UUID, updates []domain.Stay, deletes []string) error
}

// pgStayRepo is the Postgres implementation of StayRepo.
type pgStayRepo struct {
	db db
}

// NewStayRepo constructs a StayRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewStayRepo(db db) StayRepo {
	return &pgStayRepo{db: db}
}

const stayColumns = `id, traveler_id, country_code, from_country, entry_date, exit_date,
	visa_type, entry_airport, exit_airport, notes, created_at, updated_at`

func (r *pgStayRepo) Create(ctx context.Context, stay domain.Stay) (domain.Stay, error) {
	const q = `
		INSERT INTO stays (traveler_id, country_code, from_country, entry_date, exit_date,
		                   visa_type, entry_airport, exit_airport, notes)
		VALUES (@traveler_id, @country_code, @from_country, @entry_date, @exit_date,
		        @visa_type, @entry_airport, @exit_airport, @notes)
		RETURNING ` + stayColumns

	args, err := stayArgs(stay)
	if err != nil {
		return domain.Stay{}, fmt.Errorf("repo.StayRepo.Create: %w", err)
	}
	result, err := scanStay(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Stay{}, fmt.Errorf("repo.StayRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgStayRepo) GetByID(ctx context.Context, travelerID, stayID uuid.UUID) (domain.Stay, error) {
	const q = `SELECT ` + stayColumns + ` FROM stays WHERE id = @id AND traveler_id = @traveler_id`

	result, err := scanStay(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": stayID, "traveler_id": travelerID}))
	if err != nil {
		return domain.Stay{}, fmt.Errorf("repo.StayRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgStayRepo) ListByTravelerID(ctx context.Context, travelerID uuid.UUID) ([]domain.Stay, error) {
	const q = `
		SELECT ` + stayColumns + `
		FROM stays
		WHERE traveler_id = @traveler_id
		ORDER BY entry_date, created_at`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"traveler_id": travelerID})
	if err != nil {
		return nil, fmt.Errorf("repo.StayRepo.ListByTravelerID: %w", err)
	}
	defer rows.Close()

	stays := []domain.Stay{}
	for rows.Next() {
		s, err := scanStay(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.StayRepo.ListByTravelerID: scan: %w", err)
		}
		stays = append(stays, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.StayRepo.ListByTravelerID: rows: %w", err)
	}
	return stays, nil
}

func (r *pgStayRepo) Update(ctx context.Context, stay domain.Stay) (domain.Stay, error) {
	result, err := updateStay(ctx, r.db, stay)
	if err != nil {
		return domain.Stay{}, fmt.Errorf("repo.StayRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgStayRepo) Delete(ctx context.Context, travelerID, stayID uuid.UUID) error {
	if err := deleteStay(ctx, r.db, travelerID, stayID); err != nil {
		return fmt.Errorf("repo.StayRepo.Delete: %w", err)
	}
	return nil
}

func (r *pgStayRepo) ApplyResolution(ctx context.Context, travelerID uuid.UUID, updates []domain.Stay, deletes []string) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		for _, s := range updates {
			s.TravelerID = travelerID
			if _, err := updateStay(ctx, tx, s); err != nil {
				return fmt.Errorf("update %s: %w", s.ID, err)
			}
		}
		for _, raw := range deletes {
			id, err := uuid.Parse(raw)
			if err != nil {
				return fmt.Errorf("delete %q: %w", raw, domain.ErrNotFound)
			}
			if err := deleteStay(ctx, tx, travelerID, id); err != nil {
				return fmt.Errorf("delete %s: %w", raw, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("repo.StayRepo.ApplyResolution: %w", err)
	}
	return nil
}

func updateStay(ctx context.Context, db db, stay domain.Stay) (domain.Stay, error) {
	const q = `
		UPDATE stays
		SET country_code  = @country_code,
		    from_country  = @from_country,
		    entry_date    = @entry_date,
		    exit_date     = @exit_date,
		    visa_type     = @visa_type,
		    entry_airport = @entry_airport,
		    exit_airport  = @exit_airport,
		    notes         = @notes,
		    updated_at    = now()
		WHERE id = @id AND traveler_id = @traveler_id
		RETURNING ` + stayColumns

	id, err := uuid.Parse(stay.ID)
	if err != nil {
		return domain.Stay{}, fmt.Errorf("stay id %q: %w", stay.ID, domain.ErrNotFound)
	}
	args, err := stayArgs(stay)
	if err != nil {
		return domain.Stay{}, err
	}
	args["id"] = id
	return scanStay(db.QueryRow(ctx, q, args))
}

func deleteStay(ctx context.Context, db db, travelerID, stayID uuid.UUID) error {
	const q = `DELETE FROM stays WHERE id = @id AND traveler_id = @traveler_id`

	tag, err := db.Exec(ctx, q, pgx.NamedArgs{"id": stayID, "traveler_id": travelerID})
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// stayArgs converts the date-only strings into DATE parameters.
// An empty exit date becomes NULL.
func stayArgs(stay domain.Stay) (pgx.NamedArgs, error) {
	entry, ok := domain.ParseCalendarDate(stay.EntryDate)
	if !ok {
		return nil, domain.Invalidf("entry_date %q is not a valid date", stay.EntryDate)
	}
	exit := pgtype.Date{}
	if !stay.IsOngoing() {
		t, ok := domain.ParseCalendarDate(stay.ExitDate)
		if !ok {
			return nil, domain.Invalidf("exit_date %q is not a valid date", stay.ExitDate)
		}
		exit = pgtype.Date{Time: t, Valid: true}
	}
	return pgx.NamedArgs{
		"traveler_id":   stay.TravelerID,
		"country_code":  stay.CountryCode,
		"from_country":  stay.FromCountry,
		"entry_date":    pgtype.Date{Time: entry, Valid: true},
		"exit_date":     exit,
		"visa_type":     stay.VisaType,
		"entry_airport": stay.EntryAirport,
		"exit_airport":  stay.ExitAirport,
		"notes":         stay.Notes,
	}, nil
}

// scanStay maps a single database row into a domain.Stay, rendering DATE
// columns as YYYY-MM-DD strings and a NULL exit_date as an ongoing stay.
func scanStay(s scanner) (domain.Stay, error) {
	var (
		st         domain.Stay
		id, travID pgtype.UUID
		entry      pgtype.Date
		exit       pgtype.Date
	)
	err := s.Scan(&id, &travID, &st.CountryCode, &st.FromCountry, &entry, &exit,
		&st.VisaType, &st.EntryAirport, &st.ExitAirport, &st.Notes, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Stay{}, domain.ErrNotFound
		}
		return domain.Stay{}, err
	}
	st.ID = uuid.UUID(id.Bytes).String()
	st.TravelerID = uuid.UUID(travID.Bytes)
	st.EntryDate = domain.FormatCalendarDate(entry.Time)
	if exit.Valid {
		st.ExitDate = domain.FormatCalendarDate(exit.Time)
	}
	return st, nil
}
