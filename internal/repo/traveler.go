// Package repo contains all database access logic for the visa tracker.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/visa-tracker/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
// Begin on a pgx.Tx opens a savepoint, so multi-statement writes nest cleanly.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TravelerRepo defines the persistence operations for Travelers.
// The service layer depends on this interface, not the Postgres implementation,
// which allows the service to be unit-tested with a mock.
type TravelerRepo interface {
	// Create inserts a new traveler and returns the persisted record (with
	// DB-generated id, created_at, and updated_at populated).
	Create(ctx context.Context, t domain.Traveler) (domain.Traveler, error)

	// GetByID retrieves a single traveler by its UUID primary key.
	// Returns domain.ErrNotFound if no traveler with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Traveler, error)

	// ListPaged returns one page of travelers ordered by name, plus the total count.
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Traveler, int64, error)

	// Update overwrites the mutable fields of an existing traveler.
	// Returns domain.ErrNotFound if no traveler with that ID exists.
	Update(ctx context.Context, t domain.Traveler) (domain.Traveler, error)

	// Delete removes a traveler and, by cascade, their stays.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgTravelerRepo is the Postgres implementation of TravelerRepo.
type pgTravelerRepo struct {
	db db
}

// NewTravelerRepo constructs a TravelerRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTravelerRepo(db db) TravelerRepo {
	return &pgTravelerRepo{db: db}
}

const travelerColumns = `id, name, nationality, notes, created_at, updated_at`

func (r *pgTravelerRepo) Create(ctx context.Context, t domain.Traveler) (domain.Traveler, error) {
	const q = `
		INSERT INTO travelers (name, nationality, notes)
		VALUES (@name, @nationality, @notes)
		RETURNING ` + travelerColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"name":        t.Name,
		"nationality": t.Nationality,
		"notes":       t.Notes,
	})
	result, err := scanTraveler(row)
	if err != nil {
		return domain.Traveler{}, fmt.Errorf("repo.TravelerRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgTravelerRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Traveler, error) {
	const q = `SELECT ` + travelerColumns + ` FROM travelers WHERE id = @id`

	result, err := scanTraveler(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Traveler{}, fmt.Errorf("repo.TravelerRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgTravelerRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Traveler, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM travelers`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TravelerRepo.ListPaged: count: %w", err)
	}

	const q = `
		SELECT ` + travelerColumns + `
		FROM travelers
		ORDER BY name, id
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TravelerRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	travelers := []domain.Traveler{}
	for rows.Next() {
		t, err := scanTraveler(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.TravelerRepo.ListPaged: scan: %w", err)
		}
		travelers = append(travelers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.TravelerRepo.ListPaged: rows: %w", err)
	}
	return travelers, total, nil
}

func (r *pgTravelerRepo) Update(ctx context.Context, t domain.Traveler) (domain.Traveler, error) {
	const q = `
		UPDATE travelers
		SET name        = @name,
		    nationality = @nationality,
		    notes       = @notes,
		    updated_at  = now()
		WHERE id = @id
		RETURNING ` + travelerColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"id":          t.ID,
		"name":        t.Name,
		"nationality": t.Nationality,
		"notes":       t.Notes,
	})
	result, err := scanTraveler(row)
	if err != nil {
		return domain.Traveler{}, fmt.Errorf("repo.TravelerRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgTravelerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM travelers WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TravelerRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TravelerRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scan helpers to
// be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

func scanTraveler(s scanner) (domain.Traveler, error) {
	var (
		t  domain.Traveler
		id pgtype.UUID
	)
	err := s.Scan(&id, &t.Name, &t.Nationality, &t.Notes, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Traveler{}, domain.ErrNotFound
		}
		return domain.Traveler{}, err
	}
	t.ID = uuid.UUID(id.Bytes)
	return t, nil
}
