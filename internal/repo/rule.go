package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/visa-tracker/internal/visa"
)

// RuleRepo reads and writes the visa rule catalog tables.
type RuleRepo interface {
	// ListRules returns every generic (nationality, destination) rule.
	ListRules(ctx context.Context) ([]visa.RuleEntry, error)

	// ListOverrides returns every user-specific override.
	ListOverrides(ctx context.Context) ([]visa.OverrideEntry, error)

	// UpsertRule inserts or replaces a generic rule.
	UpsertRule(ctx context.Context, e visa.RuleEntry) error

	// UpsertOverride inserts or replaces a user-specific override.
	UpsertOverride(ctx context.Context, o visa.OverrideEntry) error
}

type pgRuleRepo struct {
	db db
}

// NewRuleRepo constructs a RuleRepo backed by the provided db connection.
func NewRuleRepo(db db) RuleRepo {
	return &pgRuleRepo{db: db}
}

func (r *pgRuleRepo) ListRules(ctx context.Context) ([]visa.RuleEntry, error) {
	const q = `
		SELECT nationality, destination, max_days, period_days, reset_type
		FROM visa_rules
		ORDER BY nationality, destination`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.RuleRepo.ListRules: %w", err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (visa.RuleEntry, error) {
		var e visa.RuleEntry
		err := row.Scan(&e.Nationality, &e.Destination, &e.Rule.MaxDays, &e.Rule.PeriodDays, &e.Rule.ResetType)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("repo.RuleRepo.ListRules: scan: %w", err)
	}
	return entries, nil
}

func (r *pgRuleRepo) ListOverrides(ctx context.Context) ([]visa.OverrideEntry, error) {
	const q = `
		SELECT user_key, destination, visa_type, max_days, period_days, reset_type
		FROM visa_rule_overrides
		ORDER BY user_key, destination, visa_type`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.RuleRepo.ListOverrides: %w", err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (visa.OverrideEntry, error) {
		var o visa.OverrideEntry
		err := row.Scan(&o.UserKey, &o.Destination, &o.VisaType, &o.Rule.MaxDays, &o.Rule.PeriodDays, &o.Rule.ResetType)
		return o, err
	})
	if err != nil {
		return nil, fmt.Errorf("repo.RuleRepo.ListOverrides: scan: %w", err)
	}
	return entries, nil
}

func (r *pgRuleRepo) UpsertRule(ctx context.Context, e visa.RuleEntry) error {
	const q = `
		INSERT INTO visa_rules (nationality, destination, max_days, period_days, reset_type)
		VALUES (@nationality, @destination, @max_days, @period_days, @reset_type)
		ON CONFLICT (nationality, destination) DO UPDATE
		SET max_days = EXCLUDED.max_days,
		    period_days = EXCLUDED.period_days,
		    reset_type = EXCLUDED.reset_type`

	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"nationality": e.Nationality,
		"destination": e.Destination,
		"max_days":    e.Rule.MaxDays,
		"period_days": e.Rule.PeriodDays,
		"reset_type":  string(e.Rule.ResetType),
	})
	if err != nil {
		return fmt.Errorf("repo.RuleRepo.UpsertRule: %w", err)
	}
	return nil
}

func (r *pgRuleRepo) UpsertOverride(ctx context.Context, o visa.OverrideEntry) error {
	const q = `
		INSERT INTO visa_rule_overrides (user_key, destination, visa_type, max_days, period_days, reset_type)
		VALUES (@user_key, @destination, @visa_type, @max_days, @period_days, @reset_type)
		ON CONFLICT (user_key, destination, visa_type) DO UPDATE
		SET max_days = EXCLUDED.max_days,
		    period_days = EXCLUDED.period_days,
		    reset_type = EXCLUDED.reset_type`

	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"user_key":    o.UserKey,
		"destination": o.Destination,
		"visa_type":   o.VisaType,
		"max_days":    o.Rule.MaxDays,
		"period_days": o.Rule.PeriodDays,
		"reset_type":  string(o.Rule.ResetType),
	})
	if err != nil {
		return fmt.Errorf("repo.RuleRepo.UpsertOverride: %w", err)
	}
	return nil
}

// LoadCatalog builds a visa.Catalog from the rule tables.
// The second return value is false when the tables hold no rules at all.
func LoadCatalog(ctx context.Context, r RuleRepo) (*visa.Catalog, bool, error) {
	rules, err := r.ListRules(ctx)
	if err != nil {
		return nil, false, err
	}
	overrides, err := r.ListOverrides(ctx)
	if err != nil {
		return nil, false, err
	}
	for _, e := range rules {
		if err := visa.ValidateRule(e.Rule); err != nil {
			return nil, false, fmt.Errorf("repo.LoadCatalog: %s/%s: %w", e.Nationality, e.Destination, err)
		}
	}
	if len(rules)+len(overrides) == 0 {
		return visa.NewCatalog(nil, nil), false, nil
	}
	return visa.NewCatalog(rules, overrides), true, nil
}
