// Package visa computes how much of a visa allowance a traveler has consumed.
//
// A Catalog resolves the rule for a (nationality, destination) pair and a
// Calculator applies it to a list of stays. Both are plain values owned by the
// caller; nothing in this package keeps package-level mutable state.
package visa

import (
	"strings"

	"github.com/pkordes/visa-tracker/internal/domain"
)

// RuleEntry is one generic rule row.
type RuleEntry struct {
	Nationality string          `yaml:"nationality"`
	Destination string          `yaml:"destination"`
	Rule        domain.VisaRule `yaml:",inline"`
}

// OverrideEntry is a user-specific rule that wins over the generic entry for
// the same destination, e.g. a traveler holding a long-term resident visa.
type OverrideEntry struct {
	UserKey     string          `yaml:"user_key"`
	Destination string          `yaml:"destination"`
	VisaType    string          `yaml:"visa_type"`
	Rule        domain.VisaRule `yaml:",inline"`
}

type genericKey struct{ nationality, destination string }

type overrideKey struct{ userKey, destination, visaType string }

// Catalog is an immutable rule lookup table. It is safe for concurrent use.
type Catalog struct {
	generic   map[genericKey]domain.VisaRule
	overrides map[overrideKey]domain.VisaRule
}

// NewCatalog builds a Catalog. Later entries replace earlier ones with the same key.
// Country codes and visa types are matched case-insensitively.
func NewCatalog(rules []RuleEntry, overrides []OverrideEntry) *Catalog {
	c := &Catalog{
		generic:   make(map[genericKey]domain.VisaRule, len(rules)),
		overrides: make(map[overrideKey]domain.VisaRule, len(overrides)),
	}
	for _, r := range rules {
		c.generic[genericKey{code(r.Nationality), code(r.Destination)}] = r.Rule
	}
	for _, o := range overrides {
		c.overrides[overrideKey{o.UserKey, code(o.Destination), tag(o.VisaType)}] = o.Rule
	}
	return c
}

// Lookup resolves the rule for a stay.
// A user-specific override keyed by (userKey, destination, visaType) wins,
// then the user's override stored without a visa type; otherwise the generic
// (nationality, destination) entry applies. The second return value is false
// when no rule is known, which is not an error.
func (c *Catalog) Lookup(nationality, destination, visaType, userKey string) (domain.VisaRule, bool) {
	if c == nil {
		return domain.VisaRule{}, false
	}
	if userKey != "" {
		if r, ok := c.overrides[overrideKey{userKey, code(destination), tag(visaType)}]; ok {
			return r, true
		}
		if r, ok := c.overrides[overrideKey{userKey, code(destination), ""}]; ok {
			return r, true
		}
	}
	r, ok := c.generic[genericKey{code(nationality), code(destination)}]
	return r, ok
}

// Len returns the number of generic rules and overrides in the catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.generic) + len(c.overrides)
}

func code(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

func tag(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// DefaultRules is the built-in rule set for US nationals, used when no other
// source is configured.
func DefaultRules() []RuleEntry {
	rolling := func(max, period int) domain.VisaRule {
		return domain.VisaRule{MaxDays: max, PeriodDays: period, ResetType: domain.ResetRolling}
	}
	exit := func(max int) domain.VisaRule {
		return domain.VisaRule{MaxDays: max, PeriodDays: max, ResetType: domain.ResetExit}
	}
	return []RuleEntry{
		{Nationality: "US", Destination: "JP", Rule: rolling(90, 180)},
		{Nationality: "US", Destination: "KR", Rule: rolling(90, 180)},
		{Nationality: "US", Destination: "TW", Rule: rolling(90, 180)},
		{Nationality: "US", Destination: "SG", Rule: rolling(90, 180)},
		{Nationality: "US", Destination: "GB", Rule: rolling(180, 365)},
		{Nationality: "US", Destination: "FR", Rule: rolling(90, 180)},
		{Nationality: "US", Destination: "DE", Rule: rolling(90, 180)},
		{Nationality: "US", Destination: "VN", Rule: exit(45)},
		{Nationality: "US", Destination: "TH", Rule: exit(30)},
		{Nationality: "US", Destination: "MY", Rule: exit(90)},
		{Nationality: "US", Destination: "ID", Rule: exit(30)},
		{Nationality: "US", Destination: "PH", Rule: exit(30)},
	}
}

// DefaultCatalog returns a Catalog of DefaultRules with no overrides.
func DefaultCatalog() *Catalog {
	return NewCatalog(DefaultRules(), nil)
}
