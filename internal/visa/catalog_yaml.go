package visa

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pkordes/visa-tracker/internal/domain"
)

// catalogFile is the on-disk shape of a rule catalog:
//
//	rules:
//	  - {nationality: US, destination: JP, max_days: 90, period_days: 180, reset_type: rolling}
//	overrides:
//	  - {user_key: 3f1c..., destination: TH, visa_type: ltr, max_days: 3650, period_days: 3650, reset_type: exit}
type catalogFile struct {
	Rules     []RuleEntry     `yaml:"rules"`
	Overrides []OverrideEntry `yaml:"overrides"`
}

// LoadCatalogYAML decodes a catalog from r and validates every entry.
func LoadCatalogYAML(r io.Reader) (*Catalog, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("visa.LoadCatalogYAML: decode: %w", err)
	}
	for i, e := range f.Rules {
		if e.Nationality == "" || e.Destination == "" {
			return nil, fmt.Errorf("visa.LoadCatalogYAML: rules[%d]: %w: nationality and destination are required", i, domain.ErrValidation)
		}
		if err := ValidateRule(e.Rule); err != nil {
			return nil, fmt.Errorf("visa.LoadCatalogYAML: rules[%d]: %w", i, err)
		}
	}
	for i, o := range f.Overrides {
		if o.UserKey == "" || o.Destination == "" {
			return nil, fmt.Errorf("visa.LoadCatalogYAML: overrides[%d]: %w: user_key and destination are required", i, domain.ErrValidation)
		}
		if err := ValidateRule(o.Rule); err != nil {
			return nil, fmt.Errorf("visa.LoadCatalogYAML: overrides[%d]: %w", i, err)
		}
	}
	return NewCatalog(f.Rules, f.Overrides), nil
}

// LoadCatalogFile opens path and decodes it with LoadCatalogYAML.
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("visa.LoadCatalogFile: %w", err)
	}
	defer f.Close()
	return LoadCatalogYAML(f)
}

// ValidateRule rejects rules the calculator cannot interpret.
// MaxDays > PeriodDays is allowed.
func ValidateRule(r domain.VisaRule) error {
	switch {
	case !r.ResetType.Valid():
		return domain.Invalidf("reset_type must be %q or %q", domain.ResetExit, domain.ResetRolling)
	case r.MaxDays < 0:
		return domain.Invalidf("max_days must not be negative")
	case r.PeriodDays < 1:
		return domain.Invalidf("period_days must be at least 1")
	}
	return nil
}
