package visa_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/visa-tracker/internal/domain"
	"github.com/pkordes/visa-tracker/internal/visa"
)

func TestCatalog_Lookup_Generic(t *testing.T) {
	c := visa.DefaultCatalog()

	rule, ok := c.Lookup("us", "jp", "", "")

	require.True(t, ok)
	assert.Equal(t, domain.VisaRule{MaxDays: 90, PeriodDays: 180, ResetType: domain.ResetRolling}, rule)
}

func TestCatalog_Lookup_Unknown(t *testing.T) {
	_, ok := visa.DefaultCatalog().Lookup("US", "XX", "", "")

	assert.False(t, ok)
}

func TestCatalog_Lookup_NilCatalog(t *testing.T) {
	var c *visa.Catalog

	_, ok := c.Lookup("US", "JP", "", "")

	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestCatalog_Lookup_OverrideWins(t *testing.T) {
	ltr := domain.VisaRule{MaxDays: 3650, PeriodDays: 3650, ResetType: domain.ResetExit}
	c := visa.NewCatalog(visa.DefaultRules(), []visa.OverrideEntry{
		{UserKey: "user-1", Destination: "TH", VisaType: "LTR", Rule: ltr},
	})

	got, ok := c.Lookup("US", "TH", "ltr", "user-1")
	require.True(t, ok)
	assert.Equal(t, ltr, got)

	// Different user, different visa type, or no user: the generic rule applies.
	for _, tc := range []struct{ visaType, userKey string }{
		{"ltr", "user-2"},
		{"tourist", "user-1"},
		{"ltr", ""},
	} {
		got, ok := c.Lookup("US", "TH", tc.visaType, tc.userKey)
		require.True(t, ok)
		assert.Equal(t, 30, got.MaxDays, "visaType=%q userKey=%q", tc.visaType, tc.userKey)
	}
}

func TestCatalog_Lookup_UntaggedOverrideFallback(t *testing.T) {
	general := domain.VisaRule{MaxDays: 180, PeriodDays: 365, ResetType: domain.ResetRolling}
	ltr := domain.VisaRule{MaxDays: 3650, PeriodDays: 3650, ResetType: domain.ResetExit}
	c := visa.NewCatalog(visa.DefaultRules(), []visa.OverrideEntry{
		{UserKey: "user-1", Destination: "TH", Rule: general},
		{UserKey: "user-1", Destination: "TH", VisaType: "ltr", Rule: ltr},
	})

	got, ok := c.Lookup("US", "TH", "ltr", "user-1")
	require.True(t, ok)
	assert.Equal(t, ltr, got, "tagged override wins")

	got, ok = c.Lookup("US", "TH", "tourist", "user-1")
	require.True(t, ok)
	assert.Equal(t, general, got, "untagged override applies to other visa types")

	got, ok = c.Lookup("US", "TH", "tourist", "user-2")
	require.True(t, ok)
	assert.Equal(t, 30, got.MaxDays, "other users get the generic rule")
}

// TestCatalog_Lookup_OverrideWithoutGeneric verifies an override applies even
// for a nationality the generic table does not know.
func TestCatalog_Lookup_OverrideWithoutGeneric(t *testing.T) {
	rule := domain.VisaRule{MaxDays: 365, PeriodDays: 365, ResetType: domain.ResetRolling}
	c := visa.NewCatalog(nil, []visa.OverrideEntry{{UserKey: "u", Destination: "JP", Rule: rule}})

	got, ok := c.Lookup("NZ", "JP", "", "u")

	require.True(t, ok)
	assert.Equal(t, rule, got)
}

func TestCatalog_Lookup_Concurrent(t *testing.T) {
	c := visa.DefaultCatalog()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, ok := c.Lookup("US", "VN", "", "")
				assert.True(t, ok)
			}
		}()
	}
	wg.Wait()
}

func TestLoadCatalogYAML_OK(t *testing.T) {
	const doc = `
rules:
  - nationality: GB
    destination: TH
    max_days: 60
    period_days: 60
    reset_type: exit
overrides:
  - user_key: traveler-9
    destination: JP
    visa_type: student
    max_days: 365
    period_days: 365
    reset_type: rolling
`
	c, err := visa.LoadCatalogYAML(strings.NewReader(doc))

	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	rule, ok := c.Lookup("GB", "TH", "", "")
	require.True(t, ok)
	assert.Equal(t, domain.ResetExit, rule.ResetType)
	assert.Equal(t, 60, rule.MaxDays)

	rule, ok = c.Lookup("GB", "JP", "student", "traveler-9")
	require.True(t, ok)
	assert.Equal(t, 365, rule.MaxDays)
}

func TestLoadCatalogYAML_Empty(t *testing.T) {
	c, err := visa.LoadCatalogYAML(strings.NewReader(""))

	require.NoError(t, err)
	assert.Zero(t, c.Len())
}

func TestLoadCatalogYAML_InvalidResetType(t *testing.T) {
	const doc = `
rules:
  - {nationality: US, destination: JP, max_days: 90, period_days: 180, reset_type: monthly}
`
	_, err := visa.LoadCatalogYAML(strings.NewReader(doc))

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLoadCatalogYAML_MissingDestination(t *testing.T) {
	const doc = `
rules:
  - {nationality: US, max_days: 90, period_days: 180, reset_type: rolling}
`
	_, err := visa.LoadCatalogYAML(strings.NewReader(doc))

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLoadCatalogYAML_UnknownField(t *testing.T) {
	const doc = `
rules:
  - {nationality: US, destination: JP, max_days: 90, period_days: 180, reset_type: rolling, fee: 25}
`
	_, err := visa.LoadCatalogYAML(strings.NewReader(doc))

	assert.Error(t, err)
}

func TestValidateRule(t *testing.T) {
	assert.NoError(t, visa.ValidateRule(domain.VisaRule{MaxDays: 200, PeriodDays: 180, ResetType: domain.ResetRolling}))
	assert.ErrorIs(t, visa.ValidateRule(domain.VisaRule{MaxDays: -1, PeriodDays: 30, ResetType: domain.ResetExit}), domain.ErrValidation)
	assert.ErrorIs(t, visa.ValidateRule(domain.VisaRule{MaxDays: 30, PeriodDays: 0, ResetType: domain.ResetExit}), domain.ErrValidation)
}
