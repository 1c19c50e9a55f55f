package visa

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/pkordes/visa-tracker/internal/domain"
)

// Status thresholds. A ratio exactly on a threshold lands in the higher band;
// exceeded requires strictly more days than allowed.
const (
	WarningRatio  = 0.7
	CriticalRatio = 0.9

	// LowRemainingDays is the remaining-day count at or below which a status
	// carries a "days left" warning message.
	LowRemainingDays = 30

	// DefaultLookbackDays fills VisaContext.LookbackDays when unset.
	DefaultLookbackDays = 365
)

// Calculator applies catalog rules to stays. It holds no per-call state and is
// safe for concurrent use.
type Calculator struct {
	catalog *Catalog
	log     *slog.Logger
	now     func() time.Time
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithLogger sets the logger used to report skipped stays.
func WithLogger(l *slog.Logger) Option {
	return func(c *Calculator) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock sets the clock used when a VisaContext has no reference date.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCalculator constructs a Calculator backed by catalog.
func NewCalculator(catalog *Catalog, opts ...Option) *Calculator {
	c := &Calculator{catalog: catalog, log: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Catalog returns the catalog the calculator resolves rules from.
func (c *Calculator) Catalog() *Catalog {
	return c.catalog
}

// span is a stay whose dates parsed. end is the exit date, or the reference
// date for an ongoing stay.
type span struct {
	stay  domain.Stay
	entry time.Time
	exit  time.Time
	end   time.Time
}

// Status computes the visa status for destination from the full stay list.
// Stays for other countries are ignored. Stays with unparsable dates are
// skipped and logged so one bad record cannot blank out the whole country.
func (c *Calculator) Status(destination string, stays []domain.Stay, vctx domain.VisaContext, visaType string) domain.VisaStatus {
	destination = code(destination)
	ref := c.referenceDate(vctx)

	var (
		spans   []span
		ongoing = []domain.Stay{}
	)
	for _, s := range stays {
		if code(s.CountryCode) != destination {
			continue
		}
		sp, ok := c.parseSpan(s, ref)
		if !ok {
			continue
		}
		spans = append(spans, sp)
		if s.IsOngoing() {
			ongoing = append(ongoing, s)
		}
	}

	rule, ok := c.catalog.Lookup(vctx.Nationality, destination, visaType, vctx.UserKey)
	if !ok {
		return domain.VisaStatus{
			CountryCode:    destination,
			Status:         domain.StatusSafe,
			WarningMessage: fmt.Sprintf("no visa rule known for %s nationals in %s", code(vctx.Nationality), destination),
			RelevantStays:  []domain.Stay{},
			OngoingStays:   ongoing,
		}
	}

	var (
		used     int
		relevant []domain.Stay
	)
	switch rule.ResetType {
	case domain.ResetRolling:
		used, relevant = rollingUsage(spans, rule, ref)
	default:
		used, relevant = exitUsage(spans)
	}

	st := domain.VisaStatus{
		CountryCode:      destination,
		Rule:             &rule,
		DaysUsed:         used,
		DaysRemaining:    max(0, rule.MaxDays-used),
		TotalAllowedDays: rule.MaxDays,
		Status:           Level(used, rule.MaxDays),
		RelevantStays:    relevant,
		OngoingStays:     ongoing,
	}
	switch {
	case st.Status == domain.StatusExceeded:
		st.WarningMessage = fmt.Sprintf("exceeded the %d-day allowance for %s by %d days", rule.MaxDays, destination, used-rule.MaxDays)
	case st.DaysRemaining <= LowRemainingDays:
		st.WarningMessage = fmt.Sprintf("%d days remaining in %s", st.DaysRemaining, destination)
	}
	return st
}

// AllStatuses computes a status for every destination present in stays,
// ordered by country code.
func (c *Calculator) AllStatuses(stays []domain.Stay, vctx domain.VisaContext) []domain.VisaStatus {
	seen := make(map[string]struct{})
	var countries []string
	for _, s := range stays {
		cc := code(s.CountryCode)
		if cc == "" {
			continue
		}
		if _, dup := seen[cc]; dup {
			continue
		}
		seen[cc] = struct{}{}
		countries = append(countries, cc)
	}
	sort.Strings(countries)

	out := make([]domain.VisaStatus, 0, len(countries))
	for _, cc := range countries {
		out = append(out, c.Status(cc, stays, vctx, latestVisaType(cc, stays)))
	}
	return out
}

// latestVisaType returns the visa type of the most recently entered stay in
// destination, so a traveler's override follows their current visa.
func latestVisaType(destination string, stays []domain.Stay) string {
	var (
		vt     string
		latest time.Time
	)
	for _, s := range stays {
		if code(s.CountryCode) != destination {
			continue
		}
		entry, ok := domain.ParseCalendarDate(s.EntryDate)
		if !ok || entry.Before(latest) {
			continue
		}
		latest, vt = entry, s.VisaType
	}
	return vt
}

// Level classifies usage against an allowance.
func Level(daysUsed, maxDays int) domain.StatusLevel {
	if daysUsed > maxDays {
		return domain.StatusExceeded
	}
	if maxDays <= 0 {
		return domain.StatusSafe
	}
	ratio := float64(daysUsed) / float64(maxDays)
	switch {
	case ratio >= CriticalRatio:
		return domain.StatusCritical
	case ratio >= WarningRatio:
		return domain.StatusWarning
	}
	return domain.StatusSafe
}

// exitUsage counts every stay entered after the most recent qualifying reset
// point: the latest exit that is followed by a strictly later entry. Without
// one, all stays form a single continuous session.
func exitUsage(spans []span) (int, []domain.Stay) {
	var (
		reset    time.Time
		hasReset bool
	)
	for _, a := range spans {
		if a.stay.IsOngoing() {
			continue
		}
		if hasReset && !a.exit.After(reset) {
			continue
		}
		for _, b := range spans {
			if b.entry.After(a.exit) {
				reset, hasReset = a.exit, true
				break
			}
		}
	}

	used := 0
	relevant := []domain.Stay{}
	for _, sp := range sortedByEntry(spans) {
		if hasReset && !sp.entry.After(reset) {
			continue
		}
		// An ongoing stay entered after the reference date has no days yet.
		if sp.entry.After(sp.end) {
			continue
		}
		used += domain.StayDuration(sp.entry, sp.end)
		relevant = append(relevant, sp.stay)
	}
	return used, relevant
}

// rollingUsage sums, per stay, the days that fall inside the window of
// PeriodDays ending on ref. Overlapping stays are each counted in full.
func rollingUsage(spans []span, rule domain.VisaRule, ref time.Time) (int, []domain.Stay) {
	windowStart := domain.AddDays(ref, -(max(rule.PeriodDays, 1) - 1))

	used := 0
	relevant := []domain.Stay{}
	for _, sp := range sortedByEntry(spans) {
		from := later(sp.entry, windowStart)
		to := earlier(sp.end, ref)
		if from.After(to) {
			continue
		}
		used += domain.StayDuration(from, to)
		relevant = append(relevant, sp.stay)
	}
	return used, relevant
}

func (c *Calculator) parseSpan(s domain.Stay, ref time.Time) (span, bool) {
	entry, ok := domain.ParseCalendarDate(s.EntryDate)
	if !ok {
		c.log.Warn("skipping stay with invalid entry date", "stay_id", s.ID, "country", s.CountryCode, "entry_date", s.EntryDate)
		return span{}, false
	}
	sp := span{stay: s, entry: entry, end: ref}
	if !s.IsOngoing() {
		exit, ok := domain.ParseCalendarDate(s.ExitDate)
		if !ok {
			c.log.Warn("skipping stay with invalid exit date", "stay_id", s.ID, "country", s.CountryCode, "exit_date", s.ExitDate)
			return span{}, false
		}
		if exit.Before(entry) {
			c.log.Warn("skipping stay with exit before entry", "stay_id", s.ID, "country", s.CountryCode, "entry_date", s.EntryDate, "exit_date", s.ExitDate)
			return span{}, false
		}
		sp.exit, sp.end = exit, exit
	}
	return sp, true
}

func (c *Calculator) referenceDate(vctx domain.VisaContext) time.Time {
	if vctx.ReferenceDate.IsZero() {
		return domain.CalendarDay(c.now())
	}
	return domain.CalendarDay(vctx.ReferenceDate)
}

func sortedByEntry(spans []span) []span {
	out := append([]span(nil), spans...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].entry.Before(out[j].entry) })
	return out
}

func later(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlier(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// describe renders a short human label for log and validation messages.
func describe(s domain.Stay) string {
	var b strings.Builder
	b.WriteString(code(s.CountryCode))
	b.WriteString(" from ")
	b.WriteString(s.EntryDate)
	if s.ExitDate != "" {
		b.WriteString(" to ")
		b.WriteString(s.ExitDate)
	}
	return b.String()
}
