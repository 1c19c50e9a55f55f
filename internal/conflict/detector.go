// Package conflict finds temporally inconsistent stays and repairs them into
// a plausible single-traveler itinerary.
package conflict

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/pkordes/visa-tracker/internal/domain"
)

// DuplicateEntryWindowDays is how close two same-country entry dates must be
// for an overlap to be treated as a duplicate record.
const DuplicateEntryWindowDays = 7

// Detector scans stay lists for conflicts.
type Detector struct {
	log *slog.Logger
}

// NewDetector constructs a Detector. A nil logger uses slog.Default().
func NewDetector(log *slog.Logger) *Detector {
	if log == nil {
		log = slog.Default()
	}
	return &Detector{log: log}
}

// Detect returns every conflict in stays, in detection order: self-inverted
// stays first, then pairs in entry-date order. Stays with unparsable dates
// are logged and left out.
func Detect(stays []domain.Stay) []domain.DateConflict {
	return NewDetector(nil).Detect(stays)
}

// interval is a parsed stay. exit is meaningful only when !ongoing.
type interval struct {
	stay    domain.Stay
	entry   time.Time
	exit    time.Time
	ongoing bool
	idx     int
}

// located is a conflict plus the input positions of its stays, earlier
// entry first.
type located struct {
	domain.DateConflict
	idx []int
}

// Detect implements the package-level Detect.
func (d *Detector) Detect(stays []domain.Stay) []domain.DateConflict {
	found := d.detect(stays)
	out := make([]domain.DateConflict, len(found))
	for i, c := range found {
		out[i] = c.DateConflict
	}
	return out
}

func (d *Detector) detect(stays []domain.Stay) []located {
	var (
		found []located
		ivs   []interval
	)
	for i, s := range stays {
		iv, ok := d.parse(s)
		if !ok {
			continue
		}
		iv.idx = i
		if !iv.ongoing && iv.exit.Before(iv.entry) {
			found = append(found, located{inverted(s), []int{i}})
			continue
		}
		ivs = append(ivs, iv)
	}
	sort.SliceStable(ivs, func(i, j int) bool { return ivs[i].entry.Before(ivs[j].entry) })

	for i := 0; i < len(ivs); i++ {
		for j := i + 1; j < len(ivs); j++ {
			if c, ok := classify(ivs[i], ivs[j]); ok {
				found = append(found, located{c, []int{ivs[i].idx, ivs[j].idx}})
			}
		}
	}
	return found
}

// overlaps reports whether a and b claim the same days, with a entered no
// later than b. An ongoing a overlaps everything entered after it. Sharing
// only the boundary day (a's exit == b's entry) is a travel day, not an overlap.
func overlaps(a, b interval) bool {
	if a.ongoing {
		return true
	}
	return b.entry.Before(a.exit)
}

// classify applies the rules in priority order; only the first match fires.
func classify(a, b interval) (domain.DateConflict, bool) {
	pair := []domain.Stay{a.stay, b.stay}
	sameCountry := strings.EqualFold(a.stay.CountryCode, b.stay.CountryCode)

	switch {
	case a.ongoing && b.ongoing:
		return domain.DateConflict{
			Type:     domain.ConflictImpossible,
			Severity: domain.SeverityCritical,
			Stays:    pair,
			Description: fmt.Sprintf("both the %s stay from %s and the %s stay from %s are ongoing; a traveler can only be in one place",
				a.stay.CountryCode, a.stay.EntryDate, b.stay.CountryCode, b.stay.EntryDate),
			SuggestedResolution: fmt.Sprintf("set the %s exit date to %s", a.stay.CountryCode, b.stay.EntryDate),
		}, true
	case !overlaps(a, b):
		return domain.DateConflict{}, false
	case sameCountry && domain.DaysBetweenInclusive(a.entry, b.entry) <= DuplicateEntryWindowDays:
		return domain.DateConflict{
			Type:     domain.ConflictOverlap,
			Severity: domain.SeverityHigh,
			Stays:    pair,
			Description: fmt.Sprintf("two %s stays entered on %s and %s overlap; likely a duplicate entry",
				a.stay.CountryCode, a.stay.EntryDate, b.stay.EntryDate),
			SuggestedResolution: "merge the two stays into one",
		}, true
	case !sameCountry:
		return domain.DateConflict{
			Type:     domain.ConflictSequence,
			Severity: domain.SeverityMedium,
			Stays:    pair,
			Description: fmt.Sprintf("the %s stay from %s overlaps the %s stay starting %s",
				a.stay.CountryCode, a.stay.EntryDate, b.stay.CountryCode, b.stay.EntryDate),
			SuggestedResolution: fmt.Sprintf("end the %s stay on %s, the day of travel to %s", a.stay.CountryCode, b.stay.EntryDate, b.stay.CountryCode),
		}, true
	default:
		return domain.DateConflict{
			Type:     domain.ConflictOverlap,
			Severity: domain.SeverityLow,
			Stays:    pair,
			Description: fmt.Sprintf("two %s stays from %s and %s overlap",
				a.stay.CountryCode, a.stay.EntryDate, b.stay.EntryDate),
			SuggestedResolution: "review the dates or merge the stays",
		}, true
	}
}

func inverted(s domain.Stay) domain.DateConflict {
	return domain.DateConflict{
		Type:                domain.ConflictImpossible,
		Severity:            domain.SeverityCritical,
		Stays:               []domain.Stay{s},
		Description:         fmt.Sprintf("the %s stay exits on %s before it enters on %s", s.CountryCode, s.ExitDate, s.EntryDate),
		SuggestedResolution: "swap the entry and exit dates",
	}
}

func (d *Detector) parse(s domain.Stay) (interval, bool) {
	entry, ok := domain.ParseCalendarDate(s.EntryDate)
	if !ok {
		d.log.Warn("conflict scan skipping stay with invalid entry date", "stay_id", s.ID, "entry_date", s.EntryDate)
		return interval{}, false
	}
	iv := interval{stay: s, entry: entry, ongoing: s.IsOngoing()}
	if !iv.ongoing {
		exit, ok := domain.ParseCalendarDate(s.ExitDate)
		if !ok {
			d.log.Warn("conflict scan skipping stay with invalid exit date", "stay_id", s.ID, "exit_date", s.ExitDate)
			return interval{}, false
		}
		iv.exit = exit
	}
	return iv, true
}
