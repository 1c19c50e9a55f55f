package conflict

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkordes/visa-tracker/internal/domain"
)

// MaxPasses bounds the resolver's fix-and-redetect loop.
const MaxPasses = 5

// Resolver repairs conflicting stays one conflict at a time.
type Resolver struct {
	detector *Detector
	log      *slog.Logger
}

// NewResolver constructs a Resolver. A nil logger uses slog.Default().
func NewResolver(log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{detector: NewDetector(log), log: log}
}

// Detector returns the detector the resolver re-runs after every fix.
func (r *Resolver) Detector() *Detector {
	return r.detector
}

// AutoResolve repairs stays with a Resolver using the default logger and MaxPasses.
func AutoResolve(stays []domain.Stay) []domain.ResolvedStay {
	return NewResolver(nil).Resolve(stays, MaxPasses)
}

// ValidateResolution re-runs detection on a resolver result.
func ValidateResolution(resolved []domain.ResolvedStay) domain.ResolutionValidation {
	return NewResolver(nil).Validate(resolved)
}

// working is one resolver record. exitTouched remembers that OriginalExitDate
// has been captured, since an originally ongoing stay has no exit to record.
type working struct {
	domain.ResolvedStay
	exitTouched bool
}

// Resolve detects conflicts, fixes the single most severe one, and repeats
// until no conflicts remain, a fix changes nothing, or maxPasses fixes have
// been applied. The input slice is never modified.
func (r *Resolver) Resolve(stays []domain.Stay, maxPasses int) []domain.ResolvedStay {
	current := make([]working, len(stays))
	for i, s := range stays {
		current[i] = working{ResolvedStay: domain.ResolvedStay{Stay: s}}
	}

	for pass := 0; pass < maxPasses; pass++ {
		found := r.detector.detect(plain(current))
		if len(found) == 0 {
			break
		}
		target := mostSevere(found)
		next, changed := apply(current, target)
		if !changed {
			r.log.Warn("conflict resolver made no progress", "type", target.Type, "severity", target.Severity, "pass", pass+1)
			break
		}
		r.log.Debug("conflict resolved", "type", target.Type, "severity", target.Severity, "pass", pass+1)
		current = next
	}

	out := make([]domain.ResolvedStay, len(current))
	for i, w := range current {
		out[i] = w.ResolvedStay
	}
	return out
}

// Validate reports the conflicts left in resolved. Only critical ones make
// the resolution invalid.
func (r *Resolver) Validate(resolved []domain.ResolvedStay) domain.ResolutionValidation {
	remaining := r.detector.Detect(domain.Stays(resolved))

	critical := 0
	for _, c := range remaining {
		if c.Severity == domain.SeverityCritical {
			critical++
		}
	}

	v := domain.ResolutionValidation{IsValid: critical == 0, RemainingConflicts: remaining}
	switch {
	case len(remaining) == 0:
		v.Summary = "no conflicts remain"
	case critical == 0:
		v.Summary = fmt.Sprintf("%d non-critical conflicts remain for manual review", len(remaining))
	default:
		v.Summary = fmt.Sprintf("%d conflicts remain, %d critical", len(remaining), critical)
	}
	return v
}

// mostSevere returns the highest-severity conflict, the first found on ties.
func mostSevere(found []located) located {
	best := found[0]
	for _, c := range found[1:] {
		if c.Severity.Rank() > best.Severity.Rank() {
			best = c
		}
	}
	return best
}

// apply returns a new list with one fix for c applied.
func apply(current []working, c located) ([]working, bool) {
	next := append([]working(nil), current...)

	if len(c.idx) == 1 {
		return next, swapDates(next, c.idx[0])
	}

	earlier, later := c.idx[0], c.idx[1]
	switch {
	case c.Type == domain.ConflictImpossible:
		return next, endOnTravelDay(next, earlier, later, true)
	case c.Type == domain.ConflictOverlap && strings.EqualFold(next[earlier].CountryCode, next[later].CountryCode):
		return merge(next, earlier, later), true
	default:
		return next, endOnTravelDay(next, earlier, later, false)
	}
}

// swapDates fixes a stay that exits before it enters.
func swapDates(list []working, i int) bool {
	w := list[i]
	entry, exit := w.EntryDate, w.ExitDate
	if entry == exit {
		return false
	}
	setExit(&w, entry)
	w.EntryDate = exit
	note(&w, "entry and exit dates were reversed and have been swapped")
	list[i] = w
	return true
}

// endOnTravelDay sets the earlier stay's exit to the later stay's entry. Unless
// force is set, an exit already strictly before that entry is left alone.
func endOnTravelDay(list []working, earlier, later int, force bool) bool {
	w := list[earlier]
	travelDay := list[later].EntryDate
	if w.ExitDate == travelDay {
		return false
	}
	if !force && !w.IsOngoing() {
		exit, okExit := domain.ParseCalendarDate(w.ExitDate)
		entry, okEntry := domain.ParseCalendarDate(travelDay)
		if okExit && okEntry && exit.Before(entry) {
			return false
		}
	}
	setExit(&w, travelDay)
	note(&w, fmt.Sprintf("exit set to %s, the day of travel to %s", travelDay, list[later].CountryCode))
	list[earlier] = w
	return true
}

// merge folds the duplicate pair into the record carrying more metadata,
// spanning the earlier entry to the later exit, and drops the other record.
func merge(list []working, earlier, later int) []working {
	keep, drop := earlier, later
	if metadataScore(list[later].Stay) > metadataScore(list[earlier].Stay) {
		keep, drop = later, earlier
	}
	k, d := list[keep], list[drop].Stay

	k.EntryDate = minDate(k.EntryDate, d.EntryDate)
	if exit := maxExit(k.ExitDate, d.ExitDate); exit != k.ExitDate {
		setExit(&k, exit)
	}
	k.Notes = joinNotes(k.Notes, d.Notes)
	if k.EntryAirport == "" {
		k.EntryAirport = d.EntryAirport
	}
	if k.ExitAirport == "" {
		k.ExitAirport = d.ExitAirport
	}
	if k.FromCountry == "" {
		k.FromCountry = d.FromCountry
	}
	if k.VisaType == "" {
		k.VisaType = d.VisaType
	}
	note(&k, fmt.Sprintf("merged duplicate %s stay %s entered %s", d.CountryCode, d.ID, d.EntryDate))

	list[keep] = k
	return append(list[:drop], list[drop+1:]...)
}

func setExit(w *working, exit string) {
	if !w.exitTouched {
		w.OriginalExitDate = w.ExitDate
		w.exitTouched = true
	}
	w.ExitDate = exit
}

func note(w *working, reason string) {
	w.AutoResolved = true
	if w.ResolutionReason == "" {
		w.ResolutionReason = reason
		return
	}
	w.ResolutionReason += "; " + reason
}

func metadataScore(s domain.Stay) int {
	n := 0
	for _, f := range []string{s.Notes, s.EntryAirport, s.ExitAirport} {
		if strings.TrimSpace(f) != "" {
			n++
		}
	}
	return n
}

func joinNotes(a, b string) string {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	switch {
	case b == "" || a == b:
		return a
	case a == "":
		return b
	}
	return a + "\n" + b
}

// minDate and maxExit compare YYYY-MM-DD strings; both sides were parsed by
// the detector before a merge is attempted.
func minDate(a, b string) string {
	if b < a {
		return b
	}
	return a
}

// maxExit treats an empty (ongoing) exit as the latest.
func maxExit(a, b string) string {
	if a == "" || b == "" {
		return ""
	}
	if b > a {
		return b
	}
	return a
}

func plain(list []working) []domain.Stay {
	out := make([]domain.Stay, len(list))
	for i, w := range list {
		out[i] = w.Stay
	}
	return out
}
