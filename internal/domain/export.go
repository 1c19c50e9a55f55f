package domain

// ExportRow is a single row in a traveler's stay export.
// It is a flat, denormalized view: one row per stay, with traveler fields
// repeated for every stay. Travelers with no stays yield no rows.
type ExportRow struct {
	// Traveler fields, repeated for every stay.
	TravelerID   string
	TravelerName string
	Nationality  string

	// Stay fields.
	StayID      string
	CountryCode string
	FromCountry string
	EntryDate   string
	ExitDate    string // empty while the stay is ongoing
	VisaType    string
	DaysStayed  int    // inclusive; 0 when the dates cannot be parsed
	Notes       string

	// CountryStatus is the visa status level of CountryCode as of the export's
	// reference date.
	CountryStatus StatusLevel
}
