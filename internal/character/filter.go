package character

import "strings"

// Filter criteria for a surviving character. Matching is case-sensitive:
// species and status compare for equality, origin matches on substring
// containment so dimension variants like "Earth (C-137)" qualify.
const (
	SpeciesHuman = "Human"
	StatusAlive  = "Alive"
	OriginEarth  = "Earth"
)

// Survivor reports whether the record passes the survivor filter: a living
// human whose origin is some Earth.
func Survivor(r Record) bool {
	return r.Species == SpeciesHuman &&
		r.Status == StatusAlive &&
		strings.Contains(r.Origin, OriginEarth)
}

// FilterSurvivors returns the surviving records in their original order.
// The result is never nil.
func FilterSurvivors(records []Record) []Record {
	kept := make([]Record, 0, len(records))
	for _, r := range records {
		if Survivor(r) {
			kept = append(kept, r)
		}
	}
	return kept
}
