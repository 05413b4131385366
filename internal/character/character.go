// Package character defines the character domain types and the survivor filter.
package character

// Record is the full character projection kept in the snapshot. It carries
// everything the dashboard displays; the API and CSV surfaces reduce it to a
// Character.
type Record struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Species  string `json:"species"`
	Gender   string `json:"gender"`
	Origin   string `json:"origin"`
	Location string `json:"location"`
	Image    string `json:"image"`
	Episodes int    `json:"episodes"`
	URL      string `json:"url"`
}

// Character is the reduced display record exposed by the JSON API and the
// CSV export.
type Character struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Image    string `json:"image"`
}

// Reduced projects the record down to its display fields.
func (r Record) Reduced() Character {
	return Character{
		Name:     r.Name,
		Location: r.Location,
		Image:    r.Image,
	}
}

// Reduce projects a slice of records preserving order. The result is never
// nil so JSON encoders emit an empty array rather than null.
func Reduce(records []Record) []Character {
	chars := make([]Character, 0, len(records))
	for _, r := range records {
		chars = append(chars, r.Reduced())
	}
	return chars
}
