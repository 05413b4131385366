package upstream

import (
	"time"

	"github.com/earthsurvivors/earthsurvivors/internal/character"
)

// page is the upstream listing envelope. A JSON null next pointer decodes to
// the empty string, which the pager treats as end of sequence.
type page struct {
	Info    pageInfo       `json:"info"`
	Results []apiCharacter `json:"results"`
}

type pageInfo struct {
	Count int    `json:"count"`
	Pages int    `json:"pages"`
	Next  string `json:"next"`
	Prev  string `json:"prev"`
}

type apiCharacter struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Status   string   `json:"status"`
	Species  string   `json:"species"`
	Gender   string   `json:"gender"`
	Origin   apiPlace `json:"origin"`
	Location apiPlace `json:"location"`
	Image    string   `json:"image"`
	Episode  []string `json:"episode"`
	URL      string   `json:"url"`
}

type apiPlace struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// record projects the wire shape onto the domain record.
func (c apiCharacter) record() character.Record {
	return character.Record{
		ID:       c.ID,
		Name:     c.Name,
		Status:   c.Status,
		Species:  c.Species,
		Gender:   c.Gender,
		Origin:   c.Origin.Name,
		Location: c.Location.Name,
		Image:    c.Image,
		Episodes: len(c.Episode),
		URL:      c.URL,
	}
}

// PageResult is one decoded page yielded by the Pager.
type PageResult struct {
	// Index is the 1-based position of the page in this run.
	Index int
	// URL is the address the page was fetched from.
	URL string
	// Next is the upstream pointer to the following page, empty on the last.
	Next string
	// Records holds every character decoded from the page, unfiltered.
	Records []character.Record
	// Bytes is the raw response size.
	Bytes int
	// StatusCode is the upstream HTTP status.
	StatusCode int
	// Duration is the page fetch latency.
	Duration time.Duration
}
