package events

import (
	"encoding/json"
	"time"

	"github.com/mdeeno/motoieum/internal/domain"
)

const (
	TypePing           = "ping"
	TypeListingCreated = "listing_created"
	TypeScrapeFinished = "scrape_finished"

	// SchemaVersion is bumped when a payload shape changes.
	SchemaVersion = 1
)

// Event is the SSE envelope. Data is already JSON so the Hub only moves strings.
type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// ListingCreated is the SSE payload for a stored listing.
type ListingCreated struct {
	Title        string  `json:"title"`
	Price        string  `json:"price"`
	Source       string  `json:"source"`
	ExternalLink string  `json:"external_link"`
	ImageURL     *string `json:"image_url,omitempty"`
}

func listingCreated(rec domain.ListingRecord) ListingCreated {
	return ListingCreated{
		Title:        rec.Title,
		Price:        rec.Price,
		Source:       rec.Source,
		ExternalLink: rec.ExternalLink,
		ImageURL:     rec.ImageURL,
	}
}

// Encode builds the envelope for typ. A payload that cannot be marshalled is left out.
func Encode(reqID, typ string, data any) string {
	e := Event{Type: typ, Version: SchemaVersion, At: time.Now().UTC(), RequestID: reqID}
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			e.Data = b
		}
	}
	b, _ := json.Marshal(e)
	return string(b)
}
