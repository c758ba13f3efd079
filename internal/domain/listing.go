package domain

const (
	// StatusForSale is the status every crawled listing is created with.
	StatusForSale = "판매중"

	// PriceOnInquiry replaces a price the detail page did not reveal.
	PriceOnInquiry = "가격 문의"

	// MaxFieldLen bounds year and mileage text (column width in the market table).
	MaxFieldLen = 30
)

// Source tags written to ListingRecord.Source.
const (
	SourceJunggeomdan = "junggeomdan"
	SourceBatumae     = "batumae"
	SourceJoongum     = "joongum"
)

// ListingRecord is one row of the shared market table.
type ListingRecord struct {
	Title        string  `json:"title"`
	Price        string  `json:"price"`
	Year         string  `json:"year"`
	Mileage      string  `json:"mileage"`
	Location     string  `json:"location"`
	Source       string  `json:"source"`
	ExternalLink string  `json:"external_link"`
	ImageURL     *string `json:"image_url"`
	Status       string  `json:"status"`
}

// Candidate is an item discovered on a source listing, before its detail page is read.
type Candidate struct {
	Title     string
	Link      string // canonical, dedup key
	DetailURL string // what we actually fetch (often a mobile render)
	ImageURL  string // thumbnail from the listing, if any
	Category  string
}

// RawFields is what an extractor pulled out of a detail page. Values are unvalidated text.
type RawFields struct {
	Price    string
	Year     string
	Mileage  string
	ImageURL string
}
