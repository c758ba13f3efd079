package util

import (
	"strings"
	"unicode/utf8"

	"github.com/mdeeno/motoieum/internal/domain"
)

// SourceMeta is what every record from one adapter has in common.
type SourceMeta struct {
	Tag      string // domain.Source* value
	Marker   string // shown in the title as "[Marker] ..."
	Location string
}

// CollapseSpace folds runs of whitespace (including NBSP) into single spaces.
func CollapseSpace(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// CleanText turns a matched line into a field value.
// "차량가격 : 15,000,000원" -> "15,000,000원", "연식2023년" (label 연식) -> "2023년".
func CleanText(raw, label string) string {
	if raw == "" {
		return ""
	}
	if i := strings.Index(raw, ":"); i >= 0 {
		return strings.TrimSpace(raw[i+1:])
	}
	if label != "" {
		raw = strings.Replace(raw, label, "", 1)
	}
	return strings.TrimSpace(raw)
}

// Clamp cuts s to at most n characters without splitting a rune.
func Clamp(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func PriceOrInquiry(p string) string {
	if strings.TrimSpace(p) == "" {
		return domain.PriceOnInquiry
	}
	return p
}

// WithMarker prefixes title with "[marker] " unless it already carries it.
func WithMarker(marker, title string) string {
	title = CollapseSpace(title)
	if title == "" {
		title = "제목 없음"
	}
	prefix := "[" + marker + "]"
	if strings.HasPrefix(title, prefix) {
		return title
	}
	return prefix + " " + title
}

// Normalize builds the canonical record from a candidate and whatever its detail page yielded.
func Normalize(c domain.Candidate, raw domain.RawFields, meta SourceMeta) domain.ListingRecord {
	rec := domain.ListingRecord{
		Title:        WithMarker(meta.Marker, c.Title),
		Price:        PriceOrInquiry(raw.Price),
		Year:         Clamp(strings.TrimSpace(raw.Year), domain.MaxFieldLen),
		Mileage:      Clamp(strings.TrimSpace(raw.Mileage), domain.MaxFieldLen),
		Location:     meta.Location,
		Source:       meta.Tag,
		ExternalLink: c.Link,
		Status:       domain.StatusForSale,
	}
	if c.Category != "" && rec.Location == "" {
		rec.Location = c.Category
	}

	img := strings.TrimSpace(raw.ImageURL)
	if img == "" {
		img = strings.TrimSpace(c.ImageURL)
	}
	if img != "" {
		rec.ImageURL = &img
	}
	return rec
}
