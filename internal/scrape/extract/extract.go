// Package extract pulls raw listing fields out of a parsed detail page.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mdeeno/motoieum/internal/domain"
	"github.com/mdeeno/motoieum/internal/scrape/util"
)

type Field int

const (
	Price Field = iota
	Year
	Mileage
)

func (f Field) String() string {
	switch f {
	case Price:
		return "price"
	case Year:
		return "year"
	case Mileage:
		return "mileage"
	}
	return "unknown"
}

// Extractor turns a detail page into raw field text. Missing fields stay empty.
type Extractor interface {
	Extract(doc *goquery.Document) domain.RawFields
}

// Policy decides what happens when a field matches more than once.
type Policy int

const (
	// FirstMatchWins keeps the earliest node in document order.
	FirstMatchWins Policy = iota
	LastMatchWins
)

// Rule matches a node whose text contains any keyword. Label is what CleanText strips
// when the node has no colon; empty means the matched keyword itself.
type Rule struct {
	Field Field
	Any   []string
	Label string
}

// KeywordExtractor walks Nodes in document order and tests each node's text against Rules.
// A node only counts when none of its nested Nodes mention the same keyword.
type KeywordExtractor struct {
	Nodes  string
	Image  string
	Rules  []Rule
	Policy Policy
}

func (k KeywordExtractor) Extract(doc *goquery.Document) domain.RawFields {
	var out domain.RawFields
	if doc == nil {
		return out
	}
	seen := map[Field]bool{}

	doc.Find(k.Nodes).Each(func(_ int, s *goquery.Selection) {
		text := util.CollapseSpace(s.Text())
		if text == "" {
			return
		}
		for _, r := range k.Rules {
			if k.Policy == FirstMatchWins && seen[r.Field] {
				continue
			}
			v := valueOf(text, r)
			if v == "" || k.innerHas(s, r) {
				continue
			}
			set(&out, r.Field, v)
			seen[r.Field] = true
		}
	})

	out.ImageURL = FirstImage(doc, k.Image)
	return out
}

// valueOf returns the cleaned value r reads from text, or "" when text has no
// keyword of r or holds only the label (a bold label run split from its value).
func valueOf(text string, r Rule) string {
	kw, ok := util.HasAny(text, r.Any...)
	if !ok || strings.Trim(text, " :") == kw {
		return ""
	}
	label := r.Label
	if label == "" {
		label = kw
	}
	return util.CollapseSpace(util.CleanText(text, label))
}

// innerHas reports whether a nested node already yields a value for r. Containers such
// as div.se-main-container hold every line of the post; the innermost line is the one
// to read. A nested node that holds only the label does not count.
func (k KeywordExtractor) innerHas(s *goquery.Selection, r Rule) bool {
	found := false
	s.Find(k.Nodes).EachWithBreak(func(_ int, c *goquery.Selection) bool {
		found = valueOf(util.CollapseSpace(c.Text()), r) != ""
		return !found
	})
	return found
}

func set(out *domain.RawFields, f Field, v string) {
	switch f {
	case Price:
		out.Price = v
	case Year:
		out.Year = v
	case Mileage:
		out.Mileage = v
	}
}

// FirstImage returns the source of the first img under sel, preferring src and
// falling back to the lazy-load attributes.
func FirstImage(doc *goquery.Document, sel string) string {
	if doc == nil {
		return ""
	}
	return FirstImageIn(doc.Selection, sel)
}

func FirstImageIn(root *goquery.Selection, sel string) string {
	if root == nil || sel == "" {
		return ""
	}
	img := root.Find(sel).First()
	if img.Length() == 0 {
		return ""
	}
	if !img.Is("img") {
		img = img.Find("img").First()
	}
	for _, attr := range []string{"src", "data-src", "data-lazy-src"} {
		if v, ok := img.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
