package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mdeeno/motoieum/internal/domain"
	"github.com/mdeeno/motoieum/internal/scrape/util"
)

// LabelExtractor reads details tables where a label cell is followed by its value,
// e.g. <th>연식</th><td>2019년</td> or <li><span>연식</span><span>2019년</span></li>.
type LabelExtractor struct {
	Labels map[Field][]string
	Image  string
	// BaseURL resolves relative image paths.
	BaseURL string
}

func (l LabelExtractor) Extract(doc *goquery.Document) domain.RawFields {
	var out domain.RawFields
	if doc == nil {
		return out
	}

	for _, f := range []Field{Price, Year, Mileage} {
		labels := l.Labels[f]
		if len(labels) == 0 {
			continue
		}
		v := siblingValue(doc, labels)
		if v == "" {
			// flattened layouts: fall back to plain text after the label
			v = util.ValueAfterLabel(doc.Find("body").Text(), labels...)
		}
		set(&out, f, v)
	}

	if img := FirstImage(doc, l.Image); img != "" {
		out.ImageURL = FixImageURL(l.BaseURL, img)
	}
	return out
}

func siblingValue(doc *goquery.Document, labels []string) string {
	var val string
	doc.Find("th, dt, td, span, div, strong, b, label").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Children().Length() > 0 {
			return true
		}
		text := util.CollapseSpace(s.Text())
		if text == "" || len([]rune(text)) > 12 {
			return true
		}
		if _, ok := util.HasAny(text, labels...); !ok {
			return true
		}
		if v := util.CollapseSpace(s.Next().Text()); v != "" {
			val = v
			return false
		}
		return true
	})
	return val
}

// FixImageURL collapses "/../" segments and makes relative paths absolute against base.
func FixImageURL(base, src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return src
	}
	for strings.Contains(src, "/../") {
		src = strings.ReplaceAll(src, "/../", "/")
	}
	src = strings.TrimPrefix(src, "..")
	if !strings.HasPrefix(src, "/") {
		src = "/" + src
	}
	return util.Resolve(base, src)
}
