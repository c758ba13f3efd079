// Package joongum reads certified listings from the joongum.co.kr search list.
package joongum

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mdeeno/motoieum/internal/domain"
	"github.com/mdeeno/motoieum/internal/scrape/extract"
	"github.com/mdeeno/motoieum/internal/scrape/types"
	"github.com/mdeeno/motoieum/internal/scrape/util"
)

const DefaultBase = "http://joongum.co.kr"

var viewRe = regexp.MustCompile(`search_view/(\d+)`)

type Config struct {
	Base   string
	Window int
}

type Scraper struct {
	cfg Config
	f   types.Fetcher
	ext extract.Extractor
	log *zap.Logger
}

func New(cfg Config, f types.Fetcher, log *zap.Logger) *Scraper {
	if cfg.Base == "" {
		cfg.Base = DefaultBase
	}
	cfg.Base = strings.TrimRight(cfg.Base, "/")
	if cfg.Window <= 0 {
		cfg.Window = types.DefaultWindow
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scraper{
		cfg: cfg,
		f:   f,
		ext: extract.LabelExtractor{
			Labels: map[extract.Field][]string{
				extract.Price:   {"판매가", "판매금액", "가격"},
				extract.Year:    {"연식", "년식"},
				extract.Mileage: {"주행거리", "적산거리", "키로수"},
			},
			Image:   ".thumnail img, .view_img img",
			BaseURL: cfg.Base,
		},
		log: log,
	}
}

func (s *Scraper) Name() string { return domain.SourceJoongum }

func (s *Scraper) Meta() util.SourceMeta {
	return util.SourceMeta{Tag: domain.SourceJoongum, Marker: "중검단인증", Location: "전국(탁송가능)"}
}

func (s *Scraper) Candidates(ctx context.Context) ([]domain.Candidate, error) {
	doc, err := s.f.Document(ctx, s.cfg.Base+"/search_list")
	if err != nil {
		return nil, eris.Wrap(err, "joongum: fetch list")
	}

	seen := map[string]bool{}
	var out []domain.Candidate
	doc.Find("div.list-in div.area").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if len(out) == s.cfg.Window {
			return false
		}
		id := viewID(card)
		if id == "" || seen[id] {
			return true
		}
		seen[id] = true

		title := util.CollapseSpace(card.Find(".product_tit").First().Text())
		if title == "" {
			s.log.Debug("card without title", zap.String("id", id))
		}
		link := s.cfg.Base + "/search_view/" + id
		c := domain.Candidate{
			Title:     title,
			Link:      CanonicalLink(link),
			DetailURL: link,
		}
		if src := extract.FirstImageIn(card, ".thumnail img"); src != "" {
			c.ImageURL = extract.FixImageURL(s.cfg.Base, src)
		}
		out = append(out, c)
		return true
	})
	return out, nil
}

func (s *Scraper) Detail(ctx context.Context, c domain.Candidate) (domain.RawFields, error) {
	doc, err := s.f.Document(ctx, c.DetailURL)
	if err != nil {
		return domain.RawFields{}, eris.Wrap(err, "joongum: fetch item")
	}
	return s.ext.Extract(doc), nil
}

// viewID finds the listing number in the card's onclick handler (or any nested one).
func viewID(card *goquery.Selection) string {
	var id string
	card.Find("[onclick]").AddSelection(card.Filter("[onclick]")).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		oc, _ := s.Attr("onclick")
		if m := viewRe.FindStringSubmatch(oc); m != nil {
			id = m[1]
			return false
		}
		return true
	})
	if id == "" {
		if href, ok := card.Find("a[href*='search_view/']").First().Attr("href"); ok {
			if m := viewRe.FindStringSubmatch(href); m != nil {
				id = m[1]
			}
		}
	}
	return id
}

// CanonicalLink keeps the listing number only: scheme and host lowercased, no query.
func CanonicalLink(raw string) string {
	u := util.CanonicalizeURL(raw)
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	return strings.TrimRight(u, "/")
}
