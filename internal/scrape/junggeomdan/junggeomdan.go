// Package junggeomdan reads inspected-bike posts from the 중검단 blog RSS feed.
package junggeomdan

import (
	"bytes"
	"context"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mdeeno/motoieum/internal/domain"
	"github.com/mdeeno/motoieum/internal/scrape/extract"
	"github.com/mdeeno/motoieum/internal/scrape/types"
	"github.com/mdeeno/motoieum/internal/scrape/util"
)

const DefaultFeedURL = "https://rss.blog.naver.com/usedcheck.xml"

type Config struct {
	FeedURL string
	Window  int
}

type Scraper struct {
	cfg Config
	f   types.Fetcher
	ext extract.Extractor
	log *zap.Logger
}

func New(cfg Config, f types.Fetcher, log *zap.Logger) *Scraper {
	if cfg.FeedURL == "" {
		cfg.FeedURL = DefaultFeedURL
	}
	if cfg.Window <= 0 {
		cfg.Window = types.DefaultWindow
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scraper{
		cfg: cfg,
		f:   f,
		ext: extract.KeywordExtractor{
			Nodes: "p, span, div",
			Image: "div.se-main-container img",
			Rules: []extract.Rule{
				{Field: extract.Price, Any: []string{"차량가격"}},
				{Field: extract.Year, Any: []string{"연식", "년식"}},
				{Field: extract.Mileage, Any: []string{"적산거리", "주행거리"}},
			},
			Policy: extract.FirstMatchWins,
		},
		log: log,
	}
}

func (s *Scraper) Name() string { return domain.SourceJunggeomdan }

func (s *Scraper) Meta() util.SourceMeta {
	return util.SourceMeta{Tag: domain.SourceJunggeomdan, Marker: "중검단", Location: "전국(인증)"}
}

func (s *Scraper) Candidates(ctx context.Context) ([]domain.Candidate, error) {
	b, err := s.f.Bytes(ctx, s.cfg.FeedURL)
	if err != nil {
		return nil, eris.Wrap(err, "junggeomdan: fetch feed")
	}
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(b))
	if err != nil {
		return nil, eris.Wrap(err, "junggeomdan: parse feed")
	}

	var out []domain.Candidate
	for _, it := range feed.Items {
		if len(out) == s.cfg.Window {
			break
		}
		link := CanonicalLink(it.Link)
		if link == "" {
			s.log.Warn("feed item without link", zap.String("title", it.Title))
			continue
		}
		c := domain.Candidate{
			Title:     util.CollapseSpace(it.Title),
			Link:      link,
			DetailURL: DetailURL(link),
		}
		if it.Image != nil {
			c.ImageURL = strings.TrimSpace(it.Image.URL)
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Scraper) Detail(ctx context.Context, c domain.Candidate) (domain.RawFields, error) {
	doc, err := s.f.Document(ctx, c.DetailURL)
	if err != nil {
		return domain.RawFields{}, eris.Wrap(err, "junggeomdan: fetch post")
	}
	return s.ext.Extract(doc), nil
}

// CanonicalLink drops the RSS tracking query so a post keeps one identity
// however it was reached.
func CanonicalLink(raw string) string {
	return util.CanonicalizeURL(raw, "fromRss", "trackingCode")
}

// DetailURL points at the mobile render, which carries the post body inline.
func DetailURL(link string) string {
	return util.SwapHost(link, "blog.naver.com", "m.blog.naver.com")
}
