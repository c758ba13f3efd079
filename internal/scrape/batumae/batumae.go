// Package batumae reads for-sale posts from the 바튜매 cafe boards.
package batumae

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mdeeno/motoieum/internal/domain"
	"github.com/mdeeno/motoieum/internal/scrape/extract"
	"github.com/mdeeno/motoieum/internal/scrape/types"
	"github.com/mdeeno/motoieum/internal/scrape/util"
)

const (
	CafeID   = "10312966"
	CafeSlug = "bikecargogo"

	defaultMobileBase = "https://m.cafe.naver.com"
	defaultPCBase     = "https://cafe.naver.com"
)

// Board is one menu of the cafe. Category ends up as the listing location.
type Board struct {
	MenuID   int
	Category string
}

var DefaultBoards = []Board{
	{MenuID: 302, Category: "125cc 미만"},
	{MenuID: 272, Category: "125cc 초과"},
}

type Config struct {
	Board  Board
	Window int
	// MobileBase serves both the board list and the post bodies.
	MobileBase string
}

type Scraper struct {
	cfg Config
	f   types.Fetcher
	ext extract.Extractor
	log *zap.Logger
}

func New(cfg Config, f types.Fetcher, log *zap.Logger) *Scraper {
	if cfg.Window <= 0 {
		cfg.Window = types.DefaultWindow
	}
	if cfg.MobileBase == "" {
		cfg.MobileBase = defaultMobileBase
	}
	cfg.MobileBase = strings.TrimRight(cfg.MobileBase, "/")
	if log == nil {
		log = zap.NewNop()
	}
	return &Scraper{
		cfg: cfg,
		f:   f,
		ext: extract.KeywordExtractor{
			Nodes: "p, span, div, strong",
			Image: "div.se-main-container img, div.post_content img",
			Rules: []extract.Rule{
				{Field: extract.Price, Any: []string{"판매 희망가격", "판매희망가격"}, Label: "희망가격"},
				{Field: extract.Year, Any: []string{"제작연식", "년식"}, Label: "연식"},
				{Field: extract.Mileage, Any: []string{"적산거리", "주행거리"}, Label: "거리"},
			},
			Policy: extract.FirstMatchWins,
		},
		log: log,
	}
}

func (s *Scraper) Name() string {
	return fmt.Sprintf("%s:%d:%s", domain.SourceBatumae, s.cfg.Board.MenuID, s.cfg.Board.Category)
}

func (s *Scraper) Meta() util.SourceMeta {
	return util.SourceMeta{Tag: domain.SourceBatumae, Marker: "바튜매", Location: s.cfg.Board.Category}
}

func (s *Scraper) ListURL() string {
	return fmt.Sprintf("%s/SectionArticleList.nhn?cafeId=%s&menuId=%d", s.cfg.MobileBase, CafeID, s.cfg.Board.MenuID)
}

func (s *Scraper) Candidates(ctx context.Context) ([]domain.Candidate, error) {
	doc, err := s.f.Document(ctx, s.ListURL())
	if err != nil {
		return nil, eris.Wrapf(err, "batumae: fetch board %d", s.cfg.Board.MenuID)
	}

	var out []domain.Candidate
	doc.Find("li.board_box").EachWithBreak(func(_ int, li *goquery.Selection) bool {
		if len(out) == s.cfg.Window {
			return false
		}
		title := util.CollapseSpace(li.Find("strong.tit").First().Text())
		href, _ := li.Find("a.txt_area").First().Attr("href")

		id := ArticleID(href)
		if id == "" {
			s.log.Warn("board item without article id", zap.String("title", title), zap.String("href", href))
			return true
		}

		c := domain.Candidate{
			Title:     title,
			Link:      CanonicalLink(id),
			DetailURL: s.cfg.MobileBase + "/" + CafeSlug + "/" + id,
			Category:  s.cfg.Board.Category,
		}
		if src, ok := li.Find("img").First().Attr("src"); ok {
			c.ImageURL = strings.TrimSpace(src)
		}
		out = append(out, c)
		return true
	})
	return out, nil
}

func (s *Scraper) Detail(ctx context.Context, c domain.Candidate) (domain.RawFields, error) {
	doc, err := s.f.Document(ctx, c.DetailURL)
	if err != nil {
		return domain.RawFields{}, eris.Wrap(err, "batumae: fetch post")
	}
	return s.ext.Extract(doc), nil
}

// ArticleID pulls the numeric article id out of a board link such as
// "/ArticleRead.nhn?clubid=10312966&articleid=123456&page=1". Empty when absent.
func ArticleID(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if u, err := url.Parse(href); err == nil {
		for k, v := range u.Query() {
			if strings.EqualFold(k, "articleid") && len(v) > 0 && isDigits(v[0]) {
				return v[0]
			}
		}
	}
	// fall back to a plain scan for hand-built links
	low := strings.ToLower(href)
	i := strings.Index(low, "articleid=")
	if i < 0 {
		return ""
	}
	id := href[i+len("articleid="):]
	if j := strings.IndexAny(id, "&#"); j >= 0 {
		id = id[:j]
	}
	if !isDigits(id) {
		return ""
	}
	return id
}

// CanonicalLink is the PC permalink for an article. Mobile and PC views of the same
// post share it.
func CanonicalLink(articleID string) string {
	return defaultPCBase + "/" + CafeSlug + "/" + articleID
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
