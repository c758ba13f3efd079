package scrape

import (
	"go.uber.org/zap"

	"github.com/mdeeno/motoieum/internal/config"
	"github.com/mdeeno/motoieum/internal/scrape/batumae"
	"github.com/mdeeno/motoieum/internal/scrape/joongum"
	"github.com/mdeeno/motoieum/internal/scrape/junggeomdan"
	"github.com/mdeeno/motoieum/internal/scrape/types"
)

// BuildSources returns the enabled adapters in run order: the blog feed, then each
// cafe board as configured, then joongum.
func BuildSources(cfg config.Config, f types.Fetcher, log *zap.Logger) []types.Source {
	var out []types.Source
	window := cfg.Sources.Window

	if cfg.Sources.Junggeomdan.Enabled {
		out = append(out, junggeomdan.New(junggeomdan.Config{
			FeedURL: cfg.Sources.Junggeomdan.FeedURL,
			Window:  window,
		}, f, log))
	}
	if cfg.Sources.Batumae.Enabled {
		for _, b := range mapBoards(cfg.Sources.Batumae.Boards) {
			out = append(out, batumae.New(batumae.Config{Board: b, Window: window}, f, log))
		}
	}
	if cfg.Sources.Joongum.Enabled {
		out = append(out, joongum.New(joongum.Config{
			Base:   cfg.Sources.Joongum.BaseURL,
			Window: window,
		}, f, log))
	}
	return out
}

func mapBoards(in []config.Board) []batumae.Board {
	if len(in) == 0 {
		return batumae.DefaultBoards
	}
	out := make([]batumae.Board, 0, len(in))
	for _, b := range in {
		out = append(out, batumae.Board{
			MenuID:   b.MenuID,
			Category: b.Category,
		})
	}
	return out
}
