package scrape

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/mdeeno/motoieum/internal/domain"
	"github.com/mdeeno/motoieum/internal/scrape/types"
	"github.com/mdeeno/motoieum/internal/scrape/util"
)

// processSource runs one adapter to completion. A list failure marks the source failed
// and returns; everything after that is per item.
func (r *Runner) processSource(ctx context.Context, src types.Source, sr *types.SourceReport) {
	ctx, span := r.tracer().Start(ctx, "scrape.source")
	defer span.End()
	span.SetAttributes(attribute.String("source", src.Name()))

	log := r.logger().With(zap.String("source", src.Name()))
	log.Info("running")

	cands, err := src.Candidates(ctx)
	if err != nil {
		sr.ListFailed = true
		sr.Err = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, "list fetch failed")
		log.Error("list fetch failed", zap.Error(err))
		return
	}
	sr.Discovered = len(cands)
	log.Info("discovered", zap.Int("items", len(cands)))

	meta := src.Meta()
	for _, c := range cands {
		if ctx.Err() != nil {
			log.Warn("cancelled", zap.Error(ctx.Err()))
			return
		}
		r.processItem(ctx, src, meta, c, sr, log)
	}
}

func (r *Runner) processItem(ctx context.Context, src types.Source, meta util.SourceMeta, c domain.Candidate, sr *types.SourceReport, log *zap.Logger) {
	log = log.With(zap.String("title", c.Title), zap.String("link", c.Link))
	log.Debug("item", zap.Stringer("outcome", types.Discovered))

	if r.PrecheckBeforeDetail {
		ok, err := r.Writer.Exists(ctx, c.Link)
		if err != nil {
			// Write repeats the check and reports the failure there
			log.Warn("pre-check failed", zap.Error(err))
		} else if ok {
			log.Info("already exists", zap.Stringer("outcome", types.Skipped))
			sr.Skipped++
			return
		}
	}

	raw, err := src.Detail(ctx, c)
	if err != nil {
		sr.DetailFailed++
		raw = domain.RawFields{}
		log.Warn("detail fetch failed, writing with defaults",
			zap.Stringer("outcome", types.DetailFetchFailed), zap.Error(err))
	} else {
		log.Debug("item", zap.Stringer("outcome", types.DetailFetched))
	}

	rec := util.Normalize(c, raw, meta)
	log.Debug("item", zap.Stringer("outcome", types.Normalized),
		zap.String("price", rec.Price), zap.String("year", rec.Year), zap.String("mileage", rec.Mileage))

	switch out, _ := r.Writer.Write(ctx, rec); out {
	case types.Inserted:
		sr.Inserted++
		if r.OnInserted != nil {
			r.OnInserted(ctx, rec)
		}
	case types.Skipped:
		sr.Skipped++
	default:
		sr.InsertFailed++
	}
}
