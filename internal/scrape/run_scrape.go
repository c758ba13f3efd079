package scrape

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/mdeeno/motoieum/internal/domain"
	"github.com/mdeeno/motoieum/internal/scrape/types"
)

// Runner drives every configured source, one after another, through the writer.
type Runner struct {
	Sources []types.Source
	Writer  Writer
	Log     *zap.Logger
	Tracer  trace.Tracer

	// OnInserted is called once per newly stored record.
	OnInserted func(ctx context.Context, rec domain.ListingRecord)

	// PrecheckBeforeDetail skips the detail fetch for links that are already stored.
	PrecheckBeforeDetail bool
}

// RunOnce makes a single pass. A failing source never stops the ones after it;
// a cancelled context stops the pass between items.
func (r *Runner) RunOnce(ctx context.Context) types.Report {
	ctx, span := r.tracer().Start(ctx, "scrape.run")
	defer span.End()

	rep := types.NewReport()
	for _, src := range r.Sources {
		if ctx.Err() != nil {
			r.logger().Warn("run cancelled", zap.Error(ctx.Err()))
			break
		}
		r.processSource(ctx, src, rep.For(src.Name()))
	}
	rep.FinishedAt = time.Now().UTC()

	span.SetAttributes(
		attribute.Int("inserted", rep.Inserted()),
		attribute.StringSlice("failed_sources", rep.Failed()),
	)
	r.logger().Info("run finished",
		zap.Int("inserted", rep.Inserted()),
		zap.Strings("failed_sources", rep.Failed()),
		zap.Duration("took", rep.FinishedAt.Sub(rep.StartedAt)))
	return rep
}

func (r *Runner) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

func (r *Runner) tracer() trace.Tracer {
	if r.Tracer == nil {
		return otel.Tracer("github.com/mdeeno/motoieum/internal/scrape")
	}
	return r.Tracer
}
