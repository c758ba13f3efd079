package scrape

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/mdeeno/motoieum/internal/domain"
	"github.com/mdeeno/motoieum/internal/scrape/types"
	"github.com/mdeeno/motoieum/internal/store"
)

const DedupField = "external_link"

// Writer inserts a record only when no row with the same external_link exists.
//
// The lookup and the insert are two round trips, so two concurrent writers can both
// see "absent". The store's unique index on external_link settles that race: the loser
// gets store.ErrDuplicate, which is reported as Skipped.
type Writer struct {
	Store store.Store
	Table string
	Log   *zap.Logger
}

// Exists reports whether link is already stored.
func (w Writer) Exists(ctx context.Context, link string) (bool, error) {
	_, ok, err := w.Store.FindByField(ctx, w.Table, DedupField, link)
	return ok, err
}

func (w Writer) Write(ctx context.Context, rec domain.ListingRecord) (types.Outcome, error) {
	log := w.logger().With(
		zap.String("source", rec.Source),
		zap.String("title", rec.Title),
		zap.String("link", rec.ExternalLink),
	)

	ok, err := w.Exists(ctx, rec.ExternalLink)
	if err != nil {
		log.Warn("existence check failed", zap.Stringer("outcome", types.InsertFailed), zap.Error(err))
		return types.InsertFailed, err
	}
	if ok {
		log.Info("already exists", zap.Stringer("outcome", types.Skipped))
		return types.Skipped, nil
	}

	if err := w.Store.Insert(ctx, w.Table, rec); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			log.Info("already exists (constraint)", zap.Stringer("outcome", types.Skipped))
			return types.Skipped, nil
		}
		log.Error("insert failed", zap.Stringer("outcome", types.InsertFailed), zap.Error(err))
		return types.InsertFailed, err
	}

	log.Info("inserted", zap.Stringer("outcome", types.Inserted))
	return types.Inserted, nil
}

func (w Writer) logger() *zap.Logger {
	if w.Log == nil {
		return zap.NewNop()
	}
	return w.Log
}
