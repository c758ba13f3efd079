package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/mdeeno/motoieum/internal/domain"
)

// Notifier fans a new listing out to SSE subscribers and, when configured, NATS.
type Notifier struct {
	Hub  *Hub
	NATS *NATSPublisher
	Log  *zap.Logger
}

func (n Notifier) ListingCreated(ctx context.Context, rec domain.ListingRecord) {
	if n.Hub != nil {
		n.Hub.Publish(Encode("", TypeListingCreated, listingCreated(rec)))
	}
	if n.NATS != nil {
		if err := n.NATS.Publish(ctx, rec); err != nil && n.Log != nil {
			n.Log.Warn("nats publish failed", zap.String("link", rec.ExternalLink), zap.Error(err))
		}
	}
}

func (n Notifier) ScrapeFinished(summary any) {
	if n.Hub != nil {
		n.Hub.Publish(Encode("", TypeScrapeFinished, summary))
	}
}
