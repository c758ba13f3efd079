package httpapi

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/mdeeno/motoieum/internal/events"
	"github.com/mdeeno/motoieum/internal/poll"
	"github.com/mdeeno/motoieum/internal/store"
)

type Deps struct {
	Hub    *events.Hub
	Poller *poll.Poller
	Log    *zap.Logger

	// Lister is nil when the store backend cannot read rows back.
	Lister store.Lister
	Table  string

	// BaseCtx parents background runs started over HTTP, so stopping the
	// server cancels them. Nil detaches them from the request only.
	BaseCtx context.Context

	CfgVal      *atomic.Value // stores config.Config
	UserCfgPath string

	// POST /shutdown is only mounted when both are set.
	ShutdownToken string
	Stop          func()
}
