package store

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/mdeeno/motoieum/internal/domain"
)

// PostgREST talks to a Supabase project's REST endpoint with the service key.
type PostgREST struct {
	client *resty.Client
	log    *zap.Logger
}

func NewPostgREST(baseURL, key string, log *zap.Logger) *PostgREST {
	client := resty.New()
	client.SetTransport(otelhttp.NewTransport(http.DefaultTransport))
	client.SetBaseURL(strings.TrimRight(baseURL, "/") + "/rest/v1")
	client.SetHeader("apikey", key)
	client.SetAuthToken(key)
	client.SetHeader("Accept", "application/json")
	client.SetTimeout(15 * time.Second)

	return &PostgREST{client: client, log: log}
}

type postgrestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

func (p *PostgREST) FindByField(ctx context.Context, table, field, value string) (Row, bool, error) {
	if err := checkLookup(table, field); err != nil {
		return Row{}, false, err
	}

	var rows []map[string]any
	var perr postgrestError
	res, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("select", "id").
		SetQueryParam(field, "eq."+value).
		SetQueryParam("limit", "1").
		SetResult(&rows).
		SetError(&perr).
		Get("/" + table)
	if err != nil {
		return Row{}, false, eris.Wrapf(err, "store: find %s", table)
	}
	if res.IsError() {
		return Row{}, false, eris.Errorf("store: find %s: status %d: %s", table, res.StatusCode(), perr.Message)
	}
	if len(rows) == 0 {
		return Row{}, false, nil
	}
	return Row{ID: anyToID(rows[0]["id"])}, true, nil
}

func (p *PostgREST) Insert(ctx context.Context, table string, rec domain.ListingRecord) error {
	if err := checkTable(table); err != nil {
		return err
	}

	var perr postgrestError
	res, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Prefer", "return=minimal").
		SetBody(rec).
		SetError(&perr).
		Post("/" + table)
	if err != nil {
		return eris.Wrapf(err, "store: insert %s", table)
	}
	if isPostgRESTDuplicate(res.StatusCode(), perr.Code) {
		return ErrDuplicate
	}
	if res.IsError() {
		p.log.Debug("postgrest insert rejected",
			zap.Int("status", res.StatusCode()),
			zap.String("code", perr.Code),
			zap.String("details", perr.Details))
		return eris.Errorf("store: insert %s: status %d: %s", table, res.StatusCode(), perr.Message)
	}
	return nil
}

// isPostgRESTDuplicate reads a rejected insert. 409 also covers foreign-key
// violations (23503), so the status alone counts only when the body carries no code.
func isPostgRESTDuplicate(status int, code string) bool {
	if code != "" {
		return code == pgUniqueViolation
	}
	return status == http.StatusConflict
}

func (p *PostgREST) Close() error { return nil }

func anyToID(v any) int64 {
	switch t := v.(type) {
	case float64:
		return int64(t)
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	}
	return 0
}
