// Package fetch is the HTTP client shared by every source adapter.
package fetch

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mdeeno/motoieum/internal/scrape/util"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type Options struct {
	UserAgent string
	Timeout   time.Duration
	ReqPerSec float64
	Burst     int
	// Transport is wrapped with otelhttp; nil means http.DefaultTransport.
	Transport http.RoundTripper
}

type Client struct {
	rc      *resty.Client
	timeout time.Duration
}

func New(opt Options) *Client {
	if opt.UserAgent == "" {
		opt.UserAgent = DefaultUserAgent
	}
	if opt.Timeout <= 0 {
		opt.Timeout = 20 * time.Second
	}
	base := opt.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	lim := util.NewHostLimiter(opt.ReqPerSec, opt.Burst)

	rc := resty.New()
	rc.SetTransport(otelhttp.NewTransport(base))
	rc.SetHeader("User-Agent", opt.UserAgent)
	rc.SetTimeout(opt.Timeout)
	rc.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return lim.WaitURL(req.Context(), req.URL)
	})

	return &Client{rc: rc, timeout: opt.Timeout}
}

// Bytes GETs url and returns the body. Any non-2xx status is an error.
func (c *Client) Bytes(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.rc.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: GET %s", url)
	}
	if !res.IsSuccess() {
		return nil, eris.Errorf("fetch: GET %s: status %d", url, res.StatusCode())
	}
	return res.Body(), nil
}

func (c *Client) Document(ctx context.Context, url string) (*goquery.Document, error) {
	b, err := c.Bytes(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: parse %s", url)
	}
	return doc, nil
}
