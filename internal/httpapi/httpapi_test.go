package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdeeno/motoieum/internal/config"
	"github.com/mdeeno/motoieum/internal/domain"
	"github.com/mdeeno/motoieum/internal/events"
	"github.com/mdeeno/motoieum/internal/poll"
	"github.com/mdeeno/motoieum/internal/scrape/types"
	"github.com/mdeeno/motoieum/internal/store"
)

type runnerFunc func(ctx context.Context) types.Report

func (f runnerFunc) RunOnce(ctx context.Context) types.Report { return f(ctx) }

func newTestServer(t *testing.T, runner poll.Runner, lister store.Lister) (*httptest.Server, *poll.Poller, *events.Hub) {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Key = "service-role"
	var cfgVal atomic.Value
	cfgVal.Store(cfg)

	hub := events.NewHub()
	p := &poll.Poller{Runner: runner}
	srv := httptest.NewServer(Handler(Deps{
		Hub:         hub,
		Poller:      p,
		Lister:      lister,
		Table:       "market",
		CfgVal:      &cfgVal,
		UserCfgPath: "data/config.yml",
	}))
	t.Cleanup(srv.Close)
	return srv, p, hub
}

func TestHealthAndRequestID(t *testing.T) {
	srv, _, _ := newTestServer(t, runnerFunc(func(context.Context) types.Report { return types.NewReport() }), nil)

	res, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotEmpty(t, res.Header.Get("X-Request-ID"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.EqualValues(t, 0, body["sse_subscribers"])
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _, _ := newTestServer(t, runnerFunc(func(context.Context) types.Report { return types.NewReport() }), nil)

	res, err := http.Post(srv.URL+"/health", "application/json", nil)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)

	var e APIError
	require.NoError(t, json.NewDecoder(res.Body).Decode(&e))
	assert.Equal(t, CodeMethodNotAllowed, e.Error.Code)
	assert.Equal(t, "GET", res.Header.Get("Allow"))
	assert.NotEmpty(t, e.Error.RequestID)
}

func TestScrapeRunAndStatus(t *testing.T) {
	release := make(chan struct{})
	srv, p, _ := newTestServer(t, runnerFunc(func(context.Context) types.Report {
		<-release
		rep := types.NewReport()
		rep.For("junggeomdan").Inserted = 2
		return rep
	}), nil)

	res, err := http.Post(srv.URL+"/scrape/run", "application/json", nil)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusAccepted, res.StatusCode)

	require.Eventually(t, func() bool { return p.Status().Running }, time.Second, 5*time.Millisecond)

	res, err = http.Post(srv.URL+"/scrape/run", "application/json", nil)
	require.NoError(t, err)
	var again map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&again))
	res.Body.Close()
	assert.Equal(t, false, again["ok"])
	assert.Equal(t, "already running", again["msg"])

	close(release)
	p.Wait()

	res, err = http.Get(srv.URL + "/scrape/status")
	require.NoError(t, err)
	defer res.Body.Close()
	var st types.ScrapeStatus
	require.NoError(t, json.NewDecoder(res.Body).Decode(&st))
	assert.Equal(t, 2, st.LastAdded)
	assert.False(t, st.Running)
	assert.NotEmpty(t, st.LastOkAt)
}

func TestListings(t *testing.T) {
	mem := store.NewMemory()
	require.NoError(t, mem.Insert(context.Background(), "market", domain.ListingRecord{
		Title: "[바튜매] PCX", Price: domain.PriceOnInquiry, Source: domain.SourceBatumae,
		ExternalLink: "https://cafe.naver.com/bikecargogo/1", Status: domain.StatusForSale,
	}))
	srv, _, _ := newTestServer(t, runnerFunc(func(context.Context) types.Report { return types.NewReport() }), mem)

	res, err := http.Get(srv.URL + "/listings?limit=10")
	require.NoError(t, err)
	defer res.Body.Close()
	var rows []store.Listing
	require.NoError(t, json.NewDecoder(res.Body).Decode(&rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "https://cafe.naver.com/bikecargogo/1", rows[0].ExternalLink)

	bad, err := http.Get(srv.URL + "/listings?limit=x")
	require.NoError(t, err)
	bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestListingsWithoutLister(t *testing.T) {
	srv, _, _ := newTestServer(t, runnerFunc(func(context.Context) types.Report { return types.NewReport() }), nil)
	res, err := http.Get(srv.URL + "/listings")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotImplemented, res.StatusCode)
}

func TestConfigIsRedacted(t *testing.T) {
	srv, _, _ := newTestServer(t, runnerFunc(func(context.Context) types.Report { return types.NewReport() }), nil)
	res, err := http.Get(srv.URL + "/config")
	require.NoError(t, err)
	defer res.Body.Close()

	var cfg config.Config
	require.NoError(t, json.NewDecoder(res.Body).Decode(&cfg))
	assert.Equal(t, "***", cfg.Store.Key)
}

func TestScrapeRunCancelledWithServer(t *testing.T) {
	base, stop := context.WithCancel(context.Background())
	defer stop()

	started := make(chan struct{})
	p := &poll.Poller{Runner: runnerFunc(func(ctx context.Context) types.Report {
		close(started)
		<-ctx.Done()
		return types.NewReport()
	})}
	srv := httptest.NewServer(Handler(Deps{Hub: events.NewHub(), Poller: p, BaseCtx: base}))
	defer srv.Close()

	res, err := http.Post(srv.URL+"/scrape/run", "application/json", nil)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusAccepted, res.StatusCode)
	<-started

	stop()
	done := make(chan struct{})
	go func() {
		p.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("background run ignored server shutdown")
	}
}

func TestScrapeRunWait(t *testing.T) {
	srv, _, _ := newTestServer(t, runnerFunc(func(context.Context) types.Report {
		rep := types.NewReport()
		rep.For("junggeomdan").Inserted = 3
		return rep
	}), nil)

	res, err := http.Post(srv.URL+"/scrape/run?wait=1", "application/json", nil)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var body struct {
		OK     bool         `json:"ok"`
		Report types.Report `json:"report"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.True(t, body.OK)
	assert.Equal(t, 3, body.Report.Inserted())
}

func TestConfigValidate(t *testing.T) {
	srv, _, _ := newTestServer(t, runnerFunc(func(context.Context) types.Report { return types.NewReport() }), nil)
	res, err := http.Get(srv.URL + "/config/validate")
	require.NoError(t, err)
	defer res.Body.Close()

	var body struct {
		OK     bool     `json:"ok"`
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	// default config has no store.url
	assert.False(t, body.OK)
	assert.Contains(t, body.Errors, "store.url is required (SUPABASE_URL or NEXT_PUBLIC_SUPABASE_URL)")
}

func TestEventsStream(t *testing.T) {
	srv, _, hub := newTestServer(t, runnerFunc(func(context.Context) types.Report { return types.NewReport() }), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))

	sc := bufio.NewScanner(res.Body)
	readData := func() string {
		for sc.Scan() {
			if line := sc.Text(); strings.HasPrefix(line, "data: ") {
				return strings.TrimPrefix(line, "data: ")
			}
		}
		return ""
	}
	assert.Contains(t, readData(), `"type":"ping"`)

	hub.Publish(events.Encode("", events.TypeListingCreated, map[string]string{"title": "[중검단] PCX"}))
	assert.Contains(t, readData(), `"type":"listing_created"`)
}

func TestShutdownNeedsToken(t *testing.T) {
	stopped := make(chan struct{})
	var cfgVal atomic.Value
	cfgVal.Store(config.Default())
	srv := httptest.NewServer(Handler(Deps{
		Hub:           events.NewHub(),
		Poller:        &poll.Poller{Runner: runnerFunc(func(context.Context) types.Report { return types.NewReport() })},
		CfgVal:        &cfgVal,
		ShutdownToken: "tok",
		Stop:          func() { close(stopped) },
	}))
	defer srv.Close()

	res, err := http.Post(srv.URL+"/shutdown", "application/json", nil)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/shutdown", nil)
	req.Header.Set("X-Shutdown-Token", "tok")
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("stop was not called")
	}
}
