package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentSendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`<html><body><p class="x">안녕</p></body></html>`))
	}))
	defer srv.Close()

	c := New(Options{UserAgent: "Mozilla/5.0", ReqPerSec: 100, Burst: 10})
	doc, err := c.Document(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "안녕", doc.Find("p.x").Text())
	assert.Equal(t, "Mozilla/5.0", gotUA)
}

func TestNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(Options{ReqPerSec: 100, Burst: 10})
	_, err := c.Bytes(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := New(Options{Timeout: 50 * time.Millisecond, ReqPerSec: 100, Burst: 10})
	start := time.Now()
	_, err := c.Bytes(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}
