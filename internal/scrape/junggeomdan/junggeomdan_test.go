package junggeomdan

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdeeno/motoieum/internal/domain"
	"github.com/mdeeno/motoieum/internal/scrape/fetch"
)

func TestCanonicalLink(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://blog.naver.com/usedcheck/223456?fromRss=true&trackingCode=rss", "https://blog.naver.com/usedcheck/223456"},
		{"https://Blog.Naver.com/usedcheck/223456", "https://blog.naver.com/usedcheck/223456"},
		{"https://blog.naver.com/usedcheck/223456#comment", "https://blog.naver.com/usedcheck/223456"},
		{"", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, CanonicalLink(tc.in), tc.in)
		// stable under repetition
		assert.Equal(t, tc.want, CanonicalLink(CanonicalLink(tc.in)))
	}
}

func TestDetailURL(t *testing.T) {
	assert.Equal(t, "https://m.blog.naver.com/usedcheck/1", DetailURL("https://blog.naver.com/usedcheck/1"))
	assert.Equal(t, "https://m.blog.naver.com/usedcheck/1", DetailURL("https://m.blog.naver.com/usedcheck/1"))
}

func rssWith(base string, n int) string {
	items := ""
	for i := 1; i <= n; i++ {
		items += fmt.Sprintf(`<item><title><![CDATA[혼다 PCX %d]]></title><link>%s/post/%d?fromRss=true&amp;trackingCode=rss</link></item>`, i, base, i)
	}
	return `<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>중검단</title>` + items + `</channel></rss>`
}

func TestCandidatesAndDetail(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/usedcheck.xml":
			w.Header().Set("Content-Type", "application/rss+xml")
			_, _ = w.Write([]byte(rssWith(srv.URL, 7)))
		case "/post/1":
			_, _ = w.Write([]byte(`<html><body><div class="se-main-container"><img src="https://img/pcx.jpg">
<p>차량가격 : 3,500,000원</p><p>연식 : 2021년</p><p>주행거리 : 5,000km</p></div></body></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	s := New(Config{FeedURL: srv.URL + "/usedcheck.xml"}, fetch.New(fetch.Options{ReqPerSec: 1000, Burst: 100}), nil)

	cands, err := s.Candidates(context.Background())
	require.NoError(t, err)
	require.Len(t, cands, 5, "window truncates in feed order")
	assert.Equal(t, "혼다 PCX 1", cands[0].Title)
	assert.Equal(t, srv.URL+"/post/1", cands[0].Link)
	assert.Equal(t, srv.URL+"/post/5", cands[4].Link)

	raw, err := s.Detail(context.Background(), cands[0])
	require.NoError(t, err)
	assert.Equal(t, "3,500,000원", raw.Price)
	assert.Equal(t, "2021년", raw.Year)
	assert.Equal(t, "5,000km", raw.Mileage)
	assert.Equal(t, "https://img/pcx.jpg", raw.ImageURL)

	_, err = s.Detail(context.Background(), cands[1])
	assert.Error(t, err)
}

func TestDetailSplitLabelRuns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div class="se-main-container">
<p><span><b>연식</b></span><span> 2019년</span></p>
<p><span>적산거리</span><span>12,000km</span></p>
<p>차량가격 : 250만원</p></div></body></html>`))
	}))
	defer srv.Close()

	s := New(Config{FeedURL: srv.URL}, fetch.New(fetch.Options{ReqPerSec: 1000, Burst: 100}), nil)
	raw, err := s.Detail(context.Background(), domain.Candidate{DetailURL: srv.URL + "/post/9"})
	require.NoError(t, err)
	assert.Equal(t, "250만원", raw.Price)
	assert.Equal(t, "2019년", raw.Year)
	assert.Equal(t, "12,000km", raw.Mileage)
}

func TestCandidatesFeedDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := New(Config{FeedURL: srv.URL}, fetch.New(fetch.Options{ReqPerSec: 1000, Burst: 100}), nil)
	_, err := s.Candidates(context.Background())
	assert.Error(t, err)
}
