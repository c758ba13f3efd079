package util

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostLimiterPerHost(t *testing.T) {
	hl := NewHostLimiter(0.5, 1)
	ctx := context.Background()

	require.NoError(t, hl.WaitURL(ctx, "https://rss.blog.naver.com/usedcheck.xml"))
	require.NoError(t, hl.WaitURL(ctx, "https://m.cafe.naver.com/ca-fe/web/cafes/1/articles/2"))

	// same host, bucket empty: a short deadline cannot be met
	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	assert.Error(t, hl.WaitURL(short, "https://RSS.blog.naver.com/other"))
}

func TestHostLimiterUnlimited(t *testing.T) {
	hl := NewHostLimiter(0, 0)
	for i := 0; i < 100; i++ {
		require.NoError(t, hl.WaitURL(context.Background(), "http://joongum.co.kr/"))
	}
	assert.Equal(t, "_", hostKey("::not a url"))
}
