package literature

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2401.00001v1</id>
    <title>Diffusion Models for
  Molecular Design</title>
    <summary>We apply diffusion and deep learning to molecule generation.</summary>
    <published>2024-01-02T00:00:00Z</published>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2312.00002v2</id>
    <title>Bayesian Optimization at Scale</title>
    <summary>A bayesian treatment of large-scale optimization.</summary>
    <published>2023-12-15T00:00:00Z</published>
  </entry>
</feed>`

func TestParseFeed(t *testing.T) {
	summary, err := parseFeed([]byte(sampleFeed))
	require.NoError(t, err)

	assert.Equal(t, 2, summary.PapersFound)
	require.Len(t, summary.Papers, 2)
	assert.Equal(t, "Diffusion Models for Molecular Design", summary.Papers[0].Title, "line breaks collapsed")
	assert.Equal(t, 2024, summary.Papers[0].Year)
	assert.Equal(t, "arxiv", summary.Papers[0].Source)
	assert.Equal(t, "http://arxiv.org/abs/2401.00001v1", summary.Papers[0].URL)

	assert.Equal(t, []string{"Diffusion Models for Molecular Design", "Bayesian Optimization at Scale"}, summary.KeyTopics)
	assert.Contains(t, summary.RecentMethods, "Deep Learning")
	assert.Contains(t, summary.RecentMethods, "Bayesian")
}

func TestParseFeedMalformed(t *testing.T) {
	_, err := parseFeed([]byte("this is not xml"))
	require.Error(t, err)
}

func TestSearchQueriesAndCaches(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "all:quantum sensing", r.URL.Query().Get("search_query"))
		assert.Equal(t, "5", r.URL.Query().Get("max_results"))
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	c := NewClient(func(o *Options) {
		o.BaseURL = srv.URL
		o.CacheTTL = time.Minute
	})

	first, err := c.Search(context.Background(), "quantum sensing", 5)
	require.NoError(t, err)
	assert.Equal(t, 2, first.PapersFound)

	second, err := c.Search(context.Background(), "quantum sensing", 5)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), hits.Load(), "second call served from cache")
}

func TestSearchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "try later", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(func(o *Options) {
		o.BaseURL = srv.URL
		o.CacheTTL = 0
	})

	_, err := c.Search(context.Background(), "anything", 3)
	require.Error(t, err)
}
