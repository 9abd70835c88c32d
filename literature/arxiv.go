// Package literature provides the external literature-search collaborator:
// an arXiv Atom API client with result caching. The pipeline consumes it
// through the narrow Searcher interface defined at the consuming side; this
// package only knows how to fetch and summarize papers.
package literature

import (
	"context"
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	gocache "github.com/patrickmn/go-cache"

	"github.com/researchpilot/researchpilot/core"
	"github.com/researchpilot/researchpilot/internal/util"
)

const defaultBaseURL = "http://export.arxiv.org/api/query"

// methodKeywords are scanned across abstracts to surface recent methods.
var methodKeywords = []string{
	"reinforcement learning", "deep learning", "neural network",
	"machine learning", "transformer", "attention", "optimization",
	"bayesian", "graph neural", "generative", "diffusion",
}

var yearRe = regexp.MustCompile(`\d{4}`)

// atom feed subset; only the fields the summary needs.
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string `xml:"id"`
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Published string `xml:"published"`
}

// Options configures the arXiv client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// CacheTTL bounds how long a query's summary is reused. Zero disables
	// caching.
	CacheTTL time.Duration
}

// Client queries the arXiv Atom API. Identical queries within the cache TTL
// are served from memory to spare the rate-limited endpoint.
type Client struct {
	http  *resty.Client
	cache *gocache.Cache
	opts  Options
}

// NewClient creates an arXiv client.
func NewClient(optFns ...func(o *Options)) *Client {
	opts := Options{
		BaseURL:  defaultBaseURL,
		Timeout:  15 * time.Second,
		CacheTTL: 10 * time.Minute,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var cache *gocache.Cache
	if opts.CacheTTL > 0 {
		cache = gocache.New(opts.CacheTTL, 2*opts.CacheTTL)
	}

	return &Client{
		http:  resty.New().SetTimeout(opts.Timeout),
		cache: cache,
		opts:  opts,
	}
}

// Search queries arXiv for papers matching query, bounded by maxResults,
// sorted by relevance. Results are summarized (titles as key topics, method
// keywords across abstracts) the way downstream prompts expect.
func (c *Client) Search(ctx context.Context, query string, maxResults int) (core.LiteratureSummary, error) {
	cacheKey := fmt.Sprintf("%s|%d", query, maxResults)
	if c.cache != nil {
		if hit, ok := c.cache.Get(cacheKey); ok {
			return hit.(core.LiteratureSummary), nil
		}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"search_query": "all:" + query,
			"start":        "0",
			"max_results":  strconv.Itoa(maxResults),
			"sortBy":       "relevance",
			"sortOrder":    "descending",
		}).
		Get(c.opts.BaseURL)
	if err != nil {
		return core.LiteratureSummary{}, fmt.Errorf("arxiv request: %w", err)
	}
	if resp.IsError() {
		return core.LiteratureSummary{}, fmt.Errorf("arxiv request: status %s", resp.Status())
	}

	summary, err := parseFeed(resp.Body())
	if err != nil {
		return core.LiteratureSummary{}, err
	}

	if c.cache != nil {
		c.cache.Set(cacheKey, summary, gocache.DefaultExpiration)
	}
	return summary, nil
}

func parseFeed(body []byte) (core.LiteratureSummary, error) {
	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return core.LiteratureSummary{}, fmt.Errorf("decode arxiv feed: %w", err)
	}

	papers := make([]core.Paper, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		title := util.CleanText(entry.Title)
		if title == "" {
			continue
		}
		paper := core.Paper{
			Title:    title,
			Abstract: util.CleanText(entry.Summary),
			Source:   "arxiv",
			URL:      strings.TrimSpace(entry.ID),
		}
		if m := yearRe.FindString(entry.Published); m != "" {
			paper.Year, _ = strconv.Atoi(m)
		}
		papers = append(papers, paper)
	}

	return core.LiteratureSummary{
		PapersFound:   len(papers),
		KeyTopics:     keyTopics(papers, 5),
		RecentMethods: recentMethods(papers, 3),
		Papers:        papers,
	}, nil
}

func keyTopics(papers []core.Paper, n int) []string {
	topics := make([]string, 0, n)
	for _, p := range papers {
		if len(topics) == n {
			break
		}
		topics = append(topics, p.Title)
	}
	return topics
}

func recentMethods(papers []core.Paper, n int) []string {
	var abstracts strings.Builder
	for _, p := range papers {
		abstracts.WriteString(strings.ToLower(p.Abstract))
		abstracts.WriteByte(' ')
	}
	text := abstracts.String()

	methods := make([]string, 0, n)
	for _, kw := range methodKeywords {
		if len(methods) == n {
			break
		}
		if strings.Contains(text, kw) {
			methods = append(methods, titleCase(kw))
		}
	}
	if len(methods) == 0 && len(papers) > 0 {
		methods = append(methods, "Novel approach")
	}
	return methods
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
