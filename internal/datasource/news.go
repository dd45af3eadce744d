// Package datasource holds the auxiliary web sources of the dashboard:
// per-symbol headline feeds and company logo discovery.
package datasource

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/stockdash/internal/infra"
	"github.com/seenimoa/stockdash/pkg/models"
)

// DefaultFeedURL is the Yahoo Finance headline feed; %s is the symbol.
const DefaultFeedURL = "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US"

// News fetches recent headlines for a symbol from an RSS feed.
type News struct {
	feedURL string
	getter  *infra.Getter
	cache   *infra.Cache
	parser  *gofeed.Parser
}

// NewNews creates a headline source. feedURL must contain one %s for
// the symbol; empty means DefaultFeedURL. Results are cached for ttl.
func NewNews(feedURL string, getter *infra.Getter, ttl time.Duration) *News {
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &News{
		feedURL: feedURL,
		getter:  getter,
		cache:   infra.NewCache(ttl),
		parser:  gofeed.NewParser(),
	}
}

// Flush drops every cached feed.
func (n *News) Flush() { n.cache.Flush() }

// Headlines returns up to limit articles about symbol, newest first.
func (n *News) Headlines(ctx context.Context, symbol string, limit int) ([]models.NewsArticle, error) {
	cacheKey := fmt.Sprintf("news:%s:%d", symbol, limit)
	if cached, ok := n.cache.Get(cacheKey); ok {
		return cached.([]models.NewsArticle), nil
	}

	articles, err := n.fetchRSS(ctx, fmt.Sprintf(n.feedURL, url.QueryEscape(symbol)))
	if err != nil {
		return nil, err
	}

	sortArticlesByDate(articles)
	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}

	n.cache.Set(cacheKey, articles)
	return articles, nil
}

// --- Internal helpers ---

// fetchRSS parses an RSS feed and returns articles.
func (n *News) fetchRSS(ctx context.Context, feedURL string) ([]models.NewsArticle, error) {
	body, _, err := n.getter.Get(ctx, feedURL, map[string]string{"Accept": "application/rss+xml, application/xml, text/xml"})
	if err != nil {
		return nil, err
	}
	defer body.Close()

	feed, err := n.parser.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse RSS: %w", err)
	}

	source := feed.Title
	articles := make([]models.NewsArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		a := models.NewsArticle{
			Title:   strings.TrimSpace(item.Title),
			URL:     item.Link,
			Source:  source,
			Summary: cleanHTML(item.Description),
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		}
		if a.Title == "" {
			continue
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

// sortArticlesByDate sorts articles by published date (newest first).
func sortArticlesByDate(articles []models.NewsArticle) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
}
