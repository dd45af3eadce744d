package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/seenimoa/stockdash/internal/infra"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Yahoo! Finance: AAPL News</title>
  <item>
    <title>Older story</title>
    <link>https://example.com/older</link>
    <description>&lt;p&gt;Old &lt;b&gt;news&lt;/b&gt;&lt;/p&gt;</description>
    <pubDate>Mon, 01 Jul 2024 10:00:00 +0000</pubDate>
  </item>
  <item>
    <title>Newest story</title>
    <link>https://example.com/newest</link>
    <description>Fresh</description>
    <pubDate>Wed, 03 Jul 2024 10:00:00 +0000</pubDate>
  </item>
  <item>
    <title>Middle story</title>
    <link>https://example.com/middle</link>
    <pubDate>Tue, 02 Jul 2024 10:00:00 +0000</pubDate>
  </item>
  <item>
    <title> </title>
    <link>https://example.com/untitled</link>
  </item>
</channel>
</rss>`

func testGetter() *infra.Getter {
	return infra.NewGetter(5*time.Second, 0, "stockdash-test")
}

func TestHeadlines(t *testing.T) {
	var hits atomic.Int32
	var gotSymbol atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		gotSymbol.Store(r.URL.Query().Get("s"))
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, sampleFeed)
	}))
	defer srv.Close()

	n := NewNews(srv.URL+"/rss?s=%s", testGetter(), time.Minute)
	articles, err := n.Headlines(context.Background(), "AAPL", 2)
	if err != nil {
		t.Fatalf("Headlines: %v", err)
	}
	if got, _ := gotSymbol.Load().(string); got != "AAPL" {
		t.Errorf("symbol: got %q, want %q", got, "AAPL")
	}
	if len(articles) != 2 {
		t.Fatalf("articles: got %d, want 2", len(articles))
	}
	if articles[0].Title != "Newest story" || articles[1].Title != "Middle story" {
		t.Errorf("order: got %q, %q", articles[0].Title, articles[1].Title)
	}
	if articles[0].Source != "Yahoo! Finance: AAPL News" {
		t.Errorf("source: got %q", articles[0].Source)
	}

	if _, err := n.Headlines(context.Background(), "AAPL", 2); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 1 {
		t.Errorf("feed fetched %d times, want 1", hits.Load())
	}
}

func TestHeadlinesCacheExpiryAndFlush(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, sampleFeed)
	}))
	defer srv.Close()

	n := NewNews(srv.URL+"/?s=%s", testGetter(), 30*time.Millisecond)
	ctx := context.Background()
	fetch := func() {
		t.Helper()
		if _, err := n.Headlines(ctx, "AAPL", 5); err != nil {
			t.Fatalf("Headlines: %v", err)
		}
	}

	fetch()
	fetch()
	if got := hits.Load(); got != 1 {
		t.Fatalf("within ttl: feed fetched %d times, want 1", got)
	}
	time.Sleep(50 * time.Millisecond)
	fetch()
	if got := hits.Load(); got != 2 {
		t.Errorf("after ttl: feed fetched %d times, want 2", got)
	}
	n.Flush()
	fetch()
	if got := hits.Load(); got != 3 {
		t.Errorf("after flush: feed fetched %d times, want 3", got)
	}
}

func TestHeadlinesStripsHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleFeed)
	}))
	defer srv.Close()

	articles, err := NewNews(srv.URL+"/?s=%s", testGetter(), time.Minute).Headlines(context.Background(), "AAPL", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(articles) != 3 {
		t.Fatalf("untitled items should be skipped: got %d", len(articles))
	}
	last := articles[2]
	if last.Summary != "Old news" {
		t.Errorf("summary: got %q, want %q", last.Summary, "Old news")
	}
}

func TestHeadlinesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewNews(srv.URL+"/?s=%s", testGetter(), time.Minute).Headlines(context.Background(), "AAPL", 5)
	var httpErr *infra.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusBadGateway {
		t.Errorf("expected HTTPError 502, got %v", err)
	}
}

func TestLogo(t *testing.T) {
	tests := []struct {
		name string
		head string
		want string
	}{
		{
			name: "apple touch icon wins",
			head: `<link rel="icon" href="/favicon.ico"><link rel="apple-touch-icon" href="/touch.png"><meta property="og:image" content="https://cdn.example.com/og.png">`,
			want: "/touch.png",
		},
		{
			name: "og image",
			head: `<link rel="icon" href="/favicon.ico"><meta property="og:image" content="https://cdn.example.com/og.png">`,
			want: "https://cdn.example.com/og.png",
		},
		{
			name: "icon fallback",
			head: `<link rel="icon" href="img/icon.svg">`,
			want: "/img/icon.svg",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintf(w, "<html><head>%s</head><body></body></html>", tt.head)
			}))
			defer srv.Close()

			got, err := NewLogos(testGetter(), time.Minute).Logo(context.Background(), srv.URL)
			if err != nil {
				t.Fatalf("Logo: %v", err)
			}
			want := tt.want
			if want[0] == '/' {
				want = srv.URL + want
			}
			if got != want {
				t.Errorf("got %q, want %q", got, want)
			}
		})
	}
}

func TestLogoMissingIsCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, "<html><head><title>x</title></head></html>")
	}))
	defer srv.Close()

	l := NewLogos(testGetter(), time.Minute)
	for i := 0; i < 2; i++ {
		if _, err := l.Logo(context.Background(), srv.URL); !errors.Is(err, ErrNoLogo) {
			t.Fatalf("expected ErrNoLogo, got %v", err)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("site fetched %d times, want 1", hits.Load())
	}
}

func TestLogoInvalidWebsite(t *testing.T) {
	if _, err := NewLogos(testGetter(), time.Minute).Logo(context.Background(), "not a url"); err == nil {
		t.Error("expected error for invalid website")
	}
}
