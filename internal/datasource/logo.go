package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/stockdash/internal/infra"
)

// ErrNoLogo is returned when a website advertises no usable icon.
var ErrNoLogo = errors.New("no logo found")

// logoSelectors are tried in order; the first match with a non-empty
// attribute wins.
var logoSelectors = []struct {
	selector string
	attr     string
}{
	{`link[rel="apple-touch-icon"]`, "href"},
	{`link[rel="apple-touch-icon-precomposed"]`, "href"},
	{`meta[property="og:image"]`, "content"},
	{`link[rel="icon"]`, "href"},
	{`link[rel="shortcut icon"]`, "href"},
}

// Logos discovers a company logo from its website's HTML head.
type Logos struct {
	getter *infra.Getter
	cache  *infra.Cache
}

// NewLogos creates a logo finder. Results, including misses, are cached
// for ttl.
func NewLogos(getter *infra.Getter, ttl time.Duration) *Logos {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Logos{getter: getter, cache: infra.NewCache(ttl)}
}

// Logo returns an absolute logo URL for website.
func (l *Logos) Logo(ctx context.Context, website string) (string, error) {
	base, err := url.Parse(website)
	if err != nil || base.Host == "" {
		return "", fmt.Errorf("invalid website %q", website)
	}
	if base.Scheme == "" {
		base.Scheme = "https"
	}
	key := base.String()
	if cached, ok := l.cache.Get(key); ok {
		if cached.(string) == "" {
			return "", ErrNoLogo
		}
		return cached.(string), nil
	}

	body, _, err := l.getter.Get(ctx, key, map[string]string{"Accept": "text/html"})
	if err != nil {
		return "", err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}

	logo := findLogo(doc, base)
	l.cache.Set(key, logo)
	if logo == "" {
		return "", ErrNoLogo
	}
	return logo, nil
}

// findLogo returns the first advertised icon resolved against base.
func findLogo(doc *goquery.Document, base *url.URL) string {
	for _, s := range logoSelectors {
		var found string
		doc.Find(s.selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			v, ok := sel.Attr(s.attr)
			v = strings.TrimSpace(v)
			if !ok || v == "" {
				return true
			}
			ref, err := url.Parse(v)
			if err != nil {
				return true
			}
			found = base.ResolveReference(ref).String()
			return false
		})
		if found != "" {
			return found
		}
	}
	return ""
}
