package main

import (
	"log/slog"
	"time"

	"github.com/seenimoa/stockdash/internal/config"
	"github.com/seenimoa/stockdash/internal/dashboard"
	"github.com/seenimoa/stockdash/internal/datasource"
	"github.com/seenimoa/stockdash/internal/infra"
	"github.com/seenimoa/stockdash/internal/provider"
	"github.com/seenimoa/stockdash/internal/providers/yfinance"
	"github.com/seenimoa/stockdash/pkg/models"
)

const (
	logoTTL = 24 * time.Hour
	newsTTL = 10 * time.Minute
)

// deps is the render pipeline built from config.
type deps struct {
	memo     *provider.Memoized
	renderer *dashboard.Renderer
}

// wire builds Yahoo Finance behind the process memo, plus logo discovery
// and headlines when enabled.
func wire(cfg *config.Config, log *slog.Logger) deps {
	yf := yfinance.New(yfinance.Options{
		BaseURL:   cfg.Provider.BaseURL,
		Timeout:   cfg.Provider.Timeout(),
		RateLimit: cfg.Provider.RateLimit,
		UserAgent: cfg.Provider.UserAgent,
		Range:     cfg.Provider.Range,
		Interval:  cfg.Provider.Interval,
		Logger:    log,
	})
	memo := provider.NewMemoized(yf, log)
	// Room for a rate-limit wait plus the request itself.
	memo.SetFetchTimeout(2 * cfg.Provider.Timeout())

	opts := dashboard.Options{
		SummaryLimit: cfg.Dashboard.SummaryLimit,
		MAWindow:     cfg.Dashboard.MAWindow,
		Logger:       log,
	}
	if cfg.Logo.Discover {
		getter := infra.NewGetter(time.Duration(cfg.Logo.TimeoutSec)*time.Second, 0, cfg.Provider.UserAgent)
		opts.Logos = datasource.NewLogos(getter, logoTTL)
	}
	if cfg.News.Enabled {
		getter := infra.NewGetter(cfg.Provider.Timeout(), cfg.Provider.RateLimit, cfg.Provider.UserAgent)
		news := datasource.NewNews(cfg.News.FeedURL, getter, newsTTL)
		memo.OnFlush(news.Flush)
		opts.News = news
		opts.NewsLimit = cfg.News.Limit
	}

	return deps{memo: memo, renderer: dashboard.NewRenderer(memo, opts)}
}

// defaultPeriod returns the configured starting period, Quarterly when
// unset or invalid.
func defaultPeriod(cfg *config.Config) models.Period {
	p, err := models.ParsePeriod(cfg.Dashboard.DefaultPeriod)
	if err != nil {
		return models.PeriodQuarterly
	}
	return p
}
