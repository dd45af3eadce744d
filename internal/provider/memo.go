package provider

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/seenimoa/stockdash/internal/infra"
	"github.com/seenimoa/stockdash/pkg/models"
)

// Memoized wraps a Provider so that each (dataset, symbol[, period]) is
// fetched at most once per process. Entries never expire on their own;
// Flush and Invalidate are the only ways to force a refetch. Failed
// fetches are not remembered.
type Memoized struct {
	next   Provider
	memo   *infra.Memo
	log    *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64

	mu      sync.Mutex
	onFlush []func()
}

// Stats reports memo effectiveness.
type Stats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// NewMemoized decorates next with process-lifetime memoization.
func NewMemoized(next Provider, log *slog.Logger) *Memoized {
	if log == nil {
		log = slog.Default()
	}
	return &Memoized{next: next, memo: infra.NewMemo(), log: log}
}

// SetFetchTimeout bounds each upstream fetch. A fetch is shared by every
// caller asking for the same key, so it does not end when the caller that
// started it goes away.
func (m *Memoized) SetFetchTimeout(d time.Duration) { m.memo.SetTimeout(d) }

// Name returns the wrapped provider's name.
func (m *Memoized) Name() string { return m.next.Name() }

// Info returns the memoized company info for symbol.
func (m *Memoized) Info(ctx context.Context, symbol string) (*models.CompanyInfo, error) {
	v, err := m.do(ctx, memoKey(symbol, DatasetInfo, ""), func(ctx context.Context) (any, error) {
		return m.next.Info(ctx, symbol)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.CompanyInfo), nil
}

// Statements returns the memoized statement rows for symbol and period.
func (m *Memoized) Statements(ctx context.Context, symbol string, period models.Period) ([]models.StatementRow, error) {
	v, err := m.do(ctx, memoKey(symbol, DatasetStatements, string(period)), func(ctx context.Context) (any, error) {
		return m.next.Statements(ctx, symbol, period)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.StatementRow), nil
}

// PriceHistory returns the memoized price bars for symbol.
func (m *Memoized) PriceHistory(ctx context.Context, symbol string) ([]models.PriceBar, error) {
	v, err := m.do(ctx, memoKey(symbol, DatasetHistory, ""), func(ctx context.Context) (any, error) {
		return m.next.PriceHistory(ctx, symbol)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.PriceBar), nil
}

// Invalidate forgets every dataset remembered for symbol. Malformed
// symbols match nothing.
func (m *Memoized) Invalidate(symbol string) int {
	if ValidateSymbol(symbol) != nil {
		return 0
	}
	n := m.memo.InvalidatePrefix(symbol + "|")
	m.log.Debug("memo invalidated", "symbol", symbol, "entries", n)
	return n
}

// Flush forgets everything.
func (m *Memoized) Flush() {
	m.memo.Flush()
	m.log.Info("memo flushed")

	m.mu.Lock()
	hooks := append([]func(){}, m.onFlush...)
	m.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

// OnFlush registers fn to run after every full flush, scheduled or not.
func (m *Memoized) OnFlush(fn func()) {
	m.mu.Lock()
	m.onFlush = append(m.onFlush, fn)
	m.mu.Unlock()
}

// Stats returns current entry and hit counts.
func (m *Memoized) Stats() Stats {
	return Stats{Entries: m.memo.Len(), Hits: m.hits.Load(), Misses: m.misses.Load()}
}

// ScheduleFlush starts a cron job that flushes the memo on the given
// schedule (standard five-field syntax or descriptors like "@daily").
// An empty spec disables the schedule and returns a nil cron.
func (m *Memoized) ScheduleFlush(spec string) (*cron.Cron, error) {
	if spec == "" {
		return nil, nil
	}
	c := cron.New()
	if _, err := c.AddFunc(spec, m.Flush); err != nil {
		return nil, fmt.Errorf("invalid flush schedule %q: %w", spec, err)
	}
	c.Start()
	m.log.Info("memo flush scheduled", "schedule", spec)
	return c, nil
}

func (m *Memoized) do(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	v, hit, err := m.memo.Do(ctx, key, fn)
	if err != nil {
		if ctx.Err() == nil {
			m.log.Warn("fetch failed", "key", key, "error", err)
		}
		return nil, err
	}
	if hit {
		m.hits.Add(1)
	} else {
		m.misses.Add(1)
		m.log.Debug("fetched", "key", key)
	}
	return v, nil
}

func memoKey(symbol string, ds Dataset, variant string) string {
	if variant == "" {
		return symbol + "|" + string(ds)
	}
	return symbol + "|" + string(ds) + "|" + variant
}
