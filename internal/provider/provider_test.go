package provider_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/seenimoa/stockdash/internal/provider"
	"github.com/seenimoa/stockdash/internal/provider/providertest"
	"github.com/seenimoa/stockdash/pkg/models"
)

func TestValidateSymbol(t *testing.T) {
	err := provider.ValidateSymbol("")
	var missing *provider.ErrMissingParam
	if !errors.As(err, &missing) || missing.Param != "symbol" {
		t.Errorf("ValidateSymbol(\"\"): got %v", err)
	}
	for _, ok := range []string{"AAPL", "BRK-B", "0700.HK", "^GSPC", "EURUSD=X"} {
		if err := provider.ValidateSymbol(ok); err != nil {
			t.Errorf("ValidateSymbol(%s): %v", ok, err)
		}
	}
	for _, bad := range []string{"A|X", "AAPL/INFO", "MS FT", "<B>"} {
		if err := provider.ValidateSymbol(bad); !errors.Is(err, provider.ErrInvalidSymbol) {
			t.Errorf("ValidateSymbol(%q): got %v, want ErrInvalidSymbol", bad, err)
		}
	}
}

func TestMemoizedRepeatedRenderNoRefetch(t *testing.T) {
	fake := providertest.Seeded("AAPL")
	m := provider.NewMemoized(fake, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := m.Info(ctx, "AAPL"); err != nil {
			t.Fatalf("Info: %v", err)
		}
		if _, err := m.PriceHistory(ctx, "AAPL"); err != nil {
			t.Fatalf("PriceHistory: %v", err)
		}
		if _, err := m.Statements(ctx, "AAPL", models.PeriodQuarterly); err != nil {
			t.Fatalf("Statements: %v", err)
		}
	}

	for _, ds := range []provider.Dataset{provider.DatasetInfo, provider.DatasetHistory, provider.DatasetStatements} {
		if got := fake.Calls(ds); got != 1 {
			t.Errorf("%s calls: got %d, want 1", ds, got)
		}
	}
	st := m.Stats()
	if st.Misses != 3 || st.Hits != 6 || st.Entries != 3 {
		t.Errorf("Stats: got %+v, want 3 misses, 6 hits, 3 entries", st)
	}
}

func TestMemoizedPeriodsCachedIndependently(t *testing.T) {
	fake := providertest.Seeded("AAPL")
	m := provider.NewMemoized(fake, nil)
	ctx := context.Background()

	q, _ := m.Statements(ctx, "AAPL", models.PeriodQuarterly)
	a, _ := m.Statements(ctx, "AAPL", models.PeriodAnnual)
	if fake.Calls(provider.DatasetStatements) != 2 {
		t.Errorf("statements calls: got %d, want 2", fake.Calls(provider.DatasetStatements))
	}
	if q[0].Label == a[0].Label {
		t.Error("quarterly and annual should be distinct series")
	}
}

func TestMemoizedNewSymbolFetches(t *testing.T) {
	fake := providertest.Seeded("AAPL")
	fake.InfoData["MSFT"] = providertest.SampleInfo("MSFT")
	m := provider.NewMemoized(fake, nil)
	ctx := context.Background()

	m.Info(ctx, "AAPL")
	m.Info(ctx, "MSFT")
	m.Info(ctx, "AAPL")
	if got := fake.Calls(provider.DatasetInfo); got != 2 {
		t.Errorf("info calls: got %d, want 2", got)
	}
}

// blockingInfo holds Info calls until release is closed or the call's
// context ends.
type blockingInfo struct {
	*providertest.Fake
	started chan struct{}
	release chan struct{}
}

func (b *blockingInfo) Info(ctx context.Context, symbol string) (*models.CompanyInfo, error) {
	b.started <- struct{}{}
	select {
	case <-b.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return b.Fake.Info(ctx, symbol)
}

func TestMemoizedCancelledCallerDoesNotFailSharedFetch(t *testing.T) {
	slow := &blockingInfo{
		Fake:    providertest.Seeded("AAPL"),
		started: make(chan struct{}, 4),
		release: make(chan struct{}),
	}
	m := provider.NewMemoized(slow, nil)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := m.Info(ctxA, "AAPL")
		errA <- err
	}()
	<-slow.started

	type result struct {
		info *models.CompanyInfo
		err  error
	}
	resB := make(chan result, 1)
	go func() {
		info, err := m.Info(context.Background(), "AAPL")
		resB <- result{info, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	if err := <-errA; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller: got %v, want context.Canceled", err)
	}
	close(slow.release)

	b := <-resB
	if b.err != nil {
		t.Fatalf("second caller: %v", b.err)
	}
	if b.info == nil || b.info.Symbol != "AAPL" {
		t.Errorf("second caller info: got %+v", b.info)
	}
	if got := len(slow.started); got != 0 {
		t.Errorf("upstream fetches: got %d extra, want 0", got)
	}
	if st := m.Stats(); st.Entries != 1 {
		t.Errorf("Stats.Entries: got %d, want 1", st.Entries)
	}
}

func TestMemoizedErrorsRetried(t *testing.T) {
	fake := providertest.Seeded("AAPL")
	fake.HistoryErr = errors.New("upstream down")
	m := provider.NewMemoized(fake, nil)
	ctx := context.Background()

	if _, err := m.PriceHistory(ctx, "AAPL"); err == nil {
		t.Fatal("expected error")
	}
	fake.HistoryErr = nil
	bars, err := m.PriceHistory(ctx, "AAPL")
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(bars) != 52 {
		t.Errorf("bars: got %d, want 52", len(bars))
	}
	if got := fake.Calls(provider.DatasetHistory); got != 2 {
		t.Errorf("history calls: got %d, want 2", got)
	}
}

func TestMemoizedInvalidateAndFlush(t *testing.T) {
	fake := providertest.Seeded("AAPL")
	m := provider.NewMemoized(fake, nil)
	ctx := context.Background()

	m.Info(ctx, "AAPL")
	m.PriceHistory(ctx, "AAPL")
	if n := m.Invalidate("AAPL"); n != 2 {
		t.Errorf("Invalidate: got %d, want 2", n)
	}
	m.Info(ctx, "AAPL")
	if got := fake.Calls(provider.DatasetInfo); got != 2 {
		t.Errorf("info calls after invalidate: got %d, want 2", got)
	}

	if n := m.Invalidate("A|X"); n != 0 {
		t.Errorf("Invalidate malformed: got %d, want 0", n)
	}

	flushed := 0
	m.OnFlush(func() { flushed++ })
	m.Flush()
	if flushed != 1 {
		t.Errorf("flush hooks: got %d calls, want 1", flushed)
	}
	m.Info(ctx, "AAPL")
	if got := fake.Calls(provider.DatasetInfo); got != 3 {
		t.Errorf("info calls after flush: got %d, want 3", got)
	}
}

func TestScheduleFlush(t *testing.T) {
	m := provider.NewMemoized(providertest.New(), nil)

	c, err := m.ScheduleFlush("")
	if err != nil || c != nil {
		t.Errorf("empty schedule: got %v, %v; want nil, nil", c, err)
	}

	if _, err := m.ScheduleFlush("not a schedule"); err == nil {
		t.Error("expected error for invalid schedule")
	}

	c, err = m.ScheduleFlush("@hourly")
	if err != nil {
		t.Fatalf("ScheduleFlush: %v", err)
	}
	if len(c.Entries()) != 1 {
		t.Errorf("entries: got %d, want 1", len(c.Entries()))
	}
	c.Stop()
}
