package main

import (
	"context"
	"errors"
	"testing"

	"github.com/seenimoa/stockdash/internal/config"
	"github.com/seenimoa/stockdash/internal/provider"
	"github.com/seenimoa/stockdash/internal/provider/providertest"
	"github.com/seenimoa/stockdash/pkg/models"
)

func TestWarm(t *testing.T) {
	fake := providertest.Seeded("AAPL")
	memo := provider.NewMemoized(fake, nil)

	results := warm(context.Background(), memo, []string{"aapl", "zzzz", " "}, 2)
	if len(results) != 3 {
		t.Fatalf("results: got %d, want 3", len(results))
	}
	if results[0].symbol != "AAPL" || results[0].err != nil {
		t.Errorf("AAPL: got %+v", results[0])
	}
	if !errors.Is(results[1].err, provider.ErrSymbolNotFound) {
		t.Errorf("ZZZZ: got %v, want ErrSymbolNotFound", results[1].err)
	}
	var missing *provider.ErrMissingParam
	if !errors.As(results[2].err, &missing) {
		t.Errorf("blank: got %v, want ErrMissingParam", results[2].err)
	}

	// Info, history and both statement periods of AAPL.
	if got := memo.Stats().Entries; got != 4 {
		t.Errorf("memo entries: got %d, want 4", got)
	}
	warm(context.Background(), memo, []string{"AAPL"}, 1)
	if got := fake.Calls(provider.DatasetStatements); got != 2 {
		t.Errorf("statement calls after rewarm: got %d, want 2", got)
	}
}

func TestDefaultPeriod(t *testing.T) {
	tests := []struct {
		in   string
		want models.Period
	}{
		{"Annual", models.PeriodAnnual},
		{"quarterly", models.PeriodQuarterly},
		{"", models.PeriodQuarterly},
		{"monthly", models.PeriodQuarterly},
	}
	for _, tt := range tests {
		cfg := &config.Config{Dashboard: config.DashboardConfig{DefaultPeriod: tt.in}}
		if got := defaultPeriod(cfg); got != tt.want {
			t.Errorf("defaultPeriod(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWireOptionalSources(t *testing.T) {
	cfg := &config.Config{}
	cfg.News.Enabled = true
	cfg.Logo.Discover = true
	d := wire(cfg, nil)
	if d.memo == nil || d.renderer == nil {
		t.Fatal("wire returned an incomplete pipeline")
	}
	if d.renderer.ProviderName() == "" {
		t.Error("provider name should be set")
	}
}
