// stockdash is a single-stock market insights dashboard
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/joho/godotenv"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"github.com/seenimoa/stockdash/api"
	"github.com/seenimoa/stockdash/internal/config"
	"github.com/seenimoa/stockdash/internal/dashboard"
	"github.com/seenimoa/stockdash/internal/infra"
	"github.com/seenimoa/stockdash/internal/provider"
	"github.com/seenimoa/stockdash/internal/report"
	"github.com/seenimoa/stockdash/pkg/models"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set by the root command.
var (
	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stockdash",
	Short: "stockdash: single-stock market insights dashboard",
	Long: `stockdash renders a one-page dashboard for a stock symbol: company
profile and key metrics, weekly price with a moving average, volume,
market cap trend and quarterly or annual revenue and net income.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is fine.
		_ = godotenv.Load()

		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		logger = infra.NewLogger(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(warmCmd)
	rootCmd.AddCommand(configCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("stockdash %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Serve Command (HTTP Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps := wire(cfg, logger)

		cron, err := deps.memo.ScheduleFlush(cfg.Cache.FlushSchedule)
		if err != nil {
			return err
		}
		if cron != nil {
			defer cron.Stop()
		}

		srv, err := api.NewServer(api.Options{
			Config:   cfg,
			Renderer: deps.renderer,
			Cache:    deps.memo,
			Logger:   logger,
			Version:  version,
		})
		if err != nil {
			return err
		}

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.API.Addr()
		}
		fmt.Printf("🌐 stockdash listening on http://%s\n", addr)
		return srv.ListenAndServe(addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default: api.host:api.port)")
}

// --- Show Command (terminal dashboard) ---

var errSectionsFailed = errors.New("some sections failed to load")

var showCmd = &cobra.Command{
	Use:   "show [symbol]",
	Short: "Render the dashboard for a symbol in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		periodFlag, _ := cmd.Flags().GetString("period")
		full, _ := cmd.Flags().GetBool("full-summary")
		weeks, _ := cmd.Flags().GetInt("weeks")
		color, _ := cmd.Flags().GetBool("color")
		exportPath, _ := cmd.Flags().GetString("export")

		st := dashboard.NewSessionState(args[0], defaultPeriod(cfg))
		if st.Symbol == "" {
			return fmt.Errorf("symbol is required")
		}
		if periodFlag != "" {
			if err := st.SetPeriod(periodFlag); err != nil {
				return err
			}
		}
		st.ShowFullSummary = full

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		deps := wire(cfg, logger)
		page := deps.renderer.Render(ctx, st)

		if err := report.WriteTerminal(cmd.OutOrStdout(), page, report.TerminalOptions{
			Color: color,
			Weeks: weeks,
		}); err != nil {
			return err
		}

		if exportPath != "" {
			pageCfg := report.DefaultPageConfig()
			pageCfg.LiveURL = ""
			html, err := report.GenerateHTML(page, pageCfg)
			if err != nil {
				return err
			}
			written, err := report.Export(ctx, html, report.DefaultExportConfig(exportPath))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "📄 exported %s\n", written)
		}

		if page.Failed() {
			return errSectionsFailed
		}
		return nil
	},
}

func init() {
	showCmd.Flags().String("period", "", "financials period: Quarterly or Annual (default: dashboard.default_period)")
	showCmd.Flags().Bool("full-summary", false, "print the full business summary")
	showCmd.Flags().Int("weeks", 12, "number of recent weekly rows to list")
	showCmd.Flags().Bool("color", false, "ANSI colors and styles")
	showCmd.Flags().String("export", "", "also write the HTML page to this path (.pdf converts when an engine is installed)")
}

// --- Warm Command ---

// warmResult is the outcome of prefetching one symbol.
type warmResult struct {
	symbol string
	took   time.Duration
	err    error
}

var warmCmd = &cobra.Command{
	Use:   "warm [symbol...]",
	Short: "Prefetch the datasets of several symbols",
	Long:  "Prefetch company info, price history and both statement periods for each symbol with a bounded worker pool.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workers, _ := cmd.Flags().GetInt("workers")
		if workers <= 0 {
			workers = 4
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		deps := wire(cfg, logger)
		results := warm(ctx, deps.memo, args, workers)

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"SYMBOL", "STATUS", "TOOK"})
		failed := 0
		for _, r := range results {
			status := text.Colors{text.FgGreen}.Sprint("ok")
			if r.err != nil {
				failed++
				status = text.Colors{text.FgRed}.Sprint(r.err.Error())
			}
			t.AppendRow(table.Row{r.symbol, status, r.took.Round(time.Millisecond)})
		}
		stats := deps.memo.Stats()
		t.AppendFooter(table.Row{"", fmt.Sprintf("%d cached", stats.Entries), ""})
		t.Render()

		if failed > 0 {
			return fmt.Errorf("%d of %d symbols failed", failed, len(results))
		}
		return nil
	},
}

func init() {
	warmCmd.Flags().Int("workers", 4, "maximum concurrent symbols")
}

// warm fetches every dataset of each symbol, at most workers symbols at
// a time. Results keep the input order.
func warm(ctx context.Context, p provider.Provider, symbols []string, workers int) []warmResult {
	results := make([]warmResult, len(symbols))
	wp := pool.New().WithContext(ctx).WithMaxGoroutines(workers)
	for i, raw := range symbols {
		i, symbol := i, models.NormalizeSymbol(raw)
		wp.Go(func(ctx context.Context) error {
			start := time.Now()
			err := warmSymbol(ctx, p, symbol)
			results[i] = warmResult{symbol: symbol, took: time.Since(start), err: err}
			return nil
		})
	}
	_ = wp.Wait()
	return results
}

func warmSymbol(ctx context.Context, p provider.Provider, symbol string) error {
	if err := provider.ValidateSymbol(symbol); err != nil {
		return err
	}
	if _, err := p.Info(ctx, symbol); err != nil {
		return fmt.Errorf("info: %w", err)
	}
	if _, err := p.PriceHistory(ctx, symbol); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	for _, period := range models.Periods {
		if _, err := p.Statements(ctx, symbol, period); err != nil {
			return fmt.Errorf("%s statements: %w", strings.ToLower(string(period)), err)
		}
	}
	return nil
}

// --- Config Command ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := cfg.YAML()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}
