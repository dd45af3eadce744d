package report

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ════════════════════════════════════════════════════════════════════
// Export: HTML → PDF via wkhtmltopdf / chromium headless
// ════════════════════════════════════════════════════════════════════

// PDFEngine specifies which engine to use for HTML→PDF conversion.
type PDFEngine string

const (
	EngineWKHTML   PDFEngine = "wkhtmltopdf"
	EngineChromium PDFEngine = "chromium"
	EngineNone     PDFEngine = "none" // skip PDF, write HTML
)

var chromiumBinaries = []string{"chromium-browser", "chromium", "google-chrome", "google-chrome-stable"}

// ExportConfig holds configuration for exporting a rendered page.
type ExportConfig struct {
	Engine      PDFEngine // default: auto-detect
	PageSize    string    // default: "A4"
	Orientation string    // "portrait" (default) or "landscape"
	OutputPath  string    // required; ".html" skips conversion
}

// DefaultExportConfig returns sensible defaults for export.
func DefaultExportConfig(path string) ExportConfig {
	return ExportConfig{
		PageSize:    "A4",
		Orientation: "portrait",
		OutputPath:  path,
	}
}

// DetectPDFEngine checks which PDF engine is available on the system.
func DetectPDFEngine() PDFEngine {
	if _, err := exec.LookPath("wkhtmltopdf"); err == nil {
		return EngineWKHTML
	}
	for _, name := range chromiumBinaries {
		if _, err := exec.LookPath(name); err == nil {
			return EngineChromium
		}
	}
	return EngineNone
}

// Export writes the rendered page to cfg.OutputPath. A ".pdf" path is
// converted with the first available engine; without one the HTML is
// written next to it instead. It returns the path actually written.
func Export(ctx context.Context, html string, cfg ExportConfig) (string, error) {
	if cfg.OutputPath == "" {
		return "", fmt.Errorf("output path is required")
	}
	if !strings.HasSuffix(strings.ToLower(cfg.OutputPath), ".pdf") {
		return writeHTML(html, cfg.OutputPath)
	}

	engine := cfg.Engine
	if engine == "" {
		engine = DetectPDFEngine()
	}

	switch engine {
	case EngineWKHTML:
		return cfg.OutputPath, exportWithWKHTML(ctx, html, cfg)
	case EngineChromium:
		return cfg.OutputPath, exportWithChromium(ctx, html, cfg)
	case EngineNone:
		return writeHTML(html, strings.TrimSuffix(cfg.OutputPath, filepath.Ext(cfg.OutputPath))+".html")
	default:
		return "", fmt.Errorf("unsupported PDF engine: %s", engine)
	}
}

func exportWithWKHTML(ctx context.Context, html string, cfg ExportConfig) error {
	tmpFile, err := writeTempHTML(html)
	if err != nil {
		return err
	}
	defer os.Remove(tmpFile)

	args := []string{
		"--page-size", cfg.PageSize,
		"--orientation", cfg.Orientation,
		"--encoding", "UTF-8",
		"--quiet",
		tmpFile,
		cfg.OutputPath,
	}

	cmd := exec.CommandContext(ctx, "wkhtmltopdf", args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("wkhtmltopdf failed: %w\nOutput: %s", err, string(output))
	}
	return nil
}

func exportWithChromium(ctx context.Context, html string, cfg ExportConfig) error {
	tmpFile, err := writeTempHTML(html)
	if err != nil {
		return err
	}
	defer os.Remove(tmpFile)

	var chromiumBin string
	for _, name := range chromiumBinaries {
		if path, err := exec.LookPath(name); err == nil {
			chromiumBin = path
			break
		}
	}
	if chromiumBin == "" {
		return fmt.Errorf("chromium not found in PATH")
	}

	absOutput, err := filepath.Abs(cfg.OutputPath)
	if err != nil {
		return fmt.Errorf("resolving output path: %w", err)
	}

	args := []string{
		"--headless",
		"--disable-gpu",
		"--no-sandbox",
		"--print-to-pdf=" + absOutput,
		"--print-to-pdf-no-header",
	}
	if strings.EqualFold(cfg.Orientation, "landscape") {
		args = append(args, "--landscape")
	}
	args = append(args, "file://"+tmpFile)

	cmd := exec.CommandContext(ctx, chromiumBin, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("chromium PDF export failed: %w\nOutput: %s", err, string(output))
	}
	return nil
}

func writeTempHTML(html string) (string, error) {
	f, err := os.CreateTemp("", "stockdash-*.html")
	if err != nil {
		return "", fmt.Errorf("creating temp HTML: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(html); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("writing temp HTML: %w", err)
	}
	return f.Name(), nil
}

func writeHTML(html, outputPath string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, []byte(html), 0644); err != nil {
		return "", fmt.Errorf("writing HTML: %w", err)
	}
	return outputPath, nil
}
