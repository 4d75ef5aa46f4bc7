package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/BerylCAtieno/sheet-insights-api/internal/config"
	"github.com/BerylCAtieno/sheet-insights-api/internal/models"
	"github.com/BerylCAtieno/sheet-insights-api/internal/services"
	"github.com/BerylCAtieno/sheet-insights-api/internal/utils"
)

type options struct {
	format      string
	maxRows     int
	sampleRows  int
	includeRows bool
	verbose     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze a CSV, TXT, XLSX or XLS file and print summary, KPIs and charts",
		Long: `analyze runs a local spreadsheet through the same pipeline as the HTTP API
and prints the result. Configuration (GEMINI_API_KEY and friends) is read from the
environment and the optional SHEET_INSIGHTS_CONFIG file.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "json", "output format: json or yaml")
	cmd.Flags().IntVar(&opts.maxRows, "max-rows", 0, "rows handed to the analysis (overrides MAX_ROWS)")
	cmd.Flags().IntVar(&opts.sampleRows, "sample-rows", 0, "rows quoted in the prompt (overrides PROMPT_SAMPLE_ROWS)")
	cmd.Flags().BoolVar(&opts.includeRows, "include-rows", false, "include the parsed rows in the output")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline progress to stderr")

	return cmd
}

func run(cmd *cobra.Command, path string, opts options) error {
	format := strings.ToLower(opts.format)
	if format != "json" && format != "yaml" {
		return fmt.Errorf("unsupported --format: %s (use json|yaml)", opts.format)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.maxRows > 0 {
		cfg.MaxRows = opts.maxRows
	}
	if opts.sampleRows > 0 {
		cfg.PromptSampleRows = opts.sampleRows
	}

	logger := utils.NopLogger()
	if opts.verbose {
		logger = utils.NewLoggerTo(cmd.ErrOrStderr(), cfg.LogLevel, "text")
	}

	svc, err := services.NewFromConfig(cfg, logger)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	resp, err := svc.AnalyzeFile(cmd.Context(), &models.UploadRequest{
		File:     data,
		Filename: filepath.Base(path),
	})
	if err != nil {
		return describe(err)
	}

	var out any = resp.AnalysisResult
	if !opts.includeRows {
		out = withoutRows(resp.AnalysisResult)
	}
	return write(cmd.OutOrStdout(), format, out)
}

// resultSummary is AnalysisResult minus the parsed rows.
type resultSummary struct {
	Summary   string               `json:"summary" yaml:"summary"`
	KPIs      []string             `json:"kpis" yaml:"kpis"`
	Charts    []models.ChartConfig `json:"charts" yaml:"charts"`
	Columns   []string             `json:"columns" yaml:"columns"`
	TotalRows int                  `json:"totalRows" yaml:"totalRows"`
}

func withoutRows(r *models.AnalysisResult) resultSummary {
	return resultSummary{
		Summary:   r.Summary,
		KPIs:      r.KPIs,
		Charts:    r.Charts,
		Columns:   r.Columns,
		TotalRows: r.TotalRows,
	}
}

func write(w io.Writer, format string, result any) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// describe turns an AppError into the message a terminal user should see.
func describe(err error) error {
	var appErr *utils.AppError
	if !errors.As(err, &appErr) {
		return err
	}
	if appErr.Details != "" {
		return fmt.Errorf("%s (%s): %s", appErr.Message, appErr.Code, appErr.Details)
	}
	return fmt.Errorf("%s (%s)", appErr.Message, appErr.Code)
}
