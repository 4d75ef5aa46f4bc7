package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BerylCAtieno/sheet-insights-api/internal/analyzer"
	"github.com/BerylCAtieno/sheet-insights-api/internal/config"
	"github.com/BerylCAtieno/sheet-insights-api/internal/extractor"
	"github.com/BerylCAtieno/sheet-insights-api/internal/models"
	"github.com/BerylCAtieno/sheet-insights-api/internal/storage"
	"github.com/BerylCAtieno/sheet-insights-api/internal/utils"
)

type AnalysisService interface {
	AnalyzeFile(ctx context.Context, req *models.UploadRequest) (*models.AnalysisResponse, error)
	Limits() config.Limits
}

type analysisService struct {
	storage  storage.TempStorage
	analyzer analyzer.Analyzer
	limits   config.Limits
	logger   *utils.Logger
}

func NewService(store storage.TempStorage, llm analyzer.Analyzer, limits config.Limits, logger *utils.Logger) AnalysisService {
	return &analysisService{
		storage:  store,
		analyzer: llm,
		limits:   limits,
		logger:   logger,
	}
}

func (s *analysisService) Limits() config.Limits {
	return s.limits
}

// AnalyzeFile runs one upload through parse, sample, prompt, remote analysis and
// assembly. Every failure is returned as a *utils.AppError.
func (s *analysisService) AnalyzeFile(ctx context.Context, req *models.UploadRequest) (*models.AnalysisResponse, error) {
	ext := strings.ToLower(req.Extension)
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(req.Filename))
	}

	if !s.limits.Supports(ext) {
		s.logger.Warn("Unsupported file type", "extension", ext, "filename", req.Filename)
		return nil, utils.NewUnsupportedFormatError(fmt.Sprintf("Unsupported file type '%s'. Allowed: %s", ext, strings.Join(s.limits.SupportedExtensions, ", ")))
	}
	if int64(len(req.File)) > s.limits.MaxUploadSize {
		return nil, utils.NewPayloadTooLargeError(fmt.Sprintf("File size exceeds %s limit", humanSize(s.limits.MaxUploadSize)))
	}

	path, err := s.storage.Save(ctx, req.File, ext)
	if err != nil {
		s.logger.Error("Failed to store upload", "error", err, "filename", req.Filename)
		return nil, utils.Wrap(err, utils.CodeInternal, "Failed to store uploaded file", "")
	}
	defer func() {
		if err := s.storage.Remove(context.WithoutCancel(ctx), path); err != nil {
			s.logger.Warn("Failed to remove temporary upload", "error", err, "path", path)
		}
	}()

	data, err := s.storage.Read(ctx, path)
	if err != nil {
		s.logger.Error("Failed to read stored upload", "error", err, "path", path)
		return nil, utils.Wrap(err, utils.CodeInternal, "Failed to read uploaded file", "")
	}

	ds, err := extractor.Parse(data, ext)
	if err != nil {
		s.logger.Warn("Failed to parse upload", "error", err, "filename", req.Filename)
		return nil, toAppError(ctx, err)
	}

	rows, columns, err := Sample(ds, s.limits.MaxRows)
	if err != nil {
		s.logger.Warn("Upload has no data rows", "filename", req.Filename)
		return nil, toAppError(ctx, err)
	}

	prompt := analyzer.BuildPrompt(rows, columns, ds.TotalRows(), s.limits.PromptSampleRows)

	s.logger.Info("Starting dataset analysis",
		"filename", req.Filename,
		"total_rows", ds.TotalRows(),
		"sampled_rows", len(rows),
		"columns", len(columns),
		"prompt_length", len(prompt))

	out, err := s.analyzer.Analyze(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil {
			s.logger.Warn("Analysis abandoned by caller", "error", ctx.Err(), "filename", req.Filename)
		} else {
			s.logger.Error("Failed to analyze dataset", "error", err, "filename", req.Filename)
		}
		return nil, toAppError(ctx, err)
	}

	result := Assemble(out, ds, columns)

	if s.limits.ValidateChartColumns {
		kept, dropped := FilterCharts(result.Charts, ds.Columns)
		for _, ch := range dropped {
			s.logger.Warn("Dropping chart with unknown type or columns",
				"type", ch.Type, "x", ch.X, "y", ch.Y, "title", ch.Title)
		}
		result.Charts = kept
	}

	s.logger.Info("Dataset analyzed successfully",
		"filename", req.Filename,
		"kpis", len(result.KPIs),
		"charts", len(result.Charts))

	return &models.AnalysisResponse{
		Success:        true,
		AnalysisResult: result,
	}, nil
}

// toAppError maps pipeline errors onto their HTTP-facing form. A done ctx wins
// over whatever error the interrupted stage reported.
func toAppError(ctx context.Context, err error) *utils.AppError {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if ctx.Err() != nil {
		return utils.Wrap(err, utils.CodeCancelled, "Request was cancelled", "")
	}

	var remote *analyzer.RemoteError
	switch {
	case errors.Is(err, extractor.ErrUnsupportedFormat):
		return utils.Wrap(err, utils.CodeUnsupportedFormat, "Unsupported file type", "")
	case errors.Is(err, extractor.ErrParseFailure):
		return utils.Wrap(err, utils.CodeParseFailure, "Failed to parse file", err.Error())
	case errors.Is(err, ErrEmptyDataset):
		return utils.Wrap(err, utils.CodeEmptyDataset, "The file contains no data rows", "")
	case errors.Is(err, analyzer.ErrConfiguration):
		return utils.Wrap(err, utils.CodeConfiguration, "Analysis service is not configured", "")
	case errors.As(err, &remote):
		return utils.Wrap(err, utils.CodeRemoteAnalysis, "Failed to analyze data with LLM", remoteDetails(remote))
	case errors.Is(err, analyzer.ErrMalformedResponse):
		return utils.Wrap(err, utils.CodeMalformedResponse, "LLM returned an unreadable response", "")
	case errors.Is(err, analyzer.ErrInvalidContract):
		return utils.Wrap(err, utils.CodeInvalidContract, "LLM response did not match the analysis contract", err.Error())
	default:
		return utils.Wrap(err, utils.CodeInternal, "Internal server error", "")
	}
}

func remoteDetails(e *analyzer.RemoteError) string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream status %d after %d attempt(s)", e.StatusCode, e.Attempts)
	}
	return fmt.Sprintf("upstream unreachable after %d attempt(s)", e.Attempts)
}

func humanSize(n int64) string {
	if n%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", n>>20)
	}
	if n%(1<<10) == 0 {
		return fmt.Sprintf("%dKB", n>>10)
	}
	return fmt.Sprintf("%d bytes", n)
}

// NewFromConfig wires disk storage and the Gemini client from cfg.
func NewFromConfig(cfg *config.Config, logger *utils.Logger, opts ...analyzer.Option) (AnalysisService, error) {
	store, err := storage.NewDiskStorage(cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	retry := analyzer.DefaultRetryPolicy()
	retry.MaxAttempts = cfg.RetryAttempts
	retry.BaseDelay = cfg.RetryBaseDelay

	llm := analyzer.NewGeminiAnalyzer(analyzer.GeminiConfig{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
		Timeout: cfg.GeminiTimeout,
		Retry:   retry,
	}, logger, opts...)

	return NewService(store, llm, cfg.Limits(), logger), nil
}
