package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/BerylCAtieno/sheet-insights-api/internal/models"
	"github.com/BerylCAtieno/sheet-insights-api/internal/services"
	"github.com/BerylCAtieno/sheet-insights-api/internal/utils"
)

// multipartOverhead is the allowance for boundaries and part headers on top of
// the file itself.
const multipartOverhead = 1 << 20

type AnalysisHandler struct {
	service services.AnalysisService
	logger  *utils.Logger
}

func NewAnalysisHandler(service services.AnalysisService, logger *utils.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
		logger:  logger,
	}
}

// Analyze accepts a multipart upload in the "file" field and returns the analysis.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	limits := h.service.Limits()
	limitMsg := fmt.Sprintf("File size exceeds %s limit", formatLimit(limits.MaxUploadSize))

	if r.ContentLength > limits.MaxUploadSize+multipartOverhead {
		utils.WriteError(w, h.logger, utils.NewPayloadTooLargeError(limitMsg))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxUploadSize+multipartOverhead)

	if err := r.ParseMultipartForm(limits.MaxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			utils.WriteError(w, h.logger, utils.NewPayloadTooLargeError(limitMsg))
			return
		}
		utils.WriteError(w, h.logger, utils.NewBadRequestError("Invalid form data"))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.WriteError(w, h.logger, utils.NewBadRequestError("No file provided"))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))

	h.logger.Info("File upload attempt",
		"filename", header.Filename,
		"extension", ext,
		"size", header.Size,
		"request_id", utils.RequestID(r.Context()))

	if !limits.Supports(ext) {
		utils.WriteError(w, h.logger, utils.NewUnsupportedFormatError(
			fmt.Sprintf("Unsupported file type '%s'. Allowed: %s", ext, strings.Join(limits.SupportedExtensions, ", "))))
		return
	}
	if header.Size > limits.MaxUploadSize {
		utils.WriteError(w, h.logger, utils.NewPayloadTooLargeError(limitMsg))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, limits.MaxUploadSize+1))
	if err != nil {
		utils.WriteError(w, h.logger, utils.NewInternalError("Failed to read file"))
		return
	}
	if int64(len(data)) > limits.MaxUploadSize {
		utils.WriteError(w, h.logger, utils.NewPayloadTooLargeError(limitMsg))
		return
	}

	resp, err := h.service.AnalyzeFile(r.Context(), &models.UploadRequest{
		File:      data,
		Filename:  header.Filename,
		Extension: ext,
	})
	if err != nil {
		utils.WriteError(w, h.logger, err)
		return
	}

	utils.WriteJSON(w, h.logger, http.StatusOK, resp)
}

func (h *AnalysisHandler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, h.logger, http.StatusOK, map[string]string{"status": "healthy"})
}

func formatLimit(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", n>>20)
	}
	return fmt.Sprintf("%d bytes", n)
}
