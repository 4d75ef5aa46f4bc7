package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStatusFor(t *testing.T) {
	tests := map[ErrorCode]int{
		CodeBadRequest:        http.StatusBadRequest,
		CodePayloadTooLarge:   http.StatusRequestEntityTooLarge,
		CodeUnsupportedFormat: http.StatusUnsupportedMediaType,
		CodeParseFailure:      http.StatusUnprocessableEntity,
		CodeEmptyDataset:      http.StatusUnprocessableEntity,
		CodeConfiguration:     http.StatusInternalServerError,
		CodeRemoteAnalysis:    http.StatusInternalServerError,
		CodeMalformedResponse: http.StatusInternalServerError,
		CodeInvalidContract:   http.StatusInternalServerError,
		CodeRateLimit:         http.StatusTooManyRequests,
		CodeCancelled:         http.StatusRequestTimeout,
		CodeInternal:          http.StatusInternalServerError,
	}
	for code, want := range tests {
		if got := NewAppError(code, "x").StatusCode; got != want {
			t.Errorf("%s: status = %d, want %d", code, got, want)
		}
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("root cause")
	err := fmt.Errorf("outer: %w", Wrap(cause, CodeParseFailure, "Failed to parse file", "line 3"))

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatal("AppError not found in chain")
	}
	if !errors.Is(err, cause) {
		t.Error("cause not reachable")
	}
	if !strings.Contains(appErr.Error(), "root cause") || appErr.Details != "line 3" {
		t.Errorf("Error() = %q, details = %q", appErr.Error(), appErr.Details)
	}
}

func TestWriteError(t *testing.T) {
	var logs bytes.Buffer
	logger := NewLoggerTo(&logs, "debug", "json")

	rec := httptest.NewRecorder()
	WriteError(rec, logger, Wrap(errors.New("x"), CodeEmptyDataset, "The file contains no data rows", ""))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"error":"The file contains no data rows"}` {
		t.Errorf("body = %s", got)
	}

	rec = httptest.NewRecorder()
	WriteError(rec, logger, errors.New("secret internals"))
	if rec.Code != http.StatusInternalServerError || strings.Contains(rec.Body.String(), "secret") {
		t.Errorf("plain error leaked: %d %s", rec.Code, rec.Body.String())
	}

	var line map[string]any
	first := bytes.SplitN(logs.Bytes(), []byte("\n"), 2)[0]
	if err := json.Unmarshal(first, &line); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if line["code"] != string(CodeEmptyDataset) {
		t.Errorf("log line = %v", line)
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("WARNING").String() != "WARN" || parseLevel("bogus").String() != "INFO" {
		t.Error("parseLevel mapping wrong")
	}
}
