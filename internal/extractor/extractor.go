package extractor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BerylCAtieno/sheet-insights-api/internal/models"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrParseFailure      = errors.New("failed to parse file")
)

// Parse decodes an uploaded file into a Dataset. ext selects the decoder and is
// matched case-insensitively, with or without the leading dot.
func Parse(data []byte, ext string) (*models.Dataset, error) {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	var (
		records [][]string
		err     error
	)
	switch ext {
	case ".csv", ".txt":
		records, err = ExtractDelimited(data)
	case ".xlsx":
		records, err = ExtractXLSX(data)
	case ".xls":
		records, err = ExtractXLS(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailure, err)
	}

	return buildDataset(records), nil
}

// buildDataset turns raw records into keyed rows. The first non-blank record is the
// header; blank records are dropped. Cell values are kept verbatim.
func buildDataset(records [][]string) *models.Dataset {
	ds := &models.Dataset{}

	start := -1
	for i, rec := range records {
		if !isBlank(rec) {
			start = i
			break
		}
	}
	if start < 0 {
		return ds
	}

	header := headerKeys(records[start])
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		seen[h] = true
		ds.Columns = append(ds.Columns, h)
	}

	for _, rec := range records[start+1:] {
		if isBlank(rec) {
			continue
		}
		fields := make([]models.Field, 0, max(len(header), len(rec)))
		for j, key := range header {
			var v string
			if j < len(rec) {
				v = rec[j]
			}
			fields = append(fields, models.Field{Key: key, Value: v})
		}
		for j := len(header); j < len(rec); j++ {
			key := positionalKey(j)
			if !seen[key] {
				seen[key] = true
				ds.Columns = append(ds.Columns, key)
			}
			fields = append(fields, models.Field{Key: key, Value: rec[j]})
		}
		ds.Rows = append(ds.Rows, models.NewRow(fields...))
	}

	return ds
}

// headerKeys trims header cells, names blank ones by position, and suffixes duplicates.
func headerKeys(rec []string) []string {
	keys := make([]string, len(rec))
	used := make(map[string]int, len(rec))
	for i, raw := range rec {
		name := strings.TrimSpace(raw)
		if name == "" {
			name = positionalKey(i)
		}
		if n, dup := used[name]; dup {
			candidate := fmt.Sprintf("%s_%d", name, n)
			for used[candidate] > 0 {
				n++
				candidate = fmt.Sprintf("%s_%d", name, n)
			}
			used[name] = n + 1
			name = candidate
		}
		used[name]++
		keys[i] = name
	}
	return keys
}

func positionalKey(i int) string {
	return fmt.Sprintf("column_%d", i+1)
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
