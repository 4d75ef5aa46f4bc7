package services

import (
	"github.com/BerylCAtieno/sheet-insights-api/internal/models"
)

// Assemble merges the model output with the full dataset. columns is the sampler's
// column list; totals and raw data always describe the unsampled dataset.
func Assemble(out *models.LLMAnalysisResult, ds *models.Dataset, columns []string) *models.AnalysisResult {
	result := &models.AnalysisResult{
		Summary:   out.Summary,
		KPIs:      out.KPIs,
		Charts:    out.Charts,
		Columns:   columns,
		TotalRows: ds.TotalRows(),
		RawData:   ds.Rows,
	}

	if result.KPIs == nil {
		result.KPIs = []string{}
	}
	if result.Charts == nil {
		result.Charts = []models.ChartConfig{}
	}
	if result.Columns == nil {
		result.Columns = []string{}
	}
	if result.RawData == nil {
		result.RawData = []models.Row{}
	}

	return result
}

// FilterCharts keeps charts with a known type whose axes name known columns.
// The rejected charts are returned so callers can log them.
func FilterCharts(charts []models.ChartConfig, columns []string) (kept, dropped []models.ChartConfig) {
	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[c] = true
	}

	kept = make([]models.ChartConfig, 0, len(charts))
	for _, ch := range charts {
		if ch.Type.Valid() && known[ch.X] && known[ch.Y] {
			kept = append(kept, ch)
		} else {
			dropped = append(dropped, ch)
		}
	}
	return kept, dropped
}
