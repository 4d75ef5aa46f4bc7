package analyzer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BerylCAtieno/sheet-insights-api/internal/models"
)

const DefaultExcerptRows = 5

// BuildPrompt renders the analysis instruction for a sampled dataset. Only the first
// excerptRows rows are embedded to bound token cost.
func BuildPrompt(rows []models.Row, columns []string, totalRows, excerptRows int) string {
	if excerptRows <= 0 {
		excerptRows = DefaultExcerptRows
	}
	head := rows
	if len(head) > excerptRows {
		head = head[:excerptRows]
	}

	excerpt, err := json.MarshalIndent(head, "", "  ")
	if err != nil {
		excerpt = []byte("[]")
	}

	return fmt.Sprintf(`You are a data analyst. Analyze the tabular dataset described below and respond in JSON only.

Dataset overview:
- Total rows: %d
- Columns: %s

Sample rows (first %d):
%s

Produce:
1. "summary": a concise executive summary of what the data shows.
2. "kpis": 3 to 6 key performance indicators computed or estimated from the data, each a short string such as "Total Revenue: $12,400".
3. "charts": 2 to 4 chart recommendations. "type" must be one of bar, line, pie, scatter. "x" and "y" must be column names taken exactly from the column list above. Each chart needs a "title" and a one-sentence "insight".

Respond ONLY with a valid JSON object (no markdown, no code blocks) matching this schema:
%s`, totalRows, strings.Join(columns, ", "), len(head), excerpt, schemaText())
}
