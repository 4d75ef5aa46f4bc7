package analyzer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/BerylCAtieno/sheet-insights-api/internal/models"
)

var contractValidator = jsonschema.MustCompileString("analysis-contract.json", contractSchema)

// decodeContract parses the model's text payload and checks it against the contract.
// Chart entries are passed through leniently: non-object entries are dropped and
// scalar fields are read as strings.
func decodeContract(text string) (*models.LLMAnalysisResult, error) {
	text = strings.TrimSpace(extractJSON(strings.TrimSpace(text)))

	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if err := contractValidator.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContract, err)
	}

	obj := doc.(map[string]any)
	result := &models.LLMAnalysisResult{
		Summary: obj["summary"].(string),
		KPIs:    []string{},
		Charts:  []models.ChartConfig{},
	}

	if kpis, ok := obj["kpis"].([]any); ok {
		for _, k := range kpis {
			result.KPIs = append(result.KPIs, k.(string))
		}
	}

	for _, item := range obj["charts"].([]any) {
		c, ok := item.(map[string]any)
		if !ok {
			continue
		}
		result.Charts = append(result.Charts, models.ChartConfig{
			Type:    models.ChartType(stringField(c, "type")),
			X:       stringField(c, "x"),
			Y:       stringField(c, "y"),
			Title:   stringField(c, "title"),
			Insight: stringField(c, "insight"),
		})
	}

	return result, nil
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64, bool:
		return fmt.Sprint(v)
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}

// extractJSON strips a surrounding markdown code fence, if present.
func extractJSON(content string) string {
	if !strings.HasPrefix(content, "```") {
		return content
	}

	start := strings.IndexByte(content, '\n')
	if start < 0 {
		return content
	}
	end := strings.LastIndex(content, "```")
	if end <= start {
		return content[start+1:]
	}

	return content[start+1 : end]
}
