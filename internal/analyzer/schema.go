package analyzer

import (
	"encoding/json"

	"github.com/BerylCAtieno/sheet-insights-api/internal/models"
)

// Schema is the OpenAPI subset accepted by generationConfig.responseSchema.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// ResponseSchema is the analysis contract. The prompt text and the request's
// responseSchema are both rendered from it.
var ResponseSchema = &Schema{
	Type: "OBJECT",
	Properties: map[string]*Schema{
		"summary": {Type: "STRING", Description: "Executive summary of the dataset"},
		"kpis": {
			Type:        "ARRAY",
			Description: "Key performance indicators, one short statement each",
			Items:       &Schema{Type: "STRING"},
		},
		"charts": {
			Type: "ARRAY",
			Items: &Schema{
				Type: "OBJECT",
				Properties: map[string]*Schema{
					"type":    {Type: "STRING", Enum: chartTypeNames()},
					"x":       {Type: "STRING", Description: "Column used for the x axis"},
					"y":       {Type: "STRING", Description: "Column used for the y axis"},
					"title":   {Type: "STRING"},
					"insight": {Type: "STRING"},
				},
				Required: []string{"type", "x", "y", "title", "insight"},
			},
		},
	},
	Required: []string{"summary", "kpis", "charts"},
}

// contractSchema is what a response must satisfy before it is accepted. It is
// looser than ResponseSchema: kpis may be absent and charts are not checked per item.
const contractSchema = `{
  "type": "object",
  "required": ["summary", "charts"],
  "properties": {
    "summary": {"type": "string", "minLength": 1, "pattern": "\\S"},
    "kpis": {"type": ["array", "null"], "items": {"type": "string"}},
    "charts": {"type": "array"}
  }
}`

func chartTypeNames() []string {
	names := make([]string, len(models.ChartTypes))
	for i, t := range models.ChartTypes {
		names[i] = string(t)
	}
	return names
}

// schemaText renders ResponseSchema for embedding in the prompt.
func schemaText() string {
	b, err := json.MarshalIndent(ResponseSchema, "", "  ")
	if err != nil {
		// ResponseSchema is a static value of plain types.
		panic(err)
	}
	return string(b)
}
