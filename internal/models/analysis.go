package models

type ChartType string

const (
	ChartBar     ChartType = "bar"
	ChartLine    ChartType = "line"
	ChartPie     ChartType = "pie"
	ChartScatter ChartType = "scatter"
)

// ChartTypes lists the chart kinds the analysis contract allows, in schema order.
var ChartTypes = []ChartType{ChartBar, ChartLine, ChartPie, ChartScatter}

func (t ChartType) Valid() bool {
	for _, ct := range ChartTypes {
		if t == ct {
			return true
		}
	}
	return false
}

type ChartConfig struct {
	Type    ChartType `json:"type" yaml:"type"`
	X       string    `json:"x" yaml:"x"`
	Y       string    `json:"y" yaml:"y"`
	Title   string    `json:"title" yaml:"title"`
	Insight string    `json:"insight" yaml:"insight"`
}

type UploadRequest struct {
	File      []byte
	Filename  string
	Extension string
}

// LLMAnalysisResult is the validated output of the remote model.
type LLMAnalysisResult struct {
	Summary string        `json:"summary"`
	KPIs    []string      `json:"kpis"`
	Charts  []ChartConfig `json:"charts"`
}

// AnalysisResult is the model output merged with the full parsed dataset.
type AnalysisResult struct {
	Summary   string        `json:"summary" yaml:"summary"`
	KPIs      []string      `json:"kpis" yaml:"kpis"`
	Charts    []ChartConfig `json:"charts" yaml:"charts"`
	Columns   []string      `json:"columns" yaml:"columns"`
	TotalRows int           `json:"totalRows" yaml:"totalRows"`
	RawData   []Row         `json:"rawData" yaml:"rawData,omitempty"`
}

type AnalysisResponse struct {
	Success bool `json:"success"`
	*AnalysisResult
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
