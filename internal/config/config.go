package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port      string
	LogLevel  string
	LogFormat string

	// Gemini
	GeminiAPIKey   string
	GeminiModel    string
	GeminiBaseURL  string
	GeminiTimeout  time.Duration
	RetryAttempts  int
	RetryBaseDelay time.Duration

	// Upload and sampling limits
	MaxUploadSize        int64
	MaxRows              int
	PromptSampleRows     int
	ValidateChartColumns bool
	UploadDir            string

	// HTTP security
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Limits bounds a single pipeline run.
type Limits struct {
	MaxUploadSize        int64
	MaxRows              int
	PromptSampleRows     int
	SupportedExtensions  []string
	ValidateChartColumns bool
}

func DefaultLimits() Limits {
	return Limits{
		MaxUploadSize:       10 << 20,
		MaxRows:             1000,
		PromptSampleRows:    5,
		SupportedExtensions: []string{".csv", ".xlsx", ".xls", ".txt"},
	}
}

// Supports reports whether ext (with leading dot, any case) is accepted.
func (l Limits) Supports(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range l.SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Load reads configuration from an optional YAML file named by
// SHEET_INSIGHTS_CONFIG, then environment variables, then defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	limits := DefaultLimits()
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("GEMINI_TIMEOUT", 60*time.Second)
	v.SetDefault("RETRY_MAX_ATTEMPTS", 4)
	v.SetDefault("RETRY_BASE_DELAY", time.Second)
	v.SetDefault("MAX_UPLOAD_SIZE", limits.MaxUploadSize)
	v.SetDefault("MAX_ROWS", limits.MaxRows)
	v.SetDefault("PROMPT_SAMPLE_ROWS", limits.PromptSampleRows)
	v.SetDefault("VALIDATE_CHART_COLUMNS", false)
	v.SetDefault("UPLOAD_DIR", "")
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_RPS", 5.0)
	v.SetDefault("RATE_LIMIT_BURST", 10)

	if path := v.GetString("SHEET_INSIGHTS_CONFIG"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Port:                 v.GetString("PORT"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		LogFormat:            v.GetString("LOG_FORMAT"),
		GeminiAPIKey:         v.GetString("GEMINI_API_KEY"),
		GeminiModel:          v.GetString("GEMINI_MODEL"),
		GeminiBaseURL:        strings.TrimRight(v.GetString("GEMINI_BASE_URL"), "/"),
		GeminiTimeout:        v.GetDuration("GEMINI_TIMEOUT"),
		RetryAttempts:        v.GetInt("RETRY_MAX_ATTEMPTS"),
		RetryBaseDelay:       v.GetDuration("RETRY_BASE_DELAY"),
		MaxUploadSize:        v.GetInt64("MAX_UPLOAD_SIZE"),
		MaxRows:              v.GetInt("MAX_ROWS"),
		PromptSampleRows:     v.GetInt("PROMPT_SAMPLE_ROWS"),
		ValidateChartColumns: v.GetBool("VALIDATE_CHART_COLUMNS"),
		UploadDir:            v.GetString("UPLOAD_DIR"),
		AllowedOrigins:       splitList(v.GetString("ALLOWED_ORIGINS")),
		RateLimitRPS:         v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:       v.GetInt("RATE_LIMIT_BURST"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validate rejects values that would make the service unusable. A missing API key
// is not an error here; analysis requests report it instead.
func (c *Config) validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive, got %d", c.MaxUploadSize)
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1, got %d", c.RetryAttempts)
	}
	if c.RetryBaseDelay < 0 {
		return fmt.Errorf("RETRY_BASE_DELAY cannot be negative")
	}
	if c.PromptSampleRows < 1 {
		return fmt.Errorf("PROMPT_SAMPLE_ROWS must be at least 1, got %d", c.PromptSampleRows)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit RPS and burst must be positive")
	}
	return nil
}

// Limits projects the pipeline limits out of the loaded configuration.
func (c *Config) Limits() Limits {
	l := DefaultLimits()
	l.MaxUploadSize = c.MaxUploadSize
	l.MaxRows = c.MaxRows
	l.PromptSampleRows = c.PromptSampleRows
	l.ValidateChartColumns = c.ValidateChartColumns
	return l
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
