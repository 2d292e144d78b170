package engine

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig is the optional YAML overlay read from CONFIG_FILE.
// Zero values leave the env-derived setting untouched.
type FileConfig struct {
	APIPort          string         `yaml:"api_port"`
	WatchBaseURL     string         `yaml:"watch_base_url"`
	DefaultLanguage  string         `yaml:"default_language"`
	CaptionFormat    string         `yaml:"caption_format"`
	OutputFormat     string         `yaml:"output_format"`
	MaxBatchSize     int            `yaml:"max_batch_size"`
	BatchConcurrency int            `yaml:"batch_concurrency"`
	FetchTimeout     time.Duration  `yaml:"fetch_timeout"`
	StrictMetadata   *bool          `yaml:"strict_metadata"`
	CORSOrigins      []string       `yaml:"cors_origins"`
	CacheTTL         *time.Duration `yaml:"cache_ttl"`
}

// LoadFileConfig reads a YAML config file.
func LoadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if fc.CaptionFormat != "" && fc.CaptionFormat != FormatXML && fc.CaptionFormat != FormatJSON3 {
		return nil, fmt.Errorf("config %s: caption_format must be %q or %q", path, FormatXML, FormatJSON3)
	}
	return &fc, nil
}

// Apply overlays the non-zero file settings onto c.
func (fc *FileConfig) Apply(c *Config) {
	if fc.APIPort != "" {
		c.APIPort = fc.APIPort
	}
	if fc.WatchBaseURL != "" {
		c.WatchBaseURL = fc.WatchBaseURL
	}
	if fc.DefaultLanguage != "" {
		c.DefaultLanguage = fc.DefaultLanguage
	}
	if fc.CaptionFormat != "" {
		c.CaptionFormat = fc.CaptionFormat
	}
	if fc.OutputFormat != "" {
		c.OutputFormat = fc.OutputFormat
	}
	if fc.MaxBatchSize > 0 {
		c.MaxBatchSize = fc.MaxBatchSize
	}
	if fc.BatchConcurrency > 0 {
		c.BatchConcurrency = fc.BatchConcurrency
	}
	if fc.FetchTimeout > 0 {
		c.FetchTimeout = fc.FetchTimeout
	}
	if fc.StrictMetadata != nil {
		c.StrictMetadata = *fc.StrictMetadata
	}
	if len(fc.CORSOrigins) > 0 {
		c.CORSOrigins = fc.CORSOrigins
	}
	if fc.CacheTTL != nil {
		c.CacheTTL = *fc.CacheTTL
	}
}
