// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the total HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// ConnectTimeout bounds connection establishment for document fetches.
	ConnectTimeout time.Duration `json:"connect_timeout" yaml:"connect_timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-digest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "sonar", "gemini-2.5-flash").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for rate-limited API
	// calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// DiscoveryConfig holds settings for the paper discovery loop.
type DiscoveryConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the discovery quota: the loop stops once this many
	// unique papers have been accepted (default 15).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// Domains restricts the search to these source domains. When empty,
	// the default three-domain list is used.
	Domains []string `json:"domains,omitempty" yaml:"domains,omitempty"`

	// CandidateDelay is the pacing delay applied between validated
	// candidates to stay under backend rate limits (default 500ms).
	CandidateDelay time.Duration `json:"candidate_delay" yaml:"candidate_delay"`
}

// SummarizeConfig holds settings for the summarization pipeline.
type SummarizeConfig struct {
	HTTPConfig `yaml:",inline"`

	// OutputDir is the directory where HTML summaries are written
	// (default "summaries").
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// MaxWorkers bounds the concurrent worker pool in parallel mode
	// (default 3).
	MaxWorkers int `json:"max_workers" yaml:"max_workers"`

	// ItemDelay is the pacing delay between papers in sequential mode
	// (default 500ms). The parallel path applies no delay; the pool size
	// cap is its only throttle.
	ItemDelay time.Duration `json:"item_delay" yaml:"item_delay"`
}

// HistoryConfig holds settings for the run history store.
type HistoryConfig struct {
	// Dir is the directory holding the history database (default "history").
	Dir string `json:"dir" yaml:"dir"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Discovery DiscoveryConfig `json:"discovery" yaml:"discovery"`
	Search    AIConfig        `json:"search" yaml:"search"`
	Summarize SummarizeConfig `json:"summarize" yaml:"summarize"`
	Generate  AIConfig        `json:"generate" yaml:"generate"`
	History   HistoryConfig   `json:"history" yaml:"history"`
}
