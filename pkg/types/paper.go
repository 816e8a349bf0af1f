// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-digest pipeline.
package types

// SearchedPaper represents a validated candidate paper accepted by the
// discovery loop. The URL is the canonical direct-document form and is the
// unique key for deduplication.
type SearchedPaper struct {
	// URL is the canonical PDF URL (e.g. "https://arxiv.org/pdf/2401.12345").
	URL string `json:"url" yaml:"url"`

	// Title is the paper title as returned by the search backend.
	Title string `json:"title" yaml:"title"`

	// PublicationDate is the publication date as reported by the backend.
	// Free-form; only loosely validated (a leading 4-digit year is enough
	// for recency scoring).
	PublicationDate string `json:"publication_date" yaml:"publication_date"`

	// CitationNumber is the citation count reported by the backend. Zero
	// when the backend omits it.
	CitationNumber int `json:"citation_number" yaml:"citation_number"`

	// CompositeScore is the derived relevance score in [0, 1], rounded to
	// three decimals. Computed by the discovery loop, never author-supplied.
	CompositeScore float64 `json:"composite_score" yaml:"composite_score"`
}

// SummaryStatus classifies the outcome of summarizing one paper.
type SummaryStatus string

const (
	// StatusSuccess indicates the summary was generated and validated.
	StatusSuccess SummaryStatus = "success"

	// StatusFetchError indicates the paper document could not be retrieved.
	StatusFetchError SummaryStatus = "fetch_error"

	// StatusError indicates any other failure during summarization.
	StatusError SummaryStatus = "error"
)

// SummaryResult is the outcome of summarizing a single paper. It is created
// by a summarization worker and is immutable once returned; the pipeline
// aggregates results without mutating them.
type SummaryResult struct {
	PaperURL    string        `json:"paper_url" yaml:"paper_url"`
	Title       string        `json:"title" yaml:"title"`
	HTMLSummary string        `json:"html_summary" yaml:"html_summary"`
	Status      SummaryStatus `json:"status" yaml:"status"`

	// ProcessingSeconds is the wall-clock time spent on this paper,
	// recorded on every outcome.
	ProcessingSeconds float64 `json:"processing_time" yaml:"processing_time"`

	// Error holds the failure text when Status is not StatusSuccess.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// Metadata carries the structured generation response when the backend
	// returned JSON, or {"format": "html"} for raw markup responses.
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Succeeded reports whether the summary was generated.
func (r SummaryResult) Succeeded() bool {
	return r.Status == StatusSuccess
}
