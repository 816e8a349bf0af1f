// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize turns discovered papers into audience-tailored HTML
// summaries through an external generation backend. Each paper is handled
// by an isolated worker whose failures fold into its own result record;
// the pipeline always reports an outcome for every paper.
package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// Pipeline summarizes papers through a generation backend. Construct once
// with NewPipeline and share; the caller owns the HTTP client and backend
// lifecycle.
type Pipeline struct {
	fetcher   *http.Client
	generator Generator
	cfg       types.SummarizeConfig

	logMu sync.Mutex
	log   io.Writer
}

// NewPipeline wires a document-fetch client and a generation backend into
// a summarization pipeline. Progress and warnings are written to w.
func NewPipeline(fetcher *http.Client, generator Generator, cfg types.SummarizeConfig, w io.Writer) *Pipeline {
	return &Pipeline{fetcher: fetcher, generator: generator, cfg: cfg, log: w}
}

// logf serializes writes to the progress writer; workers log concurrently.
func (p *Pipeline) logf(format string, args ...any) {
	p.logMu.Lock()
	defer p.logMu.Unlock()
	fmt.Fprintf(p.log, format, args...)
}

// Report aggregates per-paper outcomes from one pipeline invocation.
type Report struct {
	Results []types.SummaryResult

	// SuccessCount counts results with StatusSuccess only.
	SuccessCount int

	// Level and Language echo the request parameters for reporting.
	Level    string
	Language string
}

// Failed returns the number of papers that did not produce a summary.
func (r Report) Failed() int {
	return len(r.Results) - r.SuccessCount
}

// SummarizeAll processes every paper and returns one result per paper in
// submission order. When parallel is true and more than one paper is
// given, papers are dispatched to a bounded worker pool and all workers
// are joined before the report is built; there is no early return and no
// cancellation of stragglers. The sequential path paces papers with a
// fixed delay to ease backend rate-limit pressure; the parallel path
// relies on the pool-size cap instead.
//
// SummarizeAll never fails for per-paper errors: every failure is already
// folded into that paper's result.
func (p *Pipeline) SummarizeAll(ctx context.Context, papers []types.SearchedPaper, level, language string, parallel bool) Report {
	p.logf("summarizing %d papers for %s audience in %s\n", len(papers), level, language)

	results := make([]types.SummaryResult, len(papers))

	if parallel && len(papers) > 1 {
		maxWorkers := p.cfg.MaxWorkers
		if maxWorkers <= 0 {
			maxWorkers = 3
		}

		// Each worker writes only its own slice index; the semaphore
		// bounds concurrency against the generation backend.
		sem := make(chan struct{}, maxWorkers)
		var wg sync.WaitGroup
		for i, paper := range papers {
			wg.Add(1)
			go func(i int, paper types.SearchedPaper) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()
				results[i] = p.SummarizeOne(ctx, paper, level, language)
			}(i, paper)
		}
		wg.Wait()
	} else {
		for i, paper := range papers {
			if i > 0 && p.cfg.ItemDelay > 0 {
				time.Sleep(p.cfg.ItemDelay)
			}
			results[i] = p.SummarizeOne(ctx, paper, level, language)
		}
	}

	report := Report{Results: results, Level: level, Language: language}
	for _, r := range results {
		if r.Succeeded() {
			report.SuccessCount++
			p.logf("summarized %s (%.1fs)\n", r.Title, r.ProcessingSeconds)
		} else {
			p.logf("failed %s: %s\n", r.Title, r.Error)
		}
	}
	p.logf("\nSummarization complete: %d/%d successful\n", report.SuccessCount, len(papers))
	return report
}

// SummarizeOne fetches one paper's document, generates a summary, and
// persists the HTML. It never returns an error: a failed document fetch
// yields StatusFetchError, any other failure StatusError, and the elapsed
// time is recorded on every outcome. Persistence failures are logged but
// do not change the result status.
func (p *Pipeline) SummarizeOne(ctx context.Context, paper types.SearchedPaper, level, language string) types.SummaryResult {
	start := time.Now()

	result := types.SummaryResult{
		PaperURL: paper.URL,
		Title:    paper.Title,
	}

	doc, err := p.fetchDocument(ctx, paper.URL)
	if err != nil {
		result.Status = types.StatusFetchError
		result.Error = fmt.Sprintf("fetch error: %v", err)
		result.ProcessingSeconds = elapsedSince(start)
		return result
	}

	prompt, err := renderSummaryPrompt(level, language)
	if err != nil {
		result.Status = types.StatusError
		result.Error = fmt.Sprintf("rendering prompt: %v", err)
		result.ProcessingSeconds = elapsedSince(start)
		return result
	}

	text, err := p.generator.Generate(ctx, doc, prompt)
	if err != nil {
		result.Status = types.StatusError
		result.Error = fmt.Sprintf("generation error: %v", err)
		result.ProcessingSeconds = elapsedSince(start)
		return result
	}

	validated := validateResponse(text)

	if path, err := p.saveSummary(validated.HTML, paper.Title, language, level); err != nil {
		p.logf("warning: could not persist summary for %q: %v\n", paper.Title, err)
	} else {
		p.logf("saved %s\n", path)
	}

	result.Status = types.StatusSuccess
	result.HTMLSummary = validated.HTML
	result.Metadata = validated.Metadata
	result.ProcessingSeconds = elapsedSince(start)
	return result
}

// fetchDocument retrieves the paper's document bytes. Any transport
// failure or non-2xx status is a fetch error.
func (p *Pipeline) fetchDocument(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", p.cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := p.fetcher.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	return io.ReadAll(resp.Body)
}

// validatedResponse is the normalized generation output. Metadata tags
// which validation branch applied: the full structure for JSON responses,
// {"format": "html"} for raw markup.
type validatedResponse struct {
	HTML     string
	Metadata map[string]any
}

// validateResponse normalizes the backend's reply. A reply that parses as
// a JSON object yields its "summary" field as the HTML payload (falling
// back to the whole text) and keeps the structure as metadata. Anything
// else is treated as markup directly, wrapped in a minimal container when
// it does not already begin with a tag.
func validateResponse(text string) validatedResponse {
	cleaned := strings.TrimSpace(text)

	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned), &obj); err == nil {
		html := cleaned
		if s, ok := obj["summary"].(string); ok {
			html = s
		}
		return validatedResponse{HTML: html, Metadata: obj}
	}

	if !strings.HasPrefix(cleaned, "<") {
		cleaned = `<div class="paper-summary">` + cleaned + `</div>`
	}
	return validatedResponse{HTML: cleaned, Metadata: map[string]any{"format": "html"}}
}

// elapsedSince returns seconds since start, rounded to two decimals.
func elapsedSince(start time.Time) float64 {
	return math.Round(time.Since(start).Seconds()*100) / 100
}
