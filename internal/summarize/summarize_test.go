// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// stubGenerator returns a fixed reply, or a per-document error keyed on
// the document contents. It tracks its peak concurrency.
type stubGenerator struct {
	reply   string
	failOn  string
	mu      sync.Mutex
	active  int
	peak    int
	prompts []string
}

func (g *stubGenerator) Generate(_ context.Context, doc []byte, prompt string) (string, error) {
	g.mu.Lock()
	g.active++
	if g.active > g.peak {
		g.peak = g.active
	}
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.active--
		g.mu.Unlock()
	}()

	if g.failOn != "" && strings.Contains(string(doc), g.failOn) {
		return "", errors.New("model overloaded")
	}
	return g.reply, nil
}

// paperServer serves fake PDF bytes for any path except /missing.
func paperServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, "%%PDF-1.4 body of %s", r.URL.Path)
	}))
	t.Cleanup(server.Close)
	return server
}

func testPipeline(t *testing.T, gen Generator) *Pipeline {
	t.Helper()
	cfg := types.SummarizeConfig{OutputDir: t.TempDir()}
	return NewPipeline(http.DefaultClient, gen, cfg, &bytes.Buffer{})
}

func TestSummarizeOneSuccess(t *testing.T) {
	server := paperServer(t)
	gen := &stubGenerator{reply: "<div>An accessible overview.</div>"}
	p := testPipeline(t, gen)

	paper := types.SearchedPaper{URL: server.URL + "/2401.00001", Title: "Attention Mechanisms"}
	result := p.SummarizeOne(context.Background(), paper, "general", "en")

	if result.Status != types.StatusSuccess {
		t.Fatalf("Status = %q (error %q), want success", result.Status, result.Error)
	}
	if result.HTMLSummary != "<div>An accessible overview.</div>" {
		t.Errorf("HTMLSummary = %q", result.HTMLSummary)
	}
	if result.Metadata["format"] != "html" {
		t.Errorf("Metadata = %v, want format html", result.Metadata)
	}
	if result.ProcessingSeconds < 0 {
		t.Errorf("ProcessingSeconds = %v", result.ProcessingSeconds)
	}
	if result.PaperURL != paper.URL || result.Title != paper.Title {
		t.Errorf("result identity = %q/%q", result.PaperURL, result.Title)
	}
}

func TestSummarizeOneFetchError(t *testing.T) {
	server := paperServer(t)
	gen := &stubGenerator{reply: "unused"}
	p := testPipeline(t, gen)

	paper := types.SearchedPaper{URL: server.URL + "/missing", Title: "Gone"}
	result := p.SummarizeOne(context.Background(), paper, "general", "en")

	if result.Status != types.StatusFetchError {
		t.Fatalf("Status = %q, want fetch_error", result.Status)
	}
	if !strings.Contains(result.Error, "fetch error") || !strings.Contains(result.Error, "404") {
		t.Errorf("Error = %q", result.Error)
	}
	if result.HTMLSummary != "" {
		t.Errorf("HTMLSummary = %q, want empty on failure", result.HTMLSummary)
	}
	if len(gen.prompts) != 0 {
		t.Errorf("generator called %d times after fetch failure", len(gen.prompts))
	}
}

func TestSummarizeOneGenerationError(t *testing.T) {
	server := paperServer(t)
	gen := &stubGenerator{failOn: "%PDF"}
	p := testPipeline(t, gen)

	paper := types.SearchedPaper{URL: server.URL + "/2401.00002", Title: "Doomed"}
	result := p.SummarizeOne(context.Background(), paper, "general", "en")

	if result.Status != types.StatusError {
		t.Fatalf("Status = %q, want error", result.Status)
	}
	if !strings.Contains(result.Error, "generation error") {
		t.Errorf("Error = %q", result.Error)
	}
}

func TestSummarizeOnePromptParameters(t *testing.T) {
	server := paperServer(t)
	gen := &stubGenerator{reply: "<div>ok</div>"}
	p := testPipeline(t, gen)

	paper := types.SearchedPaper{URL: server.URL + "/2401.00003", Title: "Params"}
	p.SummarizeOne(context.Background(), paper, "expert", "de")

	if len(gen.prompts) != 1 {
		t.Fatalf("generator called %d times", len(gen.prompts))
	}
	if !strings.Contains(gen.prompts[0], "expert") || !strings.Contains(gen.prompts[0], "de") {
		t.Errorf("prompt missing level/language: %q", gen.prompts[0])
	}
}

func TestSummarizeAllIsolatesFailures(t *testing.T) {
	server := paperServer(t)
	gen := &stubGenerator{reply: "<div>fine</div>"}
	p := testPipeline(t, gen)

	papers := []types.SearchedPaper{
		{URL: server.URL + "/a", Title: "A"},
		{URL: server.URL + "/missing", Title: "B"},
		{URL: server.URL + "/c", Title: "C"},
	}

	report := p.SummarizeAll(context.Background(), papers, "general", "en", false)

	if len(report.Results) != 3 {
		t.Fatalf("len(Results) = %d, want one result per paper", len(report.Results))
	}
	if report.SuccessCount != 2 || report.Failed() != 1 {
		t.Errorf("SuccessCount = %d, Failed = %d", report.SuccessCount, report.Failed())
	}
	for i, want := range []string{"A", "B", "C"} {
		if report.Results[i].Title != want {
			t.Errorf("Results[%d].Title = %q, results must keep submission order", i, report.Results[i].Title)
		}
	}
	if report.Results[1].Status != types.StatusFetchError {
		t.Errorf("Results[1].Status = %q", report.Results[1].Status)
	}
	if report.Level != "general" || report.Language != "en" {
		t.Errorf("report echo = %q/%q", report.Level, report.Language)
	}
}

func TestSummarizeAllParallel(t *testing.T) {
	server := paperServer(t)
	gen := &stubGenerator{reply: "<div>fine</div>"}
	cfg := types.SummarizeConfig{OutputDir: t.TempDir(), MaxWorkers: 2}
	p := NewPipeline(http.DefaultClient, gen, cfg, &bytes.Buffer{})

	var papers []types.SearchedPaper
	for i := 0; i < 8; i++ {
		papers = append(papers, types.SearchedPaper{
			URL:   fmt.Sprintf("%s/p%d", server.URL, i),
			Title: fmt.Sprintf("Paper %d", i),
		})
	}

	report := p.SummarizeAll(context.Background(), papers, "general", "en", true)

	if report.SuccessCount != 8 {
		t.Fatalf("SuccessCount = %d, want 8", report.SuccessCount)
	}
	for i := range papers {
		if report.Results[i].Title != papers[i].Title {
			t.Errorf("Results[%d].Title = %q, want %q", i, report.Results[i].Title, papers[i].Title)
		}
	}
	if gen.peak > 2 {
		t.Errorf("peak generator concurrency = %d, pool cap is 2", gen.peak)
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantHTML string
		wantMeta string
	}{
		{
			name:     "raw markup passes through",
			text:     "  <div>hi</div>  ",
			wantHTML: "<div>hi</div>",
			wantMeta: "html",
		},
		{
			name:     "plain text gets wrapped",
			text:     "just some prose",
			wantHTML: `<div class="paper-summary">just some prose</div>`,
			wantMeta: "html",
		},
		{
			name:     "json with summary field",
			text:     `{"summary": "<p>from json</p>", "confidence": 0.9}`,
			wantHTML: "<p>from json</p>",
		},
		{
			name:     "json without summary field keeps full text",
			text:     `{"abstract": "nothing here"}`,
			wantHTML: `{"abstract": "nothing here"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := validateResponse(tt.text)
			if got.HTML != tt.wantHTML {
				t.Errorf("HTML = %q, want %q", got.HTML, tt.wantHTML)
			}
			if tt.wantMeta != "" {
				if got.Metadata["format"] != tt.wantMeta {
					t.Errorf("Metadata = %v, want format %q", got.Metadata, tt.wantMeta)
				}
			} else if _, ok := got.Metadata["format"]; ok {
				t.Errorf("JSON branch must keep original structure, got %v", got.Metadata)
			}
		})
	}
}

func TestSummaryPersisted(t *testing.T) {
	server := paperServer(t)
	gen := &stubGenerator{reply: "<div>persisted</div>"}
	outDir := t.TempDir()
	cfg := types.SummarizeConfig{OutputDir: outDir}
	var log bytes.Buffer
	p := NewPipeline(http.DefaultClient, gen, cfg, &log)

	paper := types.SearchedPaper{URL: server.URL + "/x", Title: "Deep Dive: GNNs"}
	result := p.SummarizeOne(context.Background(), paper, "general", "en")
	if result.Status != types.StatusSuccess {
		t.Fatalf("Status = %q", result.Status)
	}
	if !strings.Contains(log.String(), "Deep_Dive_GNNs-en-general.html") {
		t.Errorf("saved path not logged: %s", log.String())
	}
}
