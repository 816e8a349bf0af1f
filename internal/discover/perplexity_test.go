// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// chatServer runs an httptest server posing as the chat-completions
// endpoint and repoints perplexityAPIBase at it for the test's lifetime.
func chatServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	orig := perplexityAPIBase
	perplexityAPIBase = server.URL
	t.Cleanup(func() {
		perplexityAPIBase = orig
		server.Close()
	})
	return server
}

// chatReply wraps a content string in the chat-completions envelope.
func chatReply(content string) string {
	resp := chatResponse{Choices: []chatChoice{{Message: chatMessage{Role: "assistant", Content: content}}}}
	out, _ := json.Marshal(resp)
	return string(out)
}

func testSearchRequest() SearchRequest {
	return SearchRequest{
		Topic:      "reinforcement learning",
		DateFrom:   "2026-01-01",
		DateTo:     "2026-03-31",
		MaxResults: 5,
		Domains:    []string{"arxiv.org"},
	}
}

func TestPerplexitySearchSuccess(t *testing.T) {
	var gotReq chatRequest
	var gotAuth string
	chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Write([]byte(chatReply(`{"papers": [
			{"url": "https://arxiv.org/pdf/2401.00001", "title": "One", "publication_date": "2026-02-01", "citation_number": 12},
			{"url": "https://arxiv.org/pdf/2401.00002", "title": "Two", "publication_date": "2026-02-15", "citation_number": 3}
		]}`)))
	})

	backend := &PerplexityBackend{Client: http.DefaultClient, APIKey: "pplx_test"}
	candidates, err := backend.Search(context.Background(), testSearchRequest())
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("len(candidates) = %d, want 2", len(candidates))
	}
	if candidates[0].Title != "One" || candidates[0].CitationNumber != 12 {
		t.Errorf("candidates[0] = %+v", candidates[0])
	}

	if gotAuth != "Bearer pplx_test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotReq.Model != "sonar" {
		t.Errorf("Model = %q, want default sonar", gotReq.Model)
	}
	if gotReq.ResponseFormat == nil || gotReq.ResponseFormat.Type != "json_schema" {
		t.Errorf("ResponseFormat = %+v, want json_schema", gotReq.ResponseFormat)
	}
	if len(gotReq.SearchDomainFilter) != 1 || gotReq.SearchDomainFilter[0] != "arxiv.org" {
		t.Errorf("SearchDomainFilter = %v", gotReq.SearchDomainFilter)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Fatalf("Messages = %+v", gotReq.Messages)
	}
	if !strings.Contains(gotReq.Messages[1].Content, "reinforcement learning") {
		t.Errorf("user prompt missing topic: %q", gotReq.Messages[1].Content)
	}
}

func TestPerplexitySearchExclusions(t *testing.T) {
	var gotReq chatRequest
	chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(chatReply(`{"papers": []}`)))
	})

	req := testSearchRequest()
	req.SeenURLs = []string{"https://arxiv.org/pdf/2401.00001", "https://arxiv.org/pdf/2401.00002"}

	backend := &PerplexityBackend{Client: http.DefaultClient, APIKey: "pplx_test"}
	candidates, err := backend.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("len(candidates) = %d, want 0", len(candidates))
	}
	for _, url := range req.SeenURLs {
		if !strings.Contains(gotReq.Messages[0].Content, url) {
			t.Errorf("system prompt does not exclude %s", url)
		}
	}
}

func TestPerplexitySearchHTTPError(t *testing.T) {
	chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	})

	backend := &PerplexityBackend{Client: http.DefaultClient, APIKey: "bad"}
	_, err := backend.Search(context.Background(), testSearchRequest())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error = %v, want status code included", err)
	}
	var pe *ProtocolError
	if errors.As(err, &pe) {
		t.Errorf("HTTP errors must not be protocol errors: %v", err)
	}
}

func TestPerplexitySearchProtocolErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		reason string
	}{
		{"unparseable envelope", `{{{`, "unparseable body"},
		{"no choices", `{"choices": []}`, "no choices"},
		{"empty content", chatReply(""), "empty response content"},
		{"content not JSON", chatReply("here are some papers..."), "not a JSON object"},
		{"missing papers key", chatReply(`{"results": []}`), `missing "papers" key`},
		{"papers not an array", chatReply(`{"papers": "none"}`), `malformed "papers" array`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chatServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			backend := &PerplexityBackend{Client: http.DefaultClient, APIKey: "pplx_test"}
			_, err := backend.Search(context.Background(), testSearchRequest())
			var pe *ProtocolError
			if !errors.As(err, &pe) {
				t.Fatalf("error = %v, want *ProtocolError", err)
			}
			if !strings.Contains(pe.Reason, tt.reason) {
				t.Errorf("Reason = %q, want substring %q", pe.Reason, tt.reason)
			}
			if pe.Backend != "perplexity" {
				t.Errorf("Backend = %q", pe.Backend)
			}
		})
	}
}
