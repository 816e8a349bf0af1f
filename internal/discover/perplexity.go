// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/paper-digest/internal/httputil"
)

// perplexityAPIBase is the Perplexity chat-completions endpoint. Declared
// as a var so tests can substitute an httptest server.
var perplexityAPIBase = "https://api.perplexity.ai/chat/completions"

// papersSchema constrains the backend response to a {"papers": [...]}
// object so the reply is machine-parseable rather than prose.
var papersSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "papers": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "url": {"type": "string"},
          "title": {"type": "string"},
          "publication_date": {"type": "string"},
          "citation_number": {"type": "integer"}
        },
        "required": ["url", "title", "publication_date", "citation_number"]
      }
    }
  },
  "required": ["papers"]
}`)

// PerplexityBackend queries the Perplexity search API for candidate papers.
type PerplexityBackend struct {
	Client *http.Client
	APIKey string

	// Model is the Perplexity model identifier (default "sonar").
	Model string

	// MaxRetries bounds rate-limit retries. Zero means the httputil default.
	MaxRetries int
}

// Name returns the backend identifier.
func (b *PerplexityBackend) Name() string { return "perplexity" }

// Chat-completions request and response bodies.
type chatRequest struct {
	Model              string          `json:"model"`
	Messages           []chatMessage   `json:"messages"`
	SearchDomainFilter []string        `json:"search_domain_filter,omitempty"`
	ResponseFormat     *responseFormat `json:"response_format,omitempty"`
	Temperature        float64         `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type       string     `json:"type"`
	JSONSchema jsonSchema `json:"json_schema"`
}

type jsonSchema struct {
	Name   string          `json:"name"`
	Schema json.RawMessage `json:"schema"`
	Strict bool            `json:"strict"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

// Search issues one schema-constrained search call and parses the reply
// into candidates. A reply that does not match the expected schema is a
// *ProtocolError; the discovery loop treats that as fatal for the call.
func (b *PerplexityBackend) Search(ctx context.Context, sreq SearchRequest) ([]Candidate, error) {
	systemPrompt, err := renderSearchPrompt(sreq)
	if err != nil {
		return nil, fmt.Errorf("rendering search prompt: %w", err)
	}

	model := b.Model
	if model == "" {
		model = "sonar"
	}

	userPrompt := fmt.Sprintf(
		"Topic: **%s**. Publication period: **%s to %s**. Return at most %d papers ranked by impact. Only direct arXiv PDF links, never abstract or HTML pages.",
		sreq.Topic, sreq.DateFrom, sreq.DateTo, sreq.MaxResults)

	reqBody := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		SearchDomainFilter: sreq.Domains,
		ResponseFormat: &responseFormat{
			Type:       "json_schema",
			JSONSchema: jsonSchema{Name: "papers_list", Schema: papersSchema, Strict: true},
		},
		// Lower temperature for more consistent results.
		Temperature: 0.3,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, perplexityAPIBase, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.APIKey)

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, b.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("Perplexity API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Perplexity API returned %d: %s", resp.StatusCode, string(body))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, &ProtocolError{Backend: b.Name(), Reason: "unparseable body", Err: err}
	}
	if len(cr.Choices) == 0 {
		return nil, &ProtocolError{Backend: b.Name(), Reason: "no choices in response"}
	}

	content := cr.Choices[0].Message.Content
	if content == "" {
		return nil, &ProtocolError{Backend: b.Name(), Reason: "empty response content"}
	}

	return parseCandidates(b.Name(), content)
}

// parseCandidates unpacks the JSON content block. The "papers" key must be
// present even when empty.
func parseCandidates(backend, content string) ([]Candidate, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return nil, &ProtocolError{Backend: backend, Reason: "content is not a JSON object", Err: err}
	}

	raw, ok := fields["papers"]
	if !ok {
		return nil, &ProtocolError{Backend: backend, Reason: `missing "papers" key`}
	}

	var candidates []Candidate
	if err := json.Unmarshal(raw, &candidates); err != nil {
		return nil, &ProtocolError{Backend: backend, Reason: `malformed "papers" array`, Err: err}
	}
	return candidates, nil
}
