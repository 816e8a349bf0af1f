// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivBackend queries the arXiv export API directly. It needs no API key
// and returns no citation or social signals, so ranking falls back to
// recency; it is the offline-friendly alternative to PerplexityBackend.
type ArxivBackend struct {
	Client    *http.Client
	UserAgent string
}

// Name returns the backend identifier.
func (b *ArxivBackend) Name() string { return "arxiv" }

// Search queries the arXiv API for papers on the topic within the
// requested submission window.
func (b *ArxivBackend) Search(ctx context.Context, sreq SearchRequest) ([]Candidate, error) {
	query := buildArxivQuery(sreq)

	maxResults := sreq.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	endpoint := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=submittedDate&sortOrder=descending",
		arxivAPIBase, query, maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", b.UserAgent)

	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, &ProtocolError{Backend: b.Name(), Reason: "unparseable Atom feed", Err: err}
	}

	var candidates []Candidate
	for _, entry := range feed.Entries {
		id := strings.TrimSpace(entry.ID)
		if id == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			URL:             id,
			Title:           strings.Join(strings.Fields(entry.Title), " "),
			PublicationDate: publishedDate(entry.Published),
		})
	}
	return candidates, nil
}

// buildArxivQuery constructs the search_query parameter: topic terms
// ANDed with a submittedDate window when the request has one.
func buildArxivQuery(sreq SearchRequest) string {
	terms := strings.Fields(sreq.Topic)
	for i, t := range terms {
		terms[i] = url.QueryEscape(t)
	}
	query := "all:" + strings.Join(terms, "+")

	if sreq.DateFrom != "" && sreq.DateTo != "" {
		query += fmt.Sprintf("+AND+submittedDate:[%s0000+TO+%s2359]",
			compactDate(sreq.DateFrom), compactDate(sreq.DateTo))
	}
	return query
}

// compactDate turns "2026-01-31" into the "20260131" form the arXiv
// date-range syntax expects.
func compactDate(date string) string {
	return strings.ReplaceAll(date, "-", "")
}

// publishedDate keeps the date part of an RFC 3339 timestamp.
func publishedDate(published string) string {
	published = strings.TrimSpace(published)
	if idx := strings.Index(published, "T"); idx > 0 {
		return published[:idx]
	}
	return published
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string `xml:"id"`
	Title     string `xml:"title"`
	Published string `xml:"published"`
}
