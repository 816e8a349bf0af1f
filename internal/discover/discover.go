// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discover finds recent papers on a topic through an external
// search backend, validates and ranks the candidates, and deduplicates
// them across search iterations.
package discover

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// maxAttempts is the search retry budget for one discovery call. Each
// backend round trip consumes one attempt regardless of how many new
// papers it yields.
const maxAttempts = 5

// defaultDomains is the domain filter used when the caller supplies none.
// A caller-supplied list fully replaces it.
var defaultDomains = []string{"arxiv.org", "scholar.google.com", "semanticscholar.org"}

// SearchBackend issues one search call against an external service. Each
// implementation (Perplexity, mocks in tests) follows the Strategy pattern.
type SearchBackend interface {
	Name() string
	Search(ctx context.Context, req SearchRequest) ([]Candidate, error)
}

// SearchRequest holds the parameters for a single backend call.
type SearchRequest struct {
	Topic      string
	DateFrom   string
	DateTo     string
	MaxResults int
	Domains    []string

	// SeenURLs lists canonical URLs already accepted; the rendered prompt
	// instructs the backend to exclude them.
	SeenURLs []string
}

// Candidate is one raw record returned by the backend, before URL
// validation. Signal fields the backend omits stay zero.
type Candidate struct {
	URL             string `json:"url"`
	Title           string `json:"title"`
	PublicationDate string `json:"publication_date"`
	CitationNumber  int    `json:"citation_number"`
	SocialMentions  int    `json:"social_mentions,omitempty"`
	RepoStars       int    `json:"github_stars,omitempty"`
	AuthorHIndex    int    `json:"author_hindex,omitempty"`
}

// ProtocolError indicates the backend returned a response that does not
// match the expected schema (unparseable body or missing "papers" key).
// Unlike a bad candidate URL, this aborts the whole discovery call.
type ProtocolError struct {
	Backend string
	Reason  string
	Err     error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: malformed search response: %s: %v", e.Backend, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: malformed search response: %s", e.Backend, e.Reason)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// Outcome says why the discovery loop stopped.
type Outcome string

const (
	// OutcomeSatisfied means the result quota was reached.
	OutcomeSatisfied Outcome = "satisfied"

	// OutcomeExhausted means the attempts budget ran out first.
	OutcomeExhausted Outcome = "exhausted"
)

// Result holds the ranked, deduplicated papers from one discovery call.
type Result struct {
	Papers  []types.SearchedPaper
	Outcome Outcome

	// Attempts is the number of backend calls made.
	Attempts int
}

// Request holds the caller-supplied discovery parameters.
type Request struct {
	Topic    string
	DateFrom string
	DateTo   string
}

// Discover repeatedly queries the backend until the quota in cfg.MaxResults
// is met or the attempts budget is exhausted, whichever comes first. Each
// iteration validates candidate URLs (dropping bad ones with a warning on
// w), scores and ranks the survivors, and merges them against a seen-URL
// set so no paper appears twice.
//
// Both terminal outcomes return whatever has accumulated, never an error.
// The one exception is a backend failure: a *ProtocolError or any other
// backend error aborts the call immediately with no partial list. The
// attempts budget only governs "too few good results".
func Discover(ctx context.Context, backend SearchBackend, req Request, cfg types.DiscoveryConfig, w io.Writer) (Result, error) {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 15
	}
	domains := cfg.Domains
	if len(domains) == 0 {
		domains = defaultDomains
	}

	seen := make(map[string]bool)
	var seenOrder []string
	var accepted []types.SearchedPaper
	attempts := 0

	for len(accepted) < maxResults && attempts < maxAttempts {
		attempts++
		fmt.Fprintf(w, "searching %q from %s to %s (attempt %d/%d)\n",
			req.Topic, req.DateFrom, req.DateTo, attempts, maxAttempts)

		candidates, err := backend.Search(ctx, SearchRequest{
			Topic:      req.Topic,
			DateFrom:   req.DateFrom,
			DateTo:     req.DateTo,
			MaxResults: maxResults,
			Domains:    domains,
			SeenURLs:   seenOrder,
		})
		if err != nil {
			return Result{}, fmt.Errorf("search backend %s: %w", backend.Name(), err)
		}

		validated := validateAndScore(candidates, cfg.CandidateDelay, w)

		// Stable sort: ties keep backend-returned order.
		sort.SliceStable(validated, func(i, j int) bool {
			return validated[i].CompositeScore > validated[j].CompositeScore
		})

		added := 0
		for _, p := range validated {
			if seen[p.URL] {
				continue
			}
			seen[p.URL] = true
			seenOrder = append(seenOrder, p.URL)
			accepted = append(accepted, p)
			added++
			if len(accepted) >= maxResults {
				break
			}
		}

		fmt.Fprintf(w, "accepted %d new papers (%d/%d)\n", added, len(accepted), maxResults)
	}

	outcome := OutcomeExhausted
	if len(accepted) >= maxResults {
		outcome = OutcomeSatisfied
	}
	return Result{Papers: accepted, Outcome: outcome, Attempts: attempts}, nil
}

// validateAndScore canonicalizes each candidate URL and computes its
// composite score. A candidate that fails canonicalization is dropped with
// a warning; one bad candidate never aborts the batch. A pacing delay is
// applied between validated candidates to stay under backend rate limits.
func validateAndScore(candidates []Candidate, delay time.Duration, w io.Writer) []types.SearchedPaper {
	var papers []types.SearchedPaper
	for _, c := range candidates {
		canonical, err := Canonicalize(c.URL)
		if err != nil {
			fmt.Fprintf(w, "warning: excluding candidate %q: %v\n", c.Title, err)
			continue
		}

		if len(papers) > 0 && delay > 0 {
			time.Sleep(delay)
		}

		papers = append(papers, types.SearchedPaper{
			URL:             canonical,
			Title:           c.Title,
			PublicationDate: c.PublicationDate,
			CitationNumber:  c.CitationNumber,
			CompositeScore: CompositeScore(Signals{
				Citations:       c.CitationNumber,
				SocialMentions:  c.SocialMentions,
				RepoStars:       c.RepoStars,
				AuthorHIndex:    c.AuthorHIndex,
				PublicationDate: c.PublicationDate,
			}),
		})
	}
	return papers
}
