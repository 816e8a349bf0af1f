// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"bytes"
	"strings"
	"text/template"
)

// searchPromptTmpl is the system prompt sent with each search call. It
// constrains results to arXiv PDF URLs, describes the ranking factors, and
// excludes URLs already accepted in this discovery call.
var searchPromptTmpl = template.Must(template.New("search").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(`You are an academic paper discovery system restricted to arXiv.

SOURCE CONSTRAINTS:
- Primary source: arxiv.org. Secondary sources (Google Scholar, Semantic Scholar) may only be used to validate citation counts.
- Reject dictionary sites, blogs, news articles, and commercial pages.
- Every final URL must be a direct arXiv PDF link of the form https://arxiv.org/pdf/XXXX.XXXXX (no .pdf extension). Convert /abs/ links to /pdf/.

MISSION:
Find the most influential arXiv papers on: {{.Topic}}
Publication window: {{.DateFrom}} to {{.DateTo}}

RANKING FACTORS:
1. Citation impact (40%): total citations from external sources.
2. Community engagement (30%): social media mentions, GitHub stars, media coverage.
3. Authority (20%): author h-index, venue prestige, institutional affiliation.
4. Recency and relevance (10%): temporal relevance and direct topic alignment.

EXCLUSIONS:
{{if .SeenURLs}}URLs must be different from: {{join .SeenURLs ","}}{{else}}No URLs are excluded yet.{{end}}

For each paper report: url (direct arXiv PDF link), title, publication_date (YYYY-MM-DD), citation_number.
Respond with a JSON object containing a "papers" array and nothing else.
`))

// renderSearchPrompt executes the search prompt template for one request.
func renderSearchPrompt(req SearchRequest) (string, error) {
	var buf bytes.Buffer
	err := searchPromptTmpl.Execute(&buf, struct {
		Topic    string
		DateFrom string
		DateTo   string
		SeenURLs []string
	}{req.Topic, req.DateFrom, req.DateTo, req.SeenURLs})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
