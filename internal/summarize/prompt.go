// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"bytes"
	"text/template"
)

// summaryPromptTmpl is the prompt sent to the generation backend alongside
// the paper document. It asks for a single self-contained HTML summary
// tailored to the audience level and language.
var summaryPromptTmpl = template.Must(template.New("summary").Parse(`You are an expert science communicator creating engaging newsletter content. Analyze this research paper and create a compelling summary.

AUDIENCE: {{.Level}} level
LANGUAGE: {{.Language}}
FORMAT: single HTML string
READING TIME: at most 3 minutes

CONTENT STRATEGY:
- Open with a hook that makes the research relevant to the reader.
- Use vivid, accessible language without oversimplifying.
- Integrate technical details naturally into the narrative.
- Emphasize why the reader should care.
- Mention key figures or tables organically when they support important points.

STRUCTURE (fluid, not rigid), inside <div class="paper-summary">:
- a header with the paper title and authors
- "The Big Question": what motivated this research and why it matters
- "How They Tackled It": the methods, focusing on the innovative parts
- "What They Uncovered": key findings told as a story
- "Putting It In Perspective": limitations and how to read the results
- "Why This Matters": practical applications and next steps for the field

WRITING GUIDELINES:
- Use <strong> for emphasis and <em> for technical terms.
- Use <blockquote> for particularly striking findings.
- Use <ul> only for listing 2-3 key takeaways.
- Keep the tone authoritative yet accessible, with smooth transitions.

CRITICAL: output only the HTML string, no additional text.
`))

// condensePromptTmpl produces the newsletter teaser variant: the summary
// truncated to its first 500 characters followed by an ellipsis, returned
// as valid HTML with the retained content unaltered.
var condensePromptTmpl = template.Must(template.New("condense").Parse(`Your sole role is to reduce the received HTML summary of a scientific article so that only its first 500 characters of content remain, followed by three dots.

You must not alter the content of those first 500 characters, and you must return valid HTML.

--- COMPLETE PAPER SUMMARY START ---
{{.Summary}}
--- COMPLETE PAPER SUMMARY END ---
`))

// renderSummaryPrompt executes the summary prompt template for one
// audience level and output language.
func renderSummaryPrompt(level, language string) (string, error) {
	var buf bytes.Buffer
	err := summaryPromptTmpl.Execute(&buf, struct{ Level, Language string }{level, language})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// CondensePrompt renders the newsletter condensation prompt for a
// previously generated summary.
func CondensePrompt(summary string) (string, error) {
	var buf bytes.Buffer
	if err := condensePromptTmpl.Execute(&buf, struct{ Summary string }{summary}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
