// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// FormatTable writes the discovery result as a human-readable table to w.
func FormatTable(result Result, w io.Writer) {
	if len(result.Papers) == 0 {
		fmt.Fprintln(w, "No papers found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-12s  %-6s  %s\n",
		"Rank", "Title", "Published", "Score", "Citations")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for i, p := range result.Papers {
		title := p.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-12s  %-6.3f  %d\n",
			i+1, title, p.PublicationDate, p.CompositeScore, p.CitationNumber)
	}

	fmt.Fprintf(w, "\n%d papers (%s after %d attempts)\n",
		len(result.Papers), result.Outcome, result.Attempts)
}

// FormatJSON writes the discovered papers as indented JSON to w.
func FormatJSON(result Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result.Papers)
}
