// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// FormatTable writes the report as a human-readable table to w.
func FormatTable(report Report, w io.Writer) {
	if len(report.Results) == 0 {
		fmt.Fprintln(w, "No papers summarized.")
		return
	}

	fmt.Fprintf(w, "%-60s  %-12s  %-8s  %s\n", "Title", "Status", "Time", "Error")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, r := range report.Results {
		title := r.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		errText := r.Error
		if len(errText) > 40 {
			errText = errText[:37] + "..."
		}
		fmt.Fprintf(w, "%-60s  %-12s  %6.1fs  %s\n", title, r.Status, r.ProcessingSeconds, errText)
	}

	fmt.Fprintf(w, "\n%d/%d successful (%s audience, %s)\n",
		report.SuccessCount, len(report.Results), report.Level, report.Language)
}

// FormatJSON writes the report as indented JSON to w.
func FormatJSON(report Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
