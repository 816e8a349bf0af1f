// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var (
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRun        = regexp.MustCompile(`\s+`)
)

// maxFilenameStem caps each sanitized filename component to stay well
// under filesystem limits.
const maxFilenameStem = 150

// sanitizeFilename strips characters that are unsafe in filenames,
// collapses whitespace runs to underscores, and caps the length.
func sanitizeFilename(name string) string {
	s := invalidFilenameChars.ReplaceAllString(name, "")
	s = whitespaceRun.ReplaceAllString(s, "_")
	if len(s) > maxFilenameStem {
		s = s[:maxFilenameStem]
	}
	return s
}

// summaryFilename derives the output filename for one (paper, language,
// level) tuple. Two distinct titles that sanitize identically collide on
// the same path; the later write wins.
func summaryFilename(title, language, level string) string {
	return fmt.Sprintf("%s-%s-%s.html",
		sanitizeFilename(title), sanitizeFilename(language), sanitizeFilename(level))
}

// saveSummary writes the HTML payload to the output directory, UTF-8
// encoded, and returns the file path.
func (p *Pipeline) saveSummary(html, title, language, level string) (string, error) {
	outDir := p.cfg.OutputDir
	if outDir == "" {
		outDir = "summaries"
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(outDir, summaryFilename(title, language, level))
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("writing summary: %w", err)
	}
	return path, nil
}
