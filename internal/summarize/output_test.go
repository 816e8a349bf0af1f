// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain title", "Attention Is All You Need", "Attention_Is_All_You_Need"},
		{"unsafe characters stripped", `Graphs: A "Survey" <v2>?`, "Graphs_A_Survey_v2"},
		{"path separators stripped", `a/b\c`, "abc"},
		{"whitespace runs collapse", "too   many\tspaces", "too_many_spaces"},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeFilename(tt.in); got != tt.want {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilenameCapsLength(t *testing.T) {
	long := strings.Repeat("a", 400)
	got := sanitizeFilename(long)
	if len(got) != maxFilenameStem {
		t.Errorf("len = %d, want %d", len(got), maxFilenameStem)
	}
}

func TestSummaryFilename(t *testing.T) {
	got := summaryFilename("Deep Learning: A Review", "en", "general")
	want := "Deep_Learning_A_Review-en-general.html"
	if got != want {
		t.Errorf("summaryFilename() = %q, want %q", got, want)
	}
}
