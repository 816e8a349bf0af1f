// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Canonicalization failures. The discovery loop drops candidates that fail
// with either error; callers can distinguish a wrong source domain from a
// recognizable domain with no extractable identifier.
var (
	// ErrInvalidSource indicates the URL does not belong to the accepted
	// source domain.
	ErrInvalidSource = errors.New("not an arxiv.org URL")

	// ErrUnresolvableID indicates no arXiv identifier could be extracted
	// from the URL.
	ErrUnresolvableID = errors.New("no arXiv identifier in URL")
)

// arxivPDFBase is the canonical document endpoint. arXiv serves the PDF at
// /pdf/<id> with no .pdf extension.
const arxivPDFBase = "https://arxiv.org/pdf/"

// idPatterns are the recognized URL shapes, checked in priority order:
// abstract/PDF page with a new-style ID, abstract/PDF page with an
// old-style archive-prefixed ID, then bare trailing identifiers of either
// style (with an optional .pdf suffix). First match wins.
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`arxiv\.org/(?:abs|pdf)/(\d+\.\d+(?:v\d+)?)`),
	regexp.MustCompile(`arxiv\.org/(?:abs|pdf)/([a-z-]+/\d+\.\d+(?:v\d+)?)`),
	regexp.MustCompile(`/(\d+\.\d+(?:v\d+)?)(?:\.pdf)?$`),
	regexp.MustCompile(`/([a-z-]+/\d+\.\d+(?:v\d+)?)(?:\.pdf)?$`),
}

// Canonicalize validates that rawURL belongs to arXiv and rewrites it to
// the canonical direct-PDF form, preserving the identifier verbatim
// including any version suffix. Pure function; no network access.
func Canonicalize(rawURL string) (string, error) {
	if !strings.Contains(rawURL, "arxiv.org") {
		return "", fmt.Errorf("%w: %q", ErrInvalidSource, rawURL)
	}

	for _, pat := range idPatterns {
		if m := pat.FindStringSubmatch(rawURL); m != nil {
			return arxivPDFBase + m[1], nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnresolvableID, rawURL)
}
