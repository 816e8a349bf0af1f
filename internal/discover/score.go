// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"math"
	"strconv"
	"time"
)

// Composite score weights. Citation impact dominates, followed by community
// engagement, author authority, and recency.
const (
	citationWeight   = 0.40
	engagementWeight = 0.30
	authorityWeight  = 0.20
	recencyWeight    = 0.10

	// defaultRecency is the flat recency credit applied when no 4-digit
	// year can be parsed from the publication date. A malformed date is
	// not treated as zero recency value.
	defaultRecency = 0.05
)

// Signals holds the raw ranking inputs for one candidate paper. Fields the
// backend omits stay zero; missing signals are never errors.
type Signals struct {
	Citations       int
	SocialMentions  int
	RepoStars       int
	AuthorHIndex    int
	PublicationDate string
}

// CompositeScore computes a single relevance score in [0, 1] from the
// signals, rounded to three decimals. Each component is clamped to [0, 1]
// before weighting, so no single inflated signal can dominate.
func CompositeScore(sig Signals) float64 {
	return compositeScoreAt(sig, time.Now().Year())
}

// compositeScoreAt is CompositeScore with an explicit current year, so
// tests stay deterministic across year boundaries.
func compositeScoreAt(sig Signals, currentYear int) float64 {
	score := math.Min(float64(sig.Citations)/100, 1.0) * citationWeight

	engagement := (float64(sig.SocialMentions) + float64(sig.RepoStars)/100) / 50
	score += math.Min(engagement, 1.0) * engagementWeight

	score += math.Min(float64(sig.AuthorHIndex)/50, 1.0) * authorityWeight

	score += recencyScore(sig.PublicationDate, currentYear) * recencyWeight

	return math.Round(score*1000) / 1000
}

// recencyScore returns the unweighted recency component. Papers published
// this year score 1.0, decaying linearly to 0 over ten years. When the
// date carries no parseable leading 4-digit year, the named fallback
// policy applies: a flat defaultRecency credit.
func recencyScore(pubDate string, currentYear int) float64 {
	year, ok := leadingYear(pubDate)
	if !ok {
		return defaultRecency
	}
	// Clamp both ways: future-dated papers score no better than this year's.
	return math.Min(1, math.Max(0, 1-float64(currentYear-year)/10))
}

// leadingYear parses a 4-digit year from the first four characters of a
// date string (e.g. "2024-01-15", "2024").
func leadingYear(date string) (int, bool) {
	if len(date) < 4 {
		return 0, false
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0, false
	}
	return year, true
}
