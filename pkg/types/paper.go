// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the gap-engine run:
// papers, gap candidates, the run event stream, configuration, and the
// final analysis report.
package types

import "time"

// Paper is a normalized record returned by a corpus provider. Papers are
// immutable once fetched; the corpus adapter owns them for the run's
// lifetime.
type Paper struct {
	// ID is the canonical identifier from the source (arXiv ID, DOI, or URL).
	ID string `json:"id" yaml:"id"`

	// Title is the paper title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Abstract is the paper abstract or summary text.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Domains lists the subject tags reported by the source (arXiv
	// categories, OpenAlex concepts, Semantic Scholar fields of study).
	Domains []string `json:"domains,omitempty" yaml:"domains,omitempty"`

	// Date is the publication or preprint date.
	Date time.Time `json:"date,omitempty" yaml:"date,omitempty"`

	// Source identifies which provider found this paper (e.g. "arxiv").
	Source string `json:"source" yaml:"source"`

	// URL is a resolvable link to the paper.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// RelevanceScore is a value between 0.0 and 1.0 assigned at search time.
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`

	// FetchedAt records when the corpus adapter retrieved this paper.
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
}

// PrimaryDomain returns the paper's first domain tag, or "general" when the
// source reported none. Used for frontier coverage tallies.
func (p Paper) PrimaryDomain() string {
	if len(p.Domains) > 0 {
		return p.Domains[0]
	}
	return "general"
}
