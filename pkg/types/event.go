// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// EventKind labels an entry in the run's event log.
type EventKind string

const (
	EventQueryExecuted    EventKind = "query_executed"
	EventQuerySkipped     EventKind = "query_skipped"
	EventPaperFetched     EventKind = "paper_fetched"
	EventExtractionFailed EventKind = "extraction_failed"
	EventGapProposed      EventKind = "gap_proposed"
	EventGapMerged        EventKind = "gap_merged"
	EventGapCorroborated  EventKind = "gap_corroborated"
	EventGapInconclusive  EventKind = "gap_inconclusive"
	EventGapEliminated    EventKind = "gap_eliminated"
	EventGapValidated     EventKind = "gap_validated"
	EventGapExhausted     EventKind = "gap_exhausted"
)

// Event is one entry in the append-only run log. Every fetch, extraction,
// check, and terminal transition is recorded here; the metrics aggregator
// derives all run statistics from this log rather than from mutable
// candidate state, so a run can be audited or recomputed after the fact.
type Event struct {
	// Kind labels the event.
	Kind EventKind `json:"kind" yaml:"kind"`

	// At is the event timestamp.
	At time.Time `json:"at" yaml:"at"`

	// PaperID is set for fetch and check events.
	PaperID string `json:"paper_id,omitempty" yaml:"paper_id,omitempty"`

	// GapID is set for candidate lifecycle events.
	GapID string `json:"gap_id,omitempty" yaml:"gap_id,omitempty"`

	// Domain is the domain tag associated with the event, when known.
	Domain string `json:"domain,omitempty" yaml:"domain,omitempty"`

	// Query is the corpus query text for query events.
	Query string `json:"query,omitempty" yaml:"query,omitempty"`

	// Confidence carries the check confidence for corroboration and
	// elimination events.
	Confidence float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`

	// Err holds the failure message for skip and failure events.
	Err string `json:"error,omitempty" yaml:"error,omitempty"`
}
