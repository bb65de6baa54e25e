// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// GapState tracks a candidate's progress through validation.
type GapState string

const (
	// GapProposed means the candidate was just extracted and has not been
	// checked against any paper yet.
	GapProposed GapState = "proposed"

	// GapValidating means at least one check has run without a terminal
	// outcome.
	GapValidating GapState = "validating"

	// GapValidated means the candidate crossed the confidence threshold
	// with the required corroboration count. Terminal.
	GapValidated GapState = "validated"

	// GapEliminated means a paper was found that solves the gap. Terminal
	// and final: later weaker evidence never reopens the candidate.
	GapEliminated GapState = "eliminated"

	// GapExhausted means the candidate spent its check budget without
	// reaching the validation threshold. Terminal; reported only in
	// aggregate counts.
	GapExhausted GapState = "exhausted"
)

// Terminal reports whether the state admits no further transitions.
func (s GapState) Terminal() bool {
	return s == GapValidated || s == GapEliminated || s == GapExhausted
}

// GapCandidate is a provisional unsolved problem proposed from a single
// paper, pending corroboration. Created by the gap extractor; mutated only
// by the validation engine under its per-candidate lock.
type GapCandidate struct {
	// ID is a short unique identifier for the candidate.
	ID string `json:"gap_id" yaml:"gap_id"`

	// Title is a concise name for the gap.
	Title string `json:"gap_title" yaml:"gap_title"`

	// Description is the gap statement taken from the source paper.
	Description string `json:"description" yaml:"description"`

	// Category is the research domain the gap belongs to.
	Category string `json:"category" yaml:"category"`

	// SourcePaperID identifies the paper the gap was extracted from.
	SourcePaperID string `json:"source_paper" yaml:"source_paper"`

	// SourcePaperTitle is the source paper's title.
	SourcePaperTitle string `json:"source_paper_title" yaml:"source_paper_title"`

	// SuggestedApproaches lists research directions proposed at extraction time.
	SuggestedApproaches []string `json:"suggested_approaches,omitempty" yaml:"suggested_approaches,omitempty"`

	// RelatedPaperIDs collects papers merged into this candidate by the
	// near-duplicate dedup path.
	RelatedPaperIDs []string `json:"related_papers,omitempty" yaml:"related_papers,omitempty"`

	// State is the candidate's position in the validation lifecycle.
	State GapState `json:"state" yaml:"state"`

	// ValidationAttempts counts corroboration checks run against this
	// candidate. Never decreases.
	ValidationAttempts int `json:"validation_attempts" yaml:"validation_attempts"`

	// PapersCheckedAgainst counts distinct papers this candidate was
	// checked against, including the eliminating paper. Never decreases.
	PapersCheckedAgainst int `json:"papers_checked_against" yaml:"papers_checked_against"`

	// ConfidenceScore is the running confidence, 0-100, that the gap is
	// genuinely open. Non-decreasing while the candidate is validating.
	ConfidenceScore float64 `json:"confidence_score" yaml:"confidence_score"`

	// CreatedAt records when the extractor proposed the candidate.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Active reports whether the candidate can still receive checks.
func (g *GapCandidate) Active() bool {
	return !g.State.Terminal()
}

// GapMetrics holds derived scalar scores computed once a candidate reaches
// the validated state. Read-only thereafter.
type GapMetrics struct {
	// DifficultyScore assesses research difficulty, 0-10.
	DifficultyScore float64 `json:"difficulty_score" yaml:"difficulty_score"`

	// InnovationPotential scores innovation upside, 0-10.
	InnovationPotential float64 `json:"innovation_potential" yaml:"innovation_potential"`

	// CommercialViability scores commercial application potential, 0-10.
	CommercialViability float64 `json:"commercial_viability" yaml:"commercial_viability"`

	// TimeToSolution estimates time to solve, e.g. "2-3 years".
	TimeToSolution string `json:"time_to_solution" yaml:"time_to_solution"`

	// FundingLikelihood estimates the chance of securing funding, 0-100.
	FundingLikelihood float64 `json:"funding_likelihood" yaml:"funding_likelihood"`

	// CollaborationScore scores the potential for collaborative work, 0-10.
	CollaborationScore float64 `json:"collaboration_score" yaml:"collaboration_score"`

	// EthicalConsiderations scores ethical complexity, 0-10.
	EthicalConsiderations float64 `json:"ethical_considerations" yaml:"ethical_considerations"`
}

// EliminationRecord captures a definitive finding that a previously open
// gap is already solved. Immutable once created.
type EliminationRecord struct {
	// GapID identifies the eliminated candidate.
	GapID string `json:"gap_id" yaml:"gap_id"`

	// GapTitle is the eliminated candidate's title.
	GapTitle string `json:"gap_title" yaml:"gap_title"`

	// Reason explains why the gap was judged solved.
	Reason string `json:"elimination_reason" yaml:"elimination_reason"`

	// SolvedByPaperID identifies the paper that solves the gap.
	SolvedByPaperID string `json:"solved_by_paper" yaml:"solved_by_paper"`

	// SolvedByPaperTitle is the solving paper's title.
	SolvedByPaperTitle string `json:"solved_by_paper_title" yaml:"solved_by_paper_title"`

	// Confidence is the elimination confidence reported by the check, 0-100.
	Confidence float64 `json:"elimination_confidence" yaml:"elimination_confidence"`

	// RecordedAt is when the elimination was decided.
	RecordedAt time.Time `json:"recorded_at" yaml:"recorded_at"`
}
