// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import "fmt"

// RetrievalError wraps a transient provider failure. Callers retry with
// backoff and then skip-and-record; it is never fatal to a run.
type RetrievalError struct {
	Provider string
	Err      error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("corpus retrieval via %s: %v", e.Provider, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// NotFoundError means no provider knows the requested paper. Not
// retryable; callers skip the paper.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("paper %q not found", e.ID)
}
