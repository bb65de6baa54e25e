// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extraction

import "fmt"

// ProviderError wraps a transient AI API failure. Callers retry with
// backoff and then skip-and-record.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("extraction via %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// MalformedResponseError means the model replied but the reply failed
// validation. Not retried; a check that ends this way is inconclusive.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed AI response: %s", e.Reason)
}
