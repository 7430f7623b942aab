package llm

import "context"

// Client defines the interface for text post-processing providers.
type Client interface {
	// Refine cleans up a raw voice transcript: punctuation and grammar
	// fixes only, never invented content. For empty or unintelligible
	// input the provider returns FallbackText verbatim - a contract of
	// the cleanup prompt, not re-validated locally.
	Refine(ctx context.Context, raw string) (string, error)

	// Summarize produces a concise first-person summary of the text.
	Summarize(ctx context.Context, text string) (string, error)
}
