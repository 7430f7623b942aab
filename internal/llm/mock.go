package llm

import "context"

// Mock is a test double for the Client interface.
type Mock struct {
	RefineFunc    func(ctx context.Context, raw string) (string, error)
	SummarizeFunc func(ctx context.Context, text string) (string, error)

	RefineCalls    []string
	SummarizeCalls []string
}

func (m *Mock) Refine(ctx context.Context, raw string) (string, error) {
	m.RefineCalls = append(m.RefineCalls, raw)
	if m.RefineFunc != nil {
		return m.RefineFunc(ctx, raw)
	}
	return raw, nil
}

func (m *Mock) Summarize(ctx context.Context, text string) (string, error) {
	m.SummarizeCalls = append(m.SummarizeCalls, text)
	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, text)
	}
	return text, nil
}
