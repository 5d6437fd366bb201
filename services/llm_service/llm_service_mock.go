package llm_service

import "context"

type MockStreamingService struct {
	StreamTextFunc func(ctx context.Context, prompt string) (<-chan Chunk, error)
}

func (m *MockStreamingService) StreamText(ctx context.Context, prompt string) (<-chan Chunk, error) {
	if m.StreamTextFunc != nil {
		return m.StreamTextFunc(ctx, prompt)
	}

	out := make(chan Chunk, 1)
	out <- Chunk{Text: "mock response"}
	close(out)
	return out, nil
}
