package llm_service

import "context"

// Chunk is one fragment of a streamed answer. A non-nil Err terminates the
// stream; the channel is closed after the final chunk either way.
type Chunk struct {
	Text string
	Err  error
}

// StreamingService streams generated text for a prompt as a single-pass,
// non-restartable sequence of fragments. Cancelling the context stops the
// provider call and closes the channel.
type StreamingService interface {
	StreamText(ctx context.Context, prompt string) (<-chan Chunk, error)
}
