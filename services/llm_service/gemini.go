package llm_service

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/iterator"
)

// GeminiService streams completions from a Vertex AI Gemini model.
type GeminiService struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *slog.Logger
}

func NewGeminiService(ctx context.Context, projectID, location, modelName string, logger *slog.Logger) (*GeminiService, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a Gemini client")
	}

	client, err := genai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "text/plain",
	}

	return &GeminiService{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// StreamText forwards the provider's token stream as it arrives, in
// provider order, with no buffering beyond the provider's own.
func (s *GeminiService) StreamText(ctx context.Context, prompt string) (<-chan Chunk, error) {
	iter := s.model.GenerateContentStream(ctx, genai.Text(prompt))

	out := make(chan Chunk)
	go func() {
		defer close(out)
		for {
			resp, err := iter.Next()
			if err == iterator.Done {
				return
			}
			if err != nil {
				s.logger.Error("Gemini stream failed",
					slog.String("error", err.Error()))
				select {
				case out <- Chunk{Err: fmt.Errorf("gemini stream: %w", err)}:
				case <-ctx.Done():
				}
				return
			}

			for _, cand := range resp.Candidates {
				if cand.Content == nil {
					continue
				}
				for _, part := range cand.Content.Parts {
					txt, ok := part.(genai.Text)
					if !ok || txt == "" {
						continue
					}
					select {
					case out <- Chunk{Text: string(txt)}:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return out, nil
}

func (s *GeminiService) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
