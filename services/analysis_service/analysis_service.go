// Package analysis_service answers a prompt over the extracted text of
// stored PDFs, streaming the generated answer back chunk by chunk.
package analysis_service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/serisow/docvault/services/convert_service"
	"github.com/serisow/docvault/services/llm_service"
)

const (
	documentHeaderFormat = "\n\n--- Document %d ---\n"
	truncatedMarker      = "\n\n--- Truncated ---\n"

	promptTemplate = "prompt: %s\ndocument: %s\n\nReturn plain text only. Do not use markdown or any other formatting."
)

var (
	ErrNoDocuments = errors.New("no document URLs provided")
	ErrEmptyPrompt = errors.New("prompt must not be empty")
)

type Service struct {
	llm          llm_service.StreamingService
	httpClient   *http.Client
	fetchTimeout time.Duration
	maxChars     int
	logger       *slog.Logger

	// extractText is swappable for tests; defaults to PDF text extraction.
	extractText func(data []byte, logger *slog.Logger) (string, error)
}

func New(llm llm_service.StreamingService, fetchTimeout time.Duration, maxChars int, logger *slog.Logger) *Service {
	return &Service{
		llm:          llm,
		httpClient:   &http.Client{},
		fetchTimeout: fetchTimeout,
		maxChars:     maxChars,
		logger:       logger,
		extractText:  convert_service.ExtractPDFText,
	}
}

// Analyze fetches each PDF in order, concatenates their text under numbered
// headers up to the combined-character ceiling, and streams the model's
// answer. A document that fails to fetch or parse is logged and omitted;
// the analysis proceeds with the rest.
func (s *Service) Analyze(ctx context.Context, pdfURLs []string, prompt string) (<-chan llm_service.Chunk, error) {
	if len(pdfURLs) == 0 {
		return nil, ErrNoDocuments
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	combined := s.collectDocumentText(ctx, pdfURLs)
	finalPrompt := fmt.Sprintf(promptTemplate, prompt, combined)

	return s.llm.StreamText(ctx, finalPrompt)
}

func (s *Service) collectDocumentText(ctx context.Context, pdfURLs []string) string {
	var b strings.Builder
	for i, url := range pdfURLs {
		text, err := s.extractFromURL(ctx, url)
		if err != nil {
			s.logger.Error("Skipping document in analysis",
				slog.Int("document", i+1),
				slog.String("url", url),
				slog.String("error", err.Error()))
			continue
		}

		fmt.Fprintf(&b, documentHeaderFormat, i+1)
		b.WriteString(text)

		if runes := []rune(b.String()); len(runes) > s.maxChars {
			return string(runes[:s.maxChars]) + truncatedMarker
		}
	}
	return b.String()
}

func (s *Service) extractFromURL(ctx context.Context, url string) (string, error) {
	data, err := s.fetchWithTimeout(ctx, url)
	if err != nil {
		return "", err
	}
	return s.extractText(data, s.logger)
}

func (s *Service) fetchWithTimeout(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", convert_service.ErrUpstreamFetch, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", convert_service.ErrUpstreamFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", convert_service.ErrUpstreamFetch, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", convert_service.ErrUpstreamFetch, err)
	}
	return data, nil
}
