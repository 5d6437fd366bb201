package analysis_service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/serisow/docvault/services/llm_service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestService wires a Service around a mock LLM and a passthrough text
// extractor so the tests exercise the collection logic, not PDF parsing.
func newTestService(llm llm_service.StreamingService, maxChars int) *Service {
	s := New(llm, 5*time.Second, maxChars, testLogger())
	s.extractText = func(data []byte, _ *slog.Logger) (string, error) {
		return string(data), nil
	}
	return s
}

func echoLLM(captured *string) *llm_service.MockStreamingService {
	return &llm_service.MockStreamingService{
		StreamTextFunc: func(ctx context.Context, prompt string) (<-chan llm_service.Chunk, error) {
			*captured = prompt
			out := make(chan llm_service.Chunk, 1)
			out <- llm_service.Chunk{Text: "answer"}
			close(out)
			return out, nil
		},
	}
}

func TestAnalyzeValidation(t *testing.T) {
	s := newTestService(&llm_service.MockStreamingService{}, 1000)

	if _, err := s.Analyze(context.Background(), nil, "summarize"); !errors.Is(err, ErrNoDocuments) {
		t.Errorf("Expected ErrNoDocuments, got %v", err)
	}
	if _, err := s.Analyze(context.Background(), []string{"http://x"}, "   "); !errors.Is(err, ErrEmptyPrompt) {
		t.Errorf("Expected ErrEmptyPrompt, got %v", err)
	}
}

func TestAnalyzePromptAssembly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/one.pdf":
			io.WriteString(w, "contents of one")
		case "/two.pdf":
			io.WriteString(w, "contents of two")
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	var prompt string
	s := newTestService(echoLLM(&prompt), 100000)

	chunks, err := s.Analyze(context.Background(),
		[]string{server.URL + "/one.pdf", server.URL + "/two.pdf"}, "compare these")
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	for range chunks {
	}

	if !strings.HasPrefix(prompt, "prompt: compare these\ndocument: ") {
		t.Errorf("Unexpected prompt shape: %q", prompt)
	}
	if !strings.Contains(prompt, "--- Document 1 ---\ncontents of one") {
		t.Errorf("Expected first document under its header, got %q", prompt)
	}
	if !strings.Contains(prompt, "--- Document 2 ---\ncontents of two") {
		t.Errorf("Expected second document under its header, got %q", prompt)
	}
	if !strings.HasSuffix(prompt, "Return plain text only. Do not use markdown or any other formatting.") {
		t.Errorf("Expected plain-text instruction suffix, got %q", prompt)
	}
}

func TestAnalyzeSkipsFailedDocuments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/1.pdf":
			io.WriteString(w, "first")
		case "/2.pdf":
			w.WriteHeader(http.StatusInternalServerError)
		case "/3.pdf":
			io.WriteString(w, "third")
		}
	}))
	defer server.Close()

	var prompt string
	s := newTestService(echoLLM(&prompt), 100000)

	chunks, err := s.Analyze(context.Background(),
		[]string{server.URL + "/1.pdf", server.URL + "/2.pdf", server.URL + "/3.pdf"}, "go")
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	for range chunks {
	}

	// The failed document is omitted but the survivors keep their original
	// position numbers.
	if !strings.Contains(prompt, "--- Document 1 ---") {
		t.Error("Expected document 1 present")
	}
	if strings.Contains(prompt, "--- Document 2 ---") {
		t.Error("Expected failed document 2 omitted")
	}
	if !strings.Contains(prompt, "--- Document 3 ---\nthird") {
		t.Error("Expected document 3 present under its original number")
	}
}

func TestAnalyzeTruncatesCombinedText(t *testing.T) {
	long := strings.Repeat("x", 500)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, long)
	}))
	defer server.Close()

	var prompt string
	s := newTestService(echoLLM(&prompt), 200)

	chunks, err := s.Analyze(context.Background(), []string{server.URL + "/a.pdf"}, "go")
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	for range chunks {
	}

	if !strings.Contains(prompt, truncatedMarker) {
		t.Error("Expected truncation marker after hitting the character ceiling")
	}
	document := strings.TrimPrefix(prompt, "prompt: go\ndocument: ")
	if idx := strings.Index(document, truncatedMarker); idx > 200 {
		t.Errorf("Expected truncation at the ceiling, marker found at %d", idx)
	}
}

func TestAnalyzeForwardsStream(t *testing.T) {
	llm := &llm_service.MockStreamingService{
		StreamTextFunc: func(ctx context.Context, prompt string) (<-chan llm_service.Chunk, error) {
			out := make(chan llm_service.Chunk, 3)
			out <- llm_service.Chunk{Text: "part one "}
			out <- llm_service.Chunk{Text: "part two"}
			close(out)
			return out, nil
		},
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "doc")
	}))
	defer server.Close()

	s := newTestService(llm, 1000)
	chunks, err := s.Analyze(context.Background(), []string{server.URL + "/a.pdf"}, "go")
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	var b strings.Builder
	for chunk := range chunks {
		if chunk.Err != nil {
			t.Fatalf("Unexpected chunk error: %v", chunk.Err)
		}
		b.WriteString(chunk.Text)
	}
	if b.String() != "part one part two" {
		t.Errorf("Expected chunks forwarded in order, got %q", b.String())
	}
}
