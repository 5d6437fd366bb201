package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/serisow/docvault/services/analysis_service"
)

// AnalyzeHandler streams an AI-generated answer over the extracted text of
// stored PDFs as an incremental text/plain response.
type AnalyzeHandler struct {
	analysis *analysis_service.Service
	logger   *slog.Logger
}

func NewAnalyzeHandler(analysis *analysis_service.Service, logger *slog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		analysis: analysis,
		logger:   logger,
	}
}

func (h *AnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PDFURLs []string `json:"pdfUrls"`
		Prompt  string   `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	chunks, err := h.analysis.Analyze(r.Context(), body.PDFURLs, body.Prompt)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, analysis_service.ErrNoDocuments) || errors.Is(err, analysis_service.ErrEmptyPrompt) {
			status = http.StatusBadRequest
		}
		h.logger.Error("Analysis request rejected",
			slog.Int("documents", len(body.PDFURLs)),
			slog.String("error", err.Error()))
		writeJSONError(w, err.Error(), status)
		return
	}

	flusher, canFlush := w.(http.Flusher)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	for chunk := range chunks {
		if chunk.Err != nil {
			// Headers are already sent; all we can do is log and stop.
			h.logger.Error("Analysis stream failed mid-response",
				slog.String("error", chunk.Err.Error()))
			return
		}
		if _, err := w.Write([]byte(chunk.Text)); err != nil {
			h.logger.Warn("Client disconnected during analysis stream",
				slog.String("error", err.Error()))
			return
		}
		if canFlush {
			flusher.Flush()
		}
	}
}
