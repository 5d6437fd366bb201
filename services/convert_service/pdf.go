package convert_service

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/ledongthuc/pdf"
)

// ExtractPDFText pulls plain text out of a PDF, concatenated in page order.
func ExtractPDFText(data []byte, logger *slog.Logger) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		logger.Error("Failed to create PDF reader",
			slog.String("error", err.Error()),
			slog.Int("data_size", len(data)))
		return "", fmt.Errorf("%w: creating PDF reader: %v", ErrExtraction, err)
	}

	totalPage := reader.NumPage()
	logger.Debug("Starting PDF text extraction",
		slog.Int("total_pages", totalPage))

	var fullText bytes.Buffer
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			logger.Warn("Null page encountered",
				slog.Int("page_number", pageIndex))
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			logger.Error("Failed to extract text from page",
				slog.Int("page_number", pageIndex),
				slog.String("error", err.Error()))
			return "", fmt.Errorf("%w: page %d: %v", ErrExtraction, pageIndex, err)
		}

		fullText.WriteString(text)
	}

	logger.Info("Extracted text from PDF",
		slog.Int("total_pages", totalPage),
		slog.Int("total_text_length", fullText.Len()))

	return fullText.String(), nil
}
