package handlers

import (
	"log/slog"
	"net/http"

	"github.com/serisow/docvault/services/convert_service"
)

// ConvertHandler serves the direct conversion endpoints: one multipart file
// in, a PDF or plain-text attachment out.
type ConvertHandler struct {
	converter *convert_service.Converter
	maxBytes  int64
	logger    *slog.Logger
}

func NewConvertHandler(converter *convert_service.Converter, maxBytes int64, logger *slog.Logger) *ConvertHandler {
	return &ConvertHandler{
		converter: converter,
		maxBytes:  maxBytes,
		logger:    logger,
	}
}

// ConvertToPDF returns the normalized PDF rendition of the uploaded file.
func (h *ConvertHandler) ConvertToPDF(w http.ResponseWriter, r *http.Request) {
	doc, result, ok := h.convert(w, r)
	if !ok {
		return
	}

	filenameBase := getOptionalFormString(r, "filenameBase")
	if filenameBase == "" {
		filenameBase = doc.FilenameBase()
	}
	writePDFAttachment(w, result.PDFBytes, filenameBase)
}

// ConvertToText returns the plain-text extraction of the uploaded file.
func (h *ConvertHandler) ConvertToText(w http.ResponseWriter, r *http.Request) {
	_, result, ok := h.convert(w, r)
	if !ok {
		return
	}
	writeTextAttachment(w, result.TextBytes)
}

func (h *ConvertHandler) convert(w http.ResponseWriter, r *http.Request) (convert_service.SourceDocument, *convert_service.ConversionResult, bool) {
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		writeJSONError(w, "Failed to parse multipart form", http.StatusBadRequest)
		return convert_service.SourceDocument{}, nil, false
	}

	doc, err := getFormFile(r, "file", h.maxBytes)
	if err != nil {
		h.logger.Error("Rejected upload",
			slog.String("error", err.Error()))
		writeJSONError(w, err.Error(), statusForConversionError(err))
		return convert_service.SourceDocument{}, nil, false
	}

	userID := getOptionalFormString(r, "userId")

	result, err := h.converter.Convert(r.Context(), doc, userID)
	if err != nil {
		h.logger.Error("Conversion failed",
			slog.String("filename", doc.Filename),
			slog.String("error", err.Error()))
		writeJSONError(w, err.Error(), statusForConversionError(err))
		return convert_service.SourceDocument{}, nil, false
	}

	return doc, result, true
}
