package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/serisow/docvault/services/convert_service"
)

// writeJSONError sends the structured error payload used by every handler.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// statusForConversionError maps the failure taxonomy onto HTTP statuses:
// the user-correctable kinds get 4xx, everything else is a server error.
func statusForConversionError(err error) int {
	switch {
	case errors.Is(err, convert_service.ErrSizeLimitExceeded):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, convert_service.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

// getFormFile reads the uploaded file from a parsed multipart form,
// enforcing the byte ceiling before returning the payload.
func getFormFile(r *http.Request, key string, maxBytes int64) (convert_service.SourceDocument, error) {
	file, header, err := r.FormFile(key)
	if err != nil {
		return convert_service.SourceDocument{}, fmt.Errorf("missing file field %q", key)
	}
	defer file.Close()

	if header.Size > maxBytes {
		return convert_service.SourceDocument{}, fmt.Errorf("%w: %d bytes (max %d)",
			convert_service.ErrSizeLimitExceeded, header.Size, maxBytes)
	}

	data, err := readAllLimited(file, maxBytes)
	if err != nil {
		return convert_service.SourceDocument{}, err
	}

	return convert_service.SourceDocument{
		Bytes:    data,
		MimeType: header.Header.Get("Content-Type"),
		Filename: header.Filename,
	}, nil
}

func readAllLimited(file multipart.File, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: payload larger than %d bytes",
			convert_service.ErrSizeLimitExceeded, maxBytes)
	}
	return data, nil
}

func getOptionalFormString(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}

func writePDFAttachment(w http.ResponseWriter, pdfBytes []byte, filenameBase string) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filenameBase+".pdf"))
	w.Write(pdfBytes)
}

func writeTextAttachment(w http.ResponseWriter, text []byte) {
	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Content-Disposition", `attachment; filename="converted.txt"`)
	w.Write(text)
}
