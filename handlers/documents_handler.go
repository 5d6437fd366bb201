package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/serisow/docvault/services/convert_service"
	"github.com/serisow/docvault/services/storage_service"
)

// DocumentsHandler owns the per-user document lifecycle: upload-and-convert,
// list, delete, and metadata update.
type DocumentsHandler struct {
	converter *convert_service.Converter
	store     *storage_service.Service
	maxBytes  int64
	logger    *slog.Logger
}

func NewDocumentsHandler(converter *convert_service.Converter, store *storage_service.Service, maxBytes int64, logger *slog.Logger) *DocumentsHandler {
	return &DocumentsHandler{
		converter: converter,
		store:     store,
		maxBytes:  maxBytes,
		logger:    logger,
	}
}

// Upload converts the inbound file and persists both halves plus the
// metadata record for the user.
func (h *DocumentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		writeJSONError(w, "Failed to parse multipart form", http.StatusBadRequest)
		return
	}

	userID := getOptionalFormString(r, "userId")
	if userID == "" {
		writeJSONError(w, "Missing userId field", http.StatusBadRequest)
		return
	}

	doc, err := getFormFile(r, "file", h.maxBytes)
	if err != nil {
		writeJSONError(w, err.Error(), statusForConversionError(err))
		return
	}

	result, err := h.converter.Convert(r.Context(), doc, userID)
	if err != nil {
		h.logger.Error("Conversion failed during upload",
			slog.String("filename", doc.Filename),
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		writeJSONError(w, err.Error(), statusForConversionError(err))
		return
	}

	record, err := h.store.SaveDocument(r.Context(), userID, doc.Filename,
		getOptionalFormString(r, "client"), getOptionalFormString(r, "type"),
		result.PDFBytes, result.TextBytes)
	if err != nil {
		h.logger.Error("Failed to persist document",
			slog.String("filename", doc.Filename),
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to store document", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(record)
}

// List returns the user's document records with fresh signed URLs.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeJSONError(w, "Missing userId parameter", http.StatusBadRequest)
		return
	}

	records, err := h.store.ListDocuments(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list documents",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to list documents", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []storage_service.Record{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// Delete removes a document's storage objects and its metadata record.
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	docID := mux.Vars(r)["id"]
	if userID == "" || docID == "" {
		writeJSONError(w, "Missing userId or document id", http.StatusBadRequest)
		return
	}

	if err := h.store.DeleteDocument(r.Context(), userID, docID); err != nil {
		h.logger.Error("Failed to delete document",
			slog.String("user_id", userID),
			slog.String("doc_id", docID),
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to delete document", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateMetadata merges the client/type classification of a record.
func (h *DocumentsHandler) UpdateMetadata(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	docID := mux.Vars(r)["id"]
	if userID == "" || docID == "" {
		writeJSONError(w, "Missing userId or document id", http.StatusBadRequest)
		return
	}

	var body struct {
		Client string `json:"client"`
		Type   string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.store.UpdateMetadata(r.Context(), userID, docID, body.Client, body.Type); err != nil {
		h.logger.Error("Failed to update document metadata",
			slog.String("user_id", userID),
			slog.String("doc_id", docID),
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to update document metadata", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
