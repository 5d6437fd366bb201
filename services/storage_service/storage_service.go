// Package storage_service persists conversion artifacts per user: both
// blobs under <user>/documents/<docID>.{pdf,txt} in cloud storage, plus a
// metadata record holding paths, signed URLs, display name and group/type
// classification.
package storage_service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
)

const (
	usersCollection     = "users"
	documentsCollection = "documents"
)

// Record is one stored document's metadata.
type Record struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Client  string `json:"client"`
	Type    string `json:"type"`
	PathPdf string `json:"pathPdf"`
	PathTxt string `json:"pathTxt"`
	URLPdf  string `json:"urlPdf"`
	URLTxt  string `json:"urlTxt"`
}

type Service struct {
	bucket    *storage.BucketHandle
	firestore *firestore.Client
	urlTTL    time.Duration
	logger    *slog.Logger
}

func New(ctx context.Context, projectID, bucketName string, urlTTL time.Duration, logger *slog.Logger) (*Service, error) {
	if projectID == "" || bucketName == "" {
		return nil, fmt.Errorf("projectID and bucketName must be provided")
	}

	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return &Service{
		bucket:    storageClient.Bucket(bucketName),
		firestore: firestoreClient,
		urlTTL:    urlTTL,
		logger:    logger,
	}, nil
}

// ObjectPaths returns the storage object names for a document's PDF and
// text halves.
func ObjectPaths(userID, docID string) (pdfPath, txtPath string) {
	pdfPath = fmt.Sprintf("%s/documents/%s.pdf", userID, docID)
	txtPath = fmt.Sprintf("%s/documents/%s.txt", userID, docID)
	return pdfPath, txtPath
}

// SaveDocument uploads both artifact halves, issues signed URLs and writes
// the metadata record. Returns the stored record.
func (s *Service) SaveDocument(ctx context.Context, userID, name, client, docType string, pdfBytes, txtBytes []byte) (*Record, error) {
	docID := uuid.NewString()
	pathPdf, pathTxt := ObjectPaths(userID, docID)

	if err := s.writeObject(ctx, pathPdf, "application/pdf", pdfBytes); err != nil {
		return nil, err
	}
	if err := s.writeObject(ctx, pathTxt, "text/plain", txtBytes); err != nil {
		return nil, err
	}

	urlPdf, err := s.signedURL(pathPdf)
	if err != nil {
		return nil, err
	}
	urlTxt, err := s.signedURL(pathTxt)
	if err != nil {
		return nil, err
	}

	record := &Record{
		ID:      docID,
		Name:    name,
		Client:  client,
		Type:    docType,
		PathPdf: pathPdf,
		PathTxt: pathTxt,
		URLPdf:  urlPdf,
		URLTxt:  urlTxt,
	}

	_, err = s.documentRef(userID, docID).Set(ctx, map[string]interface{}{
		"name":    record.Name,
		"client":  record.Client,
		"type":    record.Type,
		"pathPdf": record.PathPdf,
		"pathTxt": record.PathTxt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write document record: %w", err)
	}

	s.logger.Info("Stored document",
		slog.String("user_id", userID),
		slog.String("doc_id", docID),
		slog.String("name", name))

	return record, nil
}

// ListDocuments returns all of a user's records with freshly issued URLs.
// A record whose URLs cannot be issued is logged and skipped, not fatal.
func (s *Service) ListDocuments(ctx context.Context, userID string) ([]Record, error) {
	iter := s.firestore.Collection(usersCollection).Doc(userID).
		Collection(documentsCollection).Documents(ctx)
	defer iter.Stop()

	var records []Record
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list documents: %w", err)
		}

		record, err := s.recordFromSnapshot(snap.Ref.ID, snap.Data())
		if err != nil {
			s.logger.Error("Skipping unreadable document record",
				slog.String("user_id", userID),
				slog.String("doc_id", snap.Ref.ID),
				slog.String("error", err.Error()))
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// DeleteDocument removes both storage objects, then the metadata record.
// Already-deleted objects are not an error.
func (s *Service) DeleteDocument(ctx context.Context, userID, docID string) error {
	pathPdf, pathTxt := ObjectPaths(userID, docID)

	for _, path := range []string{pathPdf, pathTxt} {
		err := s.bucket.Object(path).Delete(ctx)
		if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("failed to delete object %s: %w", path, err)
		}
	}

	if _, err := s.documentRef(userID, docID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete document record: %w", err)
	}

	s.logger.Info("Deleted document",
		slog.String("user_id", userID),
		slog.String("doc_id", docID))
	return nil
}

// UpdateMetadata merges the client and type classification into a record.
func (s *Service) UpdateMetadata(ctx context.Context, userID, docID, client, docType string) error {
	_, err := s.documentRef(userID, docID).Set(ctx, map[string]interface{}{
		"client": client,
		"type":   docType,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to update document metadata: %w", err)
	}
	return nil
}

func (s *Service) documentRef(userID, docID string) *firestore.DocumentRef {
	return s.firestore.Collection(usersCollection).Doc(userID).
		Collection(documentsCollection).Doc(docID)
}

func (s *Service) writeObject(ctx context.Context, path, contentType string, data []byte) error {
	w := s.bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write object %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize object %s: %w", path, err)
	}
	return nil
}

func (s *Service) signedURL(path string) (string, error) {
	url, err := s.bucket.SignedURL(path, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(s.urlTTL),
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign URL for %s: %w", path, err)
	}
	return url, nil
}

func (s *Service) recordFromSnapshot(docID string, data map[string]interface{}) (Record, error) {
	record := Record{
		ID:      docID,
		Name:    stringField(data, "name"),
		Client:  stringField(data, "client"),
		Type:    stringField(data, "type"),
		PathPdf: stringField(data, "pathPdf"),
		PathTxt: stringField(data, "pathTxt"),
	}

	var err error
	if record.PathPdf != "" {
		if record.URLPdf, err = s.signedURL(record.PathPdf); err != nil {
			return Record{}, err
		}
	}
	if record.PathTxt != "" {
		if record.URLTxt, err = s.signedURL(record.PathTxt); err != nil {
			return Record{}, err
		}
	}
	return record, nil
}

func stringField(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}
