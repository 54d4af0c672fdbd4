// Package documents implements the encrypted upload/download workflow.
package documents

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stuverse/visavault/internal/crypto"
	"github.com/stuverse/visavault/internal/events"
	"github.com/stuverse/visavault/internal/models"
	"github.com/stuverse/visavault/internal/storage"
	"github.com/stuverse/visavault/internal/store"
)

// Extractor produces structured text from a document. The AI call behind it
// is an external collaborator; tests use a stub.
type Extractor interface {
	Extract(ctx context.Context, kind models.DocumentKind, data []byte) ([]byte, error)
}

// Service glues the encryption core to the relational store and object
// storage. All cryptographic work happens here, in memory, before any byte
// reaches a persistence layer.
type Service struct {
	crypto    crypto.Provider
	store     *store.Store
	objects   storage.ObjectStore
	artifacts *crypto.ArtifactCodec
	extractor Extractor
	logger    *events.Logger
}

// UploadRequest describes one file upload.
type UploadRequest struct {
	Kind     models.DocumentKind
	Filename string
	MimeType string
	Data     []byte
}

// NewService creates a documents service. extractor may be nil, in which
// case uploads skip extraction.
func NewService(provider crypto.Provider, st *store.Store, objects storage.ObjectStore,
	artifacts *crypto.ArtifactCodec, extractor Extractor, logger *events.Logger) *Service {
	return &Service{
		crypto:    provider,
		store:     st,
		objects:   objects,
		artifacts: artifacts,
		extractor: extractor,
		logger:    logger.WithField("service", "documents"),
	}
}

// Upload encrypts and stores a document. The password is used only as KDF
// input; it is never persisted. The caller must have verified it against
// the user's credentials first, otherwise a mistyped password silently
// produces an undecryptable document.
func (s *Service) Upload(ctx context.Context, userID, password string, req UploadRequest) (*models.Document, error) {
	if !models.ValidKind(req.Kind) {
		return nil, &models.UploadError{
			Code: models.ErrCodeValidation, Phase: "validate", UserID: userID,
			Filename: req.Filename, Err: fmt.Errorf("unknown document kind %q", req.Kind),
		}
	}

	salt, err := s.store.EnsureSalt(userID)
	if err != nil {
		return nil, &models.UploadError{
			Code: models.ErrCodeStorage, Phase: "salt", UserID: userID,
			Filename: req.Filename, Err: err,
		}
	}

	blob, wrappedKey, err := s.crypto.EncryptFile(req.Data, password, salt)
	if err != nil {
		return nil, &models.UploadError{
			Code: models.ErrCodeServerError, Phase: "encrypt", UserID: userID,
			Filename: req.Filename, Err: err,
		}
	}

	docID := uuid.NewString()
	storageKey := fmt.Sprintf("users/%s/%s", userID, docID)

	if err := s.objects.Put(ctx, storageKey, blob, "application/octet-stream"); err != nil {
		return nil, &models.UploadError{
			Code: models.ErrCodeStorage, Phase: "store_blob", UserID: userID,
			Filename: req.Filename, Err: err,
		}
	}

	doc := &models.Document{
		ID:         docID,
		UserID:     userID,
		Kind:       req.Kind,
		Filename:   req.Filename,
		Size:       int64(len(req.Data)),
		MimeType:   req.MimeType,
		StorageKey: storageKey,
		WrappedKey: base64.StdEncoding.EncodeToString(wrappedKey),
		CreatedAt:  time.Now(),
	}

	if err := s.store.CreateDocument(doc); err != nil {
		// Roll back the orphaned blob; the record is the source of truth.
		if delErr := s.objects.Delete(ctx, storageKey); delErr != nil {
			s.logger.WithError(delErr).WithField("key", storageKey).Warn("Failed to remove orphaned blob")
		}
		return nil, &models.UploadError{
			Code: models.ErrCodeStorage, Phase: "store_record", UserID: userID,
			Filename: req.Filename, Err: err,
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": userID,
		"doc_id":  docID,
		"kind":    req.Kind,
		"size":    doc.Size,
	}).Info("Document uploaded")

	if s.extractor != nil {
		// Extraction runs on the plaintext still in memory; its output is
		// sealed by the artifact codec, not the user's password.
		s.runExtraction(ctx, userID, docID, req.Kind, req.Data)
	}

	return doc, nil
}

// Download fetches and decrypts a document. A wrong password surfaces as
// crypto.ErrDecryptionFailed; callers must present it as "incorrect
// password or corrupted data" and nothing more specific.
func (s *Service) Download(ctx context.Context, userID, docID, password string) (*models.Document, []byte, error) {
	doc, err := s.store.GetDocument(userID, docID)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.store.GetUser(userID)
	if err != nil {
		return nil, nil, err
	}
	if user.KEKSalt == "" {
		return nil, nil, fmt.Errorf("user has no encryption salt: %w", crypto.ErrDecryptionFailed)
	}

	salt, err := crypto.DecodeSalt(user.KEKSalt)
	if err != nil {
		return nil, nil, err
	}

	wrappedKey, err := base64.StdEncoding.DecodeString(doc.WrappedKey)
	if err != nil {
		return nil, nil, fmt.Errorf("decode wrapped key: %w", err)
	}

	blob, err := s.objects.Get(ctx, doc.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch blob: %w", err)
	}

	plain, err := s.crypto.DecryptFile(blob, wrappedKey, password, salt)
	if err != nil {
		return nil, nil, err
	}

	return doc, plain, nil
}

// List returns the user's document records.
func (s *Service) List(_ context.Context, userID string) ([]models.Document, error) {
	return s.store.ListDocuments(userID)
}

// Delete removes a document record and its blob.
func (s *Service) Delete(ctx context.Context, userID, docID string) error {
	doc, err := s.store.GetDocument(userID, docID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteDocument(userID, docID); err != nil {
		return err
	}

	if err := s.objects.Delete(ctx, doc.StorageKey); err != nil {
		s.logger.WithError(err).WithField("key", doc.StorageKey).Warn("Failed to delete blob")
	}

	return nil
}

// Extraction returns the decrypted extraction payload for a document, or
// models.ErrDocumentNotFound if none exists. Legacy plaintext rows pass
// through the codec unchanged.
func (s *Service) Extraction(_ context.Context, userID, docID string) ([]byte, error) {
	doc, err := s.store.GetDocument(userID, docID)
	if err != nil {
		return nil, err
	}
	if len(doc.Extraction) == 0 {
		return nil, models.ErrDocumentNotFound
	}
	return s.artifacts.Decrypt(doc.Extraction)
}

func (s *Service) runExtraction(ctx context.Context, userID, docID string, kind models.DocumentKind, data []byte) {
	text, err := s.extractor.Extract(ctx, kind, data)
	if err != nil {
		s.logger.WithError(err).WithField("doc_id", docID).Warn("Extraction failed")
		return
	}

	sealed, err := s.artifacts.Encrypt(text)
	if err != nil {
		s.logger.WithError(err).WithField("doc_id", docID).Error("Failed to seal extraction")
		return
	}

	if err := s.store.SaveExtraction(userID, docID, sealed); err != nil {
		s.logger.WithError(err).WithField("doc_id", docID).Warn("Failed to save extraction")
	}
}
