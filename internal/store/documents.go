package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/stuverse/visavault/internal/models"
)

// CreateDocument inserts a document record.
func (s *Store) CreateDocument(doc *models.Document) error {
	if err := s.db.Create(doc).Error; err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// GetDocument fetches a document owned by userID. Documents belonging to
// other users are reported as not found rather than forbidden.
func (s *Store) GetDocument(userID, docID string) (*models.Document, error) {
	var doc models.Document
	err := s.db.First(&doc, "id = ? AND user_id = ?", docID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &doc, nil
}

// ListDocuments returns all documents for a user, newest first.
func (s *Store) ListDocuments(userID string) ([]models.Document, error) {
	var docs []models.Document
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// DeleteDocument removes a document record. The caller is responsible for
// deleting the blob from object storage.
func (s *Store) DeleteDocument(userID, docID string) error {
	res := s.db.Delete(&models.Document{}, "id = ? AND user_id = ?", docID, userID)
	if res.Error != nil {
		return fmt.Errorf("delete document: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrDocumentNotFound
	}
	return nil
}

// SaveExtraction stores the sealed extraction payload on a document row.
func (s *Store) SaveExtraction(userID, docID string, sealed []byte) error {
	res := s.db.Model(&models.Document{}).
		Where("id = ? AND user_id = ?", docID, userID).
		Update("extraction", sealed)
	if res.Error != nil {
		return fmt.Errorf("save extraction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrDocumentNotFound
	}
	return nil
}
