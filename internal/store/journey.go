package store

import (
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/stuverse/visavault/internal/models"
)

// CompleteStage marks a stage done for a user. Idempotent; re-completing
// a stage keeps the original completion time.
func (s *Store) CompleteStage(progress *models.StageProgress) error {
	err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(progress).Error
	if err != nil {
		return fmt.Errorf("complete stage: %w", err)
	}
	return nil
}

// ListProgress returns the user's completed stages.
func (s *Store) ListProgress(userID string) ([]models.StageProgress, error) {
	var progress []models.StageProgress
	err := s.db.Where("user_id = ?", userID).Find(&progress).Error
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	return progress, nil
}
