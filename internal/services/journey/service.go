// Package journey tracks a user's progress through the fixed visa journey.
package journey

import (
	"fmt"
	"time"

	"github.com/stuverse/visavault/internal/events"
	"github.com/stuverse/visavault/internal/models"
	"github.com/stuverse/visavault/internal/services/notify"
	"github.com/stuverse/visavault/internal/store"
)

// StageStatus is one catalog stage annotated with the user's progress.
type StageStatus struct {
	models.Stage
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Service manages journey progress.
type Service struct {
	store    *store.Store
	notifier *notify.Service
	logger   *events.Logger
}

// NewService creates a journey service. notifier may be nil.
func NewService(st *store.Store, notifier *notify.Service, logger *events.Logger) *Service {
	return &Service{
		store:    st,
		notifier: notifier,
		logger:   logger.WithField("service", "journey"),
	}
}

// Complete marks a stage done and notifies the user about the next one.
// Completing an already-completed stage is a no-op.
func (s *Service) Complete(userID, stageSlug string) error {
	stage, ok := models.StageBySlug(stageSlug)
	if !ok {
		return models.ErrStageNotFound
	}

	err := s.store.CompleteStage(&models.StageProgress{
		UserID:      userID,
		StageSlug:   stage.Slug,
		CompletedAt: time.Now(),
	})
	if err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": userID,
		"stage":   stage.Slug,
	}).Info("Stage completed")

	if s.notifier != nil {
		title := fmt.Sprintf("%s complete", stage.Title)
		body := "Your visa journey is done. Welcome!"
		if next, ok := nextStage(stage); ok {
			body = fmt.Sprintf("Next up: %s. %s", next.Title, next.Description)
		}
		if err := s.notifier.Notify(userID, models.NotifyInfo, title, body); err != nil {
			s.logger.WithError(err).Warn("Failed to send stage notification")
		}
	}

	return nil
}

// Progress returns the full catalog annotated with the user's completions.
func (s *Service) Progress(userID string) ([]StageStatus, error) {
	done, err := s.store.ListProgress(userID)
	if err != nil {
		return nil, err
	}

	completedAt := make(map[string]time.Time, len(done))
	for _, p := range done {
		completedAt[p.StageSlug] = p.CompletedAt
	}

	statuses := make([]StageStatus, 0, len(models.JourneyStages))
	for _, stage := range models.JourneyStages {
		status := StageStatus{Stage: stage}
		if at, ok := completedAt[stage.Slug]; ok {
			status.Completed = true
			t := at
			status.CompletedAt = &t
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func nextStage(current models.Stage) (models.Stage, bool) {
	for _, s := range models.JourneyStages {
		if s.Order == current.Order+1 {
			return s, true
		}
	}
	return models.Stage{}, false
}
