package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"medicalink-backend/internal/models"
	"medicalink-backend/internal/store"

	"go.uber.org/zap"
)

const (
	MinRating = 1
	MaxRating = 5
)

// SubmitFeedbackParams is the input of FeedbackService.SubmitFeedback.
type SubmitFeedbackParams struct {
	MessageID int64
	Rating    int
	Comment   *string
}

// FeedbackService records user ratings of assistant answers.
type FeedbackService struct {
	store  store.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewFeedbackService creates a new FeedbackService.
func NewFeedbackService(s store.Store, logger *zap.Logger) *FeedbackService {
	return &FeedbackService{store: s, logger: logger.Named("feedback"), now: now}
}

// SubmitFeedback stores a rating for an existing message.
func (s *FeedbackService) SubmitFeedback(ctx context.Context, params SubmitFeedbackParams) (*models.Feedback, error) {
	if params.Rating < MinRating || params.Rating > MaxRating {
		return nil, fmt.Errorf("%w: rating must be between %d and %d", ErrInvalidInput, MinRating, MaxRating)
	}
	comment := params.Comment
	if comment != nil && strings.TrimSpace(*comment) == "" {
		comment = nil
	}

	fb, err := s.store.CreateFeedback(ctx, store.CreateFeedbackParams{
		MessageID: params.MessageID,
		Rating:    params.Rating,
		Comment:   comment,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save feedback for message %d: %w", params.MessageID, err)
	}
	s.logger.Info("feedback recorded", zap.Int64("message_id", fb.MessageID), zap.Int("rating", fb.Rating))
	return fb, nil
}

// ListFeedback returns all ratings of a message, oldest first.
func (s *FeedbackService) ListFeedback(ctx context.Context, messageID int64) ([]models.Feedback, error) {
	items, err := s.store.ListFeedbackByMessage(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback for message %d: %w", messageID, err)
	}
	if items == nil {
		items = []models.Feedback{}
	}
	return items, nil
}
