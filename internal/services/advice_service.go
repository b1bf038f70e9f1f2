package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"medicalink-backend/internal/llm"
	"medicalink-backend/internal/models"

	"go.uber.org/zap"
)

// AdviceService answers one-off prompts that are not part of any session.
// Nothing it produces is persisted.
type AdviceService struct {
	completion completion
	now        func() time.Time
}

// NewAdviceService creates a new AdviceService.
func NewAdviceService(client llm.Completer, llmTimeout time.Duration, logger *zap.Logger) *AdviceService {
	return &AdviceService{
		completion: completion{client: client, timeout: llmTimeout, logger: logger.Named("advice")},
		now:        now,
	}
}

// HealthTips asks for a few general wellness tips.
func (s *AdviceService) HealthTips(ctx context.Context) (*models.AdviceResponse, error) {
	return s.answer(ctx, llm.HealthTipsPrompt), nil
}

// SymptomAnalysis asks for general, educational information about the described symptoms.
func (s *AdviceService) SymptomAnalysis(ctx context.Context, symptoms string) (*models.AdviceResponse, error) {
	if strings.TrimSpace(symptoms) == "" {
		return nil, fmt.Errorf("%w: symptoms are required", ErrInvalidInput)
	}
	return s.answer(ctx, llm.SymptomAnalysisPrompt(symptoms)), nil
}

func (s *AdviceService) answer(ctx context.Context, prompt string) *models.AdviceResponse {
	text, degraded := s.completion.complete(ctx, prompt)
	return &models.AdviceResponse{
		Response:  text,
		Timestamp: models.FormatTimestamp(s.now()),
		Degraded:  degraded,
	}
}
