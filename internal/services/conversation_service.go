package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"medicalink-backend/internal/llm"
	"medicalink-backend/internal/models"
	"medicalink-backend/internal/store"

	"go.uber.org/zap"
)

// AskParams is the input of ConversationService.Ask.
// A nil or zero SessionID starts a new session.
type AskParams struct {
	Message   string
	SessionID *int64
}

// AskResult is the outcome of one question/answer round trip.
type AskResult struct {
	Response  string
	SessionID int64
	Timestamp time.Time // Time of the persisted assistant message
	Degraded  bool
}

// ConversationService handles the session and message lifecycle around completion calls.
type ConversationService struct {
	store      store.Store
	completion completion
	logger     *zap.Logger
	now        func() time.Time
}

// NewConversationService creates a new ConversationService.
// llmTimeout bounds every completion call; zero means llm.DefaultTimeout.
func NewConversationService(s store.Store, client llm.Completer, llmTimeout time.Duration, logger *zap.Logger) *ConversationService {
	logger = logger.Named("conversation")
	return &ConversationService{
		store:      s,
		completion: completion{client: client, timeout: llmTimeout, logger: logger},
		logger:     logger,
		now:        now,
	}
}

// Ask records the user's message, asks the completion service for an answer and records it.
// The user message is committed before the completion call, so it survives a failed answer.
// Completion failures are not errors: the stored answer is the degraded text instead.
func (s *ConversationService) Ask(ctx context.Context, params AskParams) (*AskResult, error) {
	if strings.TrimSpace(params.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}

	sessionID, err := s.resolveSession(ctx, params.SessionID)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.AppendMessage(ctx, store.AppendMessageParams{
		SessionID: sessionID,
		Role:      models.RoleUser,
		Content:   params.Message,
		CreatedAt: s.now(),
	}); err != nil {
		return nil, fmt.Errorf("failed to save user message for session %d: %w", sessionID, err)
	}

	text, degraded := s.completion.complete(ctx, params.Message)

	// The answer is stored even if the caller went away, so the user turn never stays unanswered.
	persistCtx := context.WithoutCancel(ctx)
	reply, err := s.store.AppendMessage(persistCtx, store.AppendMessageParams{
		SessionID: sessionID,
		Role:      models.RoleAssistant,
		Content:   text,
		CreatedAt: s.now(),
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("session removed while waiting for completion", zap.Int64("session_id", sessionID))
		}
		return nil, fmt.Errorf("failed to save assistant message for session %d: %w", sessionID, err)
	}

	return &AskResult{
		Response:  reply.Content,
		SessionID: sessionID,
		Timestamp: reply.Timestamp,
		Degraded:  degraded,
	}, nil
}

// resolveSession returns the id of an existing session or creates a new one.
func (s *ConversationService) resolveSession(ctx context.Context, id *int64) (int64, error) {
	if id != nil && *id != 0 {
		session, err := s.store.GetSessionByID(ctx, *id)
		if err != nil {
			return 0, fmt.Errorf("failed to get session %d: %w", *id, err)
		}
		return session.ID, nil
	}

	session, err := s.store.CreateSession(ctx, store.CreateSessionParams{CreatedAt: s.now()})
	if err != nil {
		return 0, fmt.Errorf("failed to create session: %w", err)
	}
	s.logger.Info("created session", zap.Int64("session_id", session.ID))
	return session.ID, nil
}

// GetHistory returns a session's messages oldest first. Unknown sessions yield an empty slice.
func (s *ConversationService) GetHistory(ctx context.Context, sessionID int64) ([]models.Message, error) {
	messages, err := s.store.ListMessagesBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages for session %d: %w", sessionID, err)
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}

// ListSessions returns every session with its message count, newest first.
func (s *ConversationService) ListSessions(ctx context.Context) ([]models.SessionSummary, error) {
	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// DeleteSession removes a session together with all of its messages.
func (s *ConversationService) DeleteSession(ctx context.Context, sessionID int64) error {
	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session %d: %w", sessionID, err)
	}
	s.logger.Info("deleted session", zap.Int64("session_id", sessionID))
	return nil
}

// ExportSession renders a session's transcript as a portable document.
// A session without messages has nothing to export and yields store.ErrNotFound.
func (s *ConversationService) ExportSession(ctx context.Context, sessionID int64) (*models.SessionExport, error) {
	messages, err := s.store.ListMessagesBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages for session %d: %w", sessionID, err)
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages to export for session %d: %w", sessionID, store.ErrNotFound)
	}

	exported := make([]models.ExportedMessage, 0, len(messages))
	for _, m := range messages {
		exported = append(exported, models.ExportedMessage{
			Role:      m.Role,
			Content:   m.Content,
			Timestamp: models.FormatTimestamp(m.Timestamp),
		})
	}

	return &models.SessionExport{
		SessionID:  sessionID,
		ExportedAt: models.FormatTimestamp(s.now()),
		Messages:   exported,
	}, nil
}
