package store

import (
	"context"
	"errors"
	"time"

	"medicalink-backend/internal/models"
)

// ErrNotFound is returned when a specific record is not found.
var ErrNotFound = errors.New("record not found")

// CreateSessionParams contains parameters for creating a session.
type CreateSessionParams struct {
	CreatedAt time.Time
}

// AppendMessageParams contains parameters for appending a message to a session.
// The insert and the session's updated_at bump happen in one transaction.
type AppendMessageParams struct {
	SessionID int64
	Role      models.Role
	Content   string
	CreatedAt time.Time
}

// CreateFeedbackParams contains parameters for rating a message.
type CreateFeedbackParams struct {
	MessageID int64
	Rating    int
	Comment   *string
	CreatedAt time.Time
}

// Store defines the interface for database operations.
// This allows for mocking in tests and switching between Postgres and SQLite.
type Store interface {
	// Ping checks that the database is reachable.
	Ping(ctx context.Context) error
	// Close releases the underlying connections.
	Close()

	// Session operations
	CreateSession(ctx context.Context, arg CreateSessionParams) (*models.Session, error)
	GetSessionByID(ctx context.Context, id int64) (*models.Session, error)
	ListSessions(ctx context.Context) ([]models.SessionSummary, error)
	// DeleteSession removes the session's messages and then the session, atomically.
	DeleteSession(ctx context.Context, id int64) error

	// Message operations
	AppendMessage(ctx context.Context, arg AppendMessageParams) (*models.Message, error)
	GetMessageByID(ctx context.Context, id int64) (*models.Message, error)
	ListMessagesBySession(ctx context.Context, sessionID int64) ([]models.Message, error)

	// Feedback operations
	CreateFeedback(ctx context.Context, arg CreateFeedbackParams) (*models.Feedback, error)
	ListFeedbackByMessage(ctx context.Context, messageID int64) ([]models.Feedback, error)
}
