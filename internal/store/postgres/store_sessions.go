package postgres

import (
	"context"
	"errors"
	"fmt"

	"medicalink-backend/internal/models"
	"medicalink-backend/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// --- Session Methods ---

const createSession = `-- name: CreateSession :one
INSERT INTO chat_sessions (
    created_at, updated_at
) VALUES (
    $1, $1
)
RETURNING id, created_at, updated_at;
`

// CreateSession inserts a new session row and returns it with its generated ID.
func (s *PostgresStore) CreateSession(ctx context.Context, arg store.CreateSessionParams) (*models.Session, error) {
	var session models.Session
	err := s.db.QueryRow(ctx, createSession, arg.CreatedAt).Scan(
		&session.ID,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			s.logger.Error("CreateSession: PostgreSQL error executing insert",
				zap.String("code", pgErr.Code), zap.String("message", pgErr.Message), zap.String("detail", pgErr.Detail))
		} else {
			s.logger.Error("CreateSession: failed to execute insert", zap.Error(err))
		}
		return nil, fmt.Errorf("database error creating session: %w", err)
	}

	s.logger.Debug("CreateSession: inserted session", zap.Int64("session_id", session.ID))
	return &session, nil
}

const getSessionByID = `-- name: GetSessionByID :one
SELECT id, created_at, updated_at
FROM chat_sessions
WHERE id = $1;
`

// GetSessionByID retrieves a session.
// Returns store.ErrNotFound if the session does not exist.
func (s *PostgresStore) GetSessionByID(ctx context.Context, id int64) (*models.Session, error) {
	var session models.Session
	err := s.db.QueryRow(ctx, getSessionByID, id).Scan(
		&session.ID,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("error scanning session: %w", err)
	}
	return &session, nil
}

const listSessions = `-- name: ListSessions :many
SELECT s.id, s.created_at, s.updated_at, COUNT(m.id) AS message_count
FROM chat_sessions s
LEFT JOIN messages m ON m.session_id = s.id
GROUP BY s.id, s.created_at, s.updated_at
ORDER BY s.created_at DESC, s.id DESC;
`

// ListSessions returns every session with its message count, newest first.
func (s *PostgresStore) ListSessions(ctx context.Context) ([]models.SessionSummary, error) {
	rows, err := s.db.Query(ctx, listSessions)
	if err != nil {
		return nil, fmt.Errorf("error querying sessions: %w", err)
	}
	defer rows.Close()

	var items []models.SessionSummary
	for rows.Next() {
		var i models.SessionSummary
		if err := rows.Scan(
			&i.ID,
			&i.CreatedAt,
			&i.UpdatedAt,
			&i.MessageCount,
		); err != nil {
			return nil, fmt.Errorf("error scanning session row: %w", err)
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session rows: %w", err)
	}
	return items, nil
}

const deleteSessionMessages = `-- name: DeleteSessionMessages :exec
DELETE FROM messages
WHERE session_id = $1;
`

const deleteSession = `-- name: DeleteSession :exec
DELETE FROM chat_sessions
WHERE id = $1;
`

// DeleteSession deletes the session's messages and then the session inside one transaction.
// Returns store.ErrNotFound (and deletes nothing) if the session does not exist.
func (s *PostgresStore) DeleteSession(ctx context.Context, id int64) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting delete session transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op after Commit

	msgTag, err := tx.Exec(ctx, deleteSessionMessages, id)
	if err != nil {
		s.logger.Error("DeleteSession: failed to delete messages", zap.Int64("session_id", id), zap.Error(err))
		return fmt.Errorf("error executing delete session messages: %w", err)
	}

	tag, err := tx.Exec(ctx, deleteSession, id)
	if err != nil {
		s.logger.Error("DeleteSession: failed to delete session", zap.Int64("session_id", id), zap.Error(err))
		return fmt.Errorf("error executing delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing delete session: %w", err)
	}

	s.logger.Info("DeleteSession: deleted session",
		zap.Int64("session_id", id), zap.Int64("messages_deleted", msgTag.RowsAffected()))
	return nil
}
