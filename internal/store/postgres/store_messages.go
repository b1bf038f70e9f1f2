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

// --- Message Methods ---

const touchSession = `-- name: TouchSession :exec
UPDATE chat_sessions
SET updated_at = GREATEST(updated_at, $2)
WHERE id = $1;
`

const insertMessage = `-- name: InsertMessage :one
INSERT INTO messages (
    session_id, role, content, created_at
) VALUES (
    $1, $2, $3, $4
)
RETURNING id, session_id, role, content, created_at;
`

// AppendMessage inserts a message and bumps the owning session's updated_at in one transaction.
// The session row is updated first, which locks it against a concurrent delete.
func (s *PostgresStore) AppendMessage(ctx context.Context, arg store.AppendMessageParams) (*models.Message, error) {
	if !arg.Role.Valid() {
		return nil, fmt.Errorf("invalid message role %q", arg.Role)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("error starting append message transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, touchSession, arg.SessionID, arg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error updating session timestamp: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, store.ErrNotFound
	}

	msg, err := scanMessage(tx.QueryRow(ctx, insertMessage,
		arg.SessionID,
		string(arg.Role),
		arg.Content,
		arg.CreatedAt,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			s.logger.Error("AppendMessage: PostgreSQL error executing insert",
				zap.Int64("session_id", arg.SessionID),
				zap.String("code", pgErr.Code), zap.String("message", pgErr.Message), zap.String("detail", pgErr.Detail))
			if pgErr.Code == "23503" { // foreign_key_violation (session_id)
				return nil, store.ErrNotFound
			}
		}
		return nil, fmt.Errorf("database error inserting message: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("error committing message: %w", err)
	}

	s.logger.Debug("AppendMessage: inserted message",
		zap.Int64("session_id", msg.SessionID), zap.Int64("message_id", msg.ID), zap.String("role", string(msg.Role)))
	return msg, nil
}

const getMessageByID = `-- name: GetMessageByID :one
SELECT id, session_id, role, content, created_at
FROM messages
WHERE id = $1;
`

// GetMessageByID retrieves a single message.
// Returns store.ErrNotFound if the message does not exist.
func (s *PostgresStore) GetMessageByID(ctx context.Context, id int64) (*models.Message, error) {
	msg, err := scanMessage(s.db.QueryRow(ctx, getMessageByID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("error scanning message: %w", err)
	}
	return msg, nil
}

const listMessagesBySession = `-- name: ListMessagesBySession :many
SELECT id, session_id, role, content, created_at
FROM messages
WHERE session_id = $1
ORDER BY created_at ASC, id ASC;
`

// ListMessagesBySession returns a session's messages in conversation order.
// An unknown session yields an empty result, not an error.
func (s *PostgresStore) ListMessagesBySession(ctx context.Context, sessionID int64) ([]models.Message, error) {
	rows, err := s.db.Query(ctx, listMessagesBySession, sessionID)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning message row: %w", err)
		}
		messages = append(messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}
	return messages, nil
}

func scanMessage(row pgx.Row) (*models.Message, error) {
	var (
		msg  models.Message
		role string
	)
	if err := row.Scan(
		&msg.ID,
		&msg.SessionID,
		&role,
		&msg.Content,
		&msg.Timestamp,
	); err != nil {
		return nil, err
	}
	msg.Role = models.Role(role)
	return &msg, nil
}
