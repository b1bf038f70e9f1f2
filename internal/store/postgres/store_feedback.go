package postgres

import (
	"context"
	"errors"
	"fmt"

	"medicalink-backend/internal/models"
	"medicalink-backend/internal/store"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// --- Feedback Methods ---

const lockMessage = `-- name: LockMessage :one
SELECT id FROM messages WHERE id = $1 FOR SHARE;
`

const createFeedback = `-- name: CreateFeedback :one
INSERT INTO user_feedback (
    message_id, rating, comment, created_at
) VALUES (
    $1, $2, $3, $4
)
RETURNING id, message_id, rating, comment, created_at;
`

// CreateFeedback stores a rating for an existing message.
// The message is share-locked so it cannot be deleted between the check and the insert.
func (s *PostgresStore) CreateFeedback(ctx context.Context, arg store.CreateFeedbackParams) (*models.Feedback, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("error starting feedback transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var messageID int64
	if err := tx.QueryRow(ctx, lockMessage, arg.MessageID).Scan(&messageID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("error checking message: %w", err)
	}

	var f models.Feedback
	err = tx.QueryRow(ctx, createFeedback,
		arg.MessageID,
		arg.Rating,
		arg.Comment, // pgx handles *string to NULL automatically
		arg.CreatedAt,
	).Scan(
		&f.ID,
		&f.MessageID,
		&f.Rating,
		&f.Comment,
		&f.CreatedAt,
	)
	if err != nil {
		s.logger.Error("CreateFeedback: failed to insert feedback", zap.Int64("message_id", arg.MessageID), zap.Error(err))
		return nil, fmt.Errorf("database error creating feedback: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("error committing feedback: %w", err)
	}
	return &f, nil
}

const listFeedbackByMessage = `-- name: ListFeedbackByMessage :many
SELECT id, message_id, rating, comment, created_at
FROM user_feedback
WHERE message_id = $1
ORDER BY created_at ASC, id ASC;
`

// ListFeedbackByMessage returns every rating left on a message, oldest first.
func (s *PostgresStore) ListFeedbackByMessage(ctx context.Context, messageID int64) ([]models.Feedback, error) {
	rows, err := s.db.Query(ctx, listFeedbackByMessage, messageID)
	if err != nil {
		return nil, fmt.Errorf("error querying feedback: %w", err)
	}
	defer rows.Close()

	var items []models.Feedback
	for rows.Next() {
		var f models.Feedback
		if err := rows.Scan(
			&f.ID,
			&f.MessageID,
			&f.Rating,
			&f.Comment,
			&f.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning feedback row: %w", err)
		}
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feedback rows: %w", err)
	}
	return items, nil
}
