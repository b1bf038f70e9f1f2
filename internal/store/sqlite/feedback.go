package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"medicalink-backend/internal/models"
	"medicalink-backend/internal/store"
)

// CreateFeedback stores a rating for an existing message.
// The existence check and the insert share one transaction.
func (s *SQLiteStore) CreateFeedback(ctx context.Context, arg store.CreateFeedbackParams) (*models.Feedback, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error starting feedback transaction: %w", err)
	}
	defer tx.Rollback()

	var messageID int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM messages WHERE id = ?`, arg.MessageID).Scan(&messageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("error checking message: %w", err)
	}

	ts := toUnix(arg.CreatedAt)
	var id int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO user_feedback (message_id, rating, comment, created_at) VALUES (?, ?, ?, ?) RETURNING id`,
		arg.MessageID, arg.Rating, arg.Comment, ts,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("database error creating feedback: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing feedback: %w", err)
	}

	return &models.Feedback{
		ID:        id,
		MessageID: arg.MessageID,
		Rating:    arg.Rating,
		Comment:   arg.Comment,
		CreatedAt: fromUnix(ts),
	}, nil
}

// ListFeedbackByMessage returns every rating left on a message, oldest first.
func (s *SQLiteStore) ListFeedbackByMessage(ctx context.Context, messageID int64) ([]models.Feedback, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, message_id, rating, comment, created_at
		FROM user_feedback
		WHERE message_id = ?
		ORDER BY created_at ASC, id ASC`, messageID)
	if err != nil {
		return nil, fmt.Errorf("error querying feedback: %w", err)
	}
	defer rows.Close()

	var items []models.Feedback
	for rows.Next() {
		var (
			f         models.Feedback
			comment   sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&f.ID, &f.MessageID, &f.Rating, &comment, &createdAt); err != nil {
			return nil, fmt.Errorf("error scanning feedback row: %w", err)
		}
		if comment.Valid {
			c := comment.String
			f.Comment = &c
		}
		f.CreatedAt = fromUnix(createdAt)
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feedback rows: %w", err)
	}
	return items, nil
}
