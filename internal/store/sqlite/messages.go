package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"medicalink-backend/internal/models"
	"medicalink-backend/internal/store"
)

// AppendMessage inserts a message and bumps the owning session's updated_at in one transaction.
func (s *SQLiteStore) AppendMessage(ctx context.Context, arg store.AppendMessageParams) (*models.Message, error) {
	if !arg.Role.Valid() {
		return nil, fmt.Errorf("invalid message role %q", arg.Role)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error starting append message transaction: %w", err)
	}
	defer tx.Rollback()

	ts := toUnix(arg.CreatedAt)
	res, err := tx.ExecContext(ctx,
		`UPDATE chat_sessions SET updated_at = MAX(updated_at, ?) WHERE id = ?`, ts, arg.SessionID)
	if err != nil {
		return nil, fmt.Errorf("error updating session timestamp: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("error reading affected rows: %w", err)
	} else if affected == 0 {
		return nil, store.ErrNotFound
	}

	var id int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO messages (session_id, role, content, created_at) VALUES (?, ?, ?, ?) RETURNING id`,
		arg.SessionID, string(arg.Role), arg.Content, ts,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("database error inserting message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing message: %w", err)
	}

	return &models.Message{
		ID:        id,
		SessionID: arg.SessionID,
		Role:      arg.Role,
		Content:   arg.Content,
		Timestamp: fromUnix(ts),
	}, nil
}

// GetMessageByID retrieves a single message.
// Returns store.ErrNotFound if the message does not exist.
func (s *SQLiteStore) GetMessageByID(ctx context.Context, id int64) (*models.Message, error) {
	msg, err := scanMessage(s.db.QueryRowContext(ctx,
		`SELECT id, session_id, role, content, created_at FROM messages WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("error scanning message: %w", err)
	}
	return msg, nil
}

// ListMessagesBySession returns a session's messages in conversation order.
func (s *SQLiteStore) ListMessagesBySession(ctx context.Context, sessionID int64) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, role, content, created_at
		FROM messages
		WHERE session_id = ?
		ORDER BY created_at ASC, id ASC`, sessionID)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*models.Message, error) {
	var (
		msg       models.Message
		role      string
		createdAt int64
	)
	if err := row.Scan(&msg.ID, &msg.SessionID, &role, &msg.Content, &createdAt); err != nil {
		return nil, err
	}
	msg.Role = models.Role(role)
	msg.Timestamp = fromUnix(createdAt)
	return &msg, nil
}
