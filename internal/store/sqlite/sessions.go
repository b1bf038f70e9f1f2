package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"medicalink-backend/internal/models"
	"medicalink-backend/internal/store"

	"go.uber.org/zap"
)

// CreateSession inserts a new session row.
func (s *SQLiteStore) CreateSession(ctx context.Context, arg store.CreateSessionParams) (*models.Session, error) {
	ts := toUnix(arg.CreatedAt)
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO chat_sessions (created_at, updated_at) VALUES (?, ?) RETURNING id`,
		ts, ts,
	).Scan(&id)
	if err != nil {
		s.logger.Error("CreateSession: failed to insert session", zap.Error(err))
		return nil, fmt.Errorf("database error creating session: %w", err)
	}
	return &models.Session{ID: id, CreatedAt: fromUnix(ts), UpdatedAt: fromUnix(ts)}, nil
}

// GetSessionByID retrieves a session.
// Returns store.ErrNotFound if the session does not exist.
func (s *SQLiteStore) GetSessionByID(ctx context.Context, id int64) (*models.Session, error) {
	var createdAt, updatedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM chat_sessions WHERE id = ?`, id,
	).Scan(&createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("error scanning session: %w", err)
	}
	return &models.Session{ID: id, CreatedAt: fromUnix(createdAt), UpdatedAt: fromUnix(updatedAt)}, nil
}

// ListSessions returns every session with its message count, newest first.
func (s *SQLiteStore) ListSessions(ctx context.Context) ([]models.SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.created_at, s.updated_at, COUNT(m.id)
		FROM chat_sessions s
		LEFT JOIN messages m ON m.session_id = s.id
		GROUP BY s.id
		ORDER BY s.created_at DESC, s.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("error querying sessions: %w", err)
	}
	defer rows.Close()

	var items []models.SessionSummary
	for rows.Next() {
		var (
			i                    models.SessionSummary
			createdAt, updatedAt int64
		)
		if err := rows.Scan(&i.ID, &createdAt, &updatedAt, &i.MessageCount); err != nil {
			return nil, fmt.Errorf("error scanning session row: %w", err)
		}
		i.CreatedAt = fromUnix(createdAt)
		i.UpdatedAt = fromUnix(updatedAt)
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session rows: %w", err)
	}
	return items, nil
}

// DeleteSession deletes the session's messages and then the session inside one transaction.
func (s *SQLiteStore) DeleteSession(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting delete session transaction: %w", err)
	}
	defer tx.Rollback()

	msgRes, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, id)
	if err != nil {
		return fmt.Errorf("error executing delete session messages: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM chat_sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error executing delete session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing delete session: %w", err)
	}

	deleted, _ := msgRes.RowsAffected()
	s.logger.Info("DeleteSession: deleted session", zap.Int64("session_id", id), zap.Int64("messages_deleted", deleted))
	return nil
}
