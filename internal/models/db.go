package models

import (
	"time"
)

// Session represents a conversation thread in the chat_sessions table.
type Session struct {
	ID        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"` // Bumped on every appended message
}

// Message represents a single conversation turn in the messages table.
// Messages are never updated; they go away only with their session.
type Message struct {
	ID        int64     `db:"id"`
	SessionID int64     `db:"session_id"`
	Role      Role      `db:"role"`
	Content   string    `db:"content"`
	Timestamp time.Time `db:"created_at"`
}

// SessionSummary is a session row joined with the number of messages it owns.
type SessionSummary struct {
	ID           int64     `db:"id"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
	MessageCount int64     `db:"message_count"`
}

// Feedback represents a user rating attached to a message.
// The user_feedback table has no foreign key; Comment is nullable.
type Feedback struct {
	ID        int64     `db:"id"`
	MessageID int64     `db:"message_id"`
	Rating    int       `db:"rating"`
	Comment   *string   `db:"comment"`
	CreatedAt time.Time `db:"created_at"`
}
