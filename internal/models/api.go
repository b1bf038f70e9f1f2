package models

import (
	"time"
)

// TimestampLayout is the ISO-8601 layout used for every timestamp in API responses.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// --- Request Structs ---

// AskRequest defines the body for POST /ask.
// A nil or zero SessionID starts a new session.
type AskRequest struct {
	Message   string `json:"message"`
	SessionID *int64 `json:"session_id,omitempty"`
}

// FeedbackRequest defines the body for POST /feedback.
type FeedbackRequest struct {
	MessageID int64   `json:"message_id"`
	Rating    int     `json:"rating"`
	Comment   *string `json:"comment,omitempty"`
}

// SymptomsRequest defines the body for POST /symptoms.
type SymptomsRequest struct {
	Symptoms string `json:"symptoms"`
}

// --- Response Structs ---

// ErrorResponse defines the standard structure for API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// AskResponse is returned by POST /ask.
// Degraded is set when the completion call failed and Response holds the fallback text.
type AskResponse struct {
	Response  string `json:"response"`
	SessionID int64  `json:"session_id"`
	Timestamp string `json:"timestamp"`
	Degraded  bool   `json:"degraded,omitempty"`
}

// HistoryEntry is one element of GET /history/{session_id}.
type HistoryEntry struct {
	ID        int64  `json:"id"`
	Content   string `json:"content"`
	Role      Role   `json:"role"`
	Timestamp string `json:"timestamp"`
}

// SessionInfo is one element of GET /sessions.
type SessionInfo struct {
	ID           int64  `json:"id"`
	CreatedAt    string `json:"created_at"`
	MessageCount int64  `json:"message_count"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// ExportedMessage is a message inside an export document.
type ExportedMessage struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// SessionExport is the document returned by GET /export/{session_id}.
type SessionExport struct {
	SessionID  int64             `json:"session_id"`
	ExportedAt string            `json:"exported_at"`
	Messages   []ExportedMessage `json:"messages"`
}

// FeedbackResponse is returned by the feedback endpoints.
type FeedbackResponse struct {
	ID        int64   `json:"id"`
	MessageID int64   `json:"message_id"`
	Rating    int     `json:"rating"`
	Comment   *string `json:"comment,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// AdviceResponse is returned by the stateless advice endpoints (/tips, /symptoms).
type AdviceResponse struct {
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
	Degraded  bool   `json:"degraded,omitempty"`
}

// HealthCheck is returned by GET /health.
type HealthCheck struct {
	Status            string `json:"status"`
	Timestamp         string `json:"timestamp"`
	DatabaseConnected bool   `json:"database_connected"`
}

// NewHistoryEntries maps stored messages to the history payload.
// It never returns nil so an empty history encodes as [].
func NewHistoryEntries(messages []Message) []HistoryEntry {
	entries := make([]HistoryEntry, 0, len(messages))
	for _, m := range messages {
		entries = append(entries, HistoryEntry{
			ID:        m.ID,
			Content:   m.Content,
			Role:      m.Role,
			Timestamp: FormatTimestamp(m.Timestamp),
		})
	}
	return entries
}

// NewSessionInfos maps session summaries to the listing payload.
func NewSessionInfos(sessions []SessionSummary) []SessionInfo {
	infos := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, SessionInfo{
			ID:           s.ID,
			CreatedAt:    FormatTimestamp(s.CreatedAt),
			MessageCount: s.MessageCount,
		})
	}
	return infos
}

// NewFeedbackResponse maps a stored feedback row to its API shape.
func NewFeedbackResponse(f *Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:        f.ID,
		MessageID: f.MessageID,
		Rating:    f.Rating,
		Comment:   f.Comment,
		CreatedAt: FormatTimestamp(f.CreatedAt),
	}
}
