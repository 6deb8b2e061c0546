package model

import (
	"time"
)

// ChatRecord is one durable transcript row: the user's message and the reply
// it produced. The Redis context store holds the working window; this table
// is the long-term record.
type ChatRecord struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"userId"`
	SessionID string    `db:"session_id" json:"sessionId"`
	UserText  string    `db:"user_text" json:"userText"`
	ReplyText string    `db:"reply_text" json:"replyText"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type CreateChatParams struct {
	UserID    int64
	SessionID string
	UserText  string
	ReplyText string
}
