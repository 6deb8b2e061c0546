package repository

import (
	"context"
	"time"

	"github.com/mindhaven/companion-server-go/internal/database"
	"github.com/mindhaven/companion-server-go/internal/model"
)

type ChatRepository interface {
	Create(ctx context.Context, params model.CreateChatParams) (*model.ChatRecord, error)
	FindRecentBySession(ctx context.Context, userID int64, sessionID string, limit int) ([]model.ChatRecord, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type chatRepo struct {
	db database.DBTX
}

func NewChatRepository(db database.DBTX) ChatRepository {
	return &chatRepo{db: db}
}

func (r *chatRepo) Create(ctx context.Context, params model.CreateChatParams) (*model.ChatRecord, error) {
	var record model.ChatRecord
	err := r.db.GetContext(ctx, &record, `
		INSERT INTO chats (user_id, session_id, user_text, reply_text)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`, params.UserID, params.SessionID, params.UserText, params.ReplyText)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindRecentBySession returns the newest records first. Scoping by user id
// keeps one user from reading another's transcript.
func (r *chatRepo) FindRecentBySession(ctx context.Context, userID int64, sessionID string, limit int) ([]model.ChatRecord, error) {
	records := []model.ChatRecord{}
	err := r.db.SelectContext(ctx, &records, `
		SELECT * FROM chats
		WHERE user_id = $1 AND session_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`, userID, sessionID, limit)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *chatRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM chats WHERE created_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
