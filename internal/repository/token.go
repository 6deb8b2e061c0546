package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mindhaven/companion-server-go/internal/database"
	"github.com/mindhaven/companion-server-go/internal/model"
)

type AuthTokenRepository interface {
	Create(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) (*model.AuthToken, error)
	FindValidByHash(ctx context.Context, tokenHash string) (*model.AuthToken, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type authTokenRepo struct {
	db database.DBTX
}

func NewAuthTokenRepository(db database.DBTX) AuthTokenRepository {
	return &authTokenRepo{db: db}
}

func (r *authTokenRepo) Create(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) (*model.AuthToken, error) {
	var token model.AuthToken
	err := r.db.GetContext(ctx, &token, `
		INSERT INTO auth_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
		RETURNING *
	`, userID, tokenHash, expiresAt)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *authTokenRepo) FindValidByHash(ctx context.Context, tokenHash string) (*model.AuthToken, error) {
	var token model.AuthToken
	err := r.db.GetContext(ctx, &token, `
		SELECT * FROM auth_tokens
		WHERE token_hash = $1
		AND expires_at > NOW()
	`, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *authTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM auth_tokens WHERE expires_at < NOW()
	`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
