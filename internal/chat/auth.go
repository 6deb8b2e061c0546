package chat

import (
	"context"

	apperrors "github.com/mindhaven/companion-server-go/internal/errors"
	"github.com/mindhaven/companion-server-go/internal/model"
	"github.com/mindhaven/companion-server-go/internal/repository"
	"github.com/mindhaven/companion-server-go/internal/util"
)

// Authenticator resolves opaque bearer tokens to active users. Used by both
// the websocket handshake (token as connection parameter) and the HTTP
// middleware.
type Authenticator struct {
	tokens repository.AuthTokenRepository
	users  repository.UserRepository
}

func NewAuthenticator(tokens repository.AuthTokenRepository, users repository.UserRepository) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Authenticate returns the active user owning the token. Each failure mode
// maps to a distinct AppError code so transports can close with distinct
// reasons.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, apperrors.Unauthorized("Missing authentication token")
	}

	authToken, err := a.tokens.FindValidByHash(ctx, util.HashToken(token))
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if authToken == nil {
		return nil, apperrors.InvalidToken("Invalid or expired token")
	}

	user, err := a.users.FindByID(ctx, authToken.UserID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if user == nil {
		return nil, apperrors.InvalidToken("Token owner no longer exists")
	}
	if !user.IsActive {
		return nil, apperrors.UserInactive()
	}

	return user, nil
}
