package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindhaven/companion-server-go/internal/chat"
	"github.com/mindhaven/companion-server-go/internal/model"
	"github.com/mindhaven/companion-server-go/internal/repository"
	"github.com/mindhaven/companion-server-go/internal/util"
)

type mockTokenRepo struct {
	findValidByHashFunc func(ctx context.Context, tokenHash string) (*model.AuthToken, error)
}

func (m *mockTokenRepo) Create(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) (*model.AuthToken, error) {
	return nil, nil
}

func (m *mockTokenRepo) FindValidByHash(ctx context.Context, tokenHash string) (*model.AuthToken, error) {
	if m.findValidByHashFunc != nil {
		return m.findValidByHashFunc(ctx, tokenHash)
	}
	return nil, nil
}

func (m *mockTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

type mockUserRepo struct {
	findByIDFunc func(ctx context.Context, id int64) (*model.User, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, params model.CreateUserParams) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) WithTx(tx *sqlx.Tx) repository.UserRepository {
	return m
}

func TestAuthMiddleware(t *testing.T) {
	testUser := &model.User{ID: 42, Email: "monica@example.com", FirstName: "Monica", IsActive: true}
	validToken := "valid-token"
	validTokenHash := util.HashToken(validToken)

	newMiddleware := func(tokens *mockTokenRepo, users *mockUserRepo) *AuthMiddleware {
		return NewAuthMiddleware(chat.NewAuthenticator(tokens, users))
	}

	validRepos := func() (*mockTokenRepo, *mockUserRepo) {
		tokens := &mockTokenRepo{
			findValidByHashFunc: func(ctx context.Context, tokenHash string) (*model.AuthToken, error) {
				if tokenHash == validTokenHash {
					return &model.AuthToken{UserID: testUser.ID, TokenHash: tokenHash}, nil
				}
				return nil, nil
			},
		}
		users := &mockUserRepo{
			findByIDFunc: func(ctx context.Context, id int64) (*model.User, error) {
				if id == testUser.ID {
					return testUser, nil
				}
				return nil, nil
			},
		}
		return tokens, users
	}

	t.Run("allows request with valid bearer token", func(t *testing.T) {
		middleware := newMiddleware(validRepos())
		handler := middleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r.Context())
			require.NotNil(t, user)
			assert.Equal(t, int64(42), user.ID)
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Authorization", "Bearer "+validToken)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("allows request with query token", func(t *testing.T) {
		middleware := newMiddleware(validRepos())
		handler := middleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "/test?token="+validToken, nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects request without token", func(t *testing.T) {
		middleware := newMiddleware(&mockTokenRepo{}, &mockUserRepo{})
		handler := middleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be called")
		}))

		req := httptest.NewRequest("GET", "/test", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects request with invalid token", func(t *testing.T) {
		middleware := newMiddleware(&mockTokenRepo{}, &mockUserRepo{})
		handler := middleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be called")
		}))

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Authorization", "Bearer invalid-token")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects inactive user with 403", func(t *testing.T) {
		inactive := &model.User{ID: 43, IsActive: false}
		tokens := &mockTokenRepo{
			findValidByHashFunc: func(ctx context.Context, tokenHash string) (*model.AuthToken, error) {
				return &model.AuthToken{UserID: inactive.ID}, nil
			},
		}
		users := &mockUserRepo{
			findByIDFunc: func(ctx context.Context, id int64) (*model.User, error) {
				return inactive, nil
			},
		}

		middleware := newMiddleware(tokens, users)
		handler := middleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be called")
		}))

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Authorization", "Bearer "+validToken)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("returns 500 on database error", func(t *testing.T) {
		tokens := &mockTokenRepo{
			findValidByHashFunc: func(ctx context.Context, tokenHash string) (*model.AuthToken, error) {
				return nil, errors.New("database error")
			},
		}

		middleware := newMiddleware(tokens, &mockUserRepo{})
		handler := middleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be called")
		}))

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Authorization", "Bearer "+validToken)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestGetUser(t *testing.T) {
	t.Run("returns user from context", func(t *testing.T) {
		user := &model.User{ID: 7}
		ctx := context.WithValue(context.Background(), UserContextKey, user)

		result := GetUser(ctx)

		require.NotNil(t, result)
		assert.Equal(t, int64(7), result.ID)
	})

	t.Run("returns nil when no user in context", func(t *testing.T) {
		result := GetUser(context.Background())
		assert.Nil(t, result)
	})
}
