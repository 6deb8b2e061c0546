package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/mindhaven/companion-server-go/internal/database"
	apperrors "github.com/mindhaven/companion-server-go/internal/errors"
	"github.com/mindhaven/companion-server-go/internal/model"
	"github.com/mindhaven/companion-server-go/internal/repository"
	"github.com/mindhaven/companion-server-go/internal/util"
)

const minPasswordLength = 8

// TxRunner runs a function inside one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn database.TxFunc) error
}

type AuthHandler struct {
	db       TxRunner
	users    repository.UserRepository
	tokens   repository.AuthTokenRepository
	tokenTTL time.Duration
}

func NewAuthHandler(db TxRunner, users repository.UserRepository, tokens repository.AuthTokenRepository, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		db:       db,
		users:    users,
		tokens:   tokens,
		tokenTTL: tokenTTL,
	}
}

func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)

	return r
}

type registerRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	AgeGroup  *string `json:"ageGroup,omitempty"`
	Gender    *string `json:"gender,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *model.User `json:"user"`
}

// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid JSON body"))
		return
	}

	if !util.IsValidEmail(req.Email) {
		writeError(w, apperrors.InvalidInput("email", "must be a valid email address"))
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, apperrors.InvalidInput("password", "must be at least 8 characters"))
		return
	}
	if req.FirstName == "" {
		writeError(w, apperrors.MissingRequired("firstName"))
		return
	}

	passwordHash, err := util.HashPassword(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("register: password hashing failed")
		writeError(w, apperrors.Internal("Failed to create account"))
		return
	}

	// The duplicate check and the insert ride in one transaction so two
	// concurrent registrations of the same email cannot both pass the check.
	var user *model.User
	err = h.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		users := h.users.WithTx(tx)

		existing, err := users.FindByEmail(ctx, req.Email)
		if err != nil {
			log.Error().Err(err).Msg("register: email lookup failed")
			return apperrors.Database(err)
		}
		if existing != nil {
			return apperrors.AlreadyExists("An account with this email")
		}

		user, err = users.Create(ctx, model.CreateUserParams{
			Email:        req.Email,
			PasswordHash: passwordHash,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			AgeGroup:     req.AgeGroup,
			Gender:       req.Gender,
		})
		if err != nil {
			log.Error().Err(err).Msg("register: user insert failed")
			return apperrors.Database(err)
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	log.Info().Int64("userId", user.ID).Msg("user registered")
	writeJSON(w, http.StatusCreated, user)
}

// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid JSON body"))
		return
	}

	user, err := h.users.FindByEmail(ctx, req.Email)
	if err != nil {
		log.Error().Err(err).Msg("login: email lookup failed")
		writeError(w, apperrors.Database(err))
		return
	}
	// The same rejection for an unknown email and a wrong password, so the
	// endpoint does not leak which emails are registered.
	if user == nil || !util.CheckPasswordHash(req.Password, user.PasswordHash) {
		writeError(w, apperrors.Unauthorized("Invalid email or password"))
		return
	}
	if !user.IsActive {
		writeError(w, apperrors.UserInactive())
		return
	}

	token, err := util.GenerateToken()
	if err != nil {
		log.Error().Err(err).Msg("login: token generation failed")
		writeError(w, apperrors.Internal("Failed to issue token"))
		return
	}

	expiresAt := time.Now().Add(h.tokenTTL)
	if _, err := h.tokens.Create(ctx, user.ID, util.HashToken(token), expiresAt); err != nil {
		log.Error().Err(err).Msg("login: token insert failed")
		writeError(w, apperrors.Database(err))
		return
	}

	log.Info().Int64("userId", user.ID).Msg("user logged in")
	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	})
}
