package chat

import (
	"context"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mindhaven/companion-server-go/internal/model"
	"github.com/mindhaven/companion-server-go/internal/repository"
)

// fakeGenerator implements llm.Generator for router tests.
type fakeGenerator struct {
	mu         sync.Mutex
	reply      string
	chunks     []string
	err        error
	calls      int
	lastSystem string
	lastUser   string
}

func (f *fakeGenerator) Generate(ctx context.Context, systemPrompt, userText string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastSystem = systemPrompt
	f.lastUser = userText
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeGenerator) GenerateStream(ctx context.Context, systemPrompt, userText string, onChunk func(string) error) (string, error) {
	f.mu.Lock()
	f.calls++
	f.lastSystem = systemPrompt
	f.lastUser = userText
	chunks := f.chunks
	err := f.err
	f.mu.Unlock()

	if err != nil {
		return "", err
	}

	var full string
	for _, chunk := range chunks {
		full += chunk
		if onChunk != nil {
			if cbErr := onChunk(chunk); cbErr != nil {
				return full, cbErr
			}
		}
	}
	if full == "" {
		full = f.reply
	}
	return full, nil
}

type fakeChatRepo struct {
	mu      sync.Mutex
	records []model.ChatRecord
	err     error
}

func (f *fakeChatRepo) Create(ctx context.Context, params model.CreateChatParams) (*model.ChatRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	record := model.ChatRecord{
		ID:        int64(len(f.records) + 1),
		UserID:    params.UserID,
		SessionID: params.SessionID,
		UserText:  params.UserText,
		ReplyText: params.ReplyText,
		CreatedAt: time.Now(),
	}
	f.records = append(f.records, record)
	return &record, nil
}

func (f *fakeChatRepo) FindRecentBySession(ctx context.Context, userID int64, sessionID string, limit int) ([]model.ChatRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records, nil
}

func (f *fakeChatRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeChatRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

type fakeCheckinRepo struct {
	latest *model.Checkin
	err    error
}

func (f *fakeCheckinRepo) Create(ctx context.Context, params model.CreateCheckinParams) (*model.Checkin, error) {
	return nil, nil
}

func (f *fakeCheckinRepo) FindLatest(ctx context.Context, userID int64, period model.Period) (*model.Checkin, error) {
	return f.latest, f.err
}

type fakeUserRepo struct {
	users map[int64]*model.User
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, params model.CreateUserParams) (*model.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) WithTx(tx *sqlx.Tx) repository.UserRepository {
	return f
}

type fakeTokenRepo struct {
	byHash map[string]*model.AuthToken
	err    error
}

func (f *fakeTokenRepo) Create(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) (*model.AuthToken, error) {
	return nil, nil
}

func (f *fakeTokenRepo) FindValidByHash(ctx context.Context, tokenHash string) (*model.AuthToken, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byHash[tokenHash], nil
}

func (f *fakeTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

func testUser() *model.User {
	age := "Millennial"
	return &model.User{
		ID:        42,
		Email:     "monica@example.com",
		FirstName: "Monica",
		LastName:  "Reyes",
		AgeGroup:  &age,
		IsActive:  true,
	}
}
