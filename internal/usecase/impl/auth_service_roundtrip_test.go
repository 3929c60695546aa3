package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"splitpay/config"
	"splitpay/internal/domain/entity"
	domainerrors "splitpay/internal/domain/errors"
	"splitpay/internal/domain/repository"
	"splitpay/internal/domain/service"
	"splitpay/internal/infra/auth"
	"splitpay/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memoryUserRepository keeps users in a map and enforces email uniqueness
// the way the users_email_key constraint does.
type memoryUserRepository struct {
	mu    sync.Mutex
	users map[uuid.UUID]entity.User
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{users: make(map[uuid.UUID]entity.User)}
}

func (r *memoryUserRepository) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("users_email_key")
		}
	}

	user.ID = uuid.New()
	r.users[user.ID] = *user

	return nil
}

func (r *memoryUserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			return &user, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *memoryUserRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return &user, nil
}

func newRoundTripAuthService(t *testing.T) (usecase.AuthUsecase, service.TokenService, *memoryUserRepository) {
	t.Helper()

	cfg := &config.Config{Auth: &config.AuthConfig{BcryptCost: bcrypt.MinCost}}
	cfg.SecretKey.Access = "round-trip-secret"

	hasher, err := auth.NewBcryptHasher(cfg)
	require.NoError(t, err)
	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	repo := newMemoryUserRepository()
	svc := NewAuthService(AuthServiceParams{
		UserRepo:     repo,
		Hasher:       hasher,
		TokenService: tokens,
		Config:       cfg,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return svc, tokens, repo
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	svc, tokens, repo := newRoundTripAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, &usecase.RegisterInput{
		Name:     "Alice",
		Email:    "a@x.com",
		Password: "p1",
		UPIID:    "alice@upi",
	})
	require.NoError(t, err)

	stored, err := repo.FindByID(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "p1", stored.PasswordHash)

	loggedIn, err := svc.Login(ctx, &usecase.LoginInput{Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)

	claims, err := tokens.ValidateToken(loggedIn.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)
	assert.Equal(t, registered.User.ID.String(), claims.Subject)

	profile, err := svc.GetProfile(ctx, claims.UserID)
	require.NoError(t, err)
	assert.Equal(t, "alice@upi", profile.UPIID)
}

func TestAuthService_RegisterThenLogin_Rejections(t *testing.T) {
	svc, _, _ := newRoundTripAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &usecase.RegisterInput{Name: "Alice", Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &usecase.LoginInput{Email: "a@x.com", Password: "p2"})
	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 401, appErr.HTTPCode())

	_, err = svc.Login(ctx, &usecase.LoginInput{Email: "b@x.com", Password: "p1"})
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)

	_, err = svc.Register(ctx, &usecase.RegisterInput{Name: "Alice again", Email: "a@x.com", Password: "p3"})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 409, appErr.HTTPCode())
}
