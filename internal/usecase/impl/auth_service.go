// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"fmt"
	"log/slog"

	"splitpay/config"
	deliverycontext "splitpay/internal/delivery/context"
	"splitpay/internal/domain/entity"
	domainerrors "splitpay/internal/domain/errors"
	"splitpay/internal/domain/repository"
	"splitpay/internal/domain/service"
	"splitpay/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const welcomeSubject = "Welcome to Expense Tracker"

// authService implements the AuthUsecase interface.
type authService struct {
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	mailer       service.Mailer
	sendWelcome  bool
	logger       *slog.Logger
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Mailer       service.Mailer
	Config       *config.Config
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	sendWelcome := params.Config != nil && params.Config.Mail != nil && params.Config.Mail.Welcome

	return &authService{
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		mailer:       params.Mailer,
		sendWelcome:  sendWelcome && params.Mailer != nil,
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register hashes the password, inserts the user and returns its public view.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	srv.log(ctx).Info("Starting registration", slog.String("email", input.Email))

	if len(input.Password) > service.MaxPasswordBytes {
		return nil, errors.WithStack(domainerrors.ErrValidationFailed.WithDetails(
			fmt.Sprintf("password must be at most %d bytes", service.MaxPasswordBytes)))
	}

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	user := &entity.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		UPIID:        input.UPIID,
	}

	if err := srv.userRepo.Create(ctx, user); err != nil {
		srv.log(ctx).Warn("Failed to create user", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create user during registration")
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("userID", user.ID))

	srv.notifyWelcome(ctx, user)

	return &usecase.RegisterOutput{User: usecase.NewUserOutput(user, false)}, nil
}

// notifyWelcome fires the greeting and does not wait for it. The send outlives the request.
func (srv *authService) notifyWelcome(ctx context.Context, user *entity.User) {
	if !srv.sendWelcome {
		return
	}

	body := fmt.Sprintf("Hi %s,\n\nYour Expense Tracker account is ready. "+
		"Add your friends and start splitting expenses.\n", user.Name)

	_ = srv.mailer.SendEmail(context.WithoutCancel(ctx), user.Email, welcomeSubject, body)
}

// Login verifies the credentials and issues a signed token for the user.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	user, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if errors.Is(err, repository.ErrUserNotFound) {
		srv.log(ctx).Info("Login for unknown email", slog.String("email", input.Email))

		return nil, errors.Wrap(domainerrors.ErrUserNotFound, "login")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user by email")
	}

	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Password mismatch on login", slog.Any("userID", user.ID))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "password mismatch")
	}

	token, err := srv.tokenService.GenerateToken(user.ID)
	if err != nil {
		srv.log(ctx).Error("Failed to sign token", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrTokenSignFailed, err.Error())
	}

	srv.log(ctx).Info("Login successful", slog.Any("userID", user.ID))

	return &usecase.LoginOutput{Token: token}, nil
}

// GetProfile returns the public view of the user including the payment handle.
func (srv *authService) GetProfile(ctx context.Context, userID uuid.UUID) (*usecase.UserOutput, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, errors.Wrap(domainerrors.ErrUserNotFound, "profile")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return usecase.NewUserOutput(user, true), nil
}
