// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"splitpay/internal/domain/entity"
	domainerrors "splitpay/internal/domain/errors"
	"splitpay/internal/domain/repository"
	"splitpay/internal/errors"
	"splitpay/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// userRepository implements the domain.UserRepository interface using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// Create inserts the user and copies the datastore-generated ID and timestamps back onto the entity.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		return translateCreateError(err)
	}

	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// FindByEmail retrieves the user whose email matches exactly.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var userM model.UserModel

	err := repo.db.WithContext(ctx).Where("email = ?", email).Take(&userM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find user by email")
	}

	return toUserDomain(&userM), nil
}

// FindByID retrieves a single user by their unique ID.
func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var userM model.UserModel

	err := repo.db.WithContext(ctx).Where("id = ?", id).Take(&userM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find user by id")
	}

	return toUserDomain(&userM), nil
}

// translateCreateError converts PostgreSQL constraint failures into domain errors.
func translateCreateError(err error) error {
	switch {
	case isUniqueConstraintViolation(err):
		return domainerrors.ErrUserAlreadyExists.WrapMessage("email already exists")
	case isNotNullConstraintViolation(err):
		return domainerrors.ErrUserCreationFailed.WrapMessage("missing required user information")
	default:
		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}
}

// --- Mapper Functions ---

func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	return &entity.User{
		ID:           data.ID,
		Name:         data.Name,
		Email:        data.Email,
		PasswordHash: data.Password,
		UPIID:        data.UPIID,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}

func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	return &model.UserModel{
		ID:       data.ID,
		Name:     data.Name,
		Email:    data.Email,
		Password: data.PasswordHash,
		UPIID:    data.UPIID,
	}
}
