package repository

import (
	"context"

	"forum/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	IsSuperuser(ctx context.Context, id uint) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return writeErr(r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error, "username", "A user with that username or email already exists.")
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Profile").First(&user, id).Error; err != nil {
		return nil, readErr(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, readErr(err, "User", username)
	}
	return &user, nil
}

// IsSuperuser reads the flag fresh; a missing user is NotFound.
func (r *userRepository) IsSuperuser(ctx context.Context, id uint) (bool, error) {
	var user models.User
	err := r.db.WithContext(ctx).Select("id", "is_superuser").First(&user, id).Error
	if err != nil {
		return false, readErr(err, "User", id)
	}
	return user.IsSuperuser, nil
}
