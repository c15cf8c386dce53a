package repository

import (
	"context"

	"forum/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository defines the interface for profile data operations.
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id uint) (*models.Profile, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	ExistsForUser(ctx context.Context, userID uint) (bool, error)
	Update(ctx context.Context, profile *models.Profile) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// Create inserts profile; a second profile for the same user is a ConstraintViolation.
func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	return writeErr(r.db.WithContext(ctx).Omit(clause.Associations).Create(profile).Error, "profile", "Profile for this user already exists.")
}

func (r *profileRepository) GetByID(ctx context.Context, id uint) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Preload("User").First(&profile, id).Error; err != nil {
		return nil, readErr(err, "Profile", id)
	}
	return &profile, nil
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, readErr(err, "Profile for user", userID)
	}
	return &profile, nil
}

// ExistsForUser is evaluated on every gated request, so it stays a bare count.
func (r *profileRepository) ExistsForUser(ctx context.Context, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Profile{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Update saves the editable fields of profile.
func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	res := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", profile.ID).Updates(map[string]interface{}{
		"first_name": profile.FirstName,
		"last_name":  profile.LastName,
		"bio":        profile.Bio,
	})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Profile", profile.ID)
	}
	return nil
}
