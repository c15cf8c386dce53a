package service

import (
	"context"
	"testing"

	"forum/internal/models"
	"forum/internal/policy"
	"forum/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryProfiles keeps at most one profile per user.
func memoryProfiles() *profileRepoStub {
	byUser := map[uint]*models.Profile{}
	return &profileRepoStub{
		createFn: func(_ context.Context, p *models.Profile) error {
			if _, ok := byUser[p.UserID]; ok {
				return models.NewConstraintViolationError("profile", "Profile with this User already exists.", nil)
			}
			p.ID = uint(len(byUser) + 1)
			byUser[p.UserID] = p
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Profile, error) {
			for _, p := range byUser {
				if p.ID == id {
					return p, nil
				}
			}
			return nil, models.NewNotFoundError("Profile", id)
		},
		getByUserIDFn: func(_ context.Context, userID uint) (*models.Profile, error) {
			if p, ok := byUser[userID]; ok {
				return p, nil
			}
			return nil, models.NewNotFoundError("Profile for user", userID)
		},
		existsFn: func(_ context.Context, userID uint) (bool, error) {
			_, ok := byUser[userID]
			return ok, nil
		},
		updateFn: func(_ context.Context, _ *models.Profile) error { return nil },
	}
}

func TestProfileService_CreateIsOneTime(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewProfileService(memoryProfiles(), topicOwnedBy(0))

	has, err := svc.HasProfile(ctx, member)
	require.NoError(t, err)
	assert.False(t, has)

	profile, err := svc.Create(ctx, member, validation.ProfileForm{FirstName: "Ada", LastName: "Lovelace"})
	require.NoError(t, err)
	assert.True(t, profile.Filled)
	assert.Equal(t, models.DefaultBio, profile.Bio)

	has, err = svc.HasProfile(ctx, member)
	require.NoError(t, err)
	assert.True(t, has)

	_, err = svc.Create(ctx, member, validation.ProfileForm{FirstName: "Ada", LastName: "Again"})
	assertCode(t, err, models.CodeConstraintViolation)
}

func TestProfileService_HasProfileAnonymous(t *testing.T) {
	t.Parallel()
	repo := memoryProfiles()
	repo.existsFn = func(_ context.Context, _ uint) (bool, error) {
		t.Fatal("anonymous identity must not hit the store")
		return false, nil
	}
	has, err := NewProfileService(repo, topicOwnedBy(0)).HasProfile(context.Background(), policy.Anonymous())
	require.NoError(t, err)
	assert.False(t, has)
}

func TestProfileService_Validation(t *testing.T) {
	t.Parallel()
	svc := NewProfileService(memoryProfiles(), topicOwnedBy(0))
	_, err := svc.Create(context.Background(), member, validation.ProfileForm{FirstName: "A name longer than twenty", LastName: "x"})
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "first_name")
}

func TestProfileService_UpdateAndViews(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	topics := topicOwnedBy(0)
	var listedFor uint
	topics.listByAuthorFn = func(_ context.Context, authorID uint) ([]models.Topic, error) {
		listedFor = authorID
		return []models.Topic{{ID: 1, AuthorID: authorID}}, nil
	}
	svc := NewProfileService(memoryProfiles(), topics)

	_, err := svc.Update(ctx, member, validation.ProfileForm{FirstName: "A", LastName: "B"})
	assertCode(t, err, models.CodeNotFound)

	created, err := svc.Create(ctx, member, validation.ProfileForm{FirstName: "Ada", LastName: "L", Bio: "math"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, member, validation.ProfileForm{FirstName: "Augusta", LastName: "King", Bio: "  "})
	require.NoError(t, err)
	assert.Equal(t, "Augusta", updated.FirstName)
	assert.Equal(t, models.DefaultBio, updated.Bio)

	view, err := svc.Mine(ctx, member)
	require.NoError(t, err)
	assert.Equal(t, member.UserID, listedFor)
	assert.Len(t, view.Topics, 1)

	view, err = svc.ByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "King", view.Profile.LastName)

	_, err = svc.ByID(ctx, 999)
	assertCode(t, err, models.CodeNotFound)
}
