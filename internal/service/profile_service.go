package service

import (
	"context"

	"forum/internal/models"
	"forum/internal/policy"
	"forum/internal/repository"
	"forum/internal/validation"
)

// ProfileView is a profile page: the profile and its owner's topics.
type ProfileView struct {
	Profile *models.Profile `json:"profile"`
	Topics  []models.Topic  `json:"topics"`
}

type ProfileService struct {
	profiles repository.ProfileRepository
	topics   repository.TopicRepository
}

func NewProfileService(profiles repository.ProfileRepository, topics repository.TopicRepository) *ProfileService {
	return &ProfileService{profiles: profiles, topics: topics}
}

// HasProfile is queried on every gated request; the answer changes when the
// profile is created mid-session.
func (s *ProfileService) HasProfile(ctx context.Context, identity policy.Identity) (bool, error) {
	if !identity.Authenticated() {
		return false, nil
	}
	return s.profiles.ExistsForUser(ctx, identity.UserID)
}

func (s *ProfileService) Mine(ctx context.Context, identity policy.Identity) (*ProfileView, error) {
	profile, err := s.profiles.GetByUserID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, profile)
}

func (s *ProfileService) ByID(ctx context.Context, id uint) (*ProfileView, error) {
	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, profile)
}

func (s *ProfileService) view(ctx context.Context, profile *models.Profile) (*ProfileView, error) {
	topics, err := s.topics.ListByAuthor(ctx, profile.UserID)
	if err != nil {
		return nil, err
	}
	return &ProfileView{Profile: profile, Topics: topics}, nil
}

// Create is the one-time profile creation. A second profile for the same
// user fails with ConstraintViolation.
func (s *ProfileService) Create(ctx context.Context, identity policy.Identity, form validation.ProfileForm) (*models.Profile, error) {
	if err := validation.Struct(&form); err != nil {
		return nil, err
	}

	profile := &models.Profile{
		UserID:    identity.UserID,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Bio:       bioOrDefault(form.Bio),
		Filled:    true,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) Update(ctx context.Context, identity policy.Identity, form validation.ProfileForm) (*models.Profile, error) {
	profile, err := s.profiles.GetByUserID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(&form); err != nil {
		return nil, err
	}

	profile.FirstName = form.FirstName
	profile.LastName = form.LastName
	profile.Bio = bioOrDefault(form.Bio)
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func bioOrDefault(bio string) string {
	if bio == "" {
		return models.DefaultBio
	}
	return bio
}
