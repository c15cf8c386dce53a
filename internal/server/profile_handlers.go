package server

import (
	"forum/internal/models"
	"forum/internal/policy"
	"forum/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// MyProfile handles GET /accounts/profile/
func (s *Server) MyProfile(c *fiber.Ctx) error {
	view, err := s.profiles.Mine(c.UserContext(), identityOf(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(view)
}

// GetProfile handles GET /accounts/profile/:profileId
func (s *Server) GetProfile(c *fiber.Ctx) error {
	id, err := parseID(c, "profileId")
	if err != nil {
		return nil
	}
	view, err := s.profiles.ByID(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(view)
}

// CreateProfileForm handles GET /accounts/profile/create_profile/. The gate
// only lets callers without a profile reach it.
func (s *Server) CreateProfileForm(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"form": validation.ProfileForm{}})
}

// CreateProfile handles POST /accounts/profile/create_profile/
func (s *Server) CreateProfile(c *fiber.Ctx) error {
	var form validation.ProfileForm
	if err := bind(c, &form); err != nil {
		return models.RespondWithError(c, err)
	}
	if _, err := s.profiles.Create(c.UserContext(), identityOf(c), form); err != nil {
		return models.RespondWithError(c, err)
	}
	return seeOther(c, policy.ProfilePath)
}

// UpdateProfileForm handles GET /accounts/profile/update_profile/ with the current values.
func (s *Server) UpdateProfileForm(c *fiber.Ctx) error {
	view, err := s.profiles.Mine(c.UserContext(), identityOf(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"form": validation.ProfileForm{
		FirstName: view.Profile.FirstName,
		LastName:  view.Profile.LastName,
		Bio:       view.Profile.Bio,
	}})
}

// UpdateProfile handles POST /accounts/profile/update_profile/
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var form validation.ProfileForm
	if err := bind(c, &form); err != nil {
		return models.RespondWithError(c, err)
	}
	if _, err := s.profiles.Update(c.UserContext(), identityOf(c), form); err != nil {
		return models.RespondWithError(c, err)
	}
	return seeOther(c, policy.ProfilePath)
}
