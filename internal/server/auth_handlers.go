package server

import (
	"time"

	"forum/internal/models"
	"forum/internal/service"
	"forum/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Signup handles POST /accounts/signup
// @Summary User signup
// @Description Register a new account; the caller must then create a profile
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body validation.SignupForm true "Signup request"
// @Success 201 {object} service.Session
// @Failure 400 {object} models.ErrorResponse
// @Router /accounts/signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var form validation.SignupForm
	if err := bind(c, &form); err != nil {
		return models.RespondWithError(c, err)
	}

	session, err := s.auth.Signup(c.UserContext(), form)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	s.setTokenCookie(c, session)
	return c.Status(fiber.StatusCreated).JSON(session)
}

// LoginForm handles GET /accounts/login. The profile gate sends anonymous
// callers here with the page they asked for in ?next=.
func (s *Server) LoginForm(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"fields": []string{"username", "password"},
		"next":   safeNext(c.Query("next")),
	})
}

// Login handles POST /accounts/login. With a local next (query or body) the
// caller is sent there; otherwise the session is returned as JSON.
// @Summary User login
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body validation.LoginForm true "Login request"
// @Param next query string false "Local path to return to"
// @Success 200 {object} service.Session
// @Success 303
// @Failure 401 {object} models.ErrorResponse
// @Router /accounts/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var form validation.LoginForm
	if err := bind(c, &form); err != nil {
		return models.RespondWithError(c, err)
	}

	session, err := s.auth.Login(c.UserContext(), form)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	s.setTokenCookie(c, session)
	next := form.Next
	if next == "" {
		next = c.Query("next")
	}
	if next = safeNext(next); next != "" {
		return seeOther(c, next)
	}
	return c.JSON(session)
}

// Logout handles POST /accounts/logout
// @Summary Revoke the current token
// @Tags accounts
// @Security BearerAuth
// @Success 200 {object} object{message=string}
// @Failure 401 {object} models.ErrorResponse
// @Router /accounts/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	token := tokenFrom(c)
	if token == "" {
		return models.RespondWithError(c, models.NewUnauthorizedError("Authentication required"))
	}
	if err := s.auth.Logout(c.UserContext(), token); err != nil {
		return models.RespondWithError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     AccessTokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"message": "Logged out"})
}

func (s *Server) setTokenCookie(c *fiber.Ctx, session *service.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     AccessTokenCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
