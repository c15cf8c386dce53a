package server

import (
	"forum/internal/models"
	"forum/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Home handles GET /: every category with its subcategories.
func (s *Server) Home(c *fiber.Ctx) error {
	page, err := s.categories.Home(c.UserContext(), identityOf(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(page)
}

// CategoryTopics handles GET /:categorySlug/
func (s *Server) CategoryTopics(c *fiber.Ctx) error {
	listing, err := s.categories.CategoryTopics(c.UserContext(), c.Params("categorySlug"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(listing)
}

// SubcategoryTopics handles GET /:categorySlug/:subcategorySlug/
func (s *Server) SubcategoryTopics(c *fiber.Ctx) error {
	listing, err := s.categories.SubcategoryTopics(c.UserContext(), c.Params("categorySlug"), c.Params("subcategorySlug"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(listing)
}

// CreateCategory handles POST /admin/categories
func (s *Server) CreateCategory(c *fiber.Ctx) error {
	var form validation.CategoryForm
	if err := bind(c, &form); err != nil {
		return models.RespondWithError(c, err)
	}
	category, err := s.categories.CreateCategory(c.UserContext(), identityOf(c), form)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// CreateSubcategory handles POST /admin/categories/:categorySlug/subcategories
func (s *Server) CreateSubcategory(c *fiber.Ctx) error {
	var form validation.CategoryForm
	if err := bind(c, &form); err != nil {
		return models.RespondWithError(c, err)
	}
	sub, err := s.categories.CreateSubcategory(c.UserContext(), identityOf(c), c.Params("categorySlug"), form)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sub)
}

// DeleteCategory handles DELETE /admin/categories/:categorySlug
func (s *Server) DeleteCategory(c *fiber.Ctx) error {
	res, err := s.categories.DeleteCategory(c.UserContext(), identityOf(c), c.Params("categorySlug"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": res})
}

// DeleteSubcategory handles DELETE /admin/categories/:categorySlug/:subcategorySlug
func (s *Server) DeleteSubcategory(c *fiber.Ctx) error {
	res, err := s.categories.DeleteSubcategory(c.UserContext(), identityOf(c),
		c.Params("categorySlug"), c.Params("subcategorySlug"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": res})
}

// GetFeatureFlags returns the evaluated flags for the current superuser.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	identity := identityOf(c)
	if !identity.Superuser {
		return models.RespondWithError(c, models.NewPermissionDeniedError("Superuser access required"))
	}
	return c.JSON(fiber.Map{"evaluated": s.featureFlags.Snapshot(identity.UserID)})
}
