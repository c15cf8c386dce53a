package server

import (
	"forum/internal/models"
	"forum/internal/service"
	"forum/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// CreateTopicForm handles GET /:c/:s/create_topic/
func (s *Server) CreateTopicForm(c *fiber.Ctx) error {
	sub, err := s.categories.Subcategory(c.UserContext(), c.Params("categorySlug"), c.Params("subcategorySlug"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"subcategory": sub, "form": validation.TopicForm{}})
}

// CreateTopic handles POST /:c/:s/create_topic/ and redirects to the new topic.
func (s *Server) CreateTopic(c *fiber.Ctx) error {
	var form validation.TopicForm
	if err := bind(c, &form); err != nil {
		return models.RespondWithError(c, err)
	}

	categorySlug, subcategorySlug := c.Params("categorySlug"), c.Params("subcategorySlug")
	topic, err := s.topics.CreateTopic(c.UserContext(), identityOf(c), categorySlug, subcategorySlug, form)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return seeOther(c, topicURL(service.TopicLocator{
		CategorySlug:    categorySlug,
		SubcategorySlug: subcategorySlug,
		TopicID:         topic.ID,
	}))
}

// GetTopic handles GET /:c/:s/:topicId/?page=N
func (s *Server) GetTopic(c *fiber.Ctx) error {
	loc, err := topicLocator(c)
	if err != nil {
		return nil
	}
	view, err := s.topics.Page(c.UserContext(), loc, c.Query("page"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(view)
}

// UpdateTopic handles POST /:c/:s/:topicId/update_topic/
func (s *Server) UpdateTopic(c *fiber.Ctx) error {
	loc, err := topicLocator(c)
	if err != nil {
		return nil
	}
	var form validation.TopicForm
	if err := bind(c, &form); err != nil {
		return models.RespondWithError(c, err)
	}
	if _, err := s.topics.UpdateTopic(c.UserContext(), identityOf(c), loc, form); err != nil {
		return models.RespondWithError(c, err)
	}
	return seeOther(c, topicURL(loc))
}

// DeleteTopicConfirm handles GET /:c/:s/:topicId/delete_topic/
func (s *Server) DeleteTopicConfirm(c *fiber.Ctx) error {
	loc, err := topicLocator(c)
	if err != nil {
		return nil
	}
	topic, err := s.topics.Authorize(c.UserContext(), identityOf(c), loc)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"topic": topic})
}

// DeleteTopic handles POST /:c/:s/:topicId/delete_topic/ and returns to the subcategory.
func (s *Server) DeleteTopic(c *fiber.Ctx) error {
	loc, err := topicLocator(c)
	if err != nil {
		return nil
	}
	if _, err := s.topics.DeleteTopic(c.UserContext(), identityOf(c), loc); err != nil {
		return models.RespondWithError(c, err)
	}
	return seeOther(c, subcategoryURL(loc.CategorySlug, loc.SubcategorySlug))
}
