package server

import (
	"forum/internal/models"
	"forum/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /:c/:s/:topicId/create_post/
func (s *Server) CreatePost(c *fiber.Ctx) error {
	loc, err := topicLocator(c)
	if err != nil {
		return nil
	}
	var form validation.ContentForm
	if err := bind(c, &form); err != nil {
		return models.RespondWithError(c, err)
	}
	if _, err := s.posts.CreatePost(c.UserContext(), identityOf(c), loc, form); err != nil {
		return models.RespondWithError(c, err)
	}
	return seeOther(c, topicURL(loc))
}

// LikePost handles POST /:c/:s/:topicId/:postId/like/
func (s *Server) LikePost(c *fiber.Ctx) error {
	loc, err := postLocator(c)
	if err != nil {
		return nil
	}
	if err := s.posts.Like(c.UserContext(), identityOf(c), loc); err != nil {
		return models.RespondWithError(c, err)
	}
	return seeOther(c, topicURL(loc.TopicLocator))
}

// UnlikePost handles POST /:c/:s/:topicId/:postId/unlike/
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	loc, err := postLocator(c)
	if err != nil {
		return nil
	}
	if err := s.posts.Unlike(c.UserContext(), identityOf(c), loc); err != nil {
		return models.RespondWithError(c, err)
	}
	return seeOther(c, topicURL(loc.TopicLocator))
}

// DeletePostConfirm handles GET /:c/:s/:topicId/:postId/delete_post/
func (s *Server) DeletePostConfirm(c *fiber.Ctx) error {
	loc, err := postLocator(c)
	if err != nil {
		return nil
	}
	post, err := s.posts.Authorize(c.UserContext(), identityOf(c), loc)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"post": post})
}

// DeletePost handles POST /:c/:s/:topicId/:postId/delete_post/
func (s *Server) DeletePost(c *fiber.Ctx) error {
	loc, err := postLocator(c)
	if err != nil {
		return nil
	}
	if _, err := s.posts.DeletePost(c.UserContext(), identityOf(c), loc); err != nil {
		return models.RespondWithError(c, err)
	}
	return seeOther(c, topicURL(loc.TopicLocator))
}

// CreateComment handles POST /:c/:s/:topicId/:postId/create_comment/
func (s *Server) CreateComment(c *fiber.Ctx) error {
	loc, err := postLocator(c)
	if err != nil {
		return nil
	}
	var form validation.ContentForm
	if err := bind(c, &form); err != nil {
		return models.RespondWithError(c, err)
	}
	if _, err := s.comments.CreateComment(c.UserContext(), identityOf(c), loc, form); err != nil {
		return models.RespondWithError(c, err)
	}
	return seeOther(c, topicURL(loc.TopicLocator))
}

// DeleteCommentConfirm handles GET /:c/:s/:topicId/:postId/:commentId/delete_comment
func (s *Server) DeleteCommentConfirm(c *fiber.Ctx) error {
	loc, err := commentLocator(c)
	if err != nil {
		return nil
	}
	comment, err := s.comments.Authorize(c.UserContext(), identityOf(c), loc)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"comment": comment})
}

// DeleteComment handles POST /:c/:s/:topicId/:postId/:commentId/delete_comment
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	loc, err := commentLocator(c)
	if err != nil {
		return nil
	}
	if err := s.comments.DeleteComment(c.UserContext(), identityOf(c), loc); err != nil {
		return models.RespondWithError(c, err)
	}
	return seeOther(c, topicURL(loc.TopicLocator))
}
