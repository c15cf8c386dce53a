package server

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"forum/internal/models"
	"forum/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 404 JSON response and returns errResponseWritten:
// a path segment that is not an id addresses nothing.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, models.NewNotFoundError(humanizeParam(param), c.Params(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a resource label.
// Examples: "topicId" -> "Topic", "profileId" -> "Profile".
func humanizeParam(param string) string {
	name := strings.TrimSuffix(param, "Id")
	if name == "" {
		return "ID"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// bind parses a JSON or form-encoded body into form.
func bind(c *fiber.Ctx, form any) error {
	if err := c.BodyParser(form); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	return nil
}

// seeOther redirects after a successful mutation.
func seeOther(c *fiber.Ctx, location string) error {
	return c.Redirect(location, fiber.StatusSeeOther)
}

// safeNext returns next when it is a path on this site, otherwise "".
// Scheme-relative ("//host") and backslash forms are rejected.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return next
}

func subcategoryURL(categorySlug, subcategorySlug string) string {
	return fmt.Sprintf("/%s/%s/", categorySlug, subcategorySlug)
}

func topicURL(loc service.TopicLocator) string {
	return fmt.Sprintf("/%s/%s/%d/", loc.CategorySlug, loc.SubcategorySlug, loc.TopicID)
}

func topicLocator(c *fiber.Ctx) (service.TopicLocator, error) {
	id, err := parseID(c, "topicId")
	if err != nil {
		return service.TopicLocator{}, err
	}
	return service.TopicLocator{
		CategorySlug:    c.Params("categorySlug"),
		SubcategorySlug: c.Params("subcategorySlug"),
		TopicID:         id,
	}, nil
}

func postLocator(c *fiber.Ctx) (service.PostLocator, error) {
	topic, err := topicLocator(c)
	if err != nil {
		return service.PostLocator{}, err
	}
	id, err := parseID(c, "postId")
	if err != nil {
		return service.PostLocator{}, err
	}
	return service.PostLocator{TopicLocator: topic, PostID: id}, nil
}

func commentLocator(c *fiber.Ctx) (service.CommentLocator, error) {
	post, err := postLocator(c)
	if err != nil {
		return service.CommentLocator{}, err
	}
	id, err := parseID(c, "commentId")
	if err != nil {
		return service.CommentLocator{}, err
	}
	return service.CommentLocator{PostLocator: post, CommentID: id}, nil
}
