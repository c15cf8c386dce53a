package validation

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"forum/internal/models"
)

// MaxSlugLength bounds category and subcategory slugs.
const MaxSlugLength = 50

var slugRegex = regexp.MustCompile(`^[\p{Ll}\p{Lm}\p{Lo}\p{M}\p{Nd}]+(-[\p{Ll}\p{Lm}\p{Lo}\p{M}\p{Nd}]+)*$`)

// Top-level path segments that a category slug would shadow.
var reservedSlugs = map[string]struct{}{
	"accounts": {},
	"admin":    {},
	"api":      {},
	"health":   {},
	"metrics":  {},
	"ws":       {},
}

// ValidateSlug checks slug format, length and reserved names.
func ValidateSlug(slug string) error {
	if slug == "" {
		return models.NewFieldValidationError(map[string]string{"slug": "Name must contain at least one letter or digit."})
	}
	if utf8.RuneCountInString(slug) > MaxSlugLength {
		return models.NewFieldValidationError(map[string]string{"slug": fmt.Sprintf("Slug must be at most %d characters.", MaxSlugLength)})
	}
	if !slugRegex.MatchString(slug) {
		return models.NewFieldValidationError(map[string]string{"slug": "Slug may contain only lowercase letters, digits and single hyphens."})
	}
	if _, reserved := reservedSlugs[slug]; reserved {
		return models.NewFieldValidationError(map[string]string{"slug": "Slug is reserved."})
	}
	return nil
}
