package service

import (
	"context"
	"time"

	"forum/internal/cache"
	"forum/internal/featureflags"
	"forum/internal/models"
	"forum/internal/observability"
	"forum/internal/policy"
	"forum/internal/repository"
	"forum/internal/validation"
)

// HomePage is the cached home listing.
type HomePage struct {
	Categories []models.Category `json:"categories"`
}

// TopicListing is a category or subcategory page.
type TopicListing struct {
	Category    *models.Category    `json:"category"`
	Subcategory *models.Subcategory `json:"subcategory,omitempty"`
	Topics      []models.Topic      `json:"topics"`
}

type CategoryService struct {
	categories repository.CategoryRepository
	topics     repository.TopicRepository
	flags      *featureflags.Manager
	homeTTL    time.Duration
}

func NewCategoryService(
	categories repository.CategoryRepository,
	topics repository.TopicRepository,
	flags *featureflags.Manager,
	homeTTL time.Duration,
) *CategoryService {
	if homeTTL <= 0 {
		homeTTL = cache.DefaultHomeCacheTTL
	}
	return &CategoryService{
		categories: categories,
		topics:     topics,
		flags:      flags,
		homeTTL:    homeTTL,
	}
}

// Home lists every category with its subcategories. With the home_page_cache
// flag on, the listing is served from Redis and only refreshed when the entry
// expires; writes do not invalidate it.
func (s *CategoryService) Home(ctx context.Context, identity policy.Identity) (*HomePage, error) {
	var page HomePage
	fetch := func() error {
		categories, err := s.categories.ListWithSubcategories(ctx)
		if err != nil {
			return err
		}
		page.Categories = categories
		return nil
	}

	if !s.flags.Enabled(featureflags.HomePageCache, identity.UserID) {
		observability.HomeCacheLookups.WithLabelValues("bypass").Inc()
		if err := fetch(); err != nil {
			return nil, err
		}
		return &page, nil
	}

	hit, err := cache.Aside(ctx, cache.HomeKey, &page, s.homeTTL, fetch)
	if err != nil {
		return nil, err
	}
	if hit {
		observability.HomeCacheLookups.WithLabelValues("hit").Inc()
	} else {
		observability.HomeCacheLookups.WithLabelValues("miss").Inc()
	}
	return &page, nil
}

// CategoryTopics lists every topic under the category, each with its post count.
func (s *CategoryService) CategoryTopics(ctx context.Context, categorySlug string) (*TopicListing, error) {
	category, err := s.categories.GetBySlug(ctx, categorySlug)
	if err != nil {
		return nil, err
	}
	topics, err := s.topics.ListByCategory(ctx, category.ID)
	if err != nil {
		return nil, err
	}
	return &TopicListing{Category: category, Topics: topics}, nil
}

// SubcategoryTopics lists the topics of a subcategory resolved inside its category.
func (s *CategoryService) SubcategoryTopics(ctx context.Context, categorySlug, subcategorySlug string) (*TopicListing, error) {
	sub, err := s.categories.GetSubcategory(ctx, categorySlug, subcategorySlug)
	if err != nil {
		return nil, err
	}
	topics, err := s.topics.ListBySubcategory(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	return &TopicListing{Category: sub.Category, Subcategory: sub, Topics: topics}, nil
}

// Subcategory resolves a subcategory inside its category.
func (s *CategoryService) Subcategory(ctx context.Context, categorySlug, subcategorySlug string) (*models.Subcategory, error) {
	return s.categories.GetSubcategory(ctx, categorySlug, subcategorySlug)
}

func (s *CategoryService) CreateCategory(ctx context.Context, identity policy.Identity, form validation.CategoryForm) (*models.Category, error) {
	if err := requireSuperuser(identity); err != nil {
		return nil, err
	}
	slug, err := checkedSlug(&form)
	if err != nil {
		return nil, err
	}

	category := &models.Category{Name: form.Name, Slug: slug}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) CreateSubcategory(ctx context.Context, identity policy.Identity, categorySlug string, form validation.CategoryForm) (*models.Subcategory, error) {
	if err := requireSuperuser(identity); err != nil {
		return nil, err
	}
	category, err := s.categories.GetBySlug(ctx, categorySlug)
	if err != nil {
		return nil, err
	}
	slug, err := checkedSlug(&form)
	if err != nil {
		return nil, err
	}

	sub := &models.Subcategory{Name: form.Name, Slug: slug, CategoryID: category.ID, Category: category}
	if err := s.categories.CreateSubcategory(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *CategoryService) DeleteCategory(ctx context.Context, identity policy.Identity, categorySlug string) (models.CascadeResult, error) {
	if err := requireSuperuser(identity); err != nil {
		return models.CascadeResult{}, err
	}
	return s.categories.Delete(ctx, categorySlug)
}

func (s *CategoryService) DeleteSubcategory(ctx context.Context, identity policy.Identity, categorySlug, subcategorySlug string) (models.CascadeResult, error) {
	if err := requireSuperuser(identity); err != nil {
		return models.CascadeResult{}, err
	}
	return s.categories.DeleteSubcategory(ctx, categorySlug, subcategorySlug)
}

// checkedSlug validates the form and returns the explicit or derived slug.
func checkedSlug(form *validation.CategoryForm) (string, error) {
	if err := validation.Struct(form); err != nil {
		return "", err
	}
	slug := form.Slug
	if slug == "" {
		slug = models.Slugify(form.Name)
	}
	if err := validation.ValidateSlug(slug); err != nil {
		return "", err
	}
	return slug, nil
}
