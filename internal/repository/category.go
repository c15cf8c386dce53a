package repository

import (
	"context"
	"errors"

	"forum/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CategoryRepository defines data operations for categories and their subcategories.
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	ListWithSubcategories(ctx context.Context) ([]models.Category, error)
	Delete(ctx context.Context, slug string) (models.CascadeResult, error)

	CreateSubcategory(ctx context.Context, sub *models.Subcategory) error
	GetSubcategory(ctx context.Context, categorySlug, subcategorySlug string) (*models.Subcategory, error)
	GetSubcategoryBySlug(ctx context.Context, slug string) (*models.Subcategory, error)
	DeleteSubcategory(ctx context.Context, categorySlug, subcategorySlug string) (models.CascadeResult, error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

const slugTaken = "Category with this Slug already exists."

// Create derives a blank slug from the name. A slug that is already used
// fails with a ConstraintViolation; it is never renamed.
func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category.Slug == "" {
		category.Slug = models.Slugify(category.Name)
	}
	return writeErr(r.db.WithContext(ctx).Omit(clause.Associations).Create(category).Error, "slug", slugTaken)
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, readErr(err, "Category", slug)
	}
	return &category, nil
}

func (r *categoryRepository) ListWithSubcategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Preload("Subcategories", func(db *gorm.DB) *gorm.DB { return db.Order("subcategories.id") }).
		Order("categories.id").
		Find(&categories).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return categories, nil
}

// Delete removes the category with all subcategories, topics, posts, comments
// and likes beneath it in one transaction.
func (r *categoryRepository) Delete(ctx context.Context, slug string) (models.CascadeResult, error) {
	var res models.CascadeResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.Where("slug = ?", slug).First(&category).Error; err != nil {
			return readErr(err, "Category", slug)
		}

		var subIDs []uint
		if err := tx.Model(&models.Subcategory{}).Where("category_id = ?", category.ID).Pluck("id", &subIDs).Error; err != nil {
			return err
		}
		if err := deleteSubcategoriesCascade(tx, subIDs, &res); err != nil {
			return err
		}

		del := tx.Delete(&models.Category{}, category.ID)
		if del.Error != nil {
			return del.Error
		}
		if del.RowsAffected == 0 {
			return models.NewNotFoundError("Category", slug)
		}
		res.Categories = del.RowsAffected
		return nil
	})
	if err != nil {
		return models.CascadeResult{}, asAppError(err)
	}
	recordCascade(res)
	return res, nil
}

func (r *categoryRepository) CreateSubcategory(ctx context.Context, sub *models.Subcategory) error {
	if sub.Slug == "" {
		sub.Slug = models.Slugify(sub.Name)
	}
	return writeErr(r.db.WithContext(ctx).Omit(clause.Associations).Create(sub).Error, "slug", "Subcategory with this Slug already exists.")
}

// GetSubcategory resolves a subcategory only inside the named category.
func (r *categoryRepository) GetSubcategory(ctx context.Context, categorySlug, subcategorySlug string) (*models.Subcategory, error) {
	var sub models.Subcategory
	err := r.db.WithContext(ctx).
		Joins("Category").
		Where(`subcategories.slug = ? AND "Category".slug = ?`, subcategorySlug, categorySlug).
		First(&sub).Error
	if err != nil {
		return nil, readErr(err, "Subcategory", categorySlug+"/"+subcategorySlug)
	}
	return &sub, nil
}

// GetSubcategoryBySlug resolves a subcategory by its globally unique slug.
func (r *categoryRepository) GetSubcategoryBySlug(ctx context.Context, slug string) (*models.Subcategory, error) {
	var sub models.Subcategory
	if err := r.db.WithContext(ctx).Joins("Category").Where("subcategories.slug = ?", slug).First(&sub).Error; err != nil {
		return nil, readErr(err, "Subcategory", slug)
	}
	return &sub, nil
}

func (r *categoryRepository) DeleteSubcategory(ctx context.Context, categorySlug, subcategorySlug string) (models.CascadeResult, error) {
	var res models.CascadeResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sub models.Subcategory
		err := tx.Joins("Category").
			Where(`subcategories.slug = ? AND "Category".slug = ?`, subcategorySlug, categorySlug).
			First(&sub).Error
		if err != nil {
			return readErr(err, "Subcategory", categorySlug+"/"+subcategorySlug)
		}
		if err := deleteSubcategoriesCascade(tx, []uint{sub.ID}, &res); err != nil {
			return err
		}
		if res.Subcategories == 0 {
			return models.NewNotFoundError("Subcategory", categorySlug+"/"+subcategorySlug)
		}
		return nil
	})
	if err != nil {
		return models.CascadeResult{}, asAppError(err)
	}
	recordCascade(res)
	return res, nil
}

// asAppError passes AppErrors through and wraps anything else as internal.
func asAppError(err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewInternalError(err)
}
