package repository

import (
	"context"
	"time"

	"forum/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TopicRepository defines the interface for topic data operations.
type TopicRepository interface {
	Create(ctx context.Context, topic *models.Topic) error
	GetByID(ctx context.Context, id uint) (*models.Topic, error)
	GetInSubcategory(ctx context.Context, id uint, categorySlug, subcategorySlug string) (*models.Topic, error)
	ListByCategory(ctx context.Context, categoryID uint) ([]models.Topic, error)
	ListBySubcategory(ctx context.Context, subcategoryID uint) ([]models.Topic, error)
	ListByAuthor(ctx context.Context, authorID uint) ([]models.Topic, error)
	Update(ctx context.Context, topic *models.Topic) error
	Delete(ctx context.Context, id uint) (models.CascadeResult, error)
}

type topicRepository struct {
	db *gorm.DB
}

// NewTopicRepository creates a new topic repository.
func NewTopicRepository(db *gorm.DB) TopicRepository {
	return &topicRepository{db: db}
}

const topicWithPostCount = "topics.*, (SELECT COUNT(*) FROM posts WHERE posts.topic_id = topics.id) AS posts_count"

func (r *topicRepository) Create(ctx context.Context, topic *models.Topic) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(topic).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *topicRepository) GetByID(ctx context.Context, id uint) (*models.Topic, error) {
	var topic models.Topic
	err := r.db.WithContext(ctx).
		Select(topicWithPostCount).
		Preload("Subcategory.Category").
		Preload("Author.Profile").
		First(&topic, id).Error
	if err != nil {
		return nil, readErr(err, "Topic", id)
	}
	return &topic, nil
}

// GetInSubcategory resolves a topic only when both slugs name its parents.
func (r *topicRepository) GetInSubcategory(ctx context.Context, id uint, categorySlug, subcategorySlug string) (*models.Topic, error) {
	var topic models.Topic
	err := r.db.WithContext(ctx).
		Select(topicWithPostCount).
		Joins("JOIN subcategories ON subcategories.id = topics.subcategory_id").
		Joins("JOIN categories ON categories.id = subcategories.category_id").
		Where("topics.id = ? AND subcategories.slug = ? AND categories.slug = ?", id, subcategorySlug, categorySlug).
		Preload("Subcategory.Category").
		Preload("Author.Profile").
		First(&topic).Error
	if err != nil {
		return nil, readErr(err, "Topic", id)
	}
	return &topic, nil
}

func (r *topicRepository) ListByCategory(ctx context.Context, categoryID uint) ([]models.Topic, error) {
	var topics []models.Topic
	err := r.db.WithContext(ctx).
		Select(topicWithPostCount).
		Joins("JOIN subcategories ON subcategories.id = topics.subcategory_id").
		Where("subcategories.category_id = ?", categoryID).
		Preload("Subcategory.Category").
		Preload("Author").
		Order("topics.id").
		Find(&topics).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return topics, nil
}

func (r *topicRepository) ListBySubcategory(ctx context.Context, subcategoryID uint) ([]models.Topic, error) {
	var topics []models.Topic
	err := r.db.WithContext(ctx).
		Select(topicWithPostCount).
		Where("topics.subcategory_id = ?", subcategoryID).
		Preload("Subcategory.Category").
		Preload("Author").
		Order("topics.id").
		Find(&topics).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return topics, nil
}

func (r *topicRepository) ListByAuthor(ctx context.Context, authorID uint) ([]models.Topic, error) {
	var topics []models.Topic
	err := r.db.WithContext(ctx).
		Select(topicWithPostCount).
		Where("topics.author_id = ?", authorID).
		Preload("Subcategory.Category").
		Order("topics.id").
		Find(&topics).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return topics, nil
}

// Update writes title and content and always refreshes updated_at.
func (r *topicRepository) Update(ctx context.Context, topic *models.Topic) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.Topic{}).Where("id = ?", topic.ID).Updates(map[string]interface{}{
		"title":      topic.Title,
		"content":    topic.Content,
		"updated_at": now,
	})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Topic", topic.ID)
	}
	topic.UpdatedAt = now
	return nil
}

// Delete removes the topic with its posts, their comments and likes atomically.
func (r *topicRepository) Delete(ctx context.Context, id uint) (models.CascadeResult, error) {
	var res models.CascadeResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteTopicsCascade(tx, []uint{id}, &res); err != nil {
			return err
		}
		if res.Topics == 0 {
			return models.NewNotFoundError("Topic", id)
		}
		return nil
	})
	if err != nil {
		return models.CascadeResult{}, asAppError(err)
	}
	recordCascade(res)
	return res, nil
}
