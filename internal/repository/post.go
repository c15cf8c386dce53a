package repository

import (
	"context"

	"forum/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post and like data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	ListByTopic(ctx context.Context, topicID uint, limit, offset int) ([]models.Post, error)
	CountByTopic(ctx context.Context, topicID uint) (int64, error)
	Delete(ctx context.Context, id uint) (models.CascadeResult, error)
	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
	LikeCount(ctx context.Context, postID uint) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

const postWithLikeCount = "posts.*, (SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count"

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Select(postWithLikeCount).First(&post, id).Error; err != nil {
		return nil, readErr(err, "Post", id)
	}
	return &post, nil
}

// ListByTopic returns one page of posts, newest first, with authors'
// profiles and comments preloaded.
func (r *postRepository) ListByTopic(ctx context.Context, topicID uint, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Select(postWithLikeCount).
		Where("posts.topic_id = ?", topicID).
		Preload("Author.Profile").
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("comments.id") }).
		Preload("Comments.Author.Profile").
		Order("posts.created_at DESC").
		Order("posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) CountByTopic(ctx context.Context, topicID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("topic_id = ?", topicID).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// Delete removes the post with its comments and likes atomically.
func (r *postRepository) Delete(ctx context.Context, id uint) (models.CascadeResult, error) {
	var res models.CascadeResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deletePostsCascade(tx, []uint{id}, &res); err != nil {
			return err
		}
		if res.Posts == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
	if err != nil {
		return models.CascadeResult{}, asAppError(err)
	}
	recordCascade(res)
	return res, nil
}

// Like inserts the (user, post) pair. The unique index rejects a repeat,
// including a concurrent one, as a ConstraintViolation.
func (r *postRepository) Like(ctx context.Context, userID, postID uint) error {
	like := &models.Like{UserID: userID, PostID: postID}
	return writeErr(r.db.WithContext(ctx).Omit(clause.Associations).Create(like).Error, "like", "You have already liked this post.")
}

// Unlike removes the pair if present.
func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	err := r.db.WithContext(ctx).Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) LikeCount(ctx context.Context, postID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
