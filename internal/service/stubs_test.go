package service

import (
	"context"
	"sync"
	"testing"

	"forum/internal/models"
	"forum/internal/notifications"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// categoryRepoStub is a stub for repository.CategoryRepository.
type categoryRepoStub struct {
	createFn            func(context.Context, *models.Category) error
	getBySlugFn         func(context.Context, string) (*models.Category, error)
	listFn              func(context.Context) ([]models.Category, error)
	deleteFn            func(context.Context, string) (models.CascadeResult, error)
	createSubFn         func(context.Context, *models.Subcategory) error
	getSubFn            func(context.Context, string, string) (*models.Subcategory, error)
	getSubBySlugFn      func(context.Context, string) (*models.Subcategory, error)
	deleteSubcategoryFn func(context.Context, string, string) (models.CascadeResult, error)
}

func (s *categoryRepoStub) Create(ctx context.Context, c *models.Category) error {
	return s.createFn(ctx, c)
}
func (s *categoryRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *categoryRepoStub) ListWithSubcategories(ctx context.Context) ([]models.Category, error) {
	return s.listFn(ctx)
}
func (s *categoryRepoStub) Delete(ctx context.Context, slug string) (models.CascadeResult, error) {
	return s.deleteFn(ctx, slug)
}
func (s *categoryRepoStub) CreateSubcategory(ctx context.Context, sub *models.Subcategory) error {
	return s.createSubFn(ctx, sub)
}
func (s *categoryRepoStub) GetSubcategory(ctx context.Context, cat, sub string) (*models.Subcategory, error) {
	return s.getSubFn(ctx, cat, sub)
}
func (s *categoryRepoStub) GetSubcategoryBySlug(ctx context.Context, slug string) (*models.Subcategory, error) {
	return s.getSubBySlugFn(ctx, slug)
}
func (s *categoryRepoStub) DeleteSubcategory(ctx context.Context, cat, sub string) (models.CascadeResult, error) {
	return s.deleteSubcategoryFn(ctx, cat, sub)
}

func noopCategoryRepo() *categoryRepoStub {
	return &categoryRepoStub{
		createFn: func(_ context.Context, _ *models.Category) error { return nil },
		getBySlugFn: func(_ context.Context, slug string) (*models.Category, error) {
			return &models.Category{ID: 1, Name: slug, Slug: slug}, nil
		},
		listFn:      func(_ context.Context) ([]models.Category, error) { return nil, nil },
		deleteFn:    func(_ context.Context, _ string) (models.CascadeResult, error) { return models.CascadeResult{}, nil },
		createSubFn: func(_ context.Context, _ *models.Subcategory) error { return nil },
		getSubFn: func(_ context.Context, cat, sub string) (*models.Subcategory, error) {
			return &models.Subcategory{ID: 1, CategoryID: 1, Slug: sub, Category: &models.Category{ID: 1, Slug: cat}}, nil
		},
		getSubBySlugFn: func(_ context.Context, slug string) (*models.Subcategory, error) {
			return &models.Subcategory{ID: 1, Slug: slug}, nil
		},
		deleteSubcategoryFn: func(_ context.Context, _, _ string) (models.CascadeResult, error) {
			return models.CascadeResult{}, nil
		},
	}
}

// topicRepoStub is a stub for repository.TopicRepository.
type topicRepoStub struct {
	createFn            func(context.Context, *models.Topic) error
	getByIDFn           func(context.Context, uint) (*models.Topic, error)
	getInSubcategoryFn  func(context.Context, uint, string, string) (*models.Topic, error)
	listByCategoryFn    func(context.Context, uint) ([]models.Topic, error)
	listBySubcategoryFn func(context.Context, uint) ([]models.Topic, error)
	listByAuthorFn      func(context.Context, uint) ([]models.Topic, error)
	updateFn            func(context.Context, *models.Topic) error
	deleteFn            func(context.Context, uint) (models.CascadeResult, error)
}

func (s *topicRepoStub) Create(ctx context.Context, t *models.Topic) error { return s.createFn(ctx, t) }
func (s *topicRepoStub) GetByID(ctx context.Context, id uint) (*models.Topic, error) {
	return s.getByIDFn(ctx, id)
}
func (s *topicRepoStub) GetInSubcategory(ctx context.Context, id uint, cat, sub string) (*models.Topic, error) {
	return s.getInSubcategoryFn(ctx, id, cat, sub)
}
func (s *topicRepoStub) ListByCategory(ctx context.Context, id uint) ([]models.Topic, error) {
	return s.listByCategoryFn(ctx, id)
}
func (s *topicRepoStub) ListBySubcategory(ctx context.Context, id uint) ([]models.Topic, error) {
	return s.listBySubcategoryFn(ctx, id)
}
func (s *topicRepoStub) ListByAuthor(ctx context.Context, id uint) ([]models.Topic, error) {
	return s.listByAuthorFn(ctx, id)
}
func (s *topicRepoStub) Update(ctx context.Context, t *models.Topic) error { return s.updateFn(ctx, t) }
func (s *topicRepoStub) Delete(ctx context.Context, id uint) (models.CascadeResult, error) {
	return s.deleteFn(ctx, id)
}

// topicOwnedBy serves a single topic with the given author from every lookup.
func topicOwnedBy(authorID uint) *topicRepoStub {
	topic := func(id uint) *models.Topic {
		return &models.Topic{ID: id, Title: "Hello", Content: "body", SubcategoryID: 1, AuthorID: authorID}
	}
	return &topicRepoStub{
		createFn:           func(_ context.Context, _ *models.Topic) error { return nil },
		getByIDFn:          func(_ context.Context, id uint) (*models.Topic, error) { return topic(id), nil },
		getInSubcategoryFn: func(_ context.Context, id uint, _, _ string) (*models.Topic, error) { return topic(id), nil },
		listByCategoryFn:   func(_ context.Context, _ uint) ([]models.Topic, error) { return nil, nil },
		listBySubcategoryFn: func(_ context.Context, _ uint) ([]models.Topic, error) {
			return nil, nil
		},
		listByAuthorFn: func(_ context.Context, _ uint) ([]models.Topic, error) { return nil, nil },
		updateFn:       func(_ context.Context, _ *models.Topic) error { return nil },
		deleteFn: func(_ context.Context, _ uint) (models.CascadeResult, error) {
			return models.CascadeResult{Topics: 1}, nil
		},
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn       func(context.Context, *models.Post) error
	getByIDFn      func(context.Context, uint) (*models.Post, error)
	listByTopicFn  func(context.Context, uint, int, int) ([]models.Post, error)
	countByTopicFn func(context.Context, uint) (int64, error)
	deleteFn       func(context.Context, uint) (models.CascadeResult, error)
	likeFn         func(context.Context, uint, uint) error
	unlikeFn       func(context.Context, uint, uint) error
	likeCountFn    func(context.Context, uint) (int64, error)
}

func (s *postRepoStub) Create(ctx context.Context, p *models.Post) error { return s.createFn(ctx, p) }
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) ListByTopic(ctx context.Context, id uint, limit, offset int) ([]models.Post, error) {
	return s.listByTopicFn(ctx, id, limit, offset)
}
func (s *postRepoStub) CountByTopic(ctx context.Context, id uint) (int64, error) {
	return s.countByTopicFn(ctx, id)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) (models.CascadeResult, error) {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) error {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) error {
	return s.unlikeFn(ctx, userID, postID)
}
func (s *postRepoStub) LikeCount(ctx context.Context, id uint) (int64, error) {
	return s.likeCountFn(ctx, id)
}

// postOwnedBy serves posts of topic topicID written by authorID.
func postOwnedBy(topicID, authorID uint) *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error {
			p.ID = 100
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, TopicID: topicID, AuthorID: authorID, Content: "reply"}, nil
		},
		listByTopicFn:  func(_ context.Context, _ uint, _, _ int) ([]models.Post, error) { return nil, nil },
		countByTopicFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		deleteFn: func(_ context.Context, _ uint) (models.CascadeResult, error) {
			return models.CascadeResult{Posts: 1}, nil
		},
		likeFn:      func(_ context.Context, _, _ uint) error { return nil },
		unlikeFn:    func(_ context.Context, _, _ uint) error { return nil },
		likeCountFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint) ([]models.Comment, error)
	deleteFn     func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, id uint) ([]models.Comment, error) {
	return s.listByPostFn(ctx, id)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }

func commentOwnedBy(postID, authorID uint) *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, c *models.Comment) error {
			c.ID = 500
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, PostID: postID, AuthorID: authorID}, nil
		},
		listByPostFn: func(_ context.Context, _ uint) ([]models.Comment, error) { return nil, nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
	}
}

// profileRepoStub is a stub for repository.ProfileRepository.
type profileRepoStub struct {
	createFn      func(context.Context, *models.Profile) error
	getByIDFn     func(context.Context, uint) (*models.Profile, error)
	getByUserIDFn func(context.Context, uint) (*models.Profile, error)
	existsFn      func(context.Context, uint) (bool, error)
	updateFn      func(context.Context, *models.Profile) error
}

func (s *profileRepoStub) Create(ctx context.Context, p *models.Profile) error {
	return s.createFn(ctx, p)
}
func (s *profileRepoStub) GetByID(ctx context.Context, id uint) (*models.Profile, error) {
	return s.getByIDFn(ctx, id)
}
func (s *profileRepoStub) GetByUserID(ctx context.Context, id uint) (*models.Profile, error) {
	return s.getByUserIDFn(ctx, id)
}
func (s *profileRepoStub) ExistsForUser(ctx context.Context, id uint) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *profileRepoStub) Update(ctx context.Context, p *models.Profile) error {
	return s.updateFn(ctx, p)
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn        func(context.Context, *models.User) error
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	isSuperuserFn   func(context.Context, uint) (bool, error)
}

func (s *userRepoStub) Create(ctx context.Context, u *models.User) error { return s.createFn(ctx, u) }
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, name string) (*models.User, error) {
	return s.getByUsernameFn(ctx, name)
}
func (s *userRepoStub) IsSuperuser(ctx context.Context, id uint) (bool, error) {
	return s.isSuperuserFn(ctx, id)
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	topics []notifications.Event
	users  map[uint][]notifications.Event
}

func (p *recordingPublisher) PublishTopic(_ context.Context, ev notifications.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, ev)
	return nil
}

func (p *recordingPublisher) PublishUser(_ context.Context, userID uint, ev notifications.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.users == nil {
		p.users = make(map[uint][]notifications.Event)
	}
	p.users[userID] = append(p.users[userID], ev)
	return nil
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}
