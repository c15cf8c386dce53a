package service

import (
	"context"

	"forum/internal/featureflags"
	"forum/internal/models"
	"forum/internal/notifications"
	"forum/internal/policy"
	"forum/internal/repository"
	"forum/internal/validation"
)

// TopicLocator addresses a topic through both slugs of its URL.
type TopicLocator struct {
	CategorySlug    string
	SubcategorySlug string
	TopicID         uint
}

// TopicView is one page of a topic thread.
type TopicView struct {
	Topic *models.Topic `json:"topic"`
	Posts []models.Post `json:"posts"`
	Page  Page          `json:"page"`
}

type TopicService struct {
	categories repository.CategoryRepository
	topics     repository.TopicRepository
	posts      repository.PostRepository
	events     events
}

func NewTopicService(
	categories repository.CategoryRepository,
	topics repository.TopicRepository,
	posts repository.PostRepository,
	pub notifications.Publisher,
	flags *featureflags.Manager,
) *TopicService {
	return &TopicService{
		categories: categories,
		topics:     topics,
		posts:      posts,
		events:     events{pub: pub, flags: flags},
	}
}

// Get resolves a topic inside its subcategory and category.
func (s *TopicService) Get(ctx context.Context, loc TopicLocator) (*models.Topic, error) {
	return s.topics.GetInSubcategory(ctx, loc.TopicID, loc.CategorySlug, loc.SubcategorySlug)
}

func (s *TopicService) CreateTopic(ctx context.Context, identity policy.Identity, categorySlug, subcategorySlug string, form validation.TopicForm) (*models.Topic, error) {
	sub, err := s.categories.GetSubcategory(ctx, categorySlug, subcategorySlug)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(&form); err != nil {
		return nil, err
	}

	topic := &models.Topic{
		Title:         form.Title,
		Content:       form.Content,
		SubcategoryID: sub.ID,
		Subcategory:   sub,
		AuthorID:      identity.UserID,
	}
	if err := s.topics.Create(ctx, topic); err != nil {
		return nil, err
	}
	return topic, nil
}

// Page loads one page of posts, newest first. rawPage is the unparsed query
// value; see Paginate.
func (s *TopicService) Page(ctx context.Context, loc TopicLocator, rawPage string) (*TopicView, error) {
	topic, err := s.Get(ctx, loc)
	if err != nil {
		return nil, err
	}
	total, err := s.posts.CountByTopic(ctx, topic.ID)
	if err != nil {
		return nil, err
	}

	page := Paginate(total, rawPage, PostsPerPage)
	posts, err := s.posts.ListByTopic(ctx, topic.ID, PostsPerPage, page.Offset(PostsPerPage))
	if err != nil {
		return nil, err
	}
	return &TopicView{Topic: topic, Posts: posts, Page: page}, nil
}

func (s *TopicService) UpdateTopic(ctx context.Context, identity policy.Identity, loc TopicLocator, form validation.TopicForm) (*models.Topic, error) {
	topic, err := s.Authorize(ctx, identity, loc)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(&form); err != nil {
		return nil, err
	}

	topic.Title = form.Title
	topic.Content = form.Content
	if err := s.topics.Update(ctx, topic); err != nil {
		return nil, err
	}
	return topic, nil
}

// Authorize resolves the topic and checks that identity may modify it.
// The delete confirmation page uses it alone.
func (s *TopicService) Authorize(ctx context.Context, identity policy.Identity, loc TopicLocator) (*models.Topic, error) {
	return policy.RequireAuthor(ctx, identity, func(ctx context.Context) (*models.Topic, error) {
		return s.Get(ctx, loc)
	})
}

// DeleteTopic removes the topic with its posts, comments and likes.
func (s *TopicService) DeleteTopic(ctx context.Context, identity policy.Identity, loc TopicLocator) (models.CascadeResult, error) {
	topic, err := s.Authorize(ctx, identity, loc)
	if err != nil {
		return models.CascadeResult{}, err
	}
	res, err := s.topics.Delete(ctx, topic.ID)
	if err != nil {
		return models.CascadeResult{}, err
	}

	s.events.topic(ctx, notifications.Event{
		Type:    notifications.EventTopicDeleted,
		TopicID: topic.ID,
		ActorID: identity.UserID,
	})
	return res, nil
}
