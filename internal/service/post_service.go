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

// PostLocator addresses a post through its topic's URL.
type PostLocator struct {
	TopicLocator
	PostID uint
}

type PostService struct {
	topics repository.TopicRepository
	posts  repository.PostRepository
	events events
}

func NewPostService(
	topics repository.TopicRepository,
	posts repository.PostRepository,
	pub notifications.Publisher,
	flags *featureflags.Manager,
) *PostService {
	return &PostService{
		topics: topics,
		posts:  posts,
		events: events{pub: pub, flags: flags},
	}
}

// resolvePost loads a post and checks it belongs to the addressed topic.
// A post reached through another topic's URL does not exist there.
func resolvePost(ctx context.Context, topics repository.TopicRepository, posts repository.PostRepository, loc PostLocator) (*models.Topic, *models.Post, error) {
	topic, err := topics.GetInSubcategory(ctx, loc.TopicID, loc.CategorySlug, loc.SubcategorySlug)
	if err != nil {
		return nil, nil, err
	}
	post, err := posts.GetByID(ctx, loc.PostID)
	if err != nil {
		return nil, nil, err
	}
	if post.TopicID != topic.ID {
		return nil, nil, models.NewNotFoundError("Post", loc.PostID)
	}
	return topic, post, nil
}

func (s *PostService) CreatePost(ctx context.Context, identity policy.Identity, loc TopicLocator, form validation.ContentForm) (*models.Post, error) {
	topic, err := s.topics.GetInSubcategory(ctx, loc.TopicID, loc.CategorySlug, loc.SubcategorySlug)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(&form); err != nil {
		return nil, err
	}

	post := &models.Post{
		Content:  form.Content,
		TopicID:  topic.ID,
		AuthorID: identity.UserID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	ev := notifications.Event{
		Type:    notifications.EventPostCreated,
		TopicID: topic.ID,
		PostID:  post.ID,
		ActorID: identity.UserID,
	}
	s.events.topic(ctx, ev)
	s.events.user(ctx, topic.AuthorID, ev)
	return post, nil
}

// Like records identity's like. A repeated like fails with ConstraintViolation.
func (s *PostService) Like(ctx context.Context, identity policy.Identity, loc PostLocator) error {
	_, post, err := resolvePost(ctx, s.topics, s.posts, loc)
	if err != nil {
		return err
	}
	return s.posts.Like(ctx, identity.UserID, post.ID)
}

func (s *PostService) Unlike(ctx context.Context, identity policy.Identity, loc PostLocator) error {
	_, post, err := resolvePost(ctx, s.topics, s.posts, loc)
	if err != nil {
		return err
	}
	return s.posts.Unlike(ctx, identity.UserID, post.ID)
}

// Authorize resolves the post and checks that identity may delete it.
func (s *PostService) Authorize(ctx context.Context, identity policy.Identity, loc PostLocator) (*models.Post, error) {
	return policy.RequireAuthor(ctx, identity, func(ctx context.Context) (*models.Post, error) {
		_, post, err := resolvePost(ctx, s.topics, s.posts, loc)
		return post, err
	})
}

// DeletePost removes the post with its comments and likes.
func (s *PostService) DeletePost(ctx context.Context, identity policy.Identity, loc PostLocator) (models.CascadeResult, error) {
	post, err := s.Authorize(ctx, identity, loc)
	if err != nil {
		return models.CascadeResult{}, err
	}
	return s.posts.Delete(ctx, post.ID)
}
