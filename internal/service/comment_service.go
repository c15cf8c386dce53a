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

// CommentLocator addresses a comment through its post's URL.
type CommentLocator struct {
	PostLocator
	CommentID uint
}

type CommentService struct {
	topics   repository.TopicRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	events   events
}

func NewCommentService(
	topics repository.TopicRepository,
	posts repository.PostRepository,
	comments repository.CommentRepository,
	pub notifications.Publisher,
	flags *featureflags.Manager,
) *CommentService {
	return &CommentService{
		topics:   topics,
		posts:    posts,
		comments: comments,
		events:   events{pub: pub, flags: flags},
	}
}

func (s *CommentService) CreateComment(ctx context.Context, identity policy.Identity, loc PostLocator, form validation.ContentForm) (*models.Comment, error) {
	topic, post, err := resolvePost(ctx, s.topics, s.posts, loc)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(&form); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content:  form.Content,
		PostID:   post.ID,
		AuthorID: identity.UserID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	ev := notifications.Event{
		Type:      notifications.EventCommentCreated,
		TopicID:   topic.ID,
		PostID:    post.ID,
		CommentID: comment.ID,
		ActorID:   identity.UserID,
	}
	s.events.topic(ctx, ev)
	s.events.user(ctx, post.AuthorID, ev)
	return comment, nil
}

// Authorize resolves the comment under its post and checks that identity may delete it.
func (s *CommentService) Authorize(ctx context.Context, identity policy.Identity, loc CommentLocator) (*models.Comment, error) {
	return policy.RequireAuthor(ctx, identity, func(ctx context.Context) (*models.Comment, error) {
		_, post, err := resolvePost(ctx, s.topics, s.posts, loc.PostLocator)
		if err != nil {
			return nil, err
		}
		comment, err := s.comments.GetByID(ctx, loc.CommentID)
		if err != nil {
			return nil, err
		}
		if comment.PostID != post.ID {
			return nil, models.NewNotFoundError("Comment", loc.CommentID)
		}
		return comment, nil
	})
}

func (s *CommentService) DeleteComment(ctx context.Context, identity policy.Identity, loc CommentLocator) error {
	comment, err := s.Authorize(ctx, identity, loc)
	if err != nil {
		return err
	}
	return s.comments.Delete(ctx, comment.ID)
}
