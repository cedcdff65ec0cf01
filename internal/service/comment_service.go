package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "postboard/internal/errors"
	"postboard/internal/events"
	"postboard/internal/model"
	"postboard/internal/repository"
	"postboard/internal/validation"
)

// CreateCommentInput is the payload for a new comment.
type CreateCommentInput struct {
	Content string `json:"content" validate:"required,max=500"`
}

// CommentService handles comment operations.
type CommentService interface {
	Create(ctx context.Context, user *model.User, postID uint, in CreateCommentInput) (*model.Comment, error)
	// Delete removes a comment owned by user and returns the pre-delete snapshot.
	Delete(ctx context.Context, user *model.User, id uint) (*model.Comment, error)
}

type commentService struct {
	comments  repository.CommentRepository
	posts     repository.PostRepository
	validator *validation.Validator
	events    events.Publisher
}

// NewCommentService creates a new comment service.
func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	validator *validation.Validator,
	publisher events.Publisher,
) CommentService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &commentService{comments: comments, posts: posts, validator: validator, events: publisher}
}

func (s *commentService) Create(ctx context.Context, user *model.User, postID uint, in CreateCommentInput) (*model.Comment, error) {
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post %d: %w", postID, err)
	}

	in.Content = strings.TrimSpace(in.Content)
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		PostID:  postID,
		UserID:  user.ID,
		Content: in.Content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	comment.User = user

	s.publish(ctx, events.CommentCreated, comment)
	return comment, nil
}

func (s *commentService) Delete(ctx context.Context, user *model.User, id uint) (*model.Comment, error) {
	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCommentNotFound
		}
		return nil, fmt.Errorf("find comment %d: %w", id, err)
	}
	if !CanModifyComment(user, comment) {
		return nil, apperrors.ErrForbidden
	}

	if err := s.comments.Delete(ctx, comment); err != nil {
		return nil, fmt.Errorf("delete comment %d: %w", id, err)
	}

	s.publish(ctx, events.CommentDeleted, comment)
	return comment, nil
}

func (s *commentService) publish(ctx context.Context, typ events.Type, comment *model.Comment) {
	_ = s.events.Publish(ctx, events.Event{
		Type:       typ,
		PostID:     comment.PostID,
		CommentID:  comment.ID,
		UserID:     comment.UserID,
		OccurredAt: time.Now().UTC(),
	})
}
