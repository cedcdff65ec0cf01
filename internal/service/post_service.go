package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"gorm.io/gorm"

	apperrors "postboard/internal/errors"
	"postboard/internal/events"
	"postboard/internal/model"
	"postboard/internal/repository"
	"postboard/internal/validation"
)

// allowedImageTypes are the MIME types accepted for post images.
var allowedImageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/bmp",
	"image/webp",
	"image/svg+xml",
}

// ImageUpload is an uploaded image read fully into memory.
type ImageUpload struct {
	Filename string
	Data     []byte
	// Size is the declared upload size, which may exceed len(Data) when the reader was capped.
	Size int64
}

// CreatePostInput is the payload for a new post.
type CreatePostInput struct {
	Content string `json:"content" validate:"max=1000"`
	// Tags is a comma separated list. TagList takes precedence when set.
	Tags    string       `json:"tags"`
	TagList []string     `json:"tag_list"`
	Image   *ImageUpload `json:"-"`
}

// UpdatePostInput replaces content and, when Tags or TagList is set, the tag set.
type UpdatePostInput struct {
	Content string   `json:"content" validate:"required,max=1000"`
	Tags    *string  `json:"tags"`
	TagList []string `json:"tag_list"`
}

func (in UpdatePostInput) tagNames() []string {
	switch {
	case in.TagList != nil:
		return NormalizeTags(in.TagList)
	case in.Tags != nil:
		return ParseTags(*in.Tags)
	default:
		return nil
	}
}

// PostService handles post operations.
type PostService interface {
	List(ctx context.Context) ([]model.Post, error)
	Get(ctx context.Context, id uint) (*model.Post, error)
	Search(ctx context.Context, keyword string) ([]model.Post, error)
	Create(ctx context.Context, user *model.User, in CreatePostInput) (*model.Post, error)
	Update(ctx context.Context, user *model.User, id uint, in UpdatePostInput) (*model.Post, error)
	// Delete removes the post with its comments and returns the pre-delete snapshot.
	Delete(ctx context.Context, user *model.User, id uint) (*model.Post, error)
}

type postService struct {
	repo      repository.PostRepository
	validator *validation.Validator
	events    events.Publisher
}

// NewPostService creates a new post service.
func NewPostService(repo repository.PostRepository, validator *validation.Validator, publisher events.Publisher) PostService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &postService{repo: repo, validator: validator, events: publisher}
}

func (s *postService) List(ctx context.Context) ([]model.Post, error) {
	posts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (s *postService) Get(ctx context.Context, id uint) (*model.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post %d: %w", id, err)
	}
	return post, nil
}

// Search matches keyword as a substring of post content. An empty keyword matches nothing.
func (s *postService) Search(ctx context.Context, keyword string) ([]model.Post, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []model.Post{}, nil
	}
	posts, err := s.repo.Search(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	return posts, nil
}

func (s *postService) Create(ctx context.Context, user *model.User, in CreatePostInput) (*model.Post, error) {
	in.Content = strings.TrimSpace(in.Content)

	verr := &apperrors.ValidationError{}
	if err := s.validator.Struct(in); err != nil {
		if !errors.As(err, &verr) {
			return nil, err
		}
	}
	if in.Content == "" && in.Image == nil {
		verr.Add("content", "The content field is required when image is not present.")
	}

	post := &model.Post{UserID: user.ID}
	if in.Content != "" {
		content := in.Content
		post.Content = &content
	}
	if in.Image != nil {
		mime, msg := inspectImage(in.Image)
		if msg != "" {
			verr.Add("image", msg)
		} else {
			post.ImageData = in.Image.Data
			post.ImageMime = &mime
		}
	}
	if verr.HasErrors() {
		return nil, verr
	}

	names := NormalizeTags(in.TagList)
	if in.TagList == nil {
		names = ParseTags(in.Tags)
	}

	if err := s.repo.Create(ctx, post, names); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	created, err := s.Get(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.PostCreated, created)
	return created, nil
}

// inspectImage returns the detected MIME type, or a validation message.
func inspectImage(img *ImageUpload) (string, string) {
	size := img.Size
	if int64(len(img.Data)) > size {
		size = int64(len(img.Data))
	}
	if size > model.MaxPostImageBytes {
		return "", fmt.Sprintf("The image field must not be greater than %d kilobytes.", model.MaxPostImageBytes/1024)
	}
	if len(img.Data) == 0 {
		return "", "The image field must be an image."
	}
	detected := mimetype.Detect(img.Data)
	if !mimetype.EqualsAny(detected.String(), allowedImageTypes...) {
		return "", "The image field must be an image."
	}
	return detected.String(), ""
}

// Update loads the post, checks ownership, then validates the payload.
func (s *postService) Update(ctx context.Context, user *model.User, id uint, in UpdatePostInput) (*model.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanModifyPost(user, post) {
		return nil, apperrors.ErrForbidden
	}

	in.Content = strings.TrimSpace(in.Content)
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	content := in.Content
	post.Content = &content
	if err := s.repo.Update(ctx, post, in.tagNames()); err != nil {
		return nil, fmt.Errorf("update post %d: %w", id, err)
	}

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.PostUpdated, updated)
	return updated, nil
}

func (s *postService) Delete(ctx context.Context, user *model.User, id uint) (*model.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanModifyPost(user, post) {
		return nil, apperrors.ErrForbidden
	}

	if err := s.repo.Delete(ctx, post); err != nil {
		return nil, fmt.Errorf("delete post %d: %w", id, err)
	}
	s.publish(ctx, events.PostDeleted, post)
	return post, nil
}

func (s *postService) publish(ctx context.Context, typ events.Type, post *model.Post) {
	_ = s.events.Publish(ctx, events.Event{
		Type:       typ,
		PostID:     post.ID,
		UserID:     post.UserID,
		Tags:       tagNames(post.Tags),
		OccurredAt: time.Now().UTC(),
	})
}
