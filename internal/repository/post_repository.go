package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"postboard/internal/model"
)

// PostRepository defines post persistence operations.
type PostRepository interface {
	List(ctx context.Context) ([]model.Post, error)
	Search(ctx context.Context, keyword string) ([]model.Post, error)
	FindByID(ctx context.Context, id uint) (*model.Post, error)
	// Create inserts post and syncs its tags in one transaction.
	Create(ctx context.Context, post *model.Post, tagNames []string) error
	// Update saves content and, when tagNames is non-nil, replaces the tag set.
	Update(ctx context.Context, post *model.Post, tagNames []string) error
	// Delete removes post together with its comments and tag links.
	Delete(ctx context.Context, post *model.Post) error
	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo PostRepository) error) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// withRelations eager loads owner, tags and comments with their authors.
func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id ASC") }).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("comments.created_at ASC, comments.id ASC") }).
		Preload("Comments.User")
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("posts.created_at DESC").Order("posts.id DESC")
}

// List returns all posts, newest first.
func (r *postRepository) List(ctx context.Context) ([]model.Post, error) {
	posts := []model.Post{}
	if err := r.db.WithContext(ctx).Scopes(withRelations, newestFirst).Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Search returns posts whose content contains keyword, newest first.
func (r *postRepository) Search(ctx context.Context, keyword string) ([]model.Post, error) {
	posts := []model.Post{}
	pattern := "%" + escapeLike(keyword) + "%"
	if err := r.db.WithContext(ctx).Scopes(withRelations, newestFirst).
		Where("posts.content LIKE ? ESCAPE '!'", pattern).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// FindByID finds a post by ID with relations loaded.
func (r *postRepository) FindByID(ctx context.Context, id uint) (*model.Post, error) {
	var post model.Post
	if err := r.db.WithContext(ctx).Scopes(withRelations).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, post *model.Post, tagNames []string) error {
	return r.WithTransaction(ctx, func(ctx context.Context, repo PostRepository) error {
		tx := repo.(*postRepository).db
		if err := tx.WithContext(ctx).Omit("Tags", "Comments", "User").Create(post).Error; err != nil {
			return err
		}
		return syncTags(ctx, tx, post, tagNames)
	})
}

func (r *postRepository) Update(ctx context.Context, post *model.Post, tagNames []string) error {
	return r.WithTransaction(ctx, func(ctx context.Context, repo PostRepository) error {
		tx := repo.(*postRepository).db
		if err := tx.WithContext(ctx).Model(post).Update("content", post.Content).Error; err != nil {
			return err
		}
		if tagNames == nil {
			return nil
		}
		return syncTags(ctx, tx, post, tagNames)
	})
}

func (r *postRepository) Delete(ctx context.Context, post *model.Post) error {
	return r.WithTransaction(ctx, func(ctx context.Context, repo PostRepository) error {
		tx := repo.(*postRepository).db.WithContext(ctx)
		if err := tx.Where("post_id = ?", post.ID).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&model.PostTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Post{}, post.ID).Error
	})
}

// WithTransaction executes a function within a database transaction.
func (r *postRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo PostRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &postRepository{db: tx}
		return fn(ctx, txRepo)
	})
}

// syncTags replaces the tag set of post with the tags named in names.
func syncTags(ctx context.Context, tx *gorm.DB, post *model.Post, names []string) error {
	tags, err := (&tagRepository{db: tx}).FirstOrCreate(ctx, names)
	if err != nil {
		return err
	}
	if err := tx.WithContext(ctx).Where("post_id = ?", post.ID).Delete(&model.PostTag{}).Error; err != nil {
		return err
	}
	if len(tags) > 0 {
		links := make([]model.PostTag, 0, len(tags))
		for _, tag := range tags {
			links = append(links, model.PostTag{PostID: post.ID, TagID: tag.ID})
		}
		if err := tx.WithContext(ctx).Create(&links).Error; err != nil {
			return err
		}
	}
	post.Tags = tags
	return nil
}

// likeEscape is the LIKE escape character. Backslash is not portable across drivers.
const likeEscape = "!"

var likeEscaper = strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")

// escapeLike neutralises LIKE wildcards so the keyword matches literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
