package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"postboard/internal/model"
)

// TagRepository resolves tag names to rows.
type TagRepository interface {
	// FirstOrCreate returns one tag per distinct name, creating missing rows.
	// The result keeps the order of names and never repeats a tag id.
	FirstOrCreate(ctx context.Context, names []string) ([]model.Tag, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new tag repository.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) FirstOrCreate(ctx context.Context, names []string) ([]model.Tag, error) {
	tags := make([]model.Tag, 0, len(names))
	seen := make(map[uint]struct{}, len(names))
	for _, name := range names {
		tag, err := r.firstOrCreate(ctx, name)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[tag.ID]; dup {
			continue
		}
		seen[tag.ID] = struct{}{}
		tags = append(tags, *tag)
	}
	return tags, nil
}

func (r *tagRepository) firstOrCreate(ctx context.Context, name string) (*model.Tag, error) {
	var tag model.Tag
	err := r.db.WithContext(ctx).Where(model.Tag{Name: name}).FirstOrCreate(&tag).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost a race with a concurrent insert of the same name.
		tag = model.Tag{}
		err = r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}
