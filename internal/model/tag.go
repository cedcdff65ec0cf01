package model

import (
	"time"

	"gorm.io/gorm"
)

// Tag is a unique label attached to posts.
type Tag struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;size:255;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostTag is the join row between posts and tags.
type PostTag struct {
	PostID    uint      `gorm:"primaryKey"`
	TagID     uint      `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName pins the join table name.
func (PostTag) TableName() string {
	return "post_tag"
}

// BeforeCreate stamps the join row timestamps.
func (pt *PostTag) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if pt.CreatedAt.IsZero() {
		pt.CreatedAt = now
	}
	pt.UpdatedAt = now
	return nil
}
