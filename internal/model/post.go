package model

import (
	"encoding/base64"
	"time"

	"gorm.io/gorm"
)

const (
	// MaxPostContentLength is the maximum number of characters in a post body.
	MaxPostContentLength = 1000
	// MaxPostImageBytes is the largest accepted image upload (2048 KB).
	MaxPostImageBytes = 2048 * 1024
	// MaxTagsPerPost caps the distinct tags attached in a single create or update.
	MaxTagsPerPost = 10
)

// Post is a text and/or image entry owned by a user.
type Post struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"not null;index"`
	Content     *string   `json:"content" gorm:"type:text"`
	ImageData   []byte    `json:"-"`
	ImageMime   *string   `json:"image_mime" gorm:"size:100"`
	ImageBase64 *string   `json:"image_base64" gorm:"-"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	User     *User     `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Tags     []Tag     `json:"tags" gorm:"many2many:post_tag"`
	Comments []Comment `json:"comments" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

// HasImage reports whether the post carries an image payload.
func (p *Post) HasImage() bool {
	return len(p.ImageData) > 0 && p.ImageMime != nil && *p.ImageMime != ""
}

// FillImageBase64 derives the data URI served in place of the raw bytes.
func (p *Post) FillImageBase64() {
	if !p.HasImage() {
		p.ImageBase64 = nil
		return
	}
	uri := "data:" + *p.ImageMime + ";base64," + base64.StdEncoding.EncodeToString(p.ImageData)
	p.ImageBase64 = &uri
}

// AfterFind computes image_base64 on read.
func (p *Post) AfterFind(tx *gorm.DB) error {
	p.FillImageBase64()
	return nil
}

// AfterSave keeps image_base64 in sync for freshly written rows.
func (p *Post) AfterSave(tx *gorm.DB) error {
	p.FillImageBase64()
	return nil
}
