package events

import (
	"context"
	"time"
)

// Type names a domain event. It doubles as the routing key.
type Type string

const (
	PostCreated    Type = "post.created"
	PostUpdated    Type = "post.updated"
	PostDeleted    Type = "post.deleted"
	CommentCreated Type = "comment.created"
	CommentDeleted Type = "comment.deleted"
)

// Event is the payload published after a successful write.
type Event struct {
	Type       Type      `json:"type"`
	PostID     uint      `json:"post_id"`
	CommentID  uint      `json:"comment_id,omitempty"`
	UserID     uint      `json:"user_id"`
	Tags       []string  `json:"tags,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }
