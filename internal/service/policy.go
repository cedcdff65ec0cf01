package service

import "postboard/internal/model"

// CanModifyPost reports whether user may update or delete post.
func CanModifyPost(user *model.User, post *model.Post) bool {
	return user != nil && post != nil && user.ID != 0 && user.ID == post.UserID
}

// CanModifyComment reports whether user may delete comment.
func CanModifyComment(user *model.User, comment *model.Comment) bool {
	return user != nil && comment != nil && user.ID != 0 && user.ID == comment.UserID
}
