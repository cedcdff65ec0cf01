package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"postboard/internal/errors"
	"postboard/internal/logging"
	"postboard/internal/model"
	"postboard/internal/service"
)

// CommentHandler handles comment endpoints.
type CommentHandler struct {
	commentService service.CommentService
}

// NewCommentHandler creates a new comment handler.
func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// CommentRequest represents a new comment.
type CommentRequest struct {
	Content string `json:"content" form:"content"`
}

// DeleteCommentResponse echoes the removed comment.
type DeleteCommentResponse struct {
	Message string         `json:"message"`
	Comment *model.Comment `json:"comment"`
}

// Store godoc
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body CommentRequest true "Comment text, up to 500 characters"
// @Success 201 {object} model.Comment
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /posts/{id}/comments [post]
func (h *CommentHandler) Store(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return fail(c, err)
	}
	postID, err := parseID(c, errors.ErrPostNotFound)
	if err != nil {
		return fail(c, err)
	}

	var req CommentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest()
	}

	comment, err := h.commentService.Create(c.Request().Context(), user, postID, service.CreateCommentInput{Content: req.Content})
	if err != nil {
		return fail(c, err)
	}

	logging.FromContext(c).WithField("comment_id", comment.ID).Info("comment created")
	return c.JSON(http.StatusCreated, comment)
}

// Destroy godoc
// @Summary Delete own comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} DeleteCommentResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /comments/{id} [delete]
func (h *CommentHandler) Destroy(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := parseID(c, errors.ErrCommentNotFound)
	if err != nil {
		return fail(c, err)
	}

	comment, err := h.commentService.Delete(c.Request().Context(), user, id)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, DeleteCommentResponse{Message: "comment deleted", Comment: comment})
}
