package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"postboard/internal/errors"
	"postboard/internal/logging"
	"postboard/internal/model"
	"postboard/internal/service"
)

// PostHandler handles post endpoints.
type PostHandler struct {
	postService service.PostService
}

// NewPostHandler creates a new post handler.
func NewPostHandler(postService service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// CreatePostRequest documents the multipart form accepted by Store.
type CreatePostRequest struct {
	Content string   `json:"content" form:"content"`
	Tags    string   `json:"tags" form:"tags"`
	TagList []string `json:"tag_list" form:"tags[]"`
}

// UpdatePostRequest represents a post update.
type UpdatePostRequest struct {
	Content string   `json:"content" form:"content"`
	Tags    *string  `json:"tags" form:"tags"`
	TagList []string `json:"tag_list" form:"tags[]"`
}

// DeletePostResponse echoes the removed post.
type DeletePostResponse struct {
	Message string      `json:"message"`
	Post    *model.Post `json:"post"`
}

// List godoc
// @Summary List posts, newest first
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Post
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /posts [get]
func (h *PostHandler) List(c echo.Context) error {
	posts, err := h.postService.List(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, posts)
}

// Search godoc
// @Summary Search posts by content
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param keyword query string false "Substring to look for"
// @Success 200 {array} model.Post
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /posts/search [get]
func (h *PostHandler) Search(c echo.Context) error {
	posts, err := h.postService.Search(c.Request().Context(), c.QueryParam("keyword"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, posts)
}

// Store godoc
// @Summary Create a post
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param content formData string false "Post text, up to 1000 characters"
// @Param tags formData string false "Comma separated tags"
// @Param image formData file false "Image up to 2048 KB"
// @Success 201 {object} model.Post
// @Failure 401 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /posts [post]
func (h *PostHandler) Store(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return fail(c, err)
	}

	var req CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return badRequest()
	}

	input := service.CreatePostInput{
		Content: req.Content,
		Tags:    req.Tags,
		TagList: req.TagList,
	}

	if isMultipart(c) {
		fh, err := c.FormFile("image")
		switch {
		case err == nil:
			upload, err := readUpload(fh)
			if err != nil {
				return fail(c, err)
			}
			input.Image = upload
		case err != http.ErrMissingFile:
			return badRequest()
		}
	}

	post, err := h.postService.Create(c.Request().Context(), user, input)
	if err != nil {
		return fail(c, err)
	}

	logging.FromContext(c).WithField("post_id", post.ID).Info("post created")
	return c.JSON(http.StatusCreated, post)
}

// Update godoc
// @Summary Update a post's content and optionally its tags
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body UpdatePostRequest true "New content"
// @Success 200 {object} model.Post
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /posts/{id} [put]
func (h *PostHandler) Update(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := parseID(c, errors.ErrPostNotFound)
	if err != nil {
		return fail(c, err)
	}

	var req UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return badRequest()
	}

	post, err := h.postService.Update(c.Request().Context(), user, id, service.UpdatePostInput{
		Content: req.Content,
		Tags:    req.Tags,
		TagList: req.TagList,
	})
	if err != nil {
		return fail(c, err)
	}

	logging.FromContext(c).WithField("post_id", post.ID).Info("post updated")
	return c.JSON(http.StatusOK, post)
}

// Destroy godoc
// @Summary Delete a post and its comments
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} DeletePostResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /posts/{id} [delete]
func (h *PostHandler) Destroy(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := parseID(c, errors.ErrPostNotFound)
	if err != nil {
		return fail(c, err)
	}

	post, err := h.postService.Delete(c.Request().Context(), user, id)
	if err != nil {
		return fail(c, err)
	}

	logging.FromContext(c).WithField("post_id", post.ID).Info("post deleted")
	return c.JSON(http.StatusOK, DeletePostResponse{Message: "post deleted", Post: post})
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

// readUpload reads at most one byte past the size limit so oversized files
// are detected without buffering them whole.
func readUpload(fh *multipart.FileHeader) (*service.ImageUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, model.MaxPostImageBytes+1))
	if err != nil {
		return nil, err
	}
	return &service.ImageUpload{
		Filename: fh.Filename,
		Data:     data,
		Size:     fh.Size,
	}, nil
}
