package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"postboard/internal/errors"
	"postboard/internal/logging"
	"postboard/internal/model"
)

const (
	// UserContextKey holds the authenticated *model.User.
	UserContextKey = "user"
	// TokenContextKey holds the raw bearer token of the request.
	TokenContextKey = "token"
)

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// fail maps a domain error to its HTTP response. Server errors are logged
// with full detail; the client only receives a generic message.
func fail(c echo.Context, err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	log := logging.FromContext(c)
	if httpErr.IsServerError() {
		log.WithError(err).Error("request failed")
	} else {
		log.WithField("code", httpErr.Code).Info(httpErr.Message)
	}
	if httpErr.RetryAfter > 0 {
		c.Response().Header().Set("Retry-After", strconv.Itoa(httpErr.RetryAfter))
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func badRequest() error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: "invalid request body",
		Code:  "INVALID_REQUEST",
	})
}

// currentUser returns the user set by the bearer middleware.
func currentUser(c echo.Context) (*model.User, error) {
	user, ok := c.Get(UserContextKey).(*model.User)
	if !ok || user == nil {
		return nil, errors.ErrUnauthenticated
	}
	return user, nil
}

// parseID reads a numeric path id. Anything unparsable is reported as notFound.
func parseID(c echo.Context, notFound error) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, notFound
	}
	return uint(id), nil
}
