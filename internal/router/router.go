package router

import (
	"net/http"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"postboard/internal/config"
	"postboard/internal/errors"
	"postboard/internal/handler"
	"postboard/internal/logging"
	"postboard/internal/service"
	"postboard/internal/validation"
)

// maxBodySize bounds request bodies; it leaves room for a 2048 KB image plus form fields.
const maxBodySize = "3M"

// Handlers groups the HTTP handlers wired by Register.
type Handlers struct {
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Post    *handler.PostHandler
	Comment *handler.CommentHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	logger *logrus.Logger,
	authService service.AuthService,
	h Handlers,
) {
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(logging.RequestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  cfg.CORSAllowedOrigins,
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderXRequestID},
		ExposeHeaders: []string{echo.HeaderXRequestID, "Retry-After"},
	}))
	e.Use(middleware.BodyLimit(maxBodySize))
	if cfg.APIRateLimit > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.APIRateLimit))))
	}

	e.Validator = validation.New()

	health := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}
	e.GET("/healthz", health)
	e.GET("/up", health)

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/register", h.Auth.Register)
	api.POST("/login", h.Auth.Login)

	// Secured routes (require a bearer token)
	secured := api.Group("", BearerAuth(authService))

	secured.GET("/user", h.User.Me)
	secured.GET("/loginsuccess", h.User.Me)
	secured.POST("/logout", h.Auth.Logout)

	secured.GET("/posts", h.Post.List)
	secured.POST("/posts", h.Post.Store)
	secured.GET("/posts/search", h.Post.Search)
	secured.PUT("/posts/:id", h.Post.Update)
	secured.PATCH("/posts/:id", h.Post.Update)
	secured.DELETE("/posts/:id", h.Post.Destroy)

	secured.POST("/posts/:id/comments", h.Comment.Store)
	secured.DELETE("/comments/:id", h.Comment.Destroy)
}

// BearerAuth resolves "Authorization: Bearer <token>" into the current user.
// Tokens are opaque, so the echo-jwt middleware is only used for extraction and
// error handling; validation is delegated to the auth service.
func BearerAuth(authService service.AuthService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  handler.UserContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			user, err := authService.Authenticate(c.Request().Context(), auth)
			if err != nil {
				return nil, err
			}
			c.Set(handler.TokenContextKey, auth)
			return user, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			httpErr := errors.MapErrorToHTTP(errors.ErrUnauthenticated)
			var tokenErr *echojwt.TokenParsingError
			if errors.As(err, &tokenErr) && !errors.Is(tokenErr.Err, errors.ErrUnauthenticated) {
				// store failures, not bad credentials
				logging.FromContext(c).WithError(tokenErr.Err).Error("bearer authentication failed")
				httpErr = errors.MapErrorToHTTP(tokenErr.Err)
			}
			return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
		},
	})
}
