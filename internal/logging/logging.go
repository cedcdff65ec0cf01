package logging

import (
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const contextKey = "logger"

// New builds the process logger. format is "json" or "text".
func New(level, format string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetReportCaller(true)

	if strings.EqualFold(format, "text") {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// RequestLogger stores a request scoped entry in the echo context and logs
// every request once it has been handled. It must run after middleware.RequestID.
func RequestLogger(logger *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			res := c.Response()

			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = res.Header().Get(echo.HeaderXRequestID)
			}
			entry := logger.WithField("request_id", requestID)
			c.Set(contextKey, entry)

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			fields := logrus.Fields{
				"method":     req.Method,
				"uri":        req.RequestURI,
				"status":     res.Status,
				"latency_ms": time.Since(start).Milliseconds(),
				"remote_ip":  c.RealIP(),
				"bytes_out":  res.Size,
			}
			switch {
			case res.Status >= 500:
				entry.WithFields(fields).Error("request completed")
			case res.Status >= 400:
				entry.WithFields(fields).Warn("request completed")
			default:
				entry.WithFields(fields).Info("request completed")
			}
			return nil
		}
	}
}

// FromContext returns the request scoped entry, or a standard logger entry
// when the middleware did not run.
func FromContext(c echo.Context) *logrus.Entry {
	if entry, ok := c.Get(contextKey).(*logrus.Entry); ok {
		return entry
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
