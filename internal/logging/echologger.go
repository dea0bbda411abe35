package logging

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Skipper reports whether a request should not be logged.
type Skipper func(c echo.Context) bool

// SkipPaths returns a skipper for exact request paths.
func SkipPaths(paths ...string) Skipper {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return func(c echo.Context) bool {
		_, ok := set[c.Request().URL.Path]
		return ok
	}
}

// Logger returns echo middleware that logs every request through l.
// Requests matched by skip are logged at debug level.
func Logger(l *zap.Logger, name string, skip Skipper) echo.MiddlewareFunc {
	if l == nil {
		panic("logging.Logger received a nil *zap.Logger")
	}

	logger := l.WithOptions(zap.AddCallerSkip(1)).Named(name)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			t1 := time.Now()
			err := next(c)
			if err != nil {
				// Let the error handler write the response before reading the status.
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			statusCode := res.Status

			fields := []zap.Field{
				zap.String("type", "http_request"),
				zap.String("request_id", res.Header().Get(echo.HeaderXRequestID)),
				zap.String("http_method", req.Method),
				zap.String("http_path", req.URL.Path),
				zap.String("route", c.Path()),
				zap.String("remote_addr", c.RealIP()),
				zap.Int("http_status_code", statusCode),
				zap.String("http_status_text", statusLabel(statusCode)),
				zap.Int64("response_bytes", res.Size),
				zap.Duration("latency", time.Since(t1)),
				zap.String("user_agent", req.UserAgent()),
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
			}

			msg := fmt.Sprintf("HTTP request completed: %s", req.URL.Path)

			switch {
			case statusCode >= 500:
				logger.Error(msg, fields...)
			case statusCode >= 400:
				logger.Warn(msg, fields...)
			case skip != nil && skip(c):
				logger.Debug(msg, fields...)
			default:
				logger.Info(msg, fields...)
			}
			return nil
		}
	}
}

func statusLabel(status int) string {
	switch {
	case status >= 100 && status < 300:
		return fmt.Sprintf("%d OK", status)
	case status >= 300 && status < 400:
		return fmt.Sprintf("%d Redirect", status)
	case status >= 400 && status < 500:
		return fmt.Sprintf("%d Client Error", status)
	case status >= 500:
		return fmt.Sprintf("%d Server Error", status)
	default:
		return fmt.Sprintf("%d %s", status, http.StatusText(status))
	}
}
