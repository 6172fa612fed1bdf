package observability

import (
	"errors"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"

	"github.com/newsphere/backend/internal/httperr"
)

func InitSentry(dsn, environment string) error {
	if dsn == "" {
		return nil
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		AttachStacktrace: true,
	})
}

func FlushSentry() {
	sentry.Flush(2 * time.Second)
}

// CaptureErrors reports unexpected failures (5xx) to sentry. Client errors
// from the taxonomy are not noise worth reporting.
func CaptureErrors(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		if err == nil {
			return nil
		}
		var appErr *httperr.Error
		if errors.As(err, &appErr) && appErr.Code < http.StatusInternalServerError {
			return err
		}
		sentry.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("path", c.Path())
			scope.SetTag("method", c.Request().Method)
			sentry.CaptureException(err)
		})
		return err
	}
}
