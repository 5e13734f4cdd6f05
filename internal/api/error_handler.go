package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/authcore/account-service/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Keeps credential and token failures deliberately generic.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	// Generic by design: never says whether the username or the password
	// was wrong, nor why a token did not match.
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid username or password"
	case errors.Is(err, domain.ErrInvalidKey):
		return http.StatusUnauthorized, "invalid key"

	case errors.Is(err, domain.ErrNotVerified):
		return http.StatusForbidden, "email not verified"
	case errors.Is(err, domain.ErrUserExists):
		// Specific on purpose so the user can pick another name.
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrInvalidUsername):
		return http.StatusBadRequest, "username may only contain letters and digits"
	case errors.Is(err, domain.ErrPasswordMismatch):
		return http.StatusBadRequest, "passwords do not match"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "invalid username"
	case errors.Is(err, domain.ErrResetDisabled):
		// The whole flow pretends not to exist.
		return http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrThrottled):
		return http.StatusTooManyRequests, "too many requests"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
