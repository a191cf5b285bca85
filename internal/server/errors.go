package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/akm-xdd/Trackly-core/internal/domain"
)

// httpError maps domain sentinels to status codes. Anything unmapped is an
// internal error; echo's error handler turns it into a 500 without leaking
// the message.
func httpError(err error) error {
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrIssueNotFound),
		errors.Is(err, domain.ErrFileNotFound),
		errors.Is(err, domain.ErrStatsNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrEmailTaken):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrTicketInvalid):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	default:
		return err
	}
}
