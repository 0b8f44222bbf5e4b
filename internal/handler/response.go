package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/octobees/campsites/api/internal/entity"
	"github.com/octobees/campsites/api/internal/query"
	"github.com/octobees/campsites/api/internal/repository"
	"github.com/octobees/campsites/api/internal/service"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// Error sends an error response using the shared envelope format.
func Error(c echo.Context, status int, detail string) error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, ErrorResponse{Status: "error", Detail: detail})
}

// Failure maps a service error onto its HTTP status. Unexpected errors are
// logged and answered with a generic message.
func Failure(c echo.Context, err error) error {
	var (
		queryErr  query.ValidationError
		recordErr entity.ValidationError
		csvErr    service.CSVValidationError
	)
	switch {
	case errors.As(err, &queryErr):
		return Error(c, http.StatusUnprocessableEntity, queryErr.Error())
	case errors.As(err, &recordErr):
		return Error(c, http.StatusUnprocessableEntity, recordErr.Error())
	case errors.As(err, &csvErr):
		return Error(c, http.StatusUnprocessableEntity, csvErr.Error())
	case errors.Is(err, repository.ErrWriteConflict):
		return Error(c, http.StatusUnprocessableEntity, "write rejected by a database constraint")
	case errors.Is(err, repository.ErrNotFound):
		return Error(c, http.StatusNotFound, "not found")
	}

	zerolog.Ctx(c.Request().Context()).Error().Err(err).Str("route", c.Path()).Msg("request failed")
	return Error(c, http.StatusInternalServerError, "internal server error")
}

// HTTPErrorHandler renders errors that escape handlers, such as unknown routes
// and panics caught by the recover middleware, in the error envelope.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		detail := http.StatusText(httpErr.Code)
		if msg, ok := httpErr.Message.(string); ok && msg != "" {
			detail = msg
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(httpErr.Code)
			return
		}
		_ = Error(c, httpErr.Code, detail)
		return
	}

	_ = Failure(c, err)
}
