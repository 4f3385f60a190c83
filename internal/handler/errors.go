package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dorm-finder/internal/datasource"
)

// writeError maps domain errors to status codes. Anything unrecognised is
// logged and reported as 500 with a generic message.
func writeError(c echo.Context, err error, what string) error {
	var verr *datasource.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":   "validation_failed",
			"field":   verr.Field,
			"message": verr.Message,
		})
	case errors.Is(err, datasource.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found", "message": "dorm not found"})
	case errors.Is(err, datasource.ErrNotAuthenticated):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "sign in required"})
	}
	c.Logger().Errorf("%s: %v", what, err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal", "message": what + " failed"})
}

// lang picks the display language from ?lang= or Accept-Language.
func lang(c echo.Context) string {
	if l := c.QueryParam("lang"); l == "en" || l == "th" {
		return l
	}
	if al := c.Request().Header.Get("Accept-Language"); len(al) >= 2 && al[:2] == "en" {
		return "en"
	}
	return ""
}
