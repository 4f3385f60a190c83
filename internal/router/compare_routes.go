package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dorm-finder/internal/handler"
	"github.com/iliyamo/dorm-finder/internal/middleware"
)

// RegisterCompare registers the comparison set endpoints. Signed-in users
// work on their account's set and anonymous visitors on a cookie-scoped one.
func RegisterCompare(e *echo.Echo, h *handler.CompareHandler, jwtSecret string, secureCookie bool) {
	g := e.Group(
		"/v1/compare",
		middleware.OptionalJWT(jwtSecret),
		middleware.CompareScope(secureCookie),
	)
	g.GET("", h.View)
	g.DELETE("", h.Clear)
	g.GET("/recommendations", h.Recommendations)
	g.POST("/:id/toggle", h.Toggle)
	g.DELETE("/:id", h.Remove)
}
