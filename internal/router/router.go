// Package router registers the HTTP routes of the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dorm-finder/internal/handler"
	"github.com/iliyamo/dorm-finder/internal/middleware"
	"github.com/iliyamo/dorm-finder/internal/model"
)

// RegisterRoutes registers routes that need no identity at all.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the account endpoints. Register, login and refresh
// live under /v1/auth; /v1/me needs a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout, middleware.OptionalJWT(jwtSecret))

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleStudent, model.RoleAdmin))
	auth.GET("/me", a.Me)
}

// RegisterDorms registers search, detail and review endpoints. They are
// public; a bearer token, when present, identifies the reviewer. cache wraps
// the read-only listing routes.
func RegisterDorms(e *echo.Echo, d *handler.DormHandler, r *handler.ReviewHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/dorms", middleware.OptionalJWT(jwtSecret))
	g.GET("", d.Search, cache)
	g.GET("/:id", d.Detail, cache)
	g.GET("/:id/reviews", r.List)
	g.POST("/:id/reviews", r.Create)
}
