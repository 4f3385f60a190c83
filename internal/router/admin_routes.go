package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dorm-finder/internal/handler"
	"github.com/iliyamo/dorm-finder/internal/middleware"
	"github.com/iliyamo/dorm-finder/internal/model"
)

// RegisterAdmin registers maintenance endpoints. All of them require the
// ADMIN role.
func RegisterAdmin(e *echo.Echo, d *handler.DormHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.PATCH("/dorms/:id/verified", d.SetVerified)
}
