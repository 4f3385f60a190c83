package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dorm-finder/internal/compare"
	"github.com/iliyamo/dorm-finder/internal/middleware"
	"github.com/iliyamo/dorm-finder/internal/service"
)

// CompareHandler exposes the caller's comparison set. The set is chosen by
// middleware.CompareScope.
type CompareHandler struct {
	Comparison *service.Comparison
}

func NewCompareHandler(s *service.Comparison) *CompareHandler {
	return &CompareHandler{Comparison: s}
}

// View handles GET /v1/compare.
func (h *CompareHandler) View(c echo.Context) error {
	v, err := h.Comparison.View(c.Request().Context(), middleware.CompareKey(c), lang(c))
	if err != nil {
		return writeError(c, err, "load comparison")
	}
	return c.JSON(http.StatusOK, v)
}

// Toggle handles POST /v1/compare/:id/toggle. A full set answers 409 and is
// left unchanged.
func (h *CompareHandler) Toggle(c echo.Context) error {
	ctx := c.Request().Context()
	key := middleware.CompareKey(c)
	out, err := h.Comparison.Toggle(ctx, key, c.Param("id"))
	if err != nil {
		return writeError(c, err, "toggle comparison")
	}
	if out == compare.Full {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":   "compare_full",
			"message": "comparison holds at most 4 dorms",
			"result":  out,
		})
	}
	v, err := h.Comparison.View(ctx, key, lang(c))
	if err != nil {
		return writeError(c, err, "load comparison")
	}
	return c.JSON(http.StatusOK, echo.Map{"result": out, "count": v.Count, "capacity": v.Capacity})
}

// Remove handles DELETE /v1/compare/:id. Removing an absent id is a no-op.
func (h *CompareHandler) Remove(c echo.Context) error {
	if err := h.Comparison.Remove(c.Request().Context(), middleware.CompareKey(c), c.Param("id")); err != nil {
		return writeError(c, err, "remove from comparison")
	}
	return c.NoContent(http.StatusNoContent)
}

// Clear handles DELETE /v1/compare.
func (h *CompareHandler) Clear(c echo.Context) error {
	if err := h.Comparison.Clear(c.Request().Context(), middleware.CompareKey(c)); err != nil {
		return writeError(c, err, "clear comparison")
	}
	return c.NoContent(http.StatusNoContent)
}

// Recommendations handles GET /v1/compare/recommendations.
func (h *CompareHandler) Recommendations(c echo.Context) error {
	p, err := h.Comparison.Recommendations(c.Request().Context(), middleware.CompareKey(c))
	if err != nil {
		return writeError(c, err, "recommend")
	}
	return c.JSON(http.StatusOK, p)
}
