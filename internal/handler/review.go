package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dorm-finder/internal/middleware"
	"github.com/iliyamo/dorm-finder/internal/model"
	"github.com/iliyamo/dorm-finder/internal/service"
)

const defaultPageSize = 10

// ReviewHandler lists and accepts reviews of one dorm.
type ReviewHandler struct {
	Reviews *service.Reviews
}

func NewReviewHandler(r *service.Reviews) *ReviewHandler { return &ReviewHandler{Reviews: r} }

// List handles GET /v1/dorms/:id/reviews?page=&page_size=.
func (h *ReviewHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, err := strconv.Atoi(c.QueryParam("page_size"))
	if err != nil || size <= 0 {
		size = defaultPageSize
	}
	res, err := h.Reviews.List(c.Request().Context(), c.Param("id"), page, size)
	if err != nil {
		return writeError(c, err, "load reviews")
	}
	return c.JSON(http.StatusOK, res)
}

// Create handles POST /v1/dorms/:id/reviews. The route is open so an
// anonymous caller gets a 401 from the service rather than the middleware.
func (h *ReviewHandler) Create(c echo.Context) error {
	var in model.ReviewInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	rv, err := h.Reviews.Submit(c.Request().Context(), c.Param("id"), middleware.UserID(c), in)
	if err != nil {
		return writeError(c, err, "submit review")
	}
	return c.JSON(http.StatusCreated, rv)
}
