package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dorm-finder/internal/middleware"
	"github.com/iliyamo/dorm-finder/internal/search"
	"github.com/iliyamo/dorm-finder/internal/service"
)

// DormHandler serves search and detail pages.
type DormHandler struct {
	Catalog *service.Catalog
}

func NewDormHandler(cat *service.Catalog) *DormHandler { return &DormHandler{Catalog: cat} }

// SearchSessionHeader lets a client scope last-request-wins to one tab.
const SearchSessionHeader = "X-Search-Session"

// searchSession keys last-request-wins by visitor, narrowed to one tab by
// SearchSessionHeader. Requests without an identity get no session, whatever
// header they send.
func searchSession(c echo.Context) string {
	id := middleware.Identity(c)
	if id == "" {
		return ""
	}
	if s := strings.TrimSpace(c.Request().Header.Get(SearchSessionHeader)); s != "" {
		return id + "|" + s
	}
	return id
}

// Search handles GET /v1/dorms. Filters come from the query string; a
// newer search from the same visitor makes an older one answer 409.
func (h *DormHandler) Search(c echo.Context) error {
	q := c.QueryParams()
	req := service.SearchRequest{
		Session: searchSession(c),
		Query:   strings.TrimSpace(q.Get("q")),
		Filters: search.ParseFilters(q),
		Sort:    q.Get("sort"),
		Lang:    lang(c),
	}
	res, err := h.Catalog.Search(c.Request().Context(), req)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, res)
	case errors.Is(err, service.ErrSuperseded):
		return c.JSON(http.StatusConflict, echo.Map{"error": "superseded", "message": "a newer search replaced this one"})
	case errors.Is(err, service.ErrSourceUnavailable):
		return c.JSON(http.StatusServiceUnavailable, res)
	}
	return writeError(c, err, "search")
}

// Detail handles GET /v1/dorms/:id.
func (h *DormHandler) Detail(c echo.Context) error {
	l, err := h.Catalog.Detail(c.Request().Context(), c.Param("id"), lang(c))
	if err != nil {
		return writeError(c, err, "load dorm")
	}
	return c.JSON(http.StatusOK, l)
}

type verifiedReq struct {
	Verified *bool `json:"verified"`
}

// SetVerified handles PATCH /v1/admin/dorms/:id/verified.
func (h *DormHandler) SetVerified(c echo.Context) error {
	var req verifiedReq
	if err := c.Bind(&req); err != nil || req.Verified == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body", "message": "verified (bool) required"})
	}
	if err := h.Catalog.SetVerified(c.Request().Context(), c.Param("id"), *req.Verified); err != nil {
		return writeError(c, err, "update verification")
	}
	return c.JSON(http.StatusOK, echo.Map{"id": c.Param("id"), "verified": *req.Verified})
}
