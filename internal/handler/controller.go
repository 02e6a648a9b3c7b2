// Package handler translates HTTP requests into repository calls. The
// generic Controller covers the CRUD surface shared by users and films;
// entity-specific handlers compose it and add their own operations.
package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"onlyfilms/internal/httperr"
	"onlyfilms/internal/repository"
)

// PageSize is the fixed number of items per list page.
const PageSize = 6

// ListResponse is the envelope for paginated list endpoints. Previous and
// Next are absolute URLs, or null at the corresponding edge.
type ListResponse struct {
	Items    any     `json:"items"`
	Count    int64   `json:"count"`
	Previous *string `json:"previous"`
	Next     *string `json:"next"`
}

// Controller implements the generic CRUD behavior over one repository.
// FilterParam optionally names a query parameter usable as an equality
// filter on list requests (e.g. "genre" for films).
type Controller[T any] struct {
	Repo        repository.Repository[T]
	FilterParam string
}

// parseID reads the :id route parameter. A non-numeric id can never match
// an entity, so it reports NotFound rather than a syntax error.
func parseID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, httperr.NotFound("wrong id for the query")
	}
	return id, nil
}

// GetAll lists one page of entities: ?page= (1-based, default 1) plus the
// optional filter parameter. The response carries absolute previous/next
// URLs when more pages exist on that side.
func (ct *Controller[T]) GetAll(c echo.Context) error {
	page := 1
	if raw := c.QueryParam("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}

	var filter *repository.Filter
	filterVal := ""
	if ct.FilterParam != "" {
		if v := c.QueryParam(ct.FilterParam); v != "" {
			filterVal = v
			filter = &repository.Filter{Key: ct.FilterParam, Value: v}
		}
	}

	ctx := c.Request().Context()
	items, err := ct.Repo.Query(ctx, page, PageSize, filter)
	if err != nil {
		return err
	}
	count, err := ct.Repo.Count(ctx, filter)
	if err != nil {
		return err
	}

	totalPages := int((count + PageSize - 1) / PageSize)
	resp := ListResponse{Items: items, Count: count}
	if page < totalPages {
		u := ct.pageURL(c, page+1, filterVal)
		resp.Next = &u
	}
	if page > 1 {
		u := ct.pageURL(c, page-1, filterVal)
		resp.Previous = &u
	}
	return c.JSON(http.StatusOK, resp)
}

// pageURL rebuilds the request's own URL pointing at another page, with the
// filter re-attached when one was given.
func (ct *Controller[T]) pageURL(c echo.Context, page int, filterVal string) string {
	u := url.URL{
		Scheme: c.Scheme(),
		Host:   c.Request().Host,
		Path:   c.Request().URL.Path,
	}
	q := url.Values{}
	if filterVal != "" {
		q.Set(ct.FilterParam, filterVal)
	}
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

// GetByID returns one entity or propagates NotFound.
func (ct *Controller[T]) GetByID(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	item, err := ct.Repo.QueryByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// Patch applies a partial update from the JSON body and responds 202 with
// the updated entity. Reserved keys never reach the repository.
func (ct *Controller[T]) Patch(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	patch := map[string]any{}
	if err := c.Bind(&patch); err != nil {
		return httperr.BadRequest("invalid body")
	}
	delete(patch, "id")
	delete(patch, "owner")
	delete(patch, "tokenPayload")

	item, err := ct.Repo.Update(c.Request().Context(), id, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, item)
}

// DeleteByID removes the entity and responds 204 with an empty body.
func (ct *Controller[T]) DeleteByID(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := ct.Repo.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
