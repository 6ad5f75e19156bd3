package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"updigital/internal/services"
)

// BaseController provides generic CRUD operations for any model
type BaseController[T any] struct {
	service services.BaseService[T]
	// filterable lists the query parameters that may be used as
	// equality filters on List. Anything else is ignored.
	filterable []string
}

// NewBaseController creates a new base controller
func NewBaseController[T any](service services.BaseService[T], filterable ...string) *BaseController[T] {
	return &BaseController[T]{
		service:    service,
		filterable: filterable,
	}
}

// Create handles creation of new entities
func (c *BaseController[T]) Create(ctx echo.Context) error {
	var entity T
	if err := ctx.Bind(&entity); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := ctx.Validate(&entity); err != nil {
		return err
	}

	if err := c.service.Create(ctx.Request().Context(), &entity); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return ctx.JSON(http.StatusCreated, entity)
}

// Get handles retrieval of a single entity
func (c *BaseController[T]) Get(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing id parameter")
	}

	entity, err := c.service.Get(ctx.Request().Context(), id)
	if errors.Is(err, services.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "entity not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return ctx.JSON(http.StatusOK, entity)
}

// List handles retrieval of multiple entities. The query parameters
// "skip" and "take" can be used for pagination: the first is the
// offset and the second is the number of elements to be returned.
func (c *BaseController[T]) List(ctx echo.Context) error {
	skip, err := queryInt(ctx, "skip")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	take, err := queryInt(ctx, "take")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}

	filters := make(map[string]interface{})
	for _, key := range c.filterable {
		if v := ctx.QueryParam(key); v != "" {
			filters[key] = v
		}
	}

	entities, total, err := c.service.List(ctx.Request().Context(), skip, take, filters)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	ctx.Response().Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	return ctx.JSON(http.StatusOK, entities)
}

// Update handles partial updates of an existing entity (PATCH); only
// the fields present in the body change.
func (c *BaseController[T]) Update(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing id parameter")
	}

	if _, err := c.service.Get(ctx.Request().Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "entity not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var entity T
	if err := ctx.Bind(&entity); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.service.Update(ctx.Request().Context(), id, &entity); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	updated, err := c.service.Get(ctx.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return ctx.JSON(http.StatusOK, updated)
}

// Replace handles full replacement of an entity (PUT). The body must
// carry the complete schema; omitted fields are overwritten.
func (c *BaseController[T]) Replace(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing id parameter")
	}

	if _, err := c.service.Get(ctx.Request().Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "entity not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var entity T
	if err := ctx.Bind(&entity); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := ctx.Validate(&entity); err != nil {
		return err
	}

	if err := c.service.Replace(ctx.Request().Context(), id, &entity); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	updated, err := c.service.Get(ctx.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return ctx.JSON(http.StatusOK, updated)
}

// Delete handles deletion of an entity
func (c *BaseController[T]) Delete(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing id parameter")
	}

	if err := c.service.Delete(ctx.Request().Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "entity not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return ctx.NoContent(http.StatusNoContent)
}

func queryInt(ctx echo.Context, name string) (int, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
