package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/campsites/api/internal/entity"
	"github.com/octobees/campsites/api/internal/service"
)

// resource serves the CRUD endpoints shared by every entity type.
type resource[T any, P entity.Record[T]] struct {
	service *service.Service[T, P]
}

func (r resource[T, P]) list(c echo.Context) error {
	filter, err := r.service.Schema().Parse(c.QueryParams())
	if err != nil {
		return Failure(c, err)
	}

	page, err := r.service.List(c.Request().Context(), filter)
	if err != nil {
		return Failure(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (r resource[T, P]) get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return Error(c, http.StatusUnprocessableEntity, "id must be a UUID")
	}

	item, err := r.service.Get(c.Request().Context(), id)
	if err != nil {
		return Failure(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (r resource[T, P]) create(c echo.Context) error {
	item := new(T)
	if err := c.Bind(item); err != nil {
		return Error(c, http.StatusUnprocessableEntity, "invalid JSON body")
	}

	created, err := r.service.Create(c.Request().Context(), item)
	if err != nil {
		return Failure(c, err)
	}
	return c.JSON(http.StatusOK, created)
}

func (r resource[T, P]) update(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return Error(c, http.StatusUnprocessableEntity, "id must be a UUID")
	}

	item := new(T)
	if err := c.Bind(item); err != nil {
		return Error(c, http.StatusUnprocessableEntity, "invalid JSON body")
	}

	updated, err := r.service.Update(c.Request().Context(), id, item)
	if err != nil {
		return Failure(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (r resource[T, P]) delete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return Error(c, http.StatusUnprocessableEntity, "id must be a UUID")
	}

	if err := r.service.Delete(c.Request().Context(), id); err != nil {
		return Failure(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted", "id": id.String()})
}

func pathID(c echo.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	return id, err == nil
}
