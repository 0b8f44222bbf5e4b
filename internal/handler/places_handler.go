package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/octobees/campsites/api/internal/entity"
	"github.com/octobees/campsites/api/internal/service"
)

// PlacesHandler exposes the read-only gazetteer endpoints.
type PlacesHandler struct {
	resource[entity.GeographicalName, *entity.GeographicalName]
}

// NewPlacesHandler creates a new handler instance.
func NewPlacesHandler(places *service.PlacesService) *PlacesHandler {
	return &PlacesHandler{
		resource: resource[entity.GeographicalName, *entity.GeographicalName]{service: places.Service},
	}
}

// List handles GET /places requests.
func (h *PlacesHandler) List(c echo.Context) error { return h.list(c) }

// Get handles GET /places/place/:id requests.
func (h *PlacesHandler) Get(c echo.Context) error { return h.get(c) }
