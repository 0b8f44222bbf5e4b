package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/campsites/api/internal/entity"
	"github.com/octobees/campsites/api/internal/service"
)

// UploadField is the multipart field carrying the campsites CSV.
const UploadField = "csv_file"

// CampsitesHandler exposes the campsite catalogue endpoints.
type CampsitesHandler struct {
	resource[entity.Campsite, *entity.Campsite]
	campsites *service.CampsitesService
}

// NewCampsitesHandler creates a new handler instance.
func NewCampsitesHandler(campsites *service.CampsitesService) *CampsitesHandler {
	return &CampsitesHandler{
		resource:  resource[entity.Campsite, *entity.Campsite]{service: campsites.Service},
		campsites: campsites,
	}
}

// List handles GET /campsites requests.
func (h *CampsitesHandler) List(c echo.Context) error { return h.list(c) }

// Get handles GET /campsites/campsite/:id requests.
func (h *CampsitesHandler) Get(c echo.Context) error { return h.get(c) }

// Create handles POST /campsites/campsite requests.
func (h *CampsitesHandler) Create(c echo.Context) error { return h.create(c) }

// Update handles PATCH /campsites/campsite/:id requests.
func (h *CampsitesHandler) Update(c echo.Context) error { return h.update(c) }

// Delete handles DELETE /campsites/campsite/:id requests.
func (h *CampsitesHandler) Delete(c echo.Context) error { return h.delete(c) }

// Upload handles POST /campsites/upload requests.
func (h *CampsitesHandler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile(UploadField)
	if err != nil {
		return Error(c, http.StatusUnprocessableEntity, "missing csv file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Error(c, http.StatusUnprocessableEntity, "unable to open file")
	}
	defer file.Close()

	summary, err := h.campsites.ImportCSV(c.Request().Context(), file)
	if err != nil {
		return Failure(c, err)
	}

	return c.JSON(http.StatusOK, summary)
}
