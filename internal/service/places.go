package service

import (
	"github.com/octobees/campsites/api/internal/entity"
	"github.com/octobees/campsites/api/internal/repository"
)

// PlacesService serves the geographical names gazetteer.
type PlacesService struct {
	*Service[entity.GeographicalName, *entity.GeographicalName]
}

// NewPlacesService creates a new instance of PlacesService.
func NewPlacesService(repo repository.Repository[entity.GeographicalName]) *PlacesService {
	return &PlacesService{Service: NewService[entity.GeographicalName, *entity.GeographicalName](repo, entity.PlaceSchema)}
}
