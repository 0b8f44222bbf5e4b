package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/octobees/campsites/api/internal/entity"
	"github.com/octobees/campsites/api/internal/metrics"
	"github.com/octobees/campsites/api/internal/repository"
)

// ImportObserver receives CSV import outcomes.
type ImportObserver interface {
	ObserveImport(outcome string, rows int)
}

// CampsitesService exposes the campsite catalogue.
type CampsitesService struct {
	*Service[entity.Campsite, *entity.Campsite]
	phoneRegion string
	observer    ImportObserver
}

// CSVValidationError indicates that the provided CSV payload is invalid.
type CSVValidationError struct {
	Row     int
	Message string
}

// Error implements the error interface.
func (e CSVValidationError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: %s", e.Row, e.Message)
	}
	return e.Message
}

// UploadSummary reports how many rows an import inserted.
type UploadSummary struct {
	Inserted int `json:"inserted"`
}

// NewCampsitesService creates a new instance of CampsitesService. observer
// may be nil.
func NewCampsitesService(repo repository.Repository[entity.Campsite], phoneRegion string, observer ImportObserver) *CampsitesService {
	return &CampsitesService{
		Service:     NewService[entity.Campsite, *entity.Campsite](repo, entity.CampsiteSchema),
		phoneRegion: phoneRegion,
		observer:    observer,
	}
}

// ImportCSV parses the whole upload and inserts it in one batch. A single
// malformed row rejects the upload and nothing is persisted.
func (s *CampsitesService) ImportCSV(ctx context.Context, r io.Reader) (UploadSummary, error) {
	log := zerolog.Ctx(ctx)

	campsites, rows, err := s.parseCSV(r)
	if err != nil {
		var verr CSVValidationError
		if errors.As(err, &verr) {
			s.observe(metrics.OutcomeRejected, rows)
			log.Info().Err(err).Int("rows", rows).Msg("campsite upload rejected")
		}
		return UploadSummary{}, err
	}

	inserted, err := s.repo.BulkCreate(ctx, campsites)
	if err != nil {
		s.observe(metrics.OutcomeFailed, len(campsites))
		log.Error().Err(err).Int("rows", len(campsites)).Msg("campsite upload failed")
		return UploadSummary{}, err
	}

	s.observe(metrics.OutcomeInserted, inserted)
	log.Info().Int("inserted", inserted).Msg("campsite upload stored")
	return UploadSummary{Inserted: inserted}, nil
}

func (s *CampsitesService) observe(outcome string, rows int) {
	if s.observer != nil {
		s.observer.ObserveImport(outcome, rows)
	}
}

// parseCSV returns the parsed campsites and the number of data rows read.
func (s *CampsitesService) parseCSV(r io.Reader) ([]entity.Campsite, int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, CSVValidationError{Message: "csv file is empty"}
		}
		return nil, 0, csvReadError(err)
	}

	indexMap, valErr := buildHeaderIndex(header)
	if valErr != nil {
		return nil, 0, valErr
	}

	var (
		campsites []entity.Campsite
		rowNum    = 1
	)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			return nil, rowNum - 1, csvReadError(err)
		}
		if blankRow(row) {
			continue
		}

		c, err := s.parseRow(row, indexMap)
		if err != nil {
			return nil, rowNum - 1, CSVValidationError{Row: rowNum, Message: err.Error()}
		}
		s.assignID(&c)
		campsites = append(campsites, c)
	}

	return campsites, rowNum - 1, nil
}

func (s *CampsitesService) assignID(c *entity.Campsite) {
	c.SetIdentity(s.newID())
}

func csvReadError(err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return CSVValidationError{Row: parseErr.Line, Message: parseErr.Err.Error()}
	}
	return fmt.Errorf("read csv: %w", err)
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
