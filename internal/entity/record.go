package entity

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// Record is satisfied by pointers to persisted entities.
type Record[T any] interface {
	*T
	Identity() uuid.UUID
	SetIdentity(uuid.UUID)
	// Prepare validates the record and derives its geodetic point.
	Prepare() error
}

// ValidationError lists the invalid attributes of a record.
type ValidationError struct {
	Problems []string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return "invalid record: " + strings.Join(e.Problems, "; ")
}

type problems []string

func (p *problems) addf(format string, args ...any) {
	*p = append(*p, fmt.Sprintf(format, args...))
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return ValidationError{Problems: p}
}

func checkCoordinates(p *problems, lon, lat float64) {
	if !(lon >= -180 && lon <= 180) {
		p.addf("lon %v out of range", lon)
	}
	if !(lat >= -90 && lat <= 90) {
		p.addf("lat %v out of range", lat)
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
