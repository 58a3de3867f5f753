package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/Nixie-Tech-LLC/minaarly/internal/model"
)

var ErrInvalidBounds = errors.New("invalid bounding box")

// Validate checks that b describes a well-formed box on the globe.
// West may be greater than East for boxes crossing the antimeridian.
func Validate(b model.BoundingBox) error {
	if math.IsNaN(b.South) || math.IsNaN(b.North) || math.IsNaN(b.West) || math.IsNaN(b.East) {
		return fmt.Errorf("%w: NaN edge", ErrInvalidBounds)
	}
	if b.South < -90 || b.North > 90 {
		return fmt.Errorf("%w: latitude out of range", ErrInvalidBounds)
	}
	if b.South > b.North {
		return fmt.Errorf("%w: south %.6f above north %.6f", ErrInvalidBounds, b.South, b.North)
	}
	if b.West < -180 || b.West > 180 || b.East < -180 || b.East > 180 {
		return fmt.Errorf("%w: longitude out of range", ErrInvalidBounds)
	}
	return nil
}

// Contains reports whether the point lies inside b, edges included.
func Contains(b model.BoundingBox, lat, lng float64) bool {
	if lat < b.South || lat > b.North {
		return false
	}
	if b.West <= b.East {
		return lng >= b.West && lng <= b.East
	}
	return lng >= b.West || lng <= b.East
}

// Around returns the box enclosing a circle of radiusKm around the point.
// Used as a cheap prefilter before exact distance checks.
func Around(lat, lng, radiusKm float64) model.BoundingBox {
	dLat := radiusKm / 111.32
	cos := math.Cos(toRadians(lat))
	dLng := 180.0
	if cos > 1e-6 {
		dLng = math.Min(180, radiusKm/(111.32*cos))
	}
	b := model.BoundingBox{
		South: math.Max(-90, lat-dLat),
		North: math.Min(90, lat+dLat),
		West:  lng - dLng,
		East:  lng + dLng,
	}
	if dLng >= 180 {
		b.West, b.East = -180, 180
		return b
	}
	if b.West < -180 {
		b.West += 360
	}
	if b.East > 180 {
		b.East -= 360
	}
	return b
}

// Key renders b rounded to the given number of decimals so nearby viewports
// share a cache entry.
func Key(b model.BoundingBox, decimals int) string {
	f := fmt.Sprintf("%%.%df", decimals)
	return fmt.Sprintf(f+":"+f+":"+f+":"+f, b.South, b.North, b.West, b.East)
}
