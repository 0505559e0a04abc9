package geo

import (
	"strconv"
	"strings"
)

const (
	// BoxHalfWidth is the longitude distance from the center to each side of the box
	BoxHalfWidth = 1.0

	// BoxHalfHeight is the latitude distance from the center to each side of the box
	BoxHalfHeight = 1.0

	LatitudeMin  = -90.0
	LatitudeMax  = 90.0
	LongitudeMin = -180.0
	LongitudeMax = 180.0
)

// Coordinate is a validated latitude/longitude pair
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// BoundingBox describes the rectangular region of a location search
type BoundingBox struct {
	West  float64
	South float64
	East  float64
	North float64
}

// NewBoundingBox builds the search box around a center coordinate.
// Each bound is clamped to the legal coordinate domain on its own.
func NewBoundingBox(center Coordinate) BoundingBox {
	return BoundingBox{
		West:  clamp(center.Longitude-BoxHalfWidth, LongitudeMin, LongitudeMax),
		South: clamp(center.Latitude-BoxHalfHeight, LatitudeMin, LatitudeMax),
		East:  clamp(center.Longitude+BoxHalfWidth, LongitudeMin, LongitudeMax),
		North: clamp(center.Latitude+BoxHalfHeight, LatitudeMin, LatitudeMax),
	}
}

// String renders the box in the "west,south,east,north" form the API expects
func (b BoundingBox) String() string {
	parts := []string{
		formatDegrees(b.West),
		formatDegrees(b.South),
		formatDegrees(b.East),
		formatDegrees(b.North),
	}
	return strings.Join(parts, ",")
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
