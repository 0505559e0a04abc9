package geo

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Field names reported by InputError
const (
	FieldPhrase    = "phrase"
	FieldLatitude  = "latitude"
	FieldLongitude = "longitude"
)

// ErrInvalidInput matches every InputError
var ErrInvalidInput = errors.New("invalid input")

// InputError reports user input that blocks a search before any request is made
type InputError struct {
	Fields  []string
	Message string
}

func (e *InputError) Error() string {
	return "invalid " + strings.Join(e.Fields, ", ") + ": " + e.Message
}

// Is lets errors.Is match ErrInvalidInput
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ValidatePhrase checks that a phrase search has something to search for
func ValidatePhrase(phrase string) (string, error) {
	trimmed := strings.TrimSpace(phrase)
	if trimmed == "" {
		return "", &InputError{
			Fields:  []string{FieldPhrase},
			Message: "Please enter a search request!",
		}
	}
	return trimmed, nil
}

// ParseCoordinates validates raw latitude and longitude text.
// Checks run in three stages (presence, number, range) and every stage
// reports all offending fields at once.
func ParseCoordinates(latText, lonText string) (Coordinate, error) {
	latText = strings.TrimSpace(latText)
	lonText = strings.TrimSpace(lonText)

	if err := checkStage(latText == "", lonText == "",
		"Latitude is empty.",
		"Longitude is empty.",
		"Latitude and longitude are empty."); err != nil {
		return Coordinate{}, err
	}

	lat, latErr := parseDegrees(latText)
	lon, lonErr := parseDegrees(lonText)
	if err := checkStage(latErr != nil, lonErr != nil,
		"Latitude must be a number.",
		"Longitude must be a number.",
		"Latitude and longitude must be numbers."); err != nil {
		return Coordinate{}, err
	}

	if err := checkStage(!ValidLatitude(lat), !ValidLongitude(lon),
		"Latitude must be between -90 and 90.",
		"Longitude must be between -180 and 180.",
		"Latitude must be between -90 and 90 and longitude between -180 and 180."); err != nil {
		return Coordinate{}, err
	}

	return Coordinate{Latitude: lat, Longitude: lon}, nil
}

// ValidLatitude reports whether v lies in [-90, 90]
func ValidLatitude(v float64) bool {
	return v >= LatitudeMin && v <= LatitudeMax
}

// ValidLongitude reports whether v lies in [-180, 180]
func ValidLongitude(v float64) bool {
	return v >= LongitudeMin && v <= LongitudeMax
}

func checkStage(latBad, lonBad bool, latMsg, lonMsg, bothMsg string) error {
	switch {
	case latBad && lonBad:
		return &InputError{Fields: []string{FieldLatitude, FieldLongitude}, Message: bothMsg}
	case latBad:
		return &InputError{Fields: []string{FieldLatitude}, Message: latMsg}
	case lonBad:
		return &InputError{Fields: []string{FieldLongitude}, Message: lonMsg}
	}
	return nil
}

func parseDegrees(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}
