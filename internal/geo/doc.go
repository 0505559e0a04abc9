// Package geo validates user-entered coordinates and derives the bounding
// box used to scope a location search.
package geo
