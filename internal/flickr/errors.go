package flickr

import (
	"errors"
	"fmt"
)

var (
	ErrNetwork           = errors.New("network error")
	ErrMalformedResponse = errors.New("malformed response")
	ErrNoResults         = errors.New("no results found")
	ErrMissingImageURL   = errors.New("no image URL")
	ErrImageFetch        = errors.New("image fetch failed")
	ErrUnencodable       = errors.New("parameter value cannot be encoded")
	ErrMissingAPIKey     = errors.New("Flickr API key not configured")
)

// APIError is a failure envelope returned by Flickr ({"stat":"fail",...})
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("flickr: %s (code %d)", e.Message, e.Code)
}

// RateLimitError indicates that the API rate limit has been exceeded
type RateLimitError struct {
	RetryAfter string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter != "" {
		return "flickr: rate limit exceeded, retry after " + e.RetryAfter
	}
	return "flickr: rate limit exceeded"
}

// Unwrap reports a rate limit as a network failure
func (e *RateLimitError) Unwrap() error {
	return ErrNetwork
}
