package finder

import (
	"errors"

	"codeberg.org/snonux/flickfinder/internal/flickr"
	"codeberg.org/snonux/flickfinder/internal/geo"
)

// User-facing messages
const (
	MsgSearching  = "Searching Flickr..."
	MsgNoResults  = "No photos found. Try again!"
	MsgNoImage    = "Image not available. Try again!"
	MsgMissingURL = "The photo has no image to show. Try again!"
	MsgMalformed  = "Flickr sent an unexpected response. Try again!"
	MsgNetwork    = "Could not reach Flickr. Check your connection and try again!"
)

// OutcomeKind classifies how a search ended
type OutcomeKind int

const (
	Success OutcomeKind = iota
	NoResults
	Failed
	Cancelled
)

func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case NoResults:
		return "no_results"
	case Failed:
		return "error"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// Outcome is the single result of one search
type Outcome struct {
	Kind    OutcomeKind
	Photo   flickr.Photo
	Image   []byte
	Total   int
	Page    int
	Pages   int
	Message string // shown by the sink for anything but Success
	Err     error
}

// failure converts a search error into the outcome shown to the user
func failure(err error) Outcome {
	var (
		inputErr *geo.InputError
		apiErr   *flickr.APIError
	)

	out := Outcome{Kind: Failed, Err: err}
	switch {
	case errors.As(err, &inputErr):
		out.Message = inputErr.Message
	case errors.Is(err, flickr.ErrNoResults):
		out.Kind = NoResults
		out.Message = MsgNoResults
	case errors.Is(err, flickr.ErrMissingImageURL):
		out.Message = MsgMissingURL
	case errors.Is(err, flickr.ErrImageFetch):
		out.Message = MsgNoImage
	case errors.Is(err, flickr.ErrMalformedResponse):
		out.Message = MsgMalformed
	case errors.As(err, &apiErr):
		out.Message = "Flickr error: " + apiErr.Message
	case errors.Is(err, flickr.ErrNetwork):
		out.Message = MsgNetwork
	default:
		out.Message = "Search failed: " + err.Error()
	}
	return out
}
