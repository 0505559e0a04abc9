package flickr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// UntitledPhoto is shown for photos without a usable title
const UntitledPhoto = "Untitled"

// Photo is the part of a search result entry that gets displayed
type Photo struct {
	ID       string
	Title    string
	ImageURL string
}

// Result is the photo picked by a search, with the counts that led to it
type Result struct {
	Photo Photo
	Total int // matching photos reported by the API
	Page  int // page the photo was sampled from
	Pages int // usable page count after clamping
}

// searchEnvelope is the top level of a flickr.photos.search response
type searchEnvelope struct {
	Stat    string          `json:"stat"`
	Code    flexInt         `json:"code"`
	Message string          `json:"message"`
	Photos  json.RawMessage `json:"photos"`
}

// photoCollection is the "photos" object of a response
type photoCollection struct {
	Page    flexInt         `json:"page"`
	Pages   flexInt         `json:"pages"`
	PerPage flexInt         `json:"perpage"`
	Total   *flexInt        `json:"total"`
	Photo   json.RawMessage `json:"photo"`
}

// flexInt accepts both 12 and "12"; Flickr sends total as a string
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("invalid count %q", s)
		}
		*n = flexInt(v)
		return nil
	}

	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("invalid count %s", b)
	}
	*n = flexInt(v)
	return nil
}

// parseCollection unwraps the photos object from a response body
func parseCollection(body []byte) (photoCollection, error) {
	var env searchEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return photoCollection{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if env.Stat == "fail" {
		return photoCollection{}, &APIError{Code: int(env.Code), Message: env.Message}
	}

	if !isJSONObject(env.Photos) {
		return photoCollection{}, fmt.Errorf("%w: missing key 'photos'", ErrMalformedResponse)
	}

	var coll photoCollection
	if err := json.Unmarshal(env.Photos, &coll); err != nil {
		return photoCollection{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return coll, nil
}

// entries returns the raw photo list of the collection
func (c photoCollection) entries() ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(c.Photo)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: missing key 'photo'", ErrMalformedResponse)
	}

	var list []json.RawMessage
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return list, nil
}

// parsePhoto extracts the displayed fields from one photo entry. A title
// that is absent, empty or not a string becomes UntitledPhoto; the same for
// url_m is an error since there is nothing else to show.
func parsePhoto(raw json.RawMessage) (Photo, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Photo{}, fmt.Errorf("%w: photo entry is not an object", ErrMalformedResponse)
	}

	photo := Photo{
		ID:       optionalString(fields, "id"),
		Title:    optionalString(fields, "title"),
		ImageURL: optionalString(fields, "url_m"),
	}
	if photo.Title == "" {
		photo.Title = UntitledPhoto
	}
	if photo.ImageURL == "" {
		return photo, fmt.Errorf("%w: photo %q has no url_m", ErrMissingImageURL, photo.ID)
	}
	return photo, nil
}

func optionalString(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
