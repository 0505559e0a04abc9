package flickr

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"

	"codeberg.org/snonux/flickfinder/internal/geo"
)

const (
	MethodPhotosSearch = "flickr.photos.search"

	// MaxPages is the deepest page the API will serve for a search
	MaxPages = 40

	safeSearch     = "1"
	extrasImageURL = "url_m"
	dataFormat     = "json"
	noJSONCallback = "1"
)

// SearchMode selects phrase or location search
type SearchMode int

const (
	ModePhrase SearchMode = iota
	ModeLocation
)

func (m SearchMode) String() string {
	switch m {
	case ModePhrase:
		return "phrase"
	case ModeLocation:
		return "location"
	}
	return "unknown"
}

// SearchParameters is an immutable set of arguments for one search request.
// Exactly one of text or bbox is set, depending on the mode.
type SearchParameters struct {
	apiKey string
	mode   SearchMode
	text   string
	bbox   geo.BoundingBox
	page   int
}

// NewPhraseParameters builds the arguments for a free-text search
func NewPhraseParameters(apiKey, text string) SearchParameters {
	return SearchParameters{apiKey: apiKey, mode: ModePhrase, text: text}
}

// NewLocationParameters builds the arguments for a bounding box search
func NewLocationParameters(apiKey string, bbox geo.BoundingBox) SearchParameters {
	return SearchParameters{apiKey: apiKey, mode: ModeLocation, bbox: bbox}
}

// WithPage returns a copy of p that requests the given page
func (p SearchParameters) WithPage(page int) (SearchParameters, error) {
	if page < 1 || page > MaxPages {
		return p, fmt.Errorf("page %d outside [1, %d]", page, MaxPages)
	}
	p.page = page
	return p, nil
}

// Mode returns the active search mode
func (p SearchParameters) Mode() SearchMode { return p.mode }

// Page returns the requested page, 0 when none is set
func (p SearchParameters) Page() int { return p.page }

// Map returns the request arguments as a parameter name to value mapping
func (p SearchParameters) Map() map[string]any {
	m := map[string]any{
		"method":         MethodPhotosSearch,
		"api_key":        p.apiKey,
		"safe_search":    safeSearch,
		"extras":         extrasImageURL,
		"format":         dataFormat,
		"nojsoncallback": noJSONCallback,
	}
	switch p.mode {
	case ModePhrase:
		m["text"] = p.text
	case ModeLocation:
		m["bbox"] = p.bbox.String()
	}
	if p.page > 0 {
		m["page"] = p.page
	}
	return m
}

// BuildQuery turns a parameter mapping into "?k1=v1&k2=v2" with keys sorted
// and every key and value percent-encoded. An empty mapping yields "".
func BuildQuery(params map[string]any) (string, error) {
	if len(params) == 0 {
		return "", nil
	}

	values := url.Values{}
	for key, value := range params {
		s, err := stringValue(value)
		if err != nil {
			return "", fmt.Errorf("parameter %q: %w", key, err)
		}
		values.Set(key, s)
	}
	return "?" + values.Encode(), nil
}

func stringValue(v any) (string, error) {
	// A nil pointer has no text, even when its type has a String method
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return "", fmt.Errorf("%w: nil %T", ErrUnencodable, v)
	}

	switch x := v.(type) {
	case string:
		return x, nil
	case int:
		return strconv.Itoa(x), nil
	case int8:
		return strconv.FormatInt(int64(x), 10), nil
	case int16:
		return strconv.FormatInt(int64(x), 10), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(x), nil
	case fmt.Stringer:
		return x.String(), nil
	}
	return "", fmt.Errorf("%w: %T", ErrUnencodable, v)
}
