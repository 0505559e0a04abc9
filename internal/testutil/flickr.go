package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
)

const (
	apiPath   = "/services/rest"
	imagePath = "/img/"
)

// FakeFlickr is an httptest server answering flickr.photos.search and
// serving image bytes. Configure the exported fields before the first request.
type FakeFlickr struct {
	*httptest.Server

	PageCount int                      // reported "pages"
	Total     any                      // reported "total"; nil omits the key
	Pages     map[int][]map[string]any // photo entries by page number
	Images    map[string][]byte        // image bodies by name
	APIStatus int                      // forces an HTTP status on API calls
	RawBody   string                   // returned verbatim on API calls

	mu        sync.Mutex
	requests  []url.Values
	imageHits int
}

// NewFakeFlickr starts a fake API server that is closed when the test ends
func NewFakeFlickr(t *testing.T) *FakeFlickr {
	t.Helper()

	f := &FakeFlickr{
		PageCount: 1,
		Total:     "0",
		Pages:     map[int][]map[string]any{},
		Images:    map[string][]byte{},
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Close)
	return f
}

// APIURL is the REST endpoint of the fake
func (f *FakeFlickr) APIURL() string {
	return f.URL + apiPath
}

// ImageURL is where the fake serves the image registered under name
func (f *FakeFlickr) ImageURL(name string) string {
	return f.URL + imagePath + name
}

// Photo builds a photo entry pointing at the image registered under name
func (f *FakeFlickr) Photo(id, title, name string) map[string]any {
	return map[string]any{
		"id":    id,
		"title": title,
		"url_m": f.ImageURL(name),
	}
}

// Requests returns the query of every API call so far
func (f *FakeFlickr) Requests() []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]url.Values(nil), f.requests...)
}

// ImageHits counts image downloads
func (f *FakeFlickr) ImageHits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.imageHits
}

func (f *FakeFlickr) handle(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == apiPath:
		f.handleAPI(w, r)
	case strings.HasPrefix(r.URL.Path, imagePath):
		f.handleImage(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (f *FakeFlickr) handleAPI(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.URL.Query())
	f.mu.Unlock()

	if f.APIStatus != 0 {
		w.WriteHeader(f.APIStatus)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if f.RawBody != "" {
		w.Write([]byte(f.RawBody))
		return
	}

	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		page, _ = strconv.Atoi(p)
	}

	photos := f.Pages[page]
	if photos == nil {
		photos = []map[string]any{}
	}
	collection := map[string]any{
		"page":    page,
		"pages":   f.PageCount,
		"perpage": 100,
		"photo":   photos,
	}
	if f.Total != nil {
		collection["total"] = f.Total
	}

	json.NewEncoder(w).Encode(map[string]any{
		"photos": collection,
		"stat":   "ok",
	})
}

func (f *FakeFlickr) handleImage(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.imageHits++
	f.mu.Unlock()

	data, ok := f.Images[strings.TrimPrefix(r.URL.Path, imagePath)]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Write(data)
}
