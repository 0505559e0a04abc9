package finder

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/flickfinder/internal/flickr"
	"codeberg.org/snonux/flickfinder/internal/geo"
	"codeberg.org/snonux/flickfinder/internal/metrics"
	fixtures "codeberg.org/snonux/flickfinder/internal/testutil"
)

func newFlickrFinder(t *testing.T, fake *fixtures.FakeFlickr) *Finder {
	t.Helper()

	client, err := flickr.NewClient("test-key",
		flickr.WithBaseURL(fake.APIURL()),
		flickr.WithRand(rand.New(rand.NewPCG(3, 5))),
	)
	require.NoError(t, err)
	return New(client, zerolog.Nop())
}

func TestRunPhraseEndToEnd(t *testing.T) {
	fake := fixtures.NewFakeFlickr(t)
	page1 := fixtures.PNGBytes(t)
	page2 := append([]byte(nil), page1...)
	fake.PageCount = 2
	fake.Total = "4"
	fake.Images["p1.png"] = page1
	fake.Images["p2.png"] = page2
	fake.Pages[1] = []map[string]any{
		fake.Photo("11", "Alps at dawn", "p1.png"),
		fake.Photo("12", "Matterhorn", "p1.png"),
	}
	fake.Pages[2] = []map[string]any{
		fake.Photo("21", "Rockies", "p2.png"),
		fake.Photo("22", "Andes", "p2.png"),
	}

	f := newFlickrFinder(t, fake)
	sink := &fixtures.RecordingSink{}

	for i := 0; i < 20; i++ {
		out := f.Run(context.Background(), PhraseRequest("mountains"), sink)
		require.Equal(t, Success, out.Kind, "message: %s", out.Message)

		switch out.Page {
		case 1:
			assert.Contains(t, []string{"Alps at dawn", "Matterhorn"}, out.Photo.Title)
		case 2:
			assert.Contains(t, []string{"Rockies", "Andes"}, out.Photo.Title)
		default:
			t.Fatalf("unexpected page %d", out.Page)
		}
		assert.Equal(t, 4, out.Total)

		img, ok := sink.Last("image")
		require.True(t, ok)
		assert.Equal(t, out.Photo.Title, img.Text)
		assert.Equal(t, page1, img.Data)

		status, ok := sink.Last("status")
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("Showing 1 of 4 photos (page %d of 2)", out.Page), status.Text)
	}

	for _, q := range fake.Requests() {
		assert.Equal(t, "mountains", q.Get("text"))
	}
}

func TestRunLocation(t *testing.T) {
	fake := fixtures.NewFakeFlickr(t)
	fake.Total = "1"
	fake.Images["x.png"] = fixtures.PNGBytes(t)
	fake.Pages[1] = []map[string]any{fake.Photo("1", "Harbour", "x.png")}

	f := newFlickrFinder(t, fake)
	sink := &fixtures.RecordingSink{}

	out := f.Run(context.Background(), LocationRequest(" -33.5 ", "151.25"), sink)
	require.Equal(t, Success, out.Kind)
	assert.Equal(t, "Harbour", out.Photo.Title)

	for _, q := range fake.Requests() {
		assert.Equal(t, "150.25,-34.5,152.25,-32.5", q.Get("bbox"))
	}
}

func TestRunNoResultsSkipsImageFetch(t *testing.T) {
	fake := fixtures.NewFakeFlickr(t)
	fake.Total = "0"

	f := newFlickrFinder(t, fake)
	sink := &fixtures.RecordingSink{}

	out := f.Run(context.Background(), PhraseRequest("qwxzv"), sink)
	assert.Equal(t, NoResults, out.Kind)
	assert.Zero(t, fake.ImageHits())

	calls := sink.Calls()
	require.NotEmpty(t, calls)
	last := calls[len(calls)-1]
	assert.Equal(t, "no_results", last.Method)
	assert.Equal(t, MsgNoResults, last.Text)
	_, shown := sink.Last("image")
	assert.False(t, shown)
}

func TestRunMissingImageURL(t *testing.T) {
	fake := fixtures.NewFakeFlickr(t)
	fake.Total = "1"
	fake.Pages[1] = []map[string]any{{"id": "5", "title": "Lost"}}

	f := newFlickrFinder(t, fake)
	sink := &fixtures.RecordingSink{}

	out := f.Run(context.Background(), PhraseRequest("lost"), sink)
	assert.Equal(t, Failed, out.Kind)
	assert.ErrorIs(t, out.Err, flickr.ErrMissingImageURL)
	assert.Zero(t, fake.ImageHits())

	msg, ok := sink.Last("no_results")
	require.True(t, ok)
	assert.Equal(t, MsgMissingURL, msg.Text)
}

func TestRunImageFetchFailure(t *testing.T) {
	fake := fixtures.NewFakeFlickr(t)
	fake.Total = "1"
	fake.Pages[1] = []map[string]any{fake.Photo("5", "Gone", "deleted.png")}

	f := newFlickrFinder(t, fake)
	sink := &fixtures.RecordingSink{}

	out := f.Run(context.Background(), PhraseRequest("gone"), sink)
	assert.Equal(t, Failed, out.Kind)
	assert.ErrorIs(t, out.Err, flickr.ErrImageFetch)
	assert.Equal(t, 1, fake.ImageHits())

	msg, ok := sink.Last("no_results")
	require.True(t, ok)
	assert.Equal(t, MsgNoImage, msg.Text)
}

func TestRunUntitledPhoto(t *testing.T) {
	fake := fixtures.NewFakeFlickr(t)
	fake.Total = "1"
	fake.Images["x.png"] = fixtures.PNGBytes(t)
	fake.Pages[1] = []map[string]any{fake.Photo("5", "", "x.png")}

	f := newFlickrFinder(t, fake)
	sink := &fixtures.RecordingSink{}

	f.Run(context.Background(), PhraseRequest("anything"), sink)
	img, ok := sink.Last("image")
	require.True(t, ok)
	assert.Equal(t, "Untitled", img.Text)
}

func TestRunInvalidInputMakesNoRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		message string
	}{
		{"blank phrase", PhraseRequest("   "), "Please enter a search request!"},
		{"empty latitude", LocationRequest("", "10"), "Latitude is empty."},
		{"latitude out of range", LocationRequest("90.0001", "10"), "Latitude must be between -90 and 90."},
		{"non-numeric longitude", LocationRequest("10", "east"), "Longitude must be a number."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := fixtures.NewFakeFlickr(t)
			f := newFlickrFinder(t, fake)
			sink := &fixtures.RecordingSink{}

			out := f.Run(context.Background(), tt.req, sink)
			assert.Equal(t, Failed, out.Kind)
			assert.ErrorIs(t, out.Err, geo.ErrInvalidInput)
			assert.Empty(t, fake.Requests())

			calls := sink.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, "no_results", calls[0].Method)
			assert.Equal(t, tt.message, calls[0].Text)
		})
	}
}

func TestRunCountsOutcomes(t *testing.T) {
	fake := fixtures.NewFakeFlickr(t)
	fake.Total = "0"
	f := newFlickrFinder(t, fake)

	counter := metrics.SearchOutcomes.WithLabelValues("phrase", "no_results")
	before := testutil.ToFloat64(counter)
	f.Run(context.Background(), PhraseRequest("nothing"), &fixtures.RecordingSink{})
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

// blockingSearcher holds the first search until its context is cancelled
type blockingSearcher struct {
	started chan struct{}
	image   []byte
}

func (b *blockingSearcher) PhraseParameters(text string) flickr.SearchParameters {
	return flickr.NewPhraseParameters("k", text)
}

func (b *blockingSearcher) LocationParameters(bbox geo.BoundingBox) flickr.SearchParameters {
	return flickr.NewLocationParameters("k", bbox)
}

func (b *blockingSearcher) Search(ctx context.Context, params flickr.SearchParameters) (flickr.Result, error) {
	if params.Map()["text"] == "slow" {
		close(b.started)
		<-ctx.Done()
		return flickr.Result{}, fmt.Errorf("%w: %w", flickr.ErrNetwork, ctx.Err())
	}
	return flickr.Result{
		Photo: flickr.Photo{ID: "1", Title: "fast", ImageURL: "mem://fast"},
		Total: 1, Page: 1, Pages: 1,
	}, nil
}

func (b *blockingSearcher) FetchImage(ctx context.Context, url string) ([]byte, error) {
	return b.image, nil
}

func TestStartCancelsPreviousSearch(t *testing.T) {
	searcher := &blockingSearcher{started: make(chan struct{}), image: []byte("img")}
	f := New(searcher, zerolog.Nop())
	defer f.Close()
	sink := &fixtures.RecordingSink{}

	slow := f.Start(PhraseRequest("slow"), sink)
	select {
	case <-searcher.started:
	case <-time.After(5 * time.Second):
		t.Fatal("slow search did not start")
	}

	fast := f.Start(PhraseRequest("quick"), sink)

	select {
	case out := <-slow:
		assert.Equal(t, Cancelled, out.Kind)
	case <-time.After(5 * time.Second):
		t.Fatal("slow search was not cancelled")
	}

	select {
	case out := <-fast:
		require.Equal(t, Success, out.Kind)
		assert.Equal(t, "fast", out.Photo.Title)
	case <-time.After(5 * time.Second):
		t.Fatal("fast search did not finish")
	}

	for _, c := range sink.Calls() {
		assert.NotEqual(t, "no_results", c.Method, "cancelled search must not reach the sink")
	}
	img, ok := sink.Last("image")
	require.True(t, ok)
	assert.Equal(t, "fast", img.Text)
}

func TestCloseCancelsRunningSearch(t *testing.T) {
	searcher := &blockingSearcher{started: make(chan struct{})}
	f := New(searcher, zerolog.Nop())

	done := f.Start(PhraseRequest("slow"), &fixtures.RecordingSink{})
	<-searcher.started
	f.Close()

	out, ok := <-done
	require.True(t, ok)
	assert.Equal(t, Cancelled, out.Kind)
}

func TestFailureMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind OutcomeKind
		msg  string
	}{
		{"no results", flickr.ErrNoResults, NoResults, MsgNoResults},
		{"missing url", fmt.Errorf("x: %w", flickr.ErrMissingImageURL), Failed, MsgMissingURL},
		{"image fetch", flickr.ErrImageFetch, Failed, MsgNoImage},
		{"malformed", flickr.ErrMalformedResponse, Failed, MsgMalformed},
		{"network", flickr.ErrNetwork, Failed, MsgNetwork},
		{"rate limit", &flickr.RateLimitError{}, Failed, MsgNetwork},
		{"api", &flickr.APIError{Code: 100, Message: "Invalid API Key"}, Failed, "Flickr error: Invalid API Key"},
		{"input", &geo.InputError{Fields: []string{geo.FieldLatitude}, Message: "Latitude is empty."}, Failed, "Latitude is empty."},
		{"other", fmt.Errorf("boom"), Failed, "Search failed: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := failure(tt.err)
			assert.Equal(t, tt.kind, out.Kind)
			assert.Equal(t, tt.msg, out.Message)
		})
	}
}
