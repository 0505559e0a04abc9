package finder

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"codeberg.org/snonux/flickfinder/internal/flickr"
	"codeberg.org/snonux/flickfinder/internal/geo"
	"codeberg.org/snonux/flickfinder/internal/metrics"
)

// Sink is the display layer receiving the result of a search
type Sink interface {
	ShowImage(data []byte, title string)
	ShowNoResults(message string)
	ShowStatus(text string)
}

// Searcher is the photo API used by the Finder. *flickr.Client implements it.
type Searcher interface {
	PhraseParameters(text string) flickr.SearchParameters
	LocationParameters(bbox geo.BoundingBox) flickr.SearchParameters
	Search(ctx context.Context, params flickr.SearchParameters) (flickr.Result, error)
	FetchImage(ctx context.Context, url string) ([]byte, error)
}

// Request is the raw user input for one search
type Request struct {
	Mode      flickr.SearchMode
	Phrase    string
	Latitude  string
	Longitude string
}

// PhraseRequest creates a free-text search request
func PhraseRequest(phrase string) Request {
	return Request{Mode: flickr.ModePhrase, Phrase: phrase}
}

// LocationRequest creates a coordinate search request
func LocationRequest(latitude, longitude string) Request {
	return Request{Mode: flickr.ModeLocation, Latitude: latitude, Longitude: longitude}
}

// Finder runs searches and reports their outcome to a sink
type Finder struct {
	searcher Searcher
	log      zerolog.Logger

	// mu serializes sink updates with cancellation so a superseded
	// search never reaches the sink.
	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Finder on top of searcher
func New(searcher Searcher, log zerolog.Logger) *Finder {
	return &Finder{
		searcher: searcher,
		log:      log,
	}
}

// Run performs one search and reports the outcome to sink before returning it
func (f *Finder) Run(ctx context.Context, req Request, sink Sink) Outcome {
	log := f.log.With().Str("search_id", uuid.NewString()).Stringer("mode", req.Mode).Logger()
	ctx = log.WithContext(ctx)

	out := f.execute(ctx, req, sink)
	if !f.emit(ctx, func() { show(sink, out) }) {
		out = Outcome{Kind: Cancelled, Err: ctx.Err(), Message: "search cancelled"}
	}

	metrics.SearchOutcomes.WithLabelValues(req.Mode.String(), out.Kind.String()).Inc()
	event := log.Info()
	if out.Kind == Failed {
		event = log.Error().Err(out.Err)
	}
	event.Stringer("outcome", out.Kind).Str("message", out.Message).Msg("search finished")
	return out
}

// Start runs the search on a background goroutine and cancels the search
// started before it, if that one is still running. The channel receives the
// outcome and is closed.
func (f *Finder) Start(req Request, sink Sink) <-chan Outcome {
	ctx, cancel := context.WithCancel(context.Background())

	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
	}
	f.cancel = cancel
	f.mu.Unlock()

	done := make(chan Outcome, 1)
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		defer cancel()
		done <- f.Run(ctx, req, sink)
		close(done)
	}()
	return done
}

// Close cancels the running search and waits for it to finish
func (f *Finder) Close() {
	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
	}
	f.mu.Unlock()
	f.wg.Wait()
}

func (f *Finder) execute(ctx context.Context, req Request, sink Sink) Outcome {
	params, err := f.parameters(req)
	if err != nil {
		return failure(err)
	}

	f.emit(ctx, func() { sink.ShowStatus(MsgSearching) })

	res, err := f.searcher.Search(ctx, params)
	if err != nil {
		return failure(err)
	}

	data, err := f.searcher.FetchImage(ctx, res.Photo.ImageURL)
	if err != nil {
		return failure(err)
	}

	return Outcome{
		Kind:  Success,
		Photo: res.Photo,
		Image: data,
		Total: res.Total,
		Page:  res.Page,
		Pages: res.Pages,
	}
}

// parameters validates the raw input; nothing is sent when it fails
func (f *Finder) parameters(req Request) (flickr.SearchParameters, error) {
	switch req.Mode {
	case flickr.ModePhrase:
		phrase, err := geo.ValidatePhrase(req.Phrase)
		if err != nil {
			return flickr.SearchParameters{}, err
		}
		return f.searcher.PhraseParameters(phrase), nil
	case flickr.ModeLocation:
		center, err := geo.ParseCoordinates(req.Latitude, req.Longitude)
		if err != nil {
			return flickr.SearchParameters{}, err
		}
		return f.searcher.LocationParameters(geo.NewBoundingBox(center)), nil
	}
	return flickr.SearchParameters{}, errors.New("unknown search mode")
}

// emit runs show unless ctx has been cancelled
func (f *Finder) emit(ctx context.Context, show func()) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ctx.Err() != nil {
		return false
	}
	show()
	return true
}

func show(sink Sink, out Outcome) {
	if out.Kind != Success {
		sink.ShowNoResults(out.Message)
		return
	}
	sink.ShowImage(out.Image, out.Photo.Title)
	sink.ShowStatus(statusLine(out))
}

func statusLine(out Outcome) string {
	return fmt.Sprintf("Showing 1 of %d photos (page %d of %d)", out.Total, out.Page, out.Pages)
}
