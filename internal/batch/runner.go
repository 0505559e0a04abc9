package batch

import (
	"context"

	"github.com/rs/zerolog"

	"codeberg.org/snonux/flickfinder/internal/finder"
)

// Searcher runs one search. *finder.Finder implements it.
type Searcher interface {
	Run(ctx context.Context, req finder.Request, sink finder.Sink) finder.Outcome
}

// Sink is a display that remembers whether the last image could be kept.
// *output.FileSink implements it.
type Sink interface {
	finder.Sink
	Err() error
}

// Summary counts the outcomes of a batch
type Summary struct {
	Succeeded int
	NoResults int
	Failed    int
	Skipped   int
}

// Total is the number of searches that ran
func (s Summary) Total() int {
	return s.Succeeded + s.NoResults + s.Failed
}

// Process runs every request in order. A failed search does not stop the
// batch; a cancelled context does, and the remaining requests count as skipped.
// A found photo that the sink could not keep counts as failed.
func Process(ctx context.Context, s Searcher, requests []finder.Request, sink Sink, log zerolog.Logger) Summary {
	var sum Summary

	for i, req := range requests {
		if ctx.Err() != nil {
			sum.Skipped = len(requests) - i
			break
		}

		out := s.Run(ctx, req, sink)
		switch out.Kind {
		case finder.Success:
			if err := sink.Err(); err != nil {
				sum.Failed++
				log.Error().Err(err).Str("title", out.Photo.Title).Msg("photo found but not saved")
				continue
			}
			sum.Succeeded++
		case finder.NoResults:
			sum.NoResults++
		case finder.Cancelled:
			sum.Skipped = len(requests) - i
			log.Warn().Int("skipped", sum.Skipped).Msg("batch cancelled")
			return sum
		default:
			sum.Failed++
		}
		log.Debug().Int("index", i+1).Int("of", len(requests)).Stringer("outcome", out.Kind).Msg("batch entry done")
	}

	return sum
}
