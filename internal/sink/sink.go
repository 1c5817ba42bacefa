// Record sinks for extracted listings

package sink

import (
	"context"
	"errors"

	"go-ictjob-scraper/internal/scraper"
)

// Sink persists one listing. Sinks append; they never deduplicate.
type Sink interface {
	Write(ctx context.Context, listing *scraper.Listing) error
}

type multi []Sink

// Multi writes to every sink in order, stopping at the first error.
func Multi(sinks ...Sink) Sink {
	if len(sinks) == 1 {
		return sinks[0]
	}
	return multi(sinks)
}

func (m multi) Write(ctx context.Context, listing *scraper.Listing) error {
	for _, s := range m {
		if err := s.Write(ctx, listing); err != nil {
			return err
		}
	}
	return nil
}

// ErrUnknownEncoding is returned for list encodings other than joined or json.
var ErrUnknownEncoding = errors.New("unknown list encoding")
