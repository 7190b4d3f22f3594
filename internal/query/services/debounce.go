package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/artisanmarket/backend/internal/domain/entities"
	"github.com/artisanmarket/backend/internal/domain/filters"
)

// ErrSearchSuperseded is returned to a caller whose search was replaced by a
// newer one inside the debounce window. It is not a retrieval failure; the
// newer call carries the result the caller actually wants.
var ErrSearchSuperseded = errors.New("search superseded by a newer request")

// DebouncedSearcher collapses rapid successive searches to the last one.
// A call superseded before its window elapses never reaches retrieval; a call
// superseded while its retrieval is in flight completes but its result is
// discarded. Result semantics of the delivered search are untouched.
type DebouncedSearcher struct {
	inner  Searcher
	window time.Duration

	mu  sync.Mutex
	gen uint64
}

var _ Searcher = (*DebouncedSearcher)(nil)

// NewDebouncedSearcher wraps inner with a debounce window.
func NewDebouncedSearcher(inner Searcher, window time.Duration) *DebouncedSearcher {
	return &DebouncedSearcher{
		inner:  inner,
		window: window,
	}
}

// Search waits out the debounce window and then delegates to the wrapped
// searcher, unless a newer call arrived in the meantime.
func (d *DebouncedSearcher) Search(ctx context.Context, f filters.SearchFilters) (*entities.SearchEnvelope, error) {
	d.mu.Lock()
	d.gen++
	myGen := d.gen
	d.mu.Unlock()

	if d.window > 0 {
		timer := time.NewTimer(d.window)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if d.superseded(myGen) {
		return nil, ErrSearchSuperseded
	}

	envelope, err := d.inner.Search(ctx, f)
	if err != nil {
		return nil, err
	}

	// A newer call may have started while this retrieval was in flight.
	// Its result must win, so this one is dropped.
	if d.superseded(myGen) {
		return nil, ErrSearchSuperseded
	}

	return envelope, nil
}

func (d *DebouncedSearcher) superseded(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return gen != d.gen
}
