package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisanmarket/backend/internal/domain/entities"
	"github.com/artisanmarket/backend/internal/domain/filters"
)

// countingSearcher tracks which queries actually reached retrieval.
type countingSearcher struct {
	mu    sync.Mutex
	texts []string
	delay time.Duration
}

func (s *countingSearcher) Search(ctx context.Context, f filters.SearchFilters) (*entities.SearchEnvelope, error) {
	s.mu.Lock()
	s.texts = append(s.texts, f.Text)
	s.mu.Unlock()
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return &entities.SearchEnvelope{
		Items: []entities.SearchResultItem{{ID: f.Text}},
		Total: 1,
	}, nil
}

func (s *countingSearcher) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.texts...)
}

func search(d *DebouncedSearcher, text string, results chan<- string, errs chan<- error) {
	f := filters.New()
	f.Text = text
	envelope, err := d.Search(context.Background(), f)
	if err != nil {
		errs <- err
		return
	}
	results <- envelope.Items[0].ID
}

func TestDebounceCollapsesToLastCall(t *testing.T) {
	inner := &countingSearcher{}
	debounced := NewDebouncedSearcher(inner, 50*time.Millisecond)

	results := make(chan string, 3)
	errs := make(chan error, 3)

	go search(debounced, "ca", results, errs)
	time.Sleep(5 * time.Millisecond)
	go search(debounced, "cer", results, errs)
	time.Sleep(5 * time.Millisecond)
	go search(debounced, "ceramic", results, errs)

	// Exactly one result, the last query's, is delivered.
	var delivered []string
	var superseded int
	for i := 0; i < 3; i++ {
		select {
		case r := <-results:
			delivered = append(delivered, r)
		case err := <-errs:
			assert.ErrorIs(t, err, ErrSearchSuperseded)
			superseded++
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for search results")
		}
	}

	assert.Equal(t, []string{"ceramic"}, delivered)
	assert.Equal(t, 2, superseded)

	// The superseded calls never reached retrieval.
	assert.Equal(t, []string{"ceramic"}, inner.seen())
}

func TestDebounceInFlightResultDiscarded(t *testing.T) {
	inner := &countingSearcher{delay: 60 * time.Millisecond}
	debounced := NewDebouncedSearcher(inner, 10*time.Millisecond)

	results := make(chan string, 2)
	errs := make(chan error, 2)

	go search(debounced, "first", results, errs)
	// Wait past the first call's window so its retrieval is in flight.
	time.Sleep(30 * time.Millisecond)
	go search(debounced, "second", results, errs)

	var delivered []string
	var superseded int
	for i := 0; i < 2; i++ {
		select {
		case r := <-results:
			delivered = append(delivered, r)
		case err := <-errs:
			assert.ErrorIs(t, err, ErrSearchSuperseded)
			superseded++
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for search results")
		}
	}

	// Both reached retrieval, but only the second result is delivered.
	assert.Equal(t, []string{"first", "second"}, inner.seen())
	assert.Equal(t, []string{"second"}, delivered)
	assert.Equal(t, 1, superseded)
}

func TestDebounceSingleCallDelivered(t *testing.T) {
	inner := &countingSearcher{}
	debounced := NewDebouncedSearcher(inner, 10*time.Millisecond)

	f := filters.New()
	f.Text = "vase"
	envelope, err := debounced.Search(context.Background(), f)

	require.NoError(t, err)
	assert.Equal(t, 1, envelope.Total)
}

func TestDebounceContextCancelledDuringWindow(t *testing.T) {
	inner := &countingSearcher{}
	debounced := NewDebouncedSearcher(inner, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := debounced.Search(ctx, filters.New())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, inner.seen())
}
