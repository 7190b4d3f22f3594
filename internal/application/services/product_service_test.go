package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisanmarket/backend/internal/domain/entities"
	"github.com/artisanmarket/backend/internal/domain/filters"
	"github.com/artisanmarket/backend/internal/domain/providers"
	"github.com/artisanmarket/backend/internal/domain/repositories"
	apperrors "github.com/artisanmarket/backend/pkg/errors"
)

// fakeProductRepo is an in-memory ProductRepository.
type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*entities.Product
	err      error
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[string]*entities.Product{}}
}

func (r *fakeProductRepo) Create(ctx context.Context, p *entities.Product) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id string) (*entities.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("product not found")
	}
	return p, nil
}

func (r *fakeProductRepo) Update(ctx context.Context, p *entities.Product) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return apperrors.NewNotFoundError("product not found")
	}
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return apperrors.NewNotFoundError("product not found")
	}
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) List(ctx context.Context, filter repositories.ProductFilter) ([]*entities.Product, error) {
	out := []*entities.Product{}
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProductRepo) Retrieve(ctx context.Context, f filters.SearchFilters) ([]repositories.RawProductRecord, error) {
	return nil, nil
}

// fakeSearchRepo records index operations.
type fakeSearchRepo struct {
	mu      sync.Mutex
	indexed []string
	deleted []string
	err     error
}

func (r *fakeSearchRepo) InitSchema(ctx context.Context) error { return nil }

func (r *fakeSearchRepo) Index(ctx context.Context, p *entities.Product) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.indexed = append(r.indexed, p.ID)
	return nil
}

func (r *fakeSearchRepo) BulkIndex(ctx context.Context, products []*entities.Product) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range products {
		r.indexed = append(r.indexed, p.ID)
	}
	return nil
}

func (r *fakeSearchRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *fakeSearchRepo) Retrieve(ctx context.Context, f filters.SearchFilters) ([]repositories.RawProductRecord, error) {
	return nil, nil
}

// fakeEventBus records published events per channel.
type fakeEventBus struct {
	mu       sync.Mutex
	events   []*entities.ProductEvent
	channels []string
}

func (b *fakeEventBus) Publish(ctx context.Context, channel string, event *entities.ProductEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	b.channels = append(b.channels, channel)
	return nil
}

func (b *fakeEventBus) onChannel(channel string) []*entities.ProductEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []*entities.ProductEvent
	for i, c := range b.channels {
		if c == channel {
			out = append(out, b.events[i])
		}
	}
	return out
}

func (b *fakeEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.ProductEvent, error) {
	return nil, nil
}

func (b *fakeEventBus) Unsubscribe(ctx context.Context, channel string) error { return nil }
func (b *fakeEventBus) Close() error                                          { return nil }

func validProduct() *entities.Product {
	return &entities.Product{
		Title:      "Hand-thrown vase",
		Price:      80,
		CategoryID: "cat-1",
		ArtisanID:  "art-1",
	}
}

func TestProductServiceCreate(t *testing.T) {
	repo := newFakeProductRepo()
	searchRepo := &fakeSearchRepo{}
	bus := &fakeEventBus{}
	service := NewProductService(repo, searchRepo, bus)

	product := validProduct()
	err := service.Create(context.Background(), product)

	require.NoError(t, err)
	assert.NotEmpty(t, product.ID)
	assert.True(t, product.IsActive)
	assert.False(t, product.CreatedAt.IsZero())

	assert.Equal(t, []string{product.ID}, searchRepo.indexed)

	broadcast := bus.onChannel(providers.EventChannelProductUpdates)
	require.Len(t, broadcast, 1)
	assert.Equal(t, entities.ProductEventTypeCreated, broadcast[0].EventType)
	assert.Equal(t, product.ID, broadcast[0].ProductID)

	perProduct := bus.onChannel(providers.GetProductChannel(product.ID))
	require.Len(t, perProduct, 1)
	assert.Equal(t, entities.ProductEventTypeCreated, perProduct[0].EventType)
}

func TestProductServiceCreateValidation(t *testing.T) {
	service := NewProductService(newFakeProductRepo(), nil, nil)

	cases := []struct {
		name   string
		mutate func(*entities.Product)
	}{
		{"missing title", func(p *entities.Product) { p.Title = "" }},
		{"zero price", func(p *entities.Product) { p.Price = 0 }},
		{"missing artisan", func(p *entities.Product) { p.ArtisanID = "" }},
		{"missing category", func(p *entities.Product) { p.CategoryID = "" }},
		{"negative lead time", func(p *entities.Product) { p.LeadTimeDays = -1 }},
		{"discount above price", func(p *entities.Product) {
			discount := 100.0
			p.DiscountPrice = &discount
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			product := validProduct()
			tc.mutate(product)

			err := service.Create(context.Background(), product)

			require.Error(t, err)
			assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
		})
	}
}

func TestProductServiceCreateIndexFailureDoesNotFailWrite(t *testing.T) {
	repo := newFakeProductRepo()
	searchRepo := &fakeSearchRepo{err: assert.AnError}
	service := NewProductService(repo, searchRepo, nil)

	err := service.Create(context.Background(), validProduct())

	assert.NoError(t, err)
	assert.Len(t, repo.products, 1)
}

func TestProductServiceUpdatePublishesEvent(t *testing.T) {
	repo := newFakeProductRepo()
	bus := &fakeEventBus{}
	service := NewProductService(repo, nil, bus)

	product := validProduct()
	require.NoError(t, service.Create(context.Background(), product))

	product.Price = 90
	require.NoError(t, service.Update(context.Background(), product))

	broadcast := bus.onChannel(providers.EventChannelProductUpdates)
	require.Len(t, broadcast, 2)
	assert.Equal(t, entities.ProductEventTypeUpdated, broadcast[1].EventType)
}

func TestProductServiceDelete(t *testing.T) {
	repo := newFakeProductRepo()
	searchRepo := &fakeSearchRepo{}
	bus := &fakeEventBus{}
	service := NewProductService(repo, searchRepo, bus)

	product := validProduct()
	require.NoError(t, service.Create(context.Background(), product))

	err := service.Delete(context.Background(), product.ID)

	require.NoError(t, err)
	assert.Equal(t, []string{product.ID}, searchRepo.deleted)

	broadcast := bus.onChannel(providers.EventChannelProductUpdates)
	require.Len(t, broadcast, 2)
	assert.Equal(t, entities.ProductEventTypeDeleted, broadcast[1].EventType)
}

func TestProductServiceDeleteNotFound(t *testing.T) {
	service := NewProductService(newFakeProductRepo(), nil, nil)

	err := service.Delete(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}
