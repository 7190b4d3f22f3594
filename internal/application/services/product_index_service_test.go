package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisanmarket/backend/internal/domain/entities"
)

func TestProductIndexServiceReindexAll(t *testing.T) {
	repo := newFakeProductRepo()
	for i := 0; i < 5; i++ {
		p := validProduct()
		p.ID = fmt.Sprintf("prod-%d", i)
		repo.products[p.ID] = p
	}
	searchRepo := &fakeSearchRepo{}

	service := NewProductIndexService(repo, searchRepo)
	count, err := service.ReindexAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 5, count)
	assert.Len(t, searchRepo.indexed, 5)
}

func TestProductIndexServiceEmptyCatalog(t *testing.T) {
	service := NewProductIndexService(newFakeProductRepo(), &fakeSearchRepo{})

	count, err := service.ReindexAll(context.Background())

	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestProductIndexServiceBulkFailure(t *testing.T) {
	repo := newFakeProductRepo()
	repo.products["p1"] = &entities.Product{ID: "p1", Title: "Vase", Price: 80}
	searchRepo := &fakeSearchRepo{err: assert.AnError}

	service := NewProductIndexService(repo, searchRepo)
	_, err := service.ReindexAll(context.Background())

	assert.Error(t, err)
}
