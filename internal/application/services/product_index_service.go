package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/artisanmarket/backend/internal/domain/repositories"
)

// reindexBatchSize bounds how many products one bulk import carries.
const reindexBatchSize = 200

// ProductIndexService rebuilds the search index from the catalog database.
// Used by the indexer command and after schema changes.
type ProductIndexService struct {
	repo       repositories.ProductRepository
	searchRepo repositories.ProductSearchRepository
}

// NewProductIndexService creates a new product index service
func NewProductIndexService(
	repo repositories.ProductRepository,
	searchRepo repositories.ProductSearchRepository,
) *ProductIndexService {
	return &ProductIndexService{
		repo:       repo,
		searchRepo: searchRepo,
	}
}

// ReindexAll pages through active products and bulk-imports each batch.
// Returns the number of products indexed.
func (s *ProductIndexService) ReindexAll(ctx context.Context) (int, error) {
	if err := s.searchRepo.InitSchema(ctx); err != nil {
		return 0, err
	}

	active := true
	indexed := 0
	for offset := 0; ; offset += reindexBatchSize {
		products, err := s.repo.List(ctx, repositories.ProductFilter{
			IsActive: &active,
			Limit:    reindexBatchSize,
			Offset:   offset,
		})
		if err != nil {
			return indexed, err
		}
		if len(products) == 0 {
			break
		}

		if err := s.searchRepo.BulkIndex(ctx, products); err != nil {
			return indexed, err
		}
		indexed += len(products)
		log.Info().Int("indexed", indexed).Msg("reindex progress")

		if len(products) < reindexBatchSize {
			break
		}
	}

	return indexed, nil
}
