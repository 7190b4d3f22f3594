package loaders

import (
	"context"
	"fmt"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/artisanmarket/backend/internal/domain/entities"
	"github.com/artisanmarket/backend/internal/domain/repositories"
)

// Loaders batches per-request lookups so hydrating a page of search results
// costs one query per relation, not one per item.
type Loaders struct {
	ArtisanLoader *dataloader.Loader[string, *entities.Artisan]
}

// NewLoaders creates a new instance of Loaders
func NewLoaders(artisanRepo repositories.ArtisanRepository) *Loaders {
	return &Loaders{
		ArtisanLoader: dataloader.NewBatchedLoader(func(ctx context.Context, keys []string) []*dataloader.Result[*entities.Artisan] {
			results := make([]*dataloader.Result[*entities.Artisan], len(keys))
			artisans, err := artisanRepo.GetByIDs(ctx, keys)

			artisanMap := make(map[string]*entities.Artisan)
			if err == nil {
				for _, a := range artisans {
					artisanMap[a.ID] = a
				}
			}

			for i, key := range keys {
				if err != nil {
					results[i] = &dataloader.Result[*entities.Artisan]{Error: err}
				} else if a, ok := artisanMap[key]; ok {
					results[i] = &dataloader.Result[*entities.Artisan]{Data: a}
				} else {
					results[i] = &dataloader.Result[*entities.Artisan]{Error: fmt.Errorf("artisan %s not found", key)}
				}
			}
			return results
		}),
	}
}
