package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/artisanmarket/backend/internal/domain/entities"
	"github.com/artisanmarket/backend/internal/query/loaders"
)

// ArtisanHydrator fills in artisan summaries the retrieval path could not
// join, using the batched artisan loader so a page of results costs a single
// lookup. The full-text path only carries denormalized id and name fields, so
// location, avatar and rating arrive through here.
type ArtisanHydrator struct {
	loaders *loaders.Loaders
}

// NewArtisanHydrator creates a new artisan hydrator
func NewArtisanHydrator(l *loaders.Loaders) *ArtisanHydrator {
	return &ArtisanHydrator{loaders: l}
}

// Hydrate attaches artisan summaries in place for items that lack one. A
// missing artisan profile leaves the summary absent rather than failing the
// search; the items themselves are already valid.
func (h *ArtisanHydrator) Hydrate(ctx context.Context, items []entities.SearchResultItem) {
	thunks := make(map[int]func() (*entities.Artisan, error), len(items))
	for i := range items {
		if items[i].ArtisanID == "" {
			continue
		}
		if items[i].Artisan != nil && items[i].Artisan.Location != "" {
			continue
		}
		thunks[i] = h.loaders.ArtisanLoader.Load(ctx, items[i].ArtisanID)
	}

	for i, thunk := range thunks {
		artisan, err := thunk()
		if err != nil {
			log.Warn().Err(err).Str("artisan_id", items[i].ArtisanID).
				Msg("failed to hydrate artisan summary")
			continue
		}
		items[i].Artisan = &entities.ArtisanSummary{
			ID:        artisan.ID,
			Name:      artisan.Name,
			Location:  artisan.Location,
			AvatarURL: artisan.AvatarURL,
			Rating:    artisan.Rating,
		}
	}
}
