package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/artisanmarket/backend/internal/adapters/database"
	"github.com/artisanmarket/backend/internal/adapters/search"
	"github.com/artisanmarket/backend/internal/application/services"
	"github.com/artisanmarket/backend/internal/domain/entities"
	"github.com/artisanmarket/backend/internal/domain/repositories"
	"github.com/artisanmarket/backend/internal/infrastructure/clients/postgres"
	"github.com/artisanmarket/backend/internal/infrastructure/clients/typesense"
	"github.com/artisanmarket/backend/internal/infrastructure/observability"
	"github.com/artisanmarket/backend/pkg/config"
)

// Seeds a small demo catalog: a category tree, a handful of artisans and a
// set of products spread across price points, lead times and ratings.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	observability.InitLogger("artisan-market-seed", cfg.Server.Env)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pgClient.Close()

	var searchRepo repositories.ProductSearchRepository
	if tsClient, err := typesense.NewClient(&cfg.Typesense); err != nil {
		log.Warn().Err(err).Msg("Typesense unavailable, seeding database only")
	} else {
		adapter := search.NewTypesenseAdapter(tsClient, cfg.Search.OverfetchFactor)
		if err := adapter.InitSchema(context.Background()); err != nil {
			log.Warn().Err(err).Msg("failed to init search schema")
		} else {
			searchRepo = adapter
		}
	}

	productService := services.NewProductService(database.NewProductAdapter(pgClient.DB()), searchRepo, nil)
	artisanService := services.NewArtisanService(database.NewArtisanAdapter(pgClient.DB()))
	categoryService := services.NewCategoryService(database.NewCategoryAdapter(pgClient.DB()))

	ctx := context.Background()

	categories := map[string]*entities.Category{}
	for _, name := range []string{"Home Decor", "Jewelry", "Textiles", "Kitchen"} {
		category := &entities.Category{Name: name}
		if err := categoryService.Create(ctx, category); err != nil {
			log.Fatal().Err(err).Str("category", name).Msg("failed to seed category")
		}
		categories[name] = category
		log.Info().Str("category", name).Str("slug", category.Slug).Msg("seeded category")
	}

	subcategories := []struct {
		category string
		name     string
	}{
		{"Home Decor", "Vases"},
		{"Home Decor", "Wall Art"},
		{"Jewelry", "Necklaces"},
		{"Textiles", "Blankets"},
		{"Kitchen", "Serving Bowls"},
	}
	subcategoryIDs := map[string]string{}
	for _, sc := range subcategories {
		subcategory := &entities.Subcategory{
			CategoryID: categories[sc.category].ID,
			Name:       sc.name,
		}
		if err := categoryService.CreateSubcategory(ctx, subcategory); err != nil {
			log.Fatal().Err(err).Str("subcategory", sc.name).Msg("failed to seed subcategory")
		}
		subcategoryIDs[sc.name] = subcategory.ID
	}

	artisans := []*entities.Artisan{
		{Name: "Mira Okafor", Bio: "Hand-thrown stoneware from a backyard kiln.", Location: "Lagos, Nigeria", Rating: 4.8, ReviewCount: 212},
		{Name: "Tomas Eriksen", Bio: "Third-generation woodturner.", Location: "Bergen, Norway", Rating: 4.6, ReviewCount: 98},
		{Name: "Lucia Ferreira", Bio: "Natural-dye weaving on a vintage floor loom.", Location: "Porto, Portugal", Rating: 4.9, ReviewCount: 341},
	}
	for _, artisan := range artisans {
		if err := artisanService.Create(ctx, artisan); err != nil {
			log.Fatal().Err(err).Str("artisan", artisan.Name).Msg("failed to seed artisan")
		}
		log.Info().Str("artisan", artisan.Name).Msg("seeded artisan")
	}

	discount := 65.0
	products := []*entities.Product{
		{
			Title:         "Hand-Thrown Ceramic Vase",
			Description:   "Stoneware vase with a matte glaze, each one slightly different.",
			Price:         45,
			CategoryID:    categories["Home Decor"].ID,
			SubcategoryID: subcategoryIDs["Vases"],
			ArtisanID:     artisans[0].ID,
			Tags:          []string{"ceramic", "vase", "stoneware"},
			Stock:         12,
			Rating:        4.7,
			ReviewCount:   38,
			Featured:      true,
			LeadTimeDays:  2,
		},
		{
			Title:         "Handwoven Wool Blanket",
			Description:   "Naturally dyed merino wool, woven on a floor loom.",
			Price:         80,
			DiscountPrice: &discount,
			CategoryID:    categories["Textiles"].ID,
			SubcategoryID: subcategoryIDs["Blankets"],
			ArtisanID:     artisans[2].ID,
			Tags:          []string{"wool", "blanket", "weaving"},
			Stock:         5,
			Rating:        4.9,
			ReviewCount:   120,
			LeadTimeDays:  5,
		},
		{
			Title:        "Turned Oak Serving Bowl",
			Description:  "Single piece of Norwegian oak, food-safe oil finish.",
			Price:        120,
			CategoryID:   categories["Kitchen"].ID,
			ArtisanID:    artisans[1].ID,
			Tags:         []string{"wood", "bowl", "oak"},
			Stock:        3,
			Rating:       4.5,
			ReviewCount:  27,
			LeadTimeDays: 9,
		},
		{
			Title:        "Brass Pendant Necklace",
			Description:  "Hand-cut brass pendant on a waxed cotton cord.",
			Price:        32,
			CategoryID:   categories["Jewelry"].ID,
			ArtisanID:    artisans[0].ID,
			Tags:         []string{"brass", "necklace", "pendant"},
			Stock:        20,
			Rating:       4.2,
			ReviewCount:  14,
			LeadTimeDays: 3,
		},
	}
	for _, product := range products {
		if err := productService.Create(ctx, product); err != nil {
			log.Fatal().Err(err).Str("product", product.Title).Msg("failed to seed product")
		}
		log.Info().Str("product", product.Title).Msg("seeded product")
	}

	log.Info().
		Int("categories", len(categories)).
		Int("artisans", len(artisans)).
		Int("products", len(products)).
		Msg("seeding complete")
}
