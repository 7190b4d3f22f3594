package search

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/artisanmarket/backend/internal/domain/entities"
	"github.com/artisanmarket/backend/internal/domain/filters"
	"github.com/artisanmarket/backend/internal/domain/repositories"
	tsclient "github.com/artisanmarket/backend/internal/infrastructure/clients/typesense"
	apperrors "github.com/artisanmarket/backend/pkg/errors"
)

// ProductsCollection is the Typesense collection holding product documents.
const ProductsCollection = "products"

// defaultOverfetchFactor widens the full-text page window so the refinement
// pass has enough candidates left after delivery-speed filtering.
const defaultOverfetchFactor = 5

// TypesenseAdapter implements the full-text retrieval strategy over the
// products collection. Delivery-speed filtering is intentionally not pushed
// into filter_by; the refinement pass applies it uniformly for both
// strategies.
type TypesenseAdapter struct {
	client    *tsclient.Client
	breaker   *gobreaker.CircuitBreaker
	overfetch int
}

// Ensure TypesenseAdapter implements ProductSearchRepository
var _ repositories.ProductSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client, overfetchFactor int) *TypesenseAdapter {
	if overfetchFactor < 1 {
		overfetchFactor = defaultOverfetchFactor
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "typesense-search",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn().Str("breaker", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})

	return &TypesenseAdapter{
		client:    client,
		breaker:   breaker,
		overfetch: overfetchFactor,
	}
}

// InitSchema ensures the products collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	_, err := a.client.Client().Collection(ProductsCollection).Retrieve(ctx)
	if err == nil {
		return nil // Collection exists
	}

	schema := &api.CollectionSchema{
		Name: ProductsCollection,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "title", Type: "string"},
			{Name: "description", Type: "string"},
			{Name: "tags", Type: "string[]", Facet: pointer.True()},
			{Name: "price", Type: "float"},
			{Name: "discount_price", Type: "float", Optional: pointer.True()},
			{Name: "effective_price", Type: "float"},
			{Name: "category_id", Type: "string", Facet: pointer.True()},
			{Name: "category_name", Type: "string", Optional: pointer.True()},
			{Name: "subcategory_id", Type: "string", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "artisan_id", Type: "string", Facet: pointer.True()},
			{Name: "artisan_name", Type: "string", Optional: pointer.True()},
			{Name: "images", Type: "string[]", Optional: pointer.True(), Index: pointer.False()},
			{Name: "stock", Type: "int32"},
			{Name: "rating", Type: "float"},
			{Name: "review_count", Type: "int32"},
			{Name: "featured", Type: "bool"},
			{Name: "lead_time_days", Type: "int32"},
			{Name: "is_active", Type: "bool"},
			{Name: "created_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("created_at"),
	}

	_, err = a.client.Client().Collections().Create(ctx, schema)
	if err != nil {
		return apperrors.NewExternalError("failed to create typesense collection", err)
	}

	return nil
}

// Index upserts a product into the search index
func (a *TypesenseAdapter) Index(ctx context.Context, product *entities.Product) error {
	_, err := a.client.Client().Collection(ProductsCollection).Documents().Upsert(ctx, buildDocument(product))
	if err != nil {
		return apperrors.NewExternalError("failed to index product", err)
	}
	return nil
}

// bulkImportParams configures bulk indexing as an upsert so reindex runs are
// idempotent. ImportDocumentsParams carries the action as a *string.
func bulkImportParams() *api.ImportDocumentsParams {
	return &api.ImportDocumentsParams{Action: pointer.String(string(api.Upsert))}
}

// BulkIndex upserts a batch of products into the search index
func (a *TypesenseAdapter) BulkIndex(ctx context.Context, products []*entities.Product) error {
	if len(products) == 0 {
		return nil
	}

	documents := make([]interface{}, 0, len(products))
	for _, product := range products {
		documents = append(documents, buildDocument(product))
	}

	_, err := a.client.Client().Collection(ProductsCollection).Documents().Import(ctx, documents, bulkImportParams())
	if err != nil {
		return apperrors.NewExternalError("failed to bulk index products", err)
	}
	return nil
}

// Delete removes a product from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(ProductsCollection).Document(id).Delete(ctx)
	if err != nil {
		return apperrors.NewExternalError("failed to delete product from index", err)
	}
	return nil
}

// Retrieve executes the full-text retrieval strategy. The page window is
// widened by the overfetch factor because the engine's match total cannot be
// trusted once the refinement pass filters candidates away.
func (a *TypesenseAdapter) Retrieve(ctx context.Context, f filters.SearchFilters) ([]repositories.RawProductRecord, error) {
	searchParams := &api.SearchCollectionParams{
		Q:        pointer.String(buildQuery(f.TrimmedText())),
		QueryBy:  pointer.String("title,description,tags,category_name,artisan_name"),
		FilterBy: pointer.String(buildFilterBy(f)),
		SortBy:   pointer.String(buildSortBy(f.SortKey)),
		Page:     pointer.Int(f.EffectivePage()),
		PerPage:  pointer.Int(f.EffectivePageSize() * a.overfetch),
	}

	value, err := a.breaker.Execute(func() (interface{}, error) {
		return a.client.Client().Collection(ProductsCollection).Documents().Search(ctx, searchParams)
	})
	if err != nil {
		return nil, apperrors.NewExternalError("failed to search products", err)
	}
	result := value.(*api.SearchResult)

	records := []repositories.RawProductRecord{}
	if result.Hits == nil {
		return records, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		records = append(records, decodeDocument(*hit.Document))
	}

	return records, nil
}

// buildDocument flattens a product into the indexed document shape. Denormalized
// relation names are filled in by the indexing pipeline before upsert.
func buildDocument(product *entities.Product) map[string]interface{} {
	document := map[string]interface{}{
		"id":              product.ID,
		"title":           product.Title,
		"description":     product.Description,
		"tags":            product.Tags,
		"price":           product.Price,
		"effective_price": product.EffectivePrice(),
		"category_id":     product.CategoryID,
		"subcategory_id":  product.SubcategoryID,
		"artisan_id":      product.ArtisanID,
		"images":          product.Images,
		"stock":           product.Stock,
		"rating":          product.Rating,
		"review_count":    product.ReviewCount,
		"featured":        product.Featured,
		"lead_time_days":  product.LeadTimeDays,
		"is_active":       product.IsActive,
		"created_at":      product.CreatedAt.Unix(),
	}
	if product.DiscountPrice != nil {
		document["discount_price"] = *product.DiscountPrice
	}
	return document
}

// buildQuery rejoins the whitespace-separated terms of the free-text query.
func buildQuery(text string) string {
	terms := strings.Fields(text)
	if len(terms) == 0 {
		return "*"
	}
	return strings.Join(terms, " ")
}

// buildFilterBy translates the structured filters into a conjunctive
// filter_by expression. Delivery speed is excluded on purpose.
func buildFilterBy(f filters.SearchFilters) string {
	clauses := []string{"is_active:=true"}

	if len(f.CategoryIDs) > 0 {
		clauses = append(clauses, fmt.Sprintf("category_id:=[%s]", strings.Join(f.CategoryIDs, ",")))
	}
	if len(f.SubcategoryIDs) > 0 {
		clauses = append(clauses, fmt.Sprintf("subcategory_id:=[%s]", strings.Join(f.SubcategoryIDs, ",")))
	}
	if len(f.ArtisanIDs) > 0 {
		clauses = append(clauses, fmt.Sprintf("artisan_id:=[%s]", strings.Join(f.ArtisanIDs, ",")))
	}
	if f.PriceMin != nil {
		clauses = append(clauses, fmt.Sprintf("effective_price:>=%s", formatFloat(*f.PriceMin)))
	}
	if f.PriceMax != nil {
		clauses = append(clauses, fmt.Sprintf("effective_price:<=%s", formatFloat(*f.PriceMax)))
	}
	if f.MinRating != nil {
		clauses = append(clauses, fmt.Sprintf("rating:>=%s", formatFloat(*f.MinRating)))
	}

	return strings.Join(clauses, " && ")
}

// buildSortBy maps the sort key to an engine ordering. Alpha sorts stay with
// the refinement pass where the collator lives; relevance-neutral keys get a
// deterministic engine ordering so the overfetch window is stable.
func buildSortBy(key filters.SortKey) string {
	switch key {
	case filters.SortPriceAsc:
		return "effective_price:asc"
	case filters.SortPriceDesc:
		return "effective_price:desc"
	case filters.SortNewest:
		return "created_at:desc"
	case filters.SortRatingDesc:
		return "rating:desc"
	default:
		return "_text_match:desc,created_at:desc"
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// decodeDocument reconstructs the raw record shape from a search hit.
// Typesense hands back map[string]interface{} with JSON numeric types, so
// numbers arrive as float64 regardless of the schema type.
func decodeDocument(doc map[string]interface{}) repositories.RawProductRecord {
	record := repositories.RawProductRecord{}

	if val, ok := doc["id"].(string); ok {
		record.ID = val
	}
	if val, ok := doc["title"].(string); ok {
		record.Title = val
	}
	if val, ok := doc["description"].(string); ok {
		record.Description = sql.NullString{String: val, Valid: true}
	}
	if val, ok := doc["price"].(float64); ok {
		record.Price = val
	}
	if val, ok := doc["discount_price"].(float64); ok {
		record.DiscountPrice = sql.NullFloat64{Float64: val, Valid: true}
	}
	if val, ok := doc["category_id"].(string); ok && val != "" {
		record.CategoryID = sql.NullString{String: val, Valid: true}
	}
	if val, ok := doc["subcategory_id"].(string); ok && val != "" {
		record.SubcategoryID = sql.NullString{String: val, Valid: true}
	}
	if val, ok := doc["artisan_id"].(string); ok && val != "" {
		record.ArtisanID = sql.NullString{String: val, Valid: true}
	}
	record.Tags = decodeStringSlice(doc["tags"])
	record.Images = decodeStringSlice(doc["images"])
	if val, ok := doc["stock"].(float64); ok {
		record.Stock = sql.NullInt64{Int64: int64(val), Valid: true}
	}
	if val, ok := doc["rating"].(float64); ok {
		record.Rating = sql.NullFloat64{Float64: val, Valid: true}
	}
	if val, ok := doc["review_count"].(float64); ok {
		record.ReviewCount = sql.NullInt64{Int64: int64(val), Valid: true}
	}
	if val, ok := doc["featured"].(bool); ok {
		record.Featured = sql.NullBool{Bool: val, Valid: true}
	}
	if val, ok := doc["lead_time_days"].(float64); ok {
		record.LeadTimeDays = sql.NullInt64{Int64: int64(val), Valid: true}
	}
	if val, ok := doc["created_at"].(float64); ok {
		record.CreatedAt = time.Unix(int64(val), 0).UTC().Format(time.RFC3339)
	}

	if record.CategoryID.Valid {
		category := &repositories.RawCategoryRecord{ID: record.CategoryID.String}
		if val, ok := doc["category_name"].(string); ok && val != "" {
			category.Name = sql.NullString{String: val, Valid: true}
		}
		record.Category = category
	}
	if record.ArtisanID.Valid {
		artisan := &repositories.RawArtisanRecord{ID: record.ArtisanID.String}
		if val, ok := doc["artisan_name"].(string); ok && val != "" {
			artisan.Name = sql.NullString{String: val, Valid: true}
		}
		record.Artisan = artisan
	}

	return record
}

func decodeStringSlice(value interface{}) []string {
	items, ok := value.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
