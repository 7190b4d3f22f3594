package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/artisanmarket/backend/internal/domain/entities"
	"github.com/artisanmarket/backend/internal/domain/filters"
	"github.com/artisanmarket/backend/internal/domain/repositories"
	"github.com/artisanmarket/backend/pkg/errors"
)

// ProductAdapter implements ProductRepository over PostgreSQL. Its Retrieve
// method is the structured retrieval strategy: every predicate, the sort and
// the pagination window are pushed down to the database.
type ProductAdapter struct {
	db     *sql.DB
	goquDB *goqu.Database
}

// NewProductAdapter creates a new product adapter
func NewProductAdapter(db *sql.DB) *ProductAdapter {
	return &ProductAdapter{
		db:     db,
		goquDB: goqu.New("postgres", db),
	}
}

var _ repositories.ProductRepository = (*ProductAdapter)(nil)

var productColumns = []interface{}{
	"id", "title", "description", "price", "discount_price",
	"category_id", "subcategory_id", "artisan_id", "tags", "images",
	"stock", "rating", "review_count", "featured", "lead_time_days",
	"is_active", "created_at", "updated_at",
}

// Create creates a new product
func (a *ProductAdapter) Create(ctx context.Context, product *entities.Product) error {
	record := goqu.Record{
		"id":             product.ID,
		"title":          product.Title,
		"description":    product.Description,
		"price":          product.Price,
		"discount_price": nullFloat(product.DiscountPrice),
		"category_id":    product.CategoryID,
		"subcategory_id": sql.NullString{String: product.SubcategoryID, Valid: product.SubcategoryID != ""},
		"artisan_id":     product.ArtisanID,
		"tags":           pq.Array(product.Tags),
		"images":         pq.Array(product.Images),
		"stock":          product.Stock,
		"rating":         product.Rating,
		"review_count":   product.ReviewCount,
		"featured":       product.Featured,
		"lead_time_days": product.LeadTimeDays,
		"is_active":      product.IsActive,
		"created_at":     product.CreatedAt,
		"updated_at":     product.UpdatedAt,
	}

	query, args, err := a.goquDB.Insert("products").Rows(record).ToSQL()
	if err != nil {
		return errors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
		return errors.NewInternalError("failed to create product", err)
	}

	return nil
}

// GetByID retrieves a product by ID
func (a *ProductAdapter) GetByID(ctx context.Context, id string) (*entities.Product, error) {
	query, args, err := a.goquDB.Select(productColumns...).
		From("products").
		Where(goqu.Ex{"id": id, "is_active": true}).
		ToSQL()
	if err != nil {
		return nil, errors.NewInternalError("failed to build query", err)
	}

	product, err := a.scanProduct(a.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("product with id %s not found", id))
	}
	if err != nil {
		return nil, errors.NewInternalError("failed to get product", err)
	}

	return product, nil
}

// Update updates a product
func (a *ProductAdapter) Update(ctx context.Context, product *entities.Product) error {
	product.UpdatedAt = time.Now()

	record := goqu.Record{
		"title":          product.Title,
		"description":    product.Description,
		"price":          product.Price,
		"discount_price": nullFloat(product.DiscountPrice),
		"category_id":    product.CategoryID,
		"subcategory_id": sql.NullString{String: product.SubcategoryID, Valid: product.SubcategoryID != ""},
		"artisan_id":     product.ArtisanID,
		"tags":           pq.Array(product.Tags),
		"images":         pq.Array(product.Images),
		"stock":          product.Stock,
		"rating":         product.Rating,
		"review_count":   product.ReviewCount,
		"featured":       product.Featured,
		"lead_time_days": product.LeadTimeDays,
		"is_active":      product.IsActive,
		"updated_at":     product.UpdatedAt,
	}

	query, args, err := a.goquDB.Update("products").
		Set(record).
		Where(goqu.Ex{"id": product.ID}).
		ToSQL()
	if err != nil {
		return errors.NewInternalError("failed to build update query", err)
	}

	result, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.NewInternalError("failed to update product", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("product with id %s not found", product.ID))
	}

	return nil
}

// Delete soft deletes a product
func (a *ProductAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.goquDB.Update("products").
		Set(goqu.Record{"is_active": false, "updated_at": time.Now()}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return errors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.NewInternalError("failed to delete product", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("product with id %s not found", id))
	}

	return nil
}

// List retrieves products with back-office filters
func (a *ProductAdapter) List(ctx context.Context, filter repositories.ProductFilter) ([]*entities.Product, error) {
	ds := a.goquDB.Select(productColumns...).From("products")

	if filter.CategoryID != "" {
		ds = ds.Where(goqu.Ex{"category_id": filter.CategoryID})
	}
	if filter.ArtisanID != "" {
		ds = ds.Where(goqu.Ex{"artisan_id": filter.ArtisanID})
	}
	if filter.IsActive != nil {
		ds = ds.Where(goqu.Ex{"is_active": *filter.IsActive})
	}

	ds = ds.Order(goqu.I("created_at").Desc())

	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, errors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternalError("failed to list products", err)
	}
	defer rows.Close()

	return a.collectProducts(rows)
}

// Retrieve executes the structured retrieval strategy and returns raw joined
// records. The free-text query, if any, plays no role here; the orchestrator
// only routes filter-only searches this way.
func (a *ProductAdapter) Retrieve(ctx context.Context, f filters.SearchFilters) ([]repositories.RawProductRecord, error) {
	query, args, err := buildStructuredQuery(a.goquDB, f).ToSQL()
	if err != nil {
		return nil, errors.NewInternalError("failed to build search query", err)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternalError("failed to search products", err)
	}
	defer rows.Close()

	var records []repositories.RawProductRecord
	for rows.Next() {
		record, err := scanRawProduct(rows)
		if err != nil {
			return nil, errors.NewInternalError("failed to scan product row", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewInternalError("error iterating product rows", err)
	}

	return records, nil
}

// buildStructuredQuery translates canonical filters into a single joined
// select over products, categories, subcategories and artisans.
func buildStructuredQuery(db *goqu.Database, f filters.SearchFilters) *goqu.SelectDataset {
	ds := db.Select(
		goqu.I("p.id"), goqu.I("p.title"), goqu.I("p.description"),
		goqu.I("p.price"), goqu.I("p.discount_price"),
		goqu.I("p.category_id"), goqu.I("p.subcategory_id"), goqu.I("p.artisan_id"),
		goqu.I("p.tags"), goqu.I("p.images"),
		goqu.I("p.stock"), goqu.I("p.rating"), goqu.I("p.review_count"),
		goqu.I("p.featured"), goqu.I("p.lead_time_days"),
		goqu.L("p.created_at::text"),
		goqu.I("c.id").As("c_id"), goqu.I("c.name").As("c_name"), goqu.I("c.slug").As("c_slug"),
		goqu.I("sc.id").As("sc_id"), goqu.I("sc.name").As("sc_name"), goqu.I("sc.slug").As("sc_slug"),
		goqu.I("a.id").As("a_id"), goqu.I("a.name").As("a_name"),
		goqu.I("a.location").As("a_location"), goqu.I("a.avatar_url").As("a_avatar_url"),
		goqu.I("a.rating").As("a_rating"),
	).
		From(goqu.T("products").As("p")).
		LeftJoin(goqu.T("categories").As("c"), goqu.On(goqu.I("p.category_id").Eq(goqu.I("c.id")))).
		LeftJoin(goqu.T("subcategories").As("sc"), goqu.On(goqu.I("p.subcategory_id").Eq(goqu.I("sc.id")))).
		LeftJoin(goqu.T("artisans").As("a"), goqu.On(goqu.I("p.artisan_id").Eq(goqu.I("a.id")))).
		Where(goqu.I("p.is_active").Eq(true))

	if len(f.CategoryIDs) > 0 {
		ds = ds.Where(goqu.Ex{"p.category_id": f.CategoryIDs})
	}
	if len(f.SubcategoryIDs) > 0 {
		ds = ds.Where(goqu.Ex{"p.subcategory_id": f.SubcategoryIDs})
	}
	if len(f.ArtisanIDs) > 0 {
		ds = ds.Where(goqu.Ex{"p.artisan_id": f.ArtisanIDs})
	}
	if f.PriceMin != nil {
		ds = ds.Where(goqu.L("COALESCE(p.discount_price, p.price)").Gte(*f.PriceMin))
	}
	if f.PriceMax != nil {
		ds = ds.Where(goqu.L("COALESCE(p.discount_price, p.price)").Lte(*f.PriceMax))
	}
	if f.MinRating != nil {
		ds = ds.Where(goqu.I("p.rating").Gte(*f.MinRating))
	}
	if f.DeliverySpeed != "" {
		minDays, maxDays, hasMax := f.DeliverySpeed.LeadTimeRange()
		ds = ds.Where(goqu.I("p.lead_time_days").Gte(minDays))
		if hasMax {
			ds = ds.Where(goqu.I("p.lead_time_days").Lte(maxDays))
		}
	}

	ds = applySort(ds, f.SortKey)

	return ds.
		Limit(uint(f.EffectivePageSize())).
		Offset(uint(f.Offset()))
}

// applySort pushes the sort down when the key maps onto an indexed column.
// Alphabetical keys are left to the refinement pass, which owns locale-aware
// comparison; the default ordering is featured first, newest next.
func applySort(ds *goqu.SelectDataset, key filters.SortKey) *goqu.SelectDataset {
	switch key {
	case filters.SortPriceAsc:
		return ds.Order(goqu.L("COALESCE(p.discount_price, p.price)").Asc())
	case filters.SortPriceDesc:
		return ds.Order(goqu.L("COALESCE(p.discount_price, p.price)").Desc())
	case filters.SortNewest:
		return ds.Order(goqu.I("p.created_at").Desc())
	case filters.SortRatingDesc:
		return ds.Order(goqu.I("p.rating").Desc())
	default:
		return ds.Order(goqu.I("p.featured").Desc(), goqu.I("p.created_at").Desc())
	}
}

// scanRawProduct scans one joined row into a RawProductRecord, attaching
// relation records only when the join produced them.
func scanRawProduct(rows *sql.Rows) (repositories.RawProductRecord, error) {
	var record repositories.RawProductRecord
	var catID, catName, catSlug sql.NullString
	var subID, subName, subSlug sql.NullString
	var artID, artName, artLocation, artAvatar sql.NullString
	var artRating sql.NullFloat64

	err := rows.Scan(
		&record.ID, &record.Title, &record.Description,
		&record.Price, &record.DiscountPrice,
		&record.CategoryID, &record.SubcategoryID, &record.ArtisanID,
		pq.Array(&record.Tags), pq.Array(&record.Images),
		&record.Stock, &record.Rating, &record.ReviewCount,
		&record.Featured, &record.LeadTimeDays,
		&record.CreatedAt,
		&catID, &catName, &catSlug,
		&subID, &subName, &subSlug,
		&artID, &artName, &artLocation, &artAvatar, &artRating,
	)
	if err != nil {
		return repositories.RawProductRecord{}, err
	}

	if catID.Valid {
		record.Category = &repositories.RawCategoryRecord{ID: catID.String, Name: catName, Slug: catSlug}
	}
	if subID.Valid {
		record.Subcategory = &repositories.RawCategoryRecord{ID: subID.String, Name: subName, Slug: subSlug}
	}
	if artID.Valid {
		record.Artisan = &repositories.RawArtisanRecord{
			ID:        artID.String,
			Name:      artName,
			Location:  artLocation,
			AvatarURL: artAvatar,
			Rating:    artRating,
		}
	}

	return record, nil
}

func (a *ProductAdapter) scanProduct(row *sql.Row) (*entities.Product, error) {
	product := &entities.Product{}
	var description, subcategoryID sql.NullString
	var discountPrice sql.NullFloat64

	err := row.Scan(
		&product.ID, &product.Title, &description,
		&product.Price, &discountPrice,
		&product.CategoryID, &subcategoryID, &product.ArtisanID,
		pq.Array(&product.Tags), pq.Array(&product.Images),
		&product.Stock, &product.Rating, &product.ReviewCount,
		&product.Featured, &product.LeadTimeDays,
		&product.IsActive, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	product.Description = description.String
	product.SubcategoryID = subcategoryID.String
	if discountPrice.Valid {
		product.DiscountPrice = &discountPrice.Float64
	}

	return product, nil
}

func (a *ProductAdapter) collectProducts(rows *sql.Rows) ([]*entities.Product, error) {
	var products []*entities.Product
	for rows.Next() {
		product := &entities.Product{}
		var description, subcategoryID sql.NullString
		var discountPrice sql.NullFloat64

		err := rows.Scan(
			&product.ID, &product.Title, &description,
			&product.Price, &discountPrice,
			&product.CategoryID, &subcategoryID, &product.ArtisanID,
			pq.Array(&product.Tags), pq.Array(&product.Images),
			&product.Stock, &product.Rating, &product.ReviewCount,
			&product.Featured, &product.LeadTimeDays,
			&product.IsActive, &product.CreatedAt, &product.UpdatedAt,
		)
		if err != nil {
			return nil, errors.NewInternalError("failed to scan product", err)
		}

		product.Description = description.String
		product.SubcategoryID = subcategoryID.String
		if discountPrice.Valid {
			product.DiscountPrice = &discountPrice.Float64
		}

		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewInternalError("error iterating products", err)
	}

	return products, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
