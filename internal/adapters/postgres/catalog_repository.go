package postgres

import (
	"context"
	"errors"
	"fmt"
	"product-filter-service/internal/contextkeys"
	"product-filter-service/internal/core/domain"
	"product-filter-service/internal/core/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogRepository reads the product catalog. Expected tables:
//
//	products(id BIGINT PK, title, slug, description, price NUMERIC NULL, regular_price NUMERIC NULL,
//	         status TEXT, stock_status TEXT, average_rating NUMERIC, total_sales INT,
//	         image_url TEXT, permalink TEXT, created_at TIMESTAMPTZ)
//	product_terms(product_id BIGINT, taxonomy TEXT, term_slug TEXT)
type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) (*CatalogRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &CatalogRepository{
		pool: pool,
	}, nil
}

// Query returns one page of product ids plus the total number of matches.
func (r *CatalogRepository) Query(ctx context.Context, spec domain.CatalogQuerySpec) (*domain.CatalogPage, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "CatalogRepository",
		"method":    "Query",
		"limit":     spec.Limit,
		"offset":    spec.Offset,
	})

	whereClause, args := applySpec(spec)

	// count and page are read in one repeatable-read snapshot
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products p %s", whereClause)
	var totalCount int64
	if err := tx.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		repoLogger.Error("Failed to count products", err, port.Fields{"query": countQuery})
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	page := &domain.CatalogPage{
		IDs:        []domain.ProductID{},
		TotalCount: int(totalCount),
		TotalPages: totalPages(int(totalCount), spec.Limit),
	}
	if totalCount == 0 || spec.Offset >= int(totalCount) {
		repoLogger.Debug("No products on requested page", port.Fields{"total_count": totalCount})
		return page, nil
	}

	dataQuery := fmt.Sprintf("SELECT p.id FROM products p %s %s LIMIT $%d OFFSET $%d",
		whereClause, orderClause(spec.Sort), len(args)+1, len(args)+2)
	pageArgs := append(append(make([]interface{}, 0, len(args)+2), args...), spec.Limit, spec.Offset)

	rows, err := tx.Query(ctx, dataQuery, pageArgs...)
	if err != nil {
		repoLogger.Error("Failed to select product ids", err, port.Fields{"query": dataQuery})
		return nil, fmt.Errorf("failed to select product ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to scan product ids: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	for _, id := range ids {
		page.IDs = append(page.IDs, domain.ProductID(id))
	}
	repoLogger.Debug("Catalog page loaded", port.Fields{"total_count": totalCount, "page_size": len(page.IDs)})
	return page, nil
}

// PriceBounds computes MIN/MAX price over published products that carry a price.
func (r *CatalogRepository) PriceBounds(ctx context.Context) (domain.PriceRange, bool, error) {
	query := `
		SELECT COUNT(*), COALESCE(MIN(p.price), 0), COALESCE(MAX(p.price), 0)
		FROM products p
		WHERE p.status = 'publish' AND p.price IS NOT NULL`

	var (
		priced int64
		res    domain.PriceRange
	)
	if err := r.pool.QueryRow(ctx, query).Scan(&priced, &res.Min, &res.Max); err != nil {
		return domain.PriceRange{}, false, fmt.Errorf("failed to get price range: %w", err)
	}
	if priced == 0 {
		return domain.PriceRange{}, false, nil
	}
	return res, true, nil
}

// FindCard loads the fields a product card is rendered from.
func (r *CatalogRepository) FindCard(ctx context.Context, id domain.ProductID) (*domain.ProductCard, error) {
	query := `
		SELECT p.id, p.title, p.permalink, COALESCE(p.image_url, ''), COALESCE(p.price, 0),
		       p.regular_price, COALESCE(p.average_rating, 0), p.stock_status
		FROM products p
		WHERE p.id = $1 AND p.status = 'publish'`

	var (
		card        domain.ProductCard
		rawID       int64
		stockStatus string
	)
	err := r.pool.QueryRow(ctx, query, int64(id)).Scan(
		&rawID, &card.Title, &card.Permalink, &card.ImageURL, &card.Price,
		&card.RegularPrice, &card.AverageRating, &stockStatus,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product card %d: %w", id, err)
	}
	card.ID = domain.ProductID(rawID)
	card.StockStatus = domain.StockStatus(stockStatus)
	return &card, nil
}

// Ping reports whether the catalog database is reachable.
func (r *CatalogRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func totalPages(count, perPage int) int {
	if count <= 0 || perPage <= 0 {
		return 0
	}
	return (count + perPage - 1) / perPage
}
