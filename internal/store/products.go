package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/safar/go-b2b-store/internal/database"
	"github.com/safar/go-b2b-store/internal/models"
	"github.com/shopspring/decimal"
)

const productColumns = `id, name, description, price, original_price, category, subcategory, brand,
	image_url, gallery_images, rating, review_count, in_stock, stock_quantity, specifications,
	features, tags, is_restricted, weight, dimensions, created_at, updated_at`

func scanProduct(row scanner) (*models.Product, error) {
	product := &models.Product{}
	var originalPrice decimal.NullDecimal
	var specs []byte

	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&originalPrice,
		&product.Category,
		&product.Subcategory,
		&product.Brand,
		&product.ImageURL,
		pq.Array(&product.GalleryImages),
		&product.Rating,
		&product.ReviewCount,
		&product.InStock,
		&product.StockQuantity,
		&specs,
		pq.Array(&product.Features),
		pq.Array(&product.Tags),
		&product.IsRestricted,
		&product.Weight,
		&product.Dimensions,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if originalPrice.Valid {
		op := originalPrice.Decimal
		product.OriginalPrice = &op
	}
	if len(specs) > 0 {
		if err := json.Unmarshal(specs, &product.Specifications); err != nil {
			return nil, fmt.Errorf("decode specifications: %w", err)
		}
	}

	return product, nil
}

func productArgs(p *models.Product) ([]interface{}, error) {
	specs := p.Specifications
	if specs == nil {
		specs = map[string]string{}
	}
	specJSON, err := json.Marshal(specs)
	if err != nil {
		return nil, fmt.Errorf("encode specifications: %w", err)
	}

	var originalPrice decimal.NullDecimal
	if p.OriginalPrice != nil {
		originalPrice = decimal.NewNullDecimal(*p.OriginalPrice)
	}

	return []interface{}{
		p.ID, p.Name, p.Description, p.Price, originalPrice, p.Category, p.Subcategory, p.Brand,
		p.ImageURL, pq.Array(nonNil(p.GalleryImages)), p.Rating, p.ReviewCount, p.InStock, p.StockQuantity,
		specJSON, pq.Array(nonNil(p.Features)), pq.Array(nonNil(p.Tags)), p.IsRestricted, p.Weight, p.Dimensions,
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	return insertProduct(ctx, s.db, p)
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func insertProduct(ctx context.Context, db rowQuerier, p *models.Product) error {
	args, err := productArgs(p)
	if err != nil {
		return err
	}

	err = db.QueryRowContext(ctx,
		`INSERT INTO products (`+productColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, NOW(), NOW())
		 RETURNING created_at, updated_at`,
		args...).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	return nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	product, err := scanProduct(row)
	if err != nil {
		return nil, notFound(err, "product", id)
	}
	return product, nil
}

// UpdateProduct applies a partial update under a row lock so concurrent admin
// edits do not interleave.
func (s *Store) UpdateProduct(ctx context.Context, id string, update models.ProductUpdate) (*models.Product, error) {
	var product *models.Product

	err := database.WithTransaction(ctx, s.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
		current, err := scanProduct(row)
		if err != nil {
			return notFound(err, "product", id)
		}

		update.Apply(current)
		if current.StockQuantity == 0 {
			current.InStock = false
		}

		args, err := productArgs(current)
		if err != nil {
			return err
		}

		err = tx.QueryRowContext(ctx,
			`UPDATE products SET
				name = $2, description = $3, price = $4, original_price = $5, category = $6,
				subcategory = $7, brand = $8, image_url = $9, gallery_images = $10, rating = $11,
				review_count = $12, in_stock = $13, stock_quantity = $14, specifications = $15,
				features = $16, tags = $17, is_restricted = $18, weight = $19, dimensions = $20,
				updated_at = NOW()
			 WHERE id = $1
			 RETURNING updated_at`,
			args...).Scan(&current.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update product: %w", err)
		}

		product = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return expectOneRow(result, "product", id)
}

// productWhere builds the WHERE clause for filter, numbering placeholders from 1.
func productWhere(filter models.ProductFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Category != "" {
		conds = append(conds, "category = "+arg(filter.Category))
	}
	if filter.Brand != "" {
		conds = append(conds, "brand = "+arg(filter.Brand))
	}
	if filter.MinPrice != nil {
		conds = append(conds, "price >= "+arg(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		conds = append(conds, "price <= "+arg(*filter.MaxPrice))
	}
	if filter.Search != "" {
		term := arg(strings.ToLower(filter.Search))
		conds = append(conds, fmt.Sprintf(
			"(strpos(lower(name), %[1]s) > 0 OR strpos(lower(description), %[1]s) > 0 OR %[1]s = ANY(tags))", term))
	}
	if filter.InStock != nil {
		conds = append(conds, "in_stock = "+arg(*filter.InStock))
	}
	if filter.MinRating != nil {
		conds = append(conds, "rating >= "+arg(*filter.MinRating))
	}
	if filter.MinReviewCount != nil {
		conds = append(conds, "review_count >= "+arg(*filter.MinReviewCount))
	}
	if filter.DiscountedOnly {
		conds = append(conds, "original_price IS NOT NULL")
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *Store) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	filter.Normalize()
	where, args := productWhere(filter)

	order := " ORDER BY created_at, id"
	if filter.NewestFirst {
		order = " ORDER BY created_at DESC, id"
	}

	args = append(args, filter.Limit, filter.Skip)
	query := `SELECT ` + productColumns + ` FROM products` + where + order +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return products, nil
}

func (s *Store) CountProducts(ctx context.Context, filter models.ProductFilter) (int64, error) {
	where, args := productWhere(filter)

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

// PriceRange returns nil when the catalog is empty.
func (s *Store) PriceRange(ctx context.Context) (*models.PriceRange, error) {
	var min, max decimal.NullDecimal
	err := s.db.QueryRowContext(ctx, `SELECT MIN(price), MAX(price) FROM products`).Scan(&min, &max)
	if err != nil {
		return nil, fmt.Errorf("price range: %w", err)
	}
	if !min.Valid || !max.Valid {
		return nil, nil
	}
	return &models.PriceRange{MinPrice: min.Decimal, MaxPrice: max.Decimal}, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]models.CategoryWithCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.slug, c.description, c.image_url,
		        (SELECT COUNT(*) FROM products p WHERE p.category = c.name)
		 FROM categories c
		 ORDER BY c.name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.CategoryWithCount{}
	for rows.Next() {
		var c models.CategoryWithCount
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ImageURL, &c.ProductCount); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return categories, nil
}

func (s *Store) ListBrands(ctx context.Context) ([]models.BrandWithCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT b.id, b.name, b.logo_url, b.description, b.website,
		        (SELECT COUNT(*) FROM products p WHERE p.brand = b.name)
		 FROM brands b
		 ORDER BY b.name`)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	defer rows.Close()

	brands := []models.BrandWithCount{}
	for rows.Next() {
		var b models.BrandWithCount
		if err := rows.Scan(&b.ID, &b.Name, &b.LogoURL, &b.Description, &b.Website, &b.ProductCount); err != nil {
			return nil, fmt.Errorf("scan brand: %w", err)
		}
		brands = append(brands, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return brands, nil
}
