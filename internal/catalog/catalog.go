// Package catalog answers product queries and carries the admin product CRUD.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/safar/go-b2b-store/internal/apperr"
	"github.com/safar/go-b2b-store/internal/models"
)

const (
	featuredLimit    = 8
	featuredRating   = 4.7
	trendingLimit    = 6
	trendingReviews  = 100
	dealsLimit       = 6
	newArrivalsLimit = 8
)

type ProductStore interface {
	CreateProduct(ctx context.Context, p *models.Product) error
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, update models.ProductUpdate) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	CountProducts(ctx context.Context, filter models.ProductFilter) (int64, error)
	PriceRange(ctx context.Context) (*models.PriceRange, error)
	ListCategories(ctx context.Context) ([]models.CategoryWithCount, error)
	ListBrands(ctx context.Context) ([]models.BrandWithCount, error)
}

type Service struct {
	store ProductStore
}

func NewService(store ProductStore) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	filter.Normalize()
	filter.Search = strings.TrimSpace(filter.Search)
	return s.store.ListProducts(ctx, filter)
}

// Page is List plus the total number of matches, for the admin listing.
func (s *Service) Page(ctx context.Context, filter models.ProductFilter) (*models.OffsetPage, error) {
	filter.Normalize()
	products, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.store.CountProducts(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &models.OffsetPage{Items: products, Total: total, Skip: filter.Skip, Limit: filter.Limit}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Product, error) {
	return s.store.GetProduct(ctx, id)
}

func validateProduct(p *models.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product name is required: %w", apperr.ErrInvalidInput)
	}
	if !p.Price.IsPositive() {
		return fmt.Errorf("price must be positive: %w", apperr.ErrInvalidInput)
	}
	if p.OriginalPrice != nil && p.OriginalPrice.IsNegative() {
		return fmt.Errorf("original price must not be negative: %w", apperr.ErrInvalidInput)
	}
	if p.StockQuantity < 0 {
		return fmt.Errorf("stock quantity must not be negative: %w", apperr.ErrInvalidInput)
	}
	return nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func (s *Service) Create(ctx context.Context, p models.Product) (*models.Product, error) {
	if err := validateProduct(&p); err != nil {
		return nil, err
	}

	p.ID = uuid.NewString()
	p.Tags = normalizeTags(p.Tags)
	if p.StockQuantity == 0 {
		p.InStock = false
	}

	if err := s.store.CreateProduct(ctx, &p); err != nil {
		return nil, err
	}

	log.Info().Str("product_id", p.ID).Str("name", p.Name).Msg("product created")
	return &p, nil
}

func (s *Service) Update(ctx context.Context, id string, update models.ProductUpdate) (*models.Product, error) {
	if update.Price != nil && !update.Price.IsPositive() {
		return nil, fmt.Errorf("price must be positive: %w", apperr.ErrInvalidInput)
	}
	if update.StockQuantity != nil && *update.StockQuantity < 0 {
		return nil, fmt.Errorf("stock quantity must not be negative: %w", apperr.ErrInvalidInput)
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, fmt.Errorf("product name is required: %w", apperr.ErrInvalidInput)
	}
	if update.Tags != nil {
		tags := normalizeTags(*update.Tags)
		update.Tags = &tags
	}

	p, err := s.store.UpdateProduct(ctx, id, update)
	if err != nil {
		return nil, err
	}

	log.Info().Str("product_id", id).Msg("product updated")
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	log.Info().Str("product_id", id).Msg("product deleted")
	return nil
}

func (s *Service) Categories(ctx context.Context) ([]models.CategoryWithCount, error) {
	return s.store.ListCategories(ctx)
}

func (s *Service) Brands(ctx context.Context) ([]models.BrandWithCount, error) {
	return s.store.ListBrands(ctx)
}

// PriceRange falls back to 0..1000 for an empty catalog.
func (s *Service) PriceRange(ctx context.Context) (*models.PriceRange, error) {
	pr, err := s.store.PriceRange(ctx)
	if err != nil {
		return nil, err
	}
	if pr == nil {
		return &models.PriceRange{MinPrice: decimal.Zero, MaxPrice: decimal.NewFromInt(1000)}, nil
	}
	return pr, nil
}

func (s *Service) Featured(ctx context.Context) ([]models.Product, error) {
	rating := featuredRating
	return s.store.ListProducts(ctx, models.ProductFilter{MinRating: &rating, Limit: featuredLimit})
}

func (s *Service) Trending(ctx context.Context) ([]models.Product, error) {
	reviews := trendingReviews
	return s.store.ListProducts(ctx, models.ProductFilter{MinReviewCount: &reviews, Limit: trendingLimit})
}

func (s *Service) Deals(ctx context.Context) ([]models.Product, error) {
	return s.store.ListProducts(ctx, models.ProductFilter{DiscountedOnly: true, Limit: dealsLimit})
}

func (s *Service) NewArrivals(ctx context.Context) ([]models.Product, error) {
	return s.store.ListProducts(ctx, models.ProductFilter{NewestFirst: true, Limit: newArrivalsLimit})
}
