package catalog

import (
	"context"
	"testing"

	"github.com/safar/go-b2b-store/internal/apperr"
	"github.com/safar/go-b2b-store/internal/memstore"
	"github.com/safar/go-b2b-store/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProducts(t *testing.T, svc *Service) map[string]*models.Product {
	t.Helper()
	was := decimal.NewFromInt(650)
	inputs := []models.Product{
		{Name: "Glock 19", Description: "Compact 9mm", Price: decimal.NewFromInt(550), OriginalPrice: &was,
			Category: "Handguns", Brand: "Glock", InStock: true, StockQuantity: 10, Rating: 4.8, ReviewCount: 320, Tags: []string{"Pistol", " 9mm "}},
		{Name: "Ruger 10/22", Description: "Rimfire rifle", Price: decimal.NewFromInt(300),
			Category: "Rifles", Brand: "Ruger", InStock: true, StockQuantity: 0, Rating: 4.5, ReviewCount: 40, Tags: []string{"rifle"}},
		{Name: "Holosun Red Dot", Description: "Optic for a pistol slide", Price: decimal.NewFromInt(200),
			Category: "Optics", Brand: "Holosun", InStock: true, StockQuantity: 3, Rating: 4.9, ReviewCount: 150, Tags: []string{"optic"}},
	}

	out := map[string]*models.Product{}
	for _, in := range inputs {
		p, err := svc.Create(context.Background(), in)
		require.NoError(t, err)
		out[p.Name] = p
	}
	return out
}

func TestCreateNormalizes(t *testing.T) {
	svc := NewService(memstore.New())
	products := seedProducts(t, svc)

	assert.Equal(t, []string{"pistol", "9mm"}, products["Glock 19"].Tags)
	assert.False(t, products["Ruger 10/22"].InStock)
	assert.NotEmpty(t, products["Glock 19"].ID)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(memstore.New())
	ctx := context.Background()

	tests := []struct {
		name    string
		product models.Product
	}{
		{name: "zero price", product: models.Product{Name: "x", Price: decimal.Zero}},
		{name: "negative stock", product: models.Product{Name: "x", Price: decimal.NewFromInt(1), StockQuantity: -1}},
		{name: "blank name", product: models.Product{Name: " ", Price: decimal.NewFromInt(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.product)
			assert.ErrorIs(t, err, apperr.ErrInvalidInput)
		})
	}
}

func TestListFilters(t *testing.T) {
	svc := NewService(memstore.New())
	seedProducts(t, svc)
	ctx := context.Background()

	min := decimal.NewFromInt(200)
	max := decimal.NewFromInt(300)
	inStock := true

	tests := []struct {
		name   string
		filter models.ProductFilter
		want   []string
	}{
		{name: "category", filter: models.ProductFilter{Category: "Rifles"}, want: []string{"Ruger 10/22"}},
		{name: "price bounds inclusive", filter: models.ProductFilter{MinPrice: &min, MaxPrice: &max}, want: []string{"Ruger 10/22", "Holosun Red Dot"}},
		{name: "search is case insensitive", filter: models.ProductFilter{Search: "PISTOL"}, want: []string{"Glock 19", "Holosun Red Dot"}},
		{name: "search tag exact", filter: models.ProductFilter{Search: "9mm"}, want: []string{"Glock 19"}},
		{name: "in stock flag", filter: models.ProductFilter{InStock: &inStock}, want: []string{"Glock 19", "Holosun Red Dot"}},
		{name: "combined", filter: models.ProductFilter{Brand: "Glock", Search: "rifle"}, want: []string{}},
		{name: "paging", filter: models.ProductFilter{Skip: 1, Limit: 1}, want: []string{"Ruger 10/22"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := svc.List(ctx, tt.filter)
			require.NoError(t, err)
			names := []string{}
			for _, p := range products {
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestShowcases(t *testing.T) {
	svc := NewService(memstore.New())
	ctx := context.Background()

	pr, err := svc.PriceRange(ctx)
	require.NoError(t, err)
	assert.True(t, pr.MaxPrice.Equal(decimal.NewFromInt(1000)))

	seedProducts(t, svc)

	pr, err = svc.PriceRange(ctx)
	require.NoError(t, err)
	assert.True(t, pr.MinPrice.Equal(decimal.NewFromInt(200)))
	assert.True(t, pr.MaxPrice.Equal(decimal.NewFromInt(550)))

	featured, err := svc.Featured(ctx)
	require.NoError(t, err)
	assert.Len(t, featured, 2)

	trending, err := svc.Trending(ctx)
	require.NoError(t, err)
	assert.Len(t, trending, 2)

	deals, err := svc.Deals(ctx)
	require.NoError(t, err)
	require.Len(t, deals, 1)
	assert.Equal(t, "Glock 19", deals[0].Name)

	arrivals, err := svc.NewArrivals(ctx)
	require.NoError(t, err)
	require.Len(t, arrivals, 3)
	assert.Equal(t, "Holosun Red Dot", arrivals[0].Name)
}

func TestUpdateDeleteAndPage(t *testing.T) {
	svc := NewService(memstore.New())
	products := seedProducts(t, svc)
	ctx := context.Background()
	glock := products["Glock 19"]

	zero := 0
	updated, err := svc.Update(ctx, glock.ID, models.ProductUpdate{StockQuantity: &zero})
	require.NoError(t, err)
	assert.False(t, updated.InStock)
	assert.True(t, updated.Price.Equal(decimal.NewFromInt(550)))

	negative := decimal.NewFromInt(-1)
	_, err = svc.Update(ctx, glock.ID, models.ProductUpdate{Price: &negative})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = svc.Update(ctx, "missing", models.ProductUpdate{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, glock.ID))
	_, err = svc.Get(ctx, glock.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	page, err := svc.Page(ctx, models.ProductFilter{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 1, page.Limit)
	assert.Len(t, page.Items, 1)
}
