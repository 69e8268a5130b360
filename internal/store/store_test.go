package store_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/safar/go-b2b-store/internal/apperr"
	"github.com/safar/go-b2b-store/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCustomer(email string) *models.Principal {
	return &models.Principal{
		ID:           uuid.NewString(),
		Kind:         models.KindCustomer,
		Email:        email,
		PasswordHash: "hash",
		FirstName:    "Test",
		LastName:     "User",
		Approved:     true,
		Active:       true,
	}
}

func newProduct(name string, price int64, stock int, tags ...string) *models.Product {
	return &models.Product{
		ID:            uuid.NewString(),
		Name:          name,
		Description:   name + " description",
		Price:         decimal.NewFromInt(price),
		Category:      "Rifles",
		Brand:         "Acme",
		InStock:       stock > 0,
		StockQuantity: stock,
		Tags:          tags,
	}
}

func TestPrincipals(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	customer := newCustomer("a@example.com")
	require.NoError(t, s.CreatePrincipal(ctx, customer))
	assert.False(t, customer.CreatedAt.IsZero())

	err := s.CreatePrincipal(ctx, newCustomer("a@example.com"))
	assert.ErrorIs(t, err, apperr.ErrDuplicateIdentity)

	// Same email under another kind is a distinct identity.
	dealer := newCustomer("a@example.com")
	dealer.Kind = models.KindDealer
	dealer.Approved = false
	require.NoError(t, s.CreatePrincipal(ctx, dealer))

	got, err := s.GetPrincipalByLogin(ctx, models.KindCustomer, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, customer.ID, got.ID)

	_, err = s.GetPrincipal(ctx, models.KindDealer, customer.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	pending, err := s.ListPrincipals(ctx, models.PrincipalFilter{Kind: models.KindDealer, PendingOnly: true})
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, s.SetPrincipalApproved(ctx, models.KindDealer, dealer.ID, true))
	pending, err = s.ListPrincipals(ctx, models.PrincipalFilter{Kind: models.KindDealer, PendingOnly: true})
	require.NoError(t, err)
	assert.Empty(t, pending)

	assert.ErrorIs(t, s.SetPrincipalActive(ctx, models.KindDealer, uuid.NewString(), false), apperr.ErrNotFound)
}

func TestProductFilters(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateProduct(ctx, newProduct("Glock 19", 550, 10, "pistol")))
	require.NoError(t, s.CreateProduct(ctx, newProduct("Ruger 10/22", 300, 0, "rifle")))
	optic := newProduct("Red Dot", 200, 3, "optic")
	optic.Description = "Compact sight for a PISTOL slide"
	was := decimal.NewFromInt(250)
	optic.OriginalPrice = &was
	optic.Specifications = map[string]string{"battery": "CR2032"}
	require.NoError(t, s.CreateProduct(ctx, optic))

	min := decimal.NewFromInt(200)
	max := decimal.NewFromInt(300)
	inStock := true

	tests := []struct {
		name   string
		filter models.ProductFilter
		want   int
	}{
		{name: "all", filter: models.ProductFilter{}, want: 3},
		{name: "price bounds inclusive", filter: models.ProductFilter{MinPrice: &min, MaxPrice: &max}, want: 2},
		{name: "search name or description", filter: models.ProductFilter{Search: "Pistol"}, want: 2},
		{name: "search tag", filter: models.ProductFilter{Search: "OPTIC"}, want: 1},
		{name: "in stock", filter: models.ProductFilter{InStock: &inStock}, want: 2},
		{name: "discounted", filter: models.ProductFilter{DiscountedOnly: true}, want: 1},
		{name: "skip past end", filter: models.ProductFilter{Skip: 10}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := s.ListProducts(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, products, tt.want)
		})
	}

	got, err := s.GetProduct(ctx, optic.ID)
	require.NoError(t, err)
	require.NotNil(t, got.OriginalPrice)
	assert.True(t, got.OriginalPrice.Equal(was))
	assert.Equal(t, "CR2032", got.Specifications["battery"])
	assert.Equal(t, []string{"optic"}, got.Tags)

	total, err := s.CountProducts(ctx, models.ProductFilter{Search: "pistol"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	pr, err := s.PriceRange(ctx)
	require.NoError(t, err)
	assert.True(t, pr.MinPrice.Equal(decimal.NewFromInt(200)))
	assert.True(t, pr.MaxPrice.Equal(decimal.NewFromInt(550)))
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	p := newProduct("Holster", 40, 5)
	require.NoError(t, s.CreateProduct(ctx, p))

	zero := 0
	price := decimal.NewFromInt(45)
	updated, err := s.UpdateProduct(ctx, p.ID, models.ProductUpdate{StockQuantity: &zero, Price: &price})
	require.NoError(t, err)
	assert.False(t, updated.InStock)
	assert.True(t, updated.Price.Equal(price))
	assert.Equal(t, "Holster", updated.Name)

	_, err = s.UpdateProduct(ctx, uuid.NewString(), models.ProductUpdate{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, s.DeleteProduct(ctx, p.ID))
	assert.ErrorIs(t, s.DeleteProduct(ctx, p.ID), apperr.ErrNotFound)
}

func TestCartRoundTrip(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	customer := newCustomer("cart@example.com")
	require.NoError(t, s.CreatePrincipal(ctx, customer))

	_, err := s.GetCart(ctx, customer.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	cart := &models.Cart{
		ID:         uuid.NewString(),
		CustomerID: customer.ID,
		Items:      []models.CartItem{{ProductID: "p1", Quantity: 2, Price: decimal.NewFromInt(10)}},
	}
	cart.Recalculate()
	require.NoError(t, s.SaveCart(ctx, cart))

	cart.Items[0].Quantity = 3
	cart.Recalculate()
	require.NoError(t, s.SaveCart(ctx, cart))

	got, err := s.GetCart(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 3, got.Items[0].Quantity)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(30)))

	require.NoError(t, s.DeleteCart(ctx, customer.ID))
	_, err = s.GetCart(ctx, customer.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestQuotesAndChat(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	first := &models.Quote{
		ID:          uuid.NewString(),
		CustomerID:  "c1",
		Items:       []models.QuoteItem{{ProductID: "p1", Quantity: 2, Price: decimal.NewFromInt(150)}},
		TotalAmount: decimal.NewFromInt(300),
		Status:      models.QuoteStatusPending,
	}
	second := &models.Quote{ID: uuid.NewString(), CustomerID: "c1", Status: models.QuoteStatusPending}
	other := &models.Quote{ID: uuid.NewString(), CustomerID: "c2", Status: models.QuoteStatusPending}
	for _, q := range []*models.Quote{first, second, other} {
		require.NoError(t, s.CreateQuote(ctx, q))
	}

	quotes, err := s.ListQuotes(ctx, models.QuoteFilter{CustomerID: "c1"})
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, second.ID, quotes[0].ID)

	first.Status = models.QuoteStatusApproved
	first.TotalAmount = decimal.NewFromInt(275)
	require.NoError(t, s.UpdateQuote(ctx, first))

	got, err := s.GetQuote(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QuoteStatusApproved, got.Status)
	assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(275)))
	assert.True(t, got.Items[0].Price.Equal(decimal.NewFromInt(150)))

	for _, text := range []string{"hello", "any update?"} {
		require.NoError(t, s.CreateMessage(ctx, &models.ChatMessage{
			ID: uuid.NewString(), CustomerID: "c1", SenderType: models.SenderCustomer, SenderName: "Test User", Message: text,
		}))
	}
	require.NoError(t, s.CreateMessage(ctx, &models.ChatMessage{
		ID: uuid.NewString(), CustomerID: "c2", SenderType: models.SenderAdmin, SenderName: "Admin (admin)", Message: "welcome",
	}))

	messages, err := s.ListMessages(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "hello", messages[0].Message)

	conversations, err := s.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	assert.Equal(t, "c2", conversations[0].CustomerID)
	assert.Equal(t, int64(2), conversations[1].MessageCount)
	assert.Equal(t, "any update?", conversations[1].LastMessage.Message)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalQuotes)
	assert.Equal(t, int64(2), stats.PendingQuotes)
	assert.Equal(t, int64(1), stats.ApprovedQuotes)
	assert.Equal(t, int64(3), stats.ChatMessages)
}

func TestReplaceCatalog(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateProduct(ctx, newProduct("Old", 10, 1)))

	err := s.ReplaceCatalog(ctx,
		[]models.Category{{ID: uuid.NewString(), Name: "Rifles", Slug: "rifles"}},
		[]models.Brand{{ID: uuid.NewString(), Name: "Acme"}},
		[]models.Product{*newProduct("New", 20, 2)},
	)
	require.NoError(t, err)

	products, err := s.ListProducts(ctx, models.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "New", products[0].Name)

	categories, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, int64(1), categories[0].ProductCount)
}


func TestReplaceAccountsKeepsQuoteOrder(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	customer := newCustomer("seeded@example.com")
	var quotes []models.Quote
	for _, name := range []string{"alpha", "bravo", "charlie", "delta", "echo"} {
		quotes = append(quotes, models.Quote{
			ID:          uuid.NewString(),
			CustomerID:  customer.ID,
			ProjectName: name,
			TotalAmount: decimal.Zero,
			Status:      models.QuoteStatusPending,
		})
	}
	require.NoError(t, s.ReplaceAccounts(ctx, []models.Principal{*customer}, quotes, nil))

	got, err := s.ListQuotes(ctx, models.QuoteFilter{CustomerID: customer.ID})
	require.NoError(t, err)
	require.Len(t, got, len(quotes))
	for i := range got {
		assert.Equal(t, quotes[len(quotes)-1-i].ProjectName, got[i].ProjectName)
	}
	assert.True(t, got[0].CreatedAt.After(got[len(got)-1].CreatedAt))
}
