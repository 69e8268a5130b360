package seed

import (
	"context"
	"testing"

	"github.com/safar/go-b2b-store/internal/auth"
	"github.com/safar/go-b2b-store/internal/memstore"
	"github.com/safar/go-b2b-store/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLoadEmbeddedDataset(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()

	ds, err := Parse(nil)
	require.NoError(t, err)

	summary, err := NewLoader(store, bcrypt.MinCost).Load(ctx, ds)
	require.NoError(t, err)
	assert.Equal(t, 6, summary.Categories)
	assert.Equal(t, 8, summary.Brands)
	assert.Equal(t, 10, summary.Products)
	assert.Equal(t, 3, summary.Customers)
	assert.Equal(t, 2, summary.Dealers)
	assert.Equal(t, 2, summary.Admins)
	assert.Equal(t, 2, summary.Quotes)
	assert.Equal(t, 4, summary.Messages)

	admin, err := store.GetPrincipalByLogin(ctx, models.KindAdmin, "admin")
	require.NoError(t, err)
	assert.True(t, admin.IsSuperAdmin)
	assert.True(t, auth.CheckPassword(admin.PasswordHash, "admin123"))

	dealer, err := store.GetPrincipalByLogin(ctx, models.KindDealer, "dealer@tactical-wholesale.com")
	require.NoError(t, err)
	assert.True(t, dealer.Approved)

	john, err := store.GetPrincipalByLogin(ctx, models.KindCustomer, "john.doe@company.com")
	require.NoError(t, err)
	assert.Equal(t, "United States", john.Country)

	quotes, err := store.ListQuotes(ctx, models.QuoteFilter{CustomerID: john.ID})
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.True(t, quotes[0].TotalAmount.Equal(decimal.RequireFromString("789.97")))
	assert.NotNil(t, quotes[0].DeliveryDate)

	messages, err := store.ListMessages(ctx, john.ID)
	require.NoError(t, err)
	require.Len(t, messages, 4)
	assert.Equal(t, "John Doe", messages[0].SenderName)
	assert.Equal(t, models.SenderAdmin, messages[1].SenderType)

	helmet, err := store.ListProducts(ctx, models.ProductFilter{Search: "helmet"})
	require.NoError(t, err)
	require.Len(t, helmet, 1)
	assert.False(t, helmet[0].InStock)
	assert.Equal(t, "Carbon Fiber", helmet[0].Specifications["Shell"])
}

func TestParseRejectsBadReferences(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "unknown customer", data: "quotes:\n  - customer: ghost@example.com\n"},
		{name: "unknown product", data: "customers:\n  - {email: a@example.com, password: x}\nquotes:\n  - customer: a@example.com\n    items: [{product: nope, quantity: 1}]\n"},
		{name: "bad price", data: "products:\n  - {key: p, name: P, price: cheap}\n"},
		{name: "bad sender", data: "customers:\n  - {email: a@example.com, password: x}\nmessages:\n  - {customer: a@example.com, sender: bot, message: hi}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Parse([]byte(tt.data))
			require.NoError(t, err)
			_, err = NewLoader(memstore.New(), bcrypt.MinCost).Load(context.Background(), ds)
			assert.Error(t, err)
		})
	}
}
