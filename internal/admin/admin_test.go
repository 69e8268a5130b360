package admin

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

func TestDealerApprovalFlow(t *testing.T) {
	store := memstore.New()
	svc := NewService(store)
	ctx := context.Background()

	for _, p := range []*models.Principal{
		{ID: "d1", Kind: models.KindDealer, Email: "d1@example.com", Active: true},
		{ID: "d2", Kind: models.KindDealer, Email: "d2@example.com", Active: true},
		{ID: "c1", Kind: models.KindCustomer, Email: "c1@example.com", Active: true, Approved: true},
	} {
		require.NoError(t, store.CreatePrincipal(ctx, p))
	}

	pending, err := svc.PendingDealers(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	require.NoError(t, svc.ApproveDealer(ctx, "d1"))
	require.NoError(t, svc.RejectDealer(ctx, "d2"))

	pending, err = svc.PendingDealers(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	dealers, err := svc.Dealers(ctx)
	require.NoError(t, err)
	assert.Len(t, dealers, 2)

	users, err := svc.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "c1", users[0].ID)

	assert.ErrorIs(t, svc.ApproveDealer(ctx, "c1"), apperr.ErrNotFound)
	assert.ErrorIs(t, svc.RejectDealer(ctx, "missing"), apperr.ErrNotFound)
}

func TestStats(t *testing.T) {
	store := memstore.New()
	svc := NewService(store)
	ctx := context.Background()

	require.NoError(t, store.CreatePrincipal(ctx, &models.Principal{ID: "c1", Kind: models.KindCustomer, Email: "c1@example.com", Active: true}))
	require.NoError(t, store.CreatePrincipal(ctx, &models.Principal{ID: "d1", Kind: models.KindDealer, Email: "d1@example.com", Active: true}))
	require.NoError(t, store.CreatePrincipal(ctx, &models.Principal{ID: "d2", Kind: models.KindDealer, Email: "d2@example.com", Active: true, Approved: true}))
	require.NoError(t, store.CreateProduct(ctx, &models.Product{ID: "p1", Name: "x", Price: decimal.NewFromInt(1)}))
	require.NoError(t, store.CreateQuote(ctx, &models.Quote{ID: "q1", CustomerID: "c1", Status: models.QuoteStatusPending}))
	require.NoError(t, store.CreateQuote(ctx, &models.Quote{ID: "q2", CustomerID: "c1", Status: models.QuoteStatusApproved}))
	require.NoError(t, store.CreateMessage(ctx, &models.ChatMessage{ID: "m1", CustomerID: "c1", Message: "hi"}))

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{
		TotalUsers:      1,
		TotalDealers:    2,
		PendingDealers:  1,
		ApprovedDealers: 1,
		TotalQuotes:     2,
		PendingQuotes:   1,
		ApprovedQuotes:  1,
		TotalProducts:   1,
		ChatMessages:    1,
	}, *stats)
}
