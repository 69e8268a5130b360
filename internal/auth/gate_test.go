package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/safar/go-b2b-store/internal/apperr"
	"github.com/safar/go-b2b-store/internal/memstore"
	"github.com/safar/go-b2b-store/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestGate(t *testing.T) (*Gate, *memstore.Store, *JWTManager) {
	t.Helper()
	store := memstore.New()
	tokens := NewJWTManager("test-secret-key", time.Hour)
	return NewGate(store, tokens, bcrypt.MinCost), store, tokens
}

func TestRegisterAndAuthenticate(t *testing.T) {
	gate, _, _ := newTestGate(t)
	ctx := context.Background()

	p, err := gate.Register(ctx, models.KindCustomer, models.Principal{Email: "john@example.com", FirstName: "John", LastName: "Doe"}, "password123")
	require.NoError(t, err)
	assert.True(t, p.Approved)
	assert.True(t, p.Active)
	assert.Equal(t, "United States", p.Country)
	assert.NotEqual(t, "password123", p.PasswordHash)

	_, err = gate.Register(ctx, models.KindCustomer, models.Principal{Email: "john@example.com"}, "other")
	assert.ErrorIs(t, err, apperr.ErrDuplicateIdentity)

	token, got, err := gate.Authenticate(ctx, models.KindCustomer, "john@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, p.ID, got.ID)

	_, _, err = gate.Authenticate(ctx, models.KindCustomer, "john@example.com", "wrong")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	_, _, err = gate.Authenticate(ctx, models.KindCustomer, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	// The same email is unknown to the dealer namespace.
	_, _, err = gate.Authenticate(ctx, models.KindDealer, "john@example.com", "password123")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}

func TestRegisterRejectsOverlongPassword(t *testing.T) {
	gate, store, _ := newTestGate(t)
	ctx := context.Background()

	_, err := gate.Register(ctx, models.KindCustomer, models.Principal{Email: "long@example.com"}, strings.Repeat("p", 80))
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = store.GetPrincipalByLogin(ctx, models.KindCustomer, "long@example.com")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = gate.Register(ctx, models.KindCustomer, models.Principal{Email: "exact@example.com"}, strings.Repeat("p", 72))
	assert.NoError(t, err)
}

func TestDealerLoginStates(t *testing.T) {
	gate, store, _ := newTestGate(t)
	ctx := context.Background()

	dealer, err := gate.Register(ctx, models.KindDealer, models.Principal{Email: "dealer@example.com", ContactName: "Jane"}, "dealer123")
	require.NoError(t, err)
	assert.False(t, dealer.Approved)

	_, _, err = gate.Authenticate(ctx, models.KindDealer, "dealer@example.com", "dealer123")
	assert.ErrorIs(t, err, apperr.ErrPendingApproval)

	// Rejected before approval still reports pending.
	require.NoError(t, store.SetPrincipalActive(ctx, models.KindDealer, dealer.ID, false))
	_, _, err = gate.Authenticate(ctx, models.KindDealer, "dealer@example.com", "dealer123")
	assert.ErrorIs(t, err, apperr.ErrPendingApproval)

	require.NoError(t, store.SetPrincipalApproved(ctx, models.KindDealer, dealer.ID, true))
	_, _, err = gate.Authenticate(ctx, models.KindDealer, "dealer@example.com", "dealer123")
	assert.ErrorIs(t, err, apperr.ErrAccountInactive)

	require.NoError(t, store.SetPrincipalActive(ctx, models.KindDealer, dealer.ID, true))
	_, got, err := gate.Authenticate(ctx, models.KindDealer, "dealer@example.com", "dealer123")
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.DisplayName())
}

func TestAuthorize(t *testing.T) {
	gate, store, tokens := newTestGate(t)
	ctx := context.Background()

	customer, err := gate.Register(ctx, models.KindCustomer, models.Principal{Email: "c@example.com"}, "pw")
	require.NoError(t, err)
	token, _, err := gate.Authenticate(ctx, models.KindCustomer, "c@example.com", "pw")
	require.NoError(t, err)

	got, err := gate.Authorize(ctx, token, models.KindCustomer)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, got.ID)

	_, err = gate.Authorize(ctx, token, models.KindAdmin)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = gate.Authorize(ctx, "not-a-token", models.KindCustomer)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	other := NewJWTManager("another-secret", time.Hour)
	forged, err := other.GenerateToken(customer)
	require.NoError(t, err)
	_, err = gate.Authorize(ctx, forged, models.KindCustomer)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	tokens.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = gate.Authorize(ctx, token, models.KindCustomer)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	tokens.now = time.Now

	// A live token stops working once the account is deactivated.
	require.NoError(t, store.SetPrincipalActive(ctx, models.KindCustomer, customer.ID, false))
	_, err = gate.Authorize(ctx, token, models.KindCustomer)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestAdminLogsInByUsername(t *testing.T) {
	gate, _, _ := newTestGate(t)
	ctx := context.Background()

	_, err := gate.Register(ctx, models.KindAdmin, models.Principal{Username: "admin", Email: "admin@example.com"}, "admin123")
	require.NoError(t, err)

	_, p, err := gate.Authenticate(ctx, models.KindAdmin, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "Admin (admin)", p.DisplayName())

	_, _, err = gate.Authenticate(ctx, models.KindAdmin, "admin@example.com", "admin123")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}

func TestValidateTokenClaims(t *testing.T) {
	tokens := NewJWTManager("secret", 24*time.Hour)
	token, err := tokens.GenerateToken(&models.Principal{ID: "p1", Kind: models.KindDealer})
	require.NoError(t, err)

	claims, err := tokens.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "p1", claims.PrincipalID)
	assert.Equal(t, models.KindDealer, claims.Kind)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt, time.Minute)

	_, err = NewJWTManager("", time.Hour).GenerateToken(&models.Principal{ID: "p1", Kind: models.KindDealer})
	assert.Error(t, err)
}
