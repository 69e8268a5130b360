// Package auth registers principals, checks their credentials and issues and
// verifies the bearer tokens that carry their identity between requests.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/safar/go-b2b-store/internal/apperr"
	"github.com/safar/go-b2b-store/internal/metrics"
	"github.com/safar/go-b2b-store/internal/models"
)

type PrincipalStore interface {
	CreatePrincipal(ctx context.Context, p *models.Principal) error
	GetPrincipal(ctx context.Context, kind models.Kind, id string) (*models.Principal, error)
	GetPrincipalByLogin(ctx context.Context, kind models.Kind, login string) (*models.Principal, error)
}

type Gate struct {
	store      PrincipalStore
	tokens     *JWTManager
	bcryptCost int
}

func NewGate(store PrincipalStore, tokens *JWTManager, bcryptCost int) *Gate {
	return &Gate{store: store, tokens: tokens, bcryptCost: bcryptCost}
}

// Register stores a new principal of the given kind. Dealers start unapproved.
func (g *Gate) Register(ctx context.Context, kind models.Kind, profile models.Principal, password string) (*models.Principal, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("kind %q: %w", kind, apperr.ErrInvalidInput)
	}

	p := profile
	p.Kind = kind
	p.Email = strings.TrimSpace(p.Email)
	p.Username = strings.TrimSpace(p.Username)
	if p.Login() == "" || password == "" {
		return nil, fmt.Errorf("login and password are required: %w", apperr.ErrInvalidInput)
	}

	hash, err := HashPassword(password, g.bcryptCost)
	if err != nil {
		return nil, err
	}

	p.ID = uuid.NewString()
	p.PasswordHash = hash
	p.Active = true
	p.Approved = kind != models.KindDealer
	if kind == models.KindCustomer && p.Country == "" {
		p.Country = "United States"
	}

	if err := g.store.CreatePrincipal(ctx, &p); err != nil {
		return nil, err
	}

	log.Info().Str("kind", string(kind)).Str("principal_id", p.ID).Msg("principal registered")
	return &p, nil
}

// Authenticate checks a login/password pair and issues a token for the principal.
func (g *Gate) Authenticate(ctx context.Context, kind models.Kind, login, password string) (string, *models.Principal, error) {
	p, err := g.authenticate(ctx, kind, login, password)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues(string(kind), outcome(err)).Inc()
		log.Warn().Str("kind", string(kind)).Str("outcome", outcome(err)).Msg("login rejected")
		return "", nil, err
	}

	token, err := g.tokens.GenerateToken(p)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}

	metrics.AuthAttemptsTotal.WithLabelValues(string(kind), "success").Inc()
	return token, p, nil
}

func (g *Gate) authenticate(ctx context.Context, kind models.Kind, login, password string) (*models.Principal, error) {
	p, err := g.store.GetPrincipalByLogin(ctx, kind, strings.TrimSpace(login))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !CheckPassword(p.PasswordHash, password) {
		return nil, apperr.ErrInvalidCredentials
	}

	// Approval is reported ahead of deactivation, so a rejected dealer who was
	// never approved still sees "pending approval".
	if kind == models.KindDealer && !p.Approved {
		return nil, apperr.ErrPendingApproval
	}
	if !p.Active {
		return nil, apperr.ErrAccountInactive
	}

	return p, nil
}

// Authorize verifies token and returns its principal, which must be of kind
// required and still active.
func (g *Gate) Authorize(ctx context.Context, token string, required models.Kind) (*models.Principal, error) {
	claims, err := g.tokens.ValidateToken(token)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues(string(required), "bad_token").Inc()
		return nil, fmt.Errorf("validate token: %v: %w", err, apperr.ErrUnauthorized)
	}

	if claims.Kind != required {
		metrics.AuthAttemptsTotal.WithLabelValues(string(required), "wrong_kind").Inc()
		return nil, fmt.Errorf("token kind %s: %w", claims.Kind, apperr.ErrUnauthorized)
	}

	p, err := g.store.GetPrincipal(ctx, claims.Kind, claims.PrincipalID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("principal %s: %w", claims.PrincipalID, apperr.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}

	if !p.Active {
		return nil, fmt.Errorf("principal %s inactive: %w", p.ID, apperr.ErrUnauthorized)
	}

	return p, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, apperr.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, apperr.ErrPendingApproval):
		return "pending_approval"
	case errors.Is(err, apperr.ErrAccountInactive):
		return "inactive"
	default:
		return "error"
	}
}
