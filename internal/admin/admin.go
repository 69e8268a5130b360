package admin

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/safar/go-b2b-store/internal/models"
)

type Store interface {
	Stats(ctx context.Context) (*models.Stats, error)
	ListPrincipals(ctx context.Context, filter models.PrincipalFilter) ([]models.Principal, error)
	SetPrincipalApproved(ctx context.Context, kind models.Kind, id string, approved bool) error
	SetPrincipalActive(ctx context.Context, kind models.Kind, id string, active bool) error
}

// Service backs the admin dashboard: counts, dealer approval and account listings.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Stats(ctx context.Context) (*models.Stats, error) {
	return s.store.Stats(ctx)
}

func (s *Service) Dealers(ctx context.Context) ([]models.Principal, error) {
	return s.store.ListPrincipals(ctx, models.PrincipalFilter{Kind: models.KindDealer})
}

// PendingDealers lists dealers that are neither approved nor rejected.
func (s *Service) PendingDealers(ctx context.Context) ([]models.Principal, error) {
	return s.store.ListPrincipals(ctx, models.PrincipalFilter{Kind: models.KindDealer, PendingOnly: true})
}

func (s *Service) Users(ctx context.Context) ([]models.Principal, error) {
	return s.store.ListPrincipals(ctx, models.PrincipalFilter{Kind: models.KindCustomer})
}

func (s *Service) ApproveDealer(ctx context.Context, id string) error {
	if err := s.store.SetPrincipalApproved(ctx, models.KindDealer, id, true); err != nil {
		return err
	}
	log.Info().Str("dealer_id", id).Msg("dealer approved")
	return nil
}

// RejectDealer deactivates the dealer account; the approval flag is left as is.
func (s *Service) RejectDealer(ctx context.Context, id string) error {
	if err := s.store.SetPrincipalActive(ctx, models.KindDealer, id, false); err != nil {
		return err
	}
	log.Info().Str("dealer_id", id).Msg("dealer rejected")
	return nil
}
