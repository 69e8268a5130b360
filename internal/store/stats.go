package store

import (
	"context"
	"fmt"

	"github.com/safar/go-b2b-store/internal/models"
)

func (s *Store) Stats(ctx context.Context) (*models.Stats, error) {
	stats := &models.Stats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM principals WHERE kind = 'customer'),
			(SELECT COUNT(*) FROM principals WHERE kind = 'dealer'),
			(SELECT COUNT(*) FROM principals WHERE kind = 'dealer' AND NOT approved AND active),
			(SELECT COUNT(*) FROM principals WHERE kind = 'dealer' AND approved),
			(SELECT COUNT(*) FROM quotes),
			(SELECT COUNT(*) FROM quotes WHERE status = 'pending'),
			(SELECT COUNT(*) FROM quotes WHERE status = 'approved'),
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM chat_messages)`,
	).Scan(
		&stats.TotalUsers,
		&stats.TotalDealers,
		&stats.PendingDealers,
		&stats.ApprovedDealers,
		&stats.TotalQuotes,
		&stats.PendingQuotes,
		&stats.ApprovedQuotes,
		&stats.TotalProducts,
		&stats.ChatMessages,
	)
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}

	return stats, nil
}
