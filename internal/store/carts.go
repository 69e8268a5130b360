package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/safar/go-b2b-store/internal/models"
)

func (s *Store) GetCart(ctx context.Context, customerID string) (*models.Cart, error) {
	cart := &models.Cart{CustomerID: customerID}
	var items []byte

	err := s.db.QueryRowContext(ctx,
		`SELECT id, items, total, created_at, updated_at FROM carts WHERE customer_id = $1`,
		customerID).Scan(&cart.ID, &items, &cart.Total, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "cart", customerID)
	}

	if err := json.Unmarshal(items, &cart.Items); err != nil {
		return nil, fmt.Errorf("decode cart items: %w", err)
	}

	return cart, nil
}

// SaveCart replaces the customer's whole cart document. Concurrent saves are
// last-writer-wins.
func (s *Store) SaveCart(ctx context.Context, cart *models.Cart) error {
	items := cart.Items
	if items == nil {
		items = []models.CartItem{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart items: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`INSERT INTO carts (customer_id, id, items, total, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, NOW(), NOW())
		 ON CONFLICT (customer_id) DO UPDATE
		 SET items = EXCLUDED.items, total = EXCLUDED.total, updated_at = NOW()
		 RETURNING id, created_at, updated_at`,
		cart.CustomerID, cart.ID, itemsJSON, cart.Total).Scan(&cart.ID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}

	return nil
}

func (s *Store) DeleteCart(ctx context.Context, customerID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM carts WHERE customer_id = $1`, customerID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}
