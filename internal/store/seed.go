package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safar/go-b2b-store/internal/database"
	"github.com/safar/go-b2b-store/internal/models"
)

// ReplaceCatalog drops every category, brand and product and inserts the
// given set in a single transaction.
func (s *Store) ReplaceCatalog(ctx context.Context, categories []models.Category, brands []models.Brand, products []models.Product) error {
	return database.WithRetry(ctx, s.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		for _, table := range []string{"products", "brands", "categories"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}

		for _, c := range categories {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO categories (id, name, slug, description, image_url) VALUES ($1, $2, $3, $4, $5)`,
				c.ID, c.Name, c.Slug, c.Description, c.ImageURL)
			if err != nil {
				return fmt.Errorf("insert category %s: %w", c.Name, err)
			}
		}

		for _, b := range brands {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO brands (id, name, logo_url, description, website) VALUES ($1, $2, $3, $4, $5)`,
				b.ID, b.Name, b.LogoURL, b.Description, b.Website)
			if err != nil {
				return fmt.Errorf("insert brand %s: %w", b.Name, err)
			}
		}

		for i := range products {
			if err := insertProduct(ctx, tx, &products[i]); err != nil {
				return err
			}
		}

		return nil
	})
}

// ReplaceAccounts drops every principal along with their carts, quotes and
// chat history, then inserts the given set in a single transaction.
func (s *Store) ReplaceAccounts(ctx context.Context, principals []models.Principal, quotes []models.Quote, messages []models.ChatMessage) error {
	return database.WithRetry(ctx, s.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		for _, table := range []string{"chat_messages", "quotes", "carts", "principals"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}

		for i := range principals {
			if err := insertPrincipal(ctx, tx, &principals[i]); err != nil {
				return err
			}
		}
		for i := range quotes {
			if err := insertQuote(ctx, tx, &quotes[i]); err != nil {
				return err
			}
		}
		for i := range messages {
			if err := insertMessage(ctx, tx, &messages[i]); err != nil {
				return err
			}
		}

		return nil
	})
}
