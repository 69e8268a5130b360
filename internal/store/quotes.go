package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/safar/go-b2b-store/internal/models"
)

const quoteColumns = `id, customer_id, items, total_amount, project_name, intended_use, delivery_date,
	delivery_address, billing_address, company_size, budget_range, additional_requirements,
	status, admin_notes, email_sent_at, created_at, updated_at`

func scanQuote(row scanner) (*models.Quote, error) {
	quote := &models.Quote{}
	var items []byte

	err := row.Scan(
		&quote.ID,
		&quote.CustomerID,
		&items,
		&quote.TotalAmount,
		&quote.ProjectName,
		&quote.IntendedUse,
		&quote.DeliveryDate,
		&quote.DeliveryAddress,
		&quote.BillingAddress,
		&quote.CompanySize,
		&quote.BudgetRange,
		&quote.AdditionalRequirements,
		&quote.Status,
		&quote.AdminNotes,
		&quote.EmailSentAt,
		&quote.CreatedAt,
		&quote.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &quote.Items); err != nil {
		return nil, fmt.Errorf("decode quote items: %w", err)
	}

	return quote, nil
}

func encodeQuoteItems(items []models.QuoteItem) ([]byte, error) {
	if items == nil {
		items = []models.QuoteItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode quote items: %w", err)
	}
	return data, nil
}

func (s *Store) CreateQuote(ctx context.Context, q *models.Quote) error {
	return insertQuote(ctx, s.db, q)
}

func insertQuote(ctx context.Context, db rowQuerier, q *models.Quote) error {
	items, err := encodeQuoteItems(q.Items)
	if err != nil {
		return err
	}

	err = db.QueryRowContext(ctx,
		`INSERT INTO quotes (id, customer_id, items, total_amount, project_name, intended_use,
			delivery_date, delivery_address, billing_address, company_size, budget_range,
			additional_requirements, status, admin_notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, clock_timestamp(), clock_timestamp())
		 RETURNING created_at, updated_at`,
		q.ID, q.CustomerID, items, q.TotalAmount, q.ProjectName, q.IntendedUse,
		q.DeliveryDate, q.DeliveryAddress, q.BillingAddress, q.CompanySize, q.BudgetRange,
		q.AdditionalRequirements, q.Status, q.AdminNotes,
	).Scan(&q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create quote: %w", err)
	}

	return nil
}

func (s *Store) GetQuote(ctx context.Context, id string) (*models.Quote, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = $1`, id)
	quote, err := scanQuote(row)
	if err != nil {
		return nil, notFound(err, "quote", id)
	}
	return quote, nil
}

// ListQuotes returns quotes newest first.
func (s *Store) ListQuotes(ctx context.Context, filter models.QuoteFilter) ([]models.Quote, error) {
	var args []interface{}
	query := `SELECT ` + quoteColumns + ` FROM quotes`
	if filter.CustomerID != "" {
		args = append(args, filter.CustomerID)
		query += ` WHERE customer_id = $1`
	}
	query += ` ORDER BY created_at DESC, id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()

	quotes := []models.Quote{}
	for rows.Next() {
		quote, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		quotes = append(quotes, *quote)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return quotes, nil
}

// UpdateQuote overwrites the admin-mutable fields of a stored quote.
func (s *Store) UpdateQuote(ctx context.Context, q *models.Quote) error {
	items, err := encodeQuoteItems(q.Items)
	if err != nil {
		return err
	}

	err = s.db.QueryRowContext(ctx,
		`UPDATE quotes
		 SET items = $2, total_amount = $3, status = $4, admin_notes = $5, email_sent_at = $6,
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING updated_at`,
		q.ID, items, q.TotalAmount, q.Status, q.AdminNotes, q.EmailSentAt,
	).Scan(&q.UpdatedAt)
	if err != nil {
		return notFound(err, "quote", q.ID)
	}

	return nil
}
