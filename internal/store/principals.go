package store

import (
	"context"
	"fmt"

	"github.com/safar/go-b2b-store/internal/models"
)

const principalColumns = `id, kind, email, username, password_hash, first_name, last_name,
	company_name, contact_name, phone, address, city, state, zip_code, country,
	license_number, is_super_admin, approved, active, created_at`

func scanPrincipal(row scanner) (*models.Principal, error) {
	p := &models.Principal{}
	err := row.Scan(
		&p.ID,
		&p.Kind,
		&p.Email,
		&p.Username,
		&p.PasswordHash,
		&p.FirstName,
		&p.LastName,
		&p.CompanyName,
		&p.ContactName,
		&p.Phone,
		&p.Address,
		&p.City,
		&p.State,
		&p.ZipCode,
		&p.Country,
		&p.LicenseNumber,
		&p.IsSuperAdmin,
		&p.Approved,
		&p.Active,
		&p.CreatedAt,
	)
	return p, err
}

func (s *Store) CreatePrincipal(ctx context.Context, p *models.Principal) error {
	return insertPrincipal(ctx, s.db, p)
}

func insertPrincipal(ctx context.Context, db rowQuerier, p *models.Principal) error {
	err := db.QueryRowContext(ctx,
		`INSERT INTO principals (id, kind, email, username, password_hash, first_name, last_name,
			company_name, contact_name, phone, address, city, state, zip_code, country,
			license_number, is_super_admin, approved, active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, NOW())
		 RETURNING created_at`,
		p.ID, p.Kind, p.Email, p.Username, p.PasswordHash, p.FirstName, p.LastName,
		p.CompanyName, p.ContactName, p.Phone, p.Address, p.City, p.State, p.ZipCode, p.Country,
		p.LicenseNumber, p.IsSuperAdmin, p.Approved, p.Active,
	).Scan(&p.CreatedAt)
	if err != nil {
		return duplicate(err, string(p.Kind)+" "+p.Login())
	}
	return nil
}

func (s *Store) GetPrincipal(ctx context.Context, kind models.Kind, id string) (*models.Principal, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE kind = $1 AND id = $2`,
		kind, id)
	p, err := scanPrincipal(row)
	if err != nil {
		return nil, notFound(err, string(kind), id)
	}
	return p, nil
}

// GetPrincipalByLogin looks a principal up by email, or by username for admins.
func (s *Store) GetPrincipalByLogin(ctx context.Context, kind models.Kind, login string) (*models.Principal, error) {
	column := "email"
	if kind == models.KindAdmin {
		column = "username"
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE kind = $1 AND `+column+` = $2`,
		kind, login)
	p, err := scanPrincipal(row)
	if err != nil {
		return nil, notFound(err, string(kind), login)
	}
	return p, nil
}

func (s *Store) ListPrincipals(ctx context.Context, filter models.PrincipalFilter) ([]models.Principal, error) {
	query := `SELECT ` + principalColumns + ` FROM principals WHERE kind = $1`
	if filter.PendingOnly {
		query += ` AND approved = FALSE AND active = TRUE`
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, filter.Kind)
	if err != nil {
		return nil, fmt.Errorf("list principals: %w", err)
	}
	defer rows.Close()

	principals := []models.Principal{}
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan principal: %w", err)
		}
		principals = append(principals, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return principals, nil
}

func (s *Store) SetPrincipalApproved(ctx context.Context, kind models.Kind, id string, approved bool) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE principals SET approved = $1 WHERE kind = $2 AND id = $3`,
		approved, kind, id)
	if err != nil {
		return fmt.Errorf("update approval: %w", err)
	}
	return expectOneRow(result, string(kind), id)
}

func (s *Store) SetPrincipalActive(ctx context.Context, kind models.Kind, id string, active bool) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE principals SET active = $1 WHERE kind = $2 AND id = $3`,
		active, kind, id)
	if err != nil {
		return fmt.Errorf("update active flag: %w", err)
	}
	return expectOneRow(result, string(kind), id)
}
