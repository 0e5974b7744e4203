package store

import (
	"context"
	"database/sql"
	"strconv"

	"heladeria-backend/internal/apperrors"
	"heladeria-backend/internal/models"
)

// CreateSeller creates a new seller record
func (s *Store) CreateSeller(ctx context.Context, seller *models.Seller) error {
	query := `
		INSERT INTO sellers (name, email, commission_rate)
		VALUES ($1, $2, $3)
		RETURNING id, total_sales, total_commission, created_at, updated_at`

	return s.db.GetContext(ctx, seller, query,
		seller.Name, seller.Email, seller.CommissionRate)
}

// GetSellerByID retrieves a seller by ID
func (s *Store) GetSellerByID(ctx context.Context, id int64) (*models.Seller, error) {
	var seller models.Seller
	err := s.db.GetContext(ctx, &seller, "SELECT * FROM sellers WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("seller", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, err
	}
	return &seller, nil
}

// GetSellerByEmail retrieves a seller by email. Returns nil without error when
// no seller matches.
func (s *Store) GetSellerByEmail(ctx context.Context, email string) (*models.Seller, error) {
	var seller models.Seller
	err := s.db.GetContext(ctx, &seller, "SELECT * FROM sellers WHERE email = $1", email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &seller, nil
}

// GetSellers retrieves all sellers
func (s *Store) GetSellers(ctx context.Context) ([]models.Seller, error) {
	var sellers []models.Seller
	err := s.db.SelectContext(ctx, &sellers, "SELECT * FROM sellers ORDER BY name")
	return sellers, err
}

// UpdateSeller updates seller master data
func (s *Store) UpdateSeller(ctx context.Context, seller *models.Seller) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sellers SET name = $1, email = $2, commission_rate = $3, updated_at = NOW()
		 WHERE id = $4`,
		seller.Name, seller.Email, seller.CommissionRate, seller.ID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.NewNotFoundError("seller", strconv.FormatInt(seller.ID, 10))
	}
	return nil
}
