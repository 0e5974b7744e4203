package store

import (
	"context"
	"database/sql"
	"strconv"

	"heladeria-backend/internal/apperrors"
	"heladeria-backend/internal/models"
)

// GetCommissionByID retrieves a commission by ID
func (s *Store) GetCommissionByID(ctx context.Context, id int64) (*models.Commission, error) {
	var c models.Commission
	err := s.db.GetContext(ctx, &c, "SELECT * FROM commissions WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("commission", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCommissionsBySeller retrieves commissions for a seller, optionally
// limited to unpaid ones
func (s *Store) GetCommissionsBySeller(ctx context.Context, sellerID int64, unpaidOnly bool) ([]models.Commission, error) {
	var commissions []models.Commission
	if unpaidOnly {
		err := s.db.SelectContext(ctx, &commissions,
			"SELECT * FROM commissions WHERE seller_id = $1 AND is_paid = false ORDER BY created_at", sellerID)
		return commissions, err
	}
	err := s.db.SelectContext(ctx, &commissions,
		"SELECT * FROM commissions WHERE seller_id = $1 ORDER BY created_at DESC", sellerID)
	return commissions, err
}

// MarkCommissionPaid flips is_paid and stamps the paid timestamp. Re-invoking
// on an already-paid commission is harmless.
func (s *Store) MarkCommissionPaid(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE commissions SET is_paid = true, paid_at = COALESCE(paid_at, NOW()) WHERE id = $1", id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.NewNotFoundError("commission", strconv.FormatInt(id, 10))
	}
	return nil
}
