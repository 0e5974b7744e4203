package store

import (
	"context"
	"database/sql"
	"strconv"

	"heladeria-backend/internal/apperrors"
	"heladeria-backend/internal/models"
)

// CreateOrder creates a new fulfillment order
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (sale_id, client_id, client_name, address, status, items)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, order, query,
		order.SaleID, order.ClientID, order.ClientName, order.Address, order.Status, order.Items)
}

// GetOrderByID retrieves a fulfillment order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("order", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrders retrieves fulfillment orders, optionally filtered by status
func (s *Store) GetOrders(ctx context.Context, status string) ([]models.Order, error) {
	var orders []models.Order
	if status == "" {
		err := s.db.SelectContext(ctx, &orders, "SELECT * FROM orders ORDER BY created_at DESC")
		return orders, err
	}
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE status = $1 ORDER BY created_at DESC", status)
	return orders, err
}

// UpdateOrderStatus updates the fulfillment status
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, status string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		status, orderID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.NewNotFoundError("order", strconv.FormatInt(orderID, 10))
	}
	return nil
}

// LinkOrderToSale associates a storefront order with a processed sale
func (s *Store) LinkOrderToSale(ctx context.Context, orderID, saleID int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET sale_id = $1, updated_at = NOW() WHERE id = $2",
		saleID, orderID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.NewNotFoundError("order", strconv.FormatInt(orderID, 10))
	}
	return nil
}
