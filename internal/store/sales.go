package store

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"heladeria-backend/internal/apperrors"
	"heladeria-backend/internal/models"
)

// CreateSaleTx persists a full sale write-set atomically: the sale and its
// items, the linked fulfillment order, the per-item stock decrements with
// their audit movements, the optional client debt accrual and the optional
// seller commission. Either every write lands or none do.
//
// The stock decrement is a blind relative update with no floor check; selling
// more than the recorded stock drives it negative (see DESIGN.md).
func (s *Store) CreateSaleTx(ctx context.Context, batch *models.SaleBatch) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	sale := batch.Sale
	err = tx.GetContext(ctx, sale, `
		INSERT INTO sales (client_id, seller_id, client_name, address, total, payment_type, status, invoice_emitted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		sale.ClientID, sale.SellerID, sale.ClientName, sale.Address,
		sale.Total, sale.PaymentType, sale.Status, sale.InvoiceEmitted)
	if err != nil {
		return err
	}

	for i := range sale.Items {
		item := &sale.Items[i]
		item.SaleID = sale.ID
		err = tx.GetContext(ctx, &item.ID, `
			INSERT INTO sale_items (sale_id, product_id, name, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			item.SaleID, item.ProductID, item.Name, item.Quantity, item.UnitPrice)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2",
			item.Quantity, item.ProductID)
		if err != nil {
			return err
		}
	}

	if batch.Order != nil {
		order := batch.Order
		order.SaleID = &sale.ID
		err = tx.GetContext(ctx, order, `
			INSERT INTO orders (sale_id, client_id, client_name, address, status, items)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at, updated_at`,
			order.SaleID, order.ClientID, order.ClientName, order.Address, order.Status, order.Items)
		if err != nil {
			return err
		}
	}

	for i := range batch.Movements {
		m := &batch.Movements[i]
		m.SaleID = &sale.ID
		_, err = tx.ExecContext(ctx,
			"INSERT INTO stock_movements (product_id, sale_id, quantity, reason) VALUES ($1, $2, $3, $4)",
			m.ProductID, m.SaleID, m.Quantity, m.Reason)
		if err != nil {
			return err
		}
	}

	if batch.DebtEntry != nil {
		entry := batch.DebtEntry
		_, err = tx.ExecContext(ctx,
			"UPDATE clients SET current_balance = current_balance + $1, updated_at = NOW() WHERE id = $2",
			entry.Amount, entry.ClientID)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO transactions (client_id, type, amount) VALUES ($1, $2, $3)",
			entry.ClientID, entry.Type, entry.Amount)
		if err != nil {
			return err
		}
	}

	if batch.Commission != nil {
		c := batch.Commission
		c.SaleID = sale.ID
		err = tx.GetContext(ctx, &c.ID, `
			INSERT INTO commissions (seller_id, sale_id, sale_total, commission_rate, commission_amount, is_paid)
			VALUES ($1, $2, $3, $4, $5, false)
			RETURNING id`,
			c.SellerID, c.SaleID, c.SaleTotal, c.CommissionRate, c.CommissionAmount)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE sellers SET total_sales = total_sales + $1, total_commission = total_commission + $2, updated_at = NOW()
			 WHERE id = $3`,
			c.SaleTotal, c.CommissionAmount, c.SellerID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetSaleByID retrieves a sale with its items
func (s *Store) GetSaleByID(ctx context.Context, id int64) (*models.Sale, error) {
	var sale models.Sale
	err := s.db.GetContext(ctx, &sale, "SELECT * FROM sales WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("sale", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, err
	}

	err = s.db.SelectContext(ctx, &sale.Items,
		"SELECT * FROM sale_items WHERE sale_id = $1 ORDER BY id", id)
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// GetSales retrieves sales, newest first
func (s *Store) GetSales(ctx context.Context) ([]models.Sale, error) {
	var sales []models.Sale
	err := s.db.SelectContext(ctx, &sales, "SELECT * FROM sales ORDER BY created_at DESC")
	return sales, err
}

// SetSaleInvoiceFields persists the fiscal response onto the sale record and
// marks it as invoiced.
func (s *Store) SetSaleInvoiceFields(ctx context.Context, saleID int64, invoiceNumber, cae string, caeExpiry time.Time, pointOfSale int, voucherNumber int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sales
		SET invoice_emitted = true, invoice_number = $1, cae = $2, cae_expiry = $3,
		    point_of_sale = $4, voucher_number = $5, updated_at = NOW()
		WHERE id = $6`,
		invoiceNumber, cae, caeExpiry, pointOfSale, voucherNumber, saleID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.NewNotFoundError("sale", strconv.FormatInt(saleID, 10))
	}
	return nil
}

// SetSaleRemitoNumber stamps a remito number onto the sale record
func (s *Store) SetSaleRemitoNumber(ctx context.Context, saleID int64, remitoNumber string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE sales SET remito_number = $1, updated_at = NOW() WHERE id = $2",
		remitoNumber, saleID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.NewNotFoundError("sale", strconv.FormatInt(saleID, 10))
	}
	return nil
}

// SetSalePDF stores the base64 document content on the sale record
func (s *Store) SetSalePDF(ctx context.Context, saleID int64, content string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE sales SET invoice_pdf = $1, updated_at = NOW() WHERE id = $2",
		content, saleID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.NewNotFoundError("sale", strconv.FormatInt(saleID, 10))
	}
	return nil
}

// NextVoucherNumber returns the next sequential voucher number for a point of
// sale, counting persisted invoices.
func (s *Store) NextVoucherNumber(ctx context.Context, pointOfSale int) (int64, error) {
	var last sql.NullInt64
	err := s.db.GetContext(ctx, &last,
		"SELECT MAX(voucher_number) FROM sales WHERE point_of_sale = $1", pointOfSale)
	if err != nil {
		return 0, err
	}
	return last.Int64 + 1, nil
}

// NextRemitoNumber returns the next sequential remito number
func (s *Store) NextRemitoNumber(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM sales WHERE remito_number IS NOT NULL")
	if err != nil {
		return 0, err
	}
	return count + 1, nil
}
