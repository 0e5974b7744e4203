package store

import (
	"context"
	"database/sql"
	"strconv"

	"heladeria-backend/internal/apperrors"
	"heladeria-backend/internal/models"
)

// CreateClient creates a new client record
func (s *Store) CreateClient(ctx context.Context, client *models.Client) error {
	query := `
		INSERT INTO clients (name, tax_id, fiscal_category, phone, address, credit_limit, current_balance)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, client, query,
		client.Name, client.TaxID, client.FiscalCategory, client.Phone,
		client.Address, client.CreditLimit, client.CurrentBalance)
}

// GetClientByID retrieves a client by ID
func (s *Store) GetClientByID(ctx context.Context, id int64) (*models.Client, error) {
	var client models.Client
	err := s.db.GetContext(ctx, &client, "SELECT * FROM clients WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("client", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// GetClientByTaxID retrieves a client by tax id. Returns nil without error
// when no client matches, so callers can expose a found flag.
func (s *Store) GetClientByTaxID(ctx context.Context, taxID string) (*models.Client, error) {
	var client models.Client
	err := s.db.GetContext(ctx, &client, "SELECT * FROM clients WHERE tax_id = $1", taxID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// GetClients retrieves all clients
func (s *Store) GetClients(ctx context.Context) ([]models.Client, error) {
	var clients []models.Client
	err := s.db.SelectContext(ctx, &clients, "SELECT * FROM clients ORDER BY name")
	return clients, err
}

// UpdateClient updates client master data
func (s *Store) UpdateClient(ctx context.Context, client *models.Client) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE clients SET name = $1, fiscal_category = $2, phone = $3, address = $4, credit_limit = $5, updated_at = NOW()
		 WHERE id = $6`,
		client.Name, client.FiscalCategory, client.Phone, client.Address, client.CreditLimit, client.ID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.NewNotFoundError("client", strconv.FormatInt(client.ID, 10))
	}
	return nil
}

// RegisterPayment decreases the client balance and appends a payment ledger
// entry, both inside one transaction.
func (s *Store) RegisterPayment(ctx context.Context, clientID int64, amount float64) (*models.LedgerEntry, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE clients SET current_balance = current_balance - $1, updated_at = NOW() WHERE id = $2",
		amount, clientID)
	if err != nil {
		return nil, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, apperrors.NewNotFoundError("client", strconv.FormatInt(clientID, 10))
	}

	entry := &models.LedgerEntry{ClientID: clientID, Type: models.LedgerTypePayment, Amount: amount}
	err = tx.GetContext(ctx, entry,
		"INSERT INTO transactions (client_id, type, amount) VALUES ($1, $2, $3) RETURNING id, created_at",
		entry.ClientID, entry.Type, entry.Amount)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return entry, nil
}

// GetLedgerEntries retrieves the balance audit trail for a client
func (s *Store) GetLedgerEntries(ctx context.Context, clientID int64) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := s.db.SelectContext(ctx, &entries,
		"SELECT * FROM transactions WHERE client_id = $1 ORDER BY created_at DESC", clientID)
	return entries, err
}
