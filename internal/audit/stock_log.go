package audit

import (
	"context"

	"heladeria-backend/internal/models"
)

// StockLog is the injected audit collaborator for stock movements. Sale-driven
// movements are written by the sale transaction itself; this interface covers
// manual adjustments and queries.
type StockLog interface {
	Record(ctx context.Context, movement *models.StockMovement) error
	Query(ctx context.Context, productID int64) ([]models.StockMovement, error)
}

type movementStore interface {
	RecordStockMovement(ctx context.Context, m *models.StockMovement) error
	GetStockMovements(ctx context.Context, productID int64) ([]models.StockMovement, error)
}

type stockLog struct {
	store movementStore
}

// NewStockLog creates a database-backed stock audit log
func NewStockLog(store movementStore) StockLog {
	return &stockLog{store: store}
}

func (l *stockLog) Record(ctx context.Context, movement *models.StockMovement) error {
	return l.store.RecordStockMovement(ctx, movement)
}

func (l *stockLog) Query(ctx context.Context, productID int64) ([]models.StockMovement, error) {
	return l.store.GetStockMovements(ctx, productID)
}
