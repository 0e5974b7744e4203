package worker

import (
	"context"

	"heladeria-backend/internal/broker"
	"heladeria-backend/internal/models"
	"heladeria-backend/internal/util"

	"go.uber.org/zap"
)

// StockCache is the cached catalog view the worker keeps in sync
type StockCache interface {
	AdjustCachedStock(ctx context.Context, productID int64, delta int) error
}

// CatalogWorker consumes sale events and applies their stock deltas to the
// cached catalog, so storefront reads see stock move without hitting the
// database.
type CatalogWorker struct {
	consumer *broker.Consumer
	cache    StockCache
	logger   *zap.Logger
}

// NewCatalogWorker creates a catalog sync worker
func NewCatalogWorker(consumer *broker.Consumer, cache StockCache) *CatalogWorker {
	return &CatalogWorker{
		consumer: consumer,
		cache:    cache,
		logger:   util.GetLogger(),
	}
}

// Start consumes sale events until the context is cancelled
func (w *CatalogWorker) Start(ctx context.Context) error {
	handler := broker.NewEventHandler()
	handler.OnSaleCompleted(w.handleSaleCompleted)

	w.logger.Info("Catalog worker started")
	return w.consumer.StartConsuming(ctx, handler.HandleMessage)
}

func (w *CatalogWorker) handleSaleCompleted(ctx context.Context, event *models.SaleCompletedEvent) error {
	for _, item := range event.Items {
		if err := w.cache.AdjustCachedStock(ctx, item.ProductID, -item.Quantity); err != nil {
			// Cache is advisory; log and keep the consumer alive.
			w.logger.Warn("Failed to adjust cached stock",
				zap.Int64("sale_id", event.SaleID),
				zap.Int64("product_id", item.ProductID),
				zap.Error(err))
		}
	}

	w.logger.Debug("Cached stock adjusted from sale",
		zap.Int64("sale_id", event.SaleID),
		zap.Int("items", len(event.Items)))
	return nil
}
