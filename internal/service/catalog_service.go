package service

import (
	"context"
	"fmt"

	"heladeria-backend/internal/audit"
	"heladeria-backend/internal/models"
	"heladeria-backend/internal/util"

	"go.uber.org/zap"
)

// CatalogStore is the persistence surface for the product catalog
type CatalogStore interface {
	GetProducts(ctx context.Context) ([]models.Product, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
}

// CatalogCache is the read-side cache of the catalog
type CatalogCache interface {
	GetCatalog(ctx context.Context) ([]models.Product, error)
	SetCatalogProduct(ctx context.Context, product *models.Product) error
	RemoveCatalogProduct(ctx context.Context, productID int64) error
	AdjustCachedStock(ctx context.Context, productID int64, delta int) error
}

// CatalogService manages the product catalog with a cache-first read path.
// The cache is advisory: writes go to the database and then refresh the
// cache, and cache failures degrade to database reads.
type CatalogService struct {
	store    CatalogStore
	cache    CatalogCache
	stockLog audit.StockLog
	logger   *zap.Logger
}

// NewCatalogService creates a catalog service. cache may be nil; every read
// then hits the database.
func NewCatalogService(store CatalogStore, cache CatalogCache, stockLog audit.StockLog) *CatalogService {
	return &CatalogService{
		store:    store,
		cache:    cache,
		stockLog: stockLog,
		logger:   util.GetLogger(),
	}
}

// ListProducts returns the catalog, serving from cache when it is warm
func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	if s.cache != nil {
		cached, err := s.cache.GetCatalog(ctx)
		if err != nil {
			s.logger.Warn("Catalog cache read failed, falling back to database", zap.Error(err))
		} else if len(cached) > 0 {
			return cached, nil
		}
	}
	return s.store.GetProducts(ctx)
}

// GetProduct retrieves one product from the database
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return s.store.GetProductByID(ctx, id)
}

// CreateProduct adds a product and warms its cache entry
func (s *CatalogService) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := s.store.CreateProduct(ctx, product); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	s.refreshCache(ctx, product)
	s.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.String("sku", product.SKU))
	return nil
}

// UpdateProduct updates a product. A direct stock change is audited as a
// manual adjustment.
func (s *CatalogService) UpdateProduct(ctx context.Context, product *models.Product) error {
	existing, err := s.store.GetProductByID(ctx, product.ID)
	if err != nil {
		return err
	}

	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return err
	}

	if delta := product.Stock - existing.Stock; delta != 0 && s.stockLog != nil {
		movement := &models.StockMovement{
			ProductID: product.ID,
			Quantity:  delta,
			Reason:    models.MovementReasonAdjustment,
		}
		if err := s.stockLog.Record(ctx, movement); err != nil {
			s.logger.Warn("Failed to record stock adjustment",
				zap.Int64("product_id", product.ID),
				zap.Error(err))
		}
	}

	s.refreshCache(ctx, product)
	return nil
}

// DeleteProduct removes a product and evicts its cache entry
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.RemoveCatalogProduct(ctx, id); err != nil {
			s.logger.Warn("Failed to evict product from cache",
				zap.Int64("product_id", id),
				zap.Error(err))
		}
	}
	return nil
}

// GetStockMovements returns the audit trail for a product
func (s *CatalogService) GetStockMovements(ctx context.Context, productID int64) ([]models.StockMovement, error) {
	if _, err := s.store.GetProductByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.stockLog.Query(ctx, productID)
}

// SyncCatalogToCache repopulates the whole catalog cache from the database.
// Called at startup and after bulk changes.
func (s *CatalogService) SyncCatalogToCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	products, err := s.store.GetProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	for i := range products {
		if err := s.cache.SetCatalogProduct(ctx, &products[i]); err != nil {
			return fmt.Errorf("failed to cache product %d: %w", products[i].ID, err)
		}
	}

	s.logger.Info("Catalog synced to cache", zap.Int("products", len(products)))
	return nil
}

func (s *CatalogService) refreshCache(ctx context.Context, product *models.Product) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetCatalogProduct(ctx, product); err != nil {
		s.logger.Warn("Failed to refresh product cache entry",
			zap.Int64("product_id", product.ID),
			zap.Error(err))
	}
}
