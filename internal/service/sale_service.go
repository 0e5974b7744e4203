package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"heladeria-backend/internal/apperrors"
	"heladeria-backend/internal/models"
	"heladeria-backend/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SaleStore is the persistence surface the sale flows depend on
type SaleStore interface {
	GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
	GetClientByID(ctx context.Context, id int64) (*models.Client, error)
	GetClientByTaxID(ctx context.Context, taxID string) (*models.Client, error)
	CreateClient(ctx context.Context, client *models.Client) error
	GetSellerByID(ctx context.Context, id int64) (*models.Seller, error)
	GetSellerByEmail(ctx context.Context, email string) (*models.Seller, error)
	CreateSaleTx(ctx context.Context, batch *models.SaleBatch) error
	GetSaleByID(ctx context.Context, id int64) (*models.Sale, error)
	GetSales(ctx context.Context) ([]models.Sale, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
}

// SaleEventPublisher publishes sale lifecycle events
type SaleEventPublisher interface {
	PublishSaleCompleted(ctx context.Context, event *models.SaleCompletedEvent) error
}

// IdempotencyStore guards storefront checkouts against double submission
type IdempotencyStore interface {
	ClaimIdempotencyKey(ctx context.Context, key string, orderID int64, ttl time.Duration) (bool, error)
	GetIdempotentOrderID(ctx context.Context, key string) (int64, error)
}

const idempotencyTTL = 24 * time.Hour

// SaleService processes storefront checkouts and back-office sales
type SaleService struct {
	store          SaleStore
	idempotency    IdempotencyStore
	publisher      SaleEventPublisher
	commissionRate float64
	logger         *zap.Logger
}

// NewSaleService creates a sale service. idempotency and publisher may be nil;
// checkout then skips deduplication and sales skip event publishing.
func NewSaleService(store SaleStore, idempotency IdempotencyStore, publisher SaleEventPublisher, commissionRate float64) *SaleService {
	return &SaleService{
		store:          store,
		idempotency:    idempotency,
		publisher:      publisher,
		commissionRate: commissionRate,
		logger:         util.GetLogger(),
	}
}

// SaleItemRequest is one cart line
type SaleItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required"`
}

// CreateSaleRequest is the back-office sale payload
type CreateSaleRequest struct {
	ClientID    *int64            `json:"client_id"`
	SellerID    *int64            `json:"seller_id"`
	Items       []SaleItemRequest `json:"items"`
	PaymentType string            `json:"payment_type"`
}

// CheckoutRequest is the storefront checkout payload
type CheckoutRequest struct {
	ClientName     string            `json:"client_name"`
	TaxID          string            `json:"tax_id"`
	Phone          string            `json:"phone"`
	Address        string            `json:"address"`
	SellerEmail    string            `json:"seller_email"`
	Items          []SaleItemRequest `json:"items"`
	IdempotencyKey string            `json:"idempotency_key"`
}

// CheckoutResult reports the created (or replayed) storefront order
type CheckoutResult struct {
	OrderID  int64  `json:"order_id"`
	ClientID int64  `json:"client_id"`
	SellerID *int64 `json:"seller_id,omitempty"`
	Status   string `json:"status"`
	Replayed bool   `json:"replayed"`
}

// ProcessSale validates a cart, snapshots catalog prices and persists the full
// sale write-set in one transaction: sale, items, stock decrements with audit
// movements, a pending fulfillment order, the client debt accrual on credit
// sales and the seller commission when a seller participated.
func (s *SaleService) ProcessSale(ctx context.Context, req *CreateSaleRequest) (*models.Sale, error) {
	ctx, span := util.StartSpan(ctx, "SaleService.ProcessSale")
	defer span.End()

	if len(req.Items) == 0 {
		util.SalesFailedTotal.WithLabelValues("validation").Inc()
		return nil, apperrors.NewFieldValidationError("items", "sale requires at least one item")
	}
	switch req.PaymentType {
	case models.PaymentTypeCash, models.PaymentTypeCredit, models.PaymentTypeMixed:
	default:
		util.SalesFailedTotal.WithLabelValues("validation").Inc()
		return nil, apperrors.NewFieldValidationError("payment_type", "must be cash, credit or mixed")
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			util.SalesFailedTotal.WithLabelValues("validation").Inc()
			return nil, apperrors.NewFieldValidationError("items", "quantity must be positive")
		}
	}

	products, err := s.resolveProducts(ctx, req.Items)
	if err != nil {
		util.SalesFailedTotal.WithLabelValues("product_lookup").Inc()
		return nil, err
	}

	// Walk-in sales carry no client; the sale is billed to a final consumer.
	clientName, address := "Consumidor Final", ""
	var client *models.Client
	if req.ClientID != nil {
		client, err = s.store.GetClientByID(ctx, *req.ClientID)
		if err != nil {
			util.SalesFailedTotal.WithLabelValues("client_lookup").Inc()
			return nil, err
		}
		clientName, address = client.Name, client.Address
	}

	var seller *models.Seller
	if req.SellerID != nil {
		seller, err = s.store.GetSellerByID(ctx, *req.SellerID)
		if err != nil {
			util.SalesFailedTotal.WithLabelValues("seller_lookup").Inc()
			return nil, err
		}
	}

	sale := &models.Sale{
		ClientID:    req.ClientID,
		SellerID:    req.SellerID,
		ClientName:  clientName,
		Address:     address,
		PaymentType: req.PaymentType,
		Status:      models.SaleStatusCompleted,
	}

	var total float64
	var units int
	movements := make([]models.StockMovement, 0, len(req.Items))
	orderItems := make(models.OrderItems, 0, len(req.Items))
	for _, item := range req.Items {
		p := products[item.ProductID]
		total += p.Price * float64(item.Quantity)
		units += item.Quantity
		sale.Items = append(sale.Items, models.SaleItem{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  item.Quantity,
			UnitPrice: p.Price,
		})
		movements = append(movements, models.StockMovement{
			ProductID: p.ID,
			Quantity:  -item.Quantity,
			Reason:    models.MovementReasonSale,
		})
		orderItems = append(orderItems, models.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  item.Quantity,
			UnitPrice: p.Price,
		})
	}
	sale.Total = total

	batch := &models.SaleBatch{
		Sale: sale,
		Order: &models.Order{
			ClientID:   req.ClientID,
			ClientName: clientName,
			Address:    address,
			Status:     models.OrderStatusPending,
			Items:      orderItems,
		},
		Movements: movements,
	}

	if req.PaymentType == models.PaymentTypeCredit && client != nil {
		batch.DebtEntry = &models.LedgerEntry{
			ClientID: client.ID,
			Type:     models.LedgerTypeDebt,
			Amount:   total,
		}
	}

	if seller != nil {
		batch.Commission = &models.Commission{
			SellerID:         seller.ID,
			SaleTotal:        total,
			CommissionRate:   s.commissionRate,
			CommissionAmount: total * s.commissionRate,
		}
	}

	if err := s.store.CreateSaleTx(ctx, batch); err != nil {
		util.SalesFailedTotal.WithLabelValues("transaction").Inc()
		s.logger.Error("Sale transaction failed", zap.Error(err))
		return nil, fmt.Errorf("failed to persist sale: %w", err)
	}

	util.SalesCreatedTotal.Inc()
	util.StockDecrementedTotal.Add(float64(units))
	s.logger.Info("Sale processed",
		zap.Int64("sale_id", sale.ID),
		zap.Float64("total", sale.Total),
		zap.String("payment_type", sale.PaymentType))

	s.publishSaleCompleted(ctx, sale)
	return sale, nil
}

// Checkout registers a storefront order: it reuses or creates the client by
// tax id, optionally attaches a seller by email and opens a pending
// fulfillment order. An idempotency key replays the original order instead of
// creating a duplicate.
func (s *SaleService) Checkout(ctx context.Context, req *CheckoutRequest) (*CheckoutResult, error) {
	ctx, span := util.StartSpan(ctx, "SaleService.Checkout")
	defer span.End()

	if len(req.Items) == 0 {
		util.CheckoutsFailedTotal.WithLabelValues("validation").Inc()
		return nil, apperrors.NewFieldValidationError("items", "checkout requires at least one item")
	}
	if req.ClientName == "" || req.TaxID == "" {
		util.CheckoutsFailedTotal.WithLabelValues("validation").Inc()
		return nil, apperrors.NewValidationError("client_name and tax_id are required")
	}

	if req.IdempotencyKey != "" && s.idempotency != nil {
		orderID, err := s.idempotency.GetIdempotentOrderID(ctx, req.IdempotencyKey)
		if err != nil {
			s.logger.Warn("Idempotency lookup failed, proceeding without it", zap.Error(err))
		} else if orderID != 0 {
			order, err := s.store.GetOrderByID(ctx, orderID)
			if err != nil {
				return nil, err
			}
			s.logger.Info("Checkout replayed from idempotency key",
				zap.String("key", req.IdempotencyKey),
				zap.Int64("order_id", orderID))
			result := &CheckoutResult{OrderID: order.ID, Status: order.Status, Replayed: true}
			if order.ClientID != nil {
				result.ClientID = *order.ClientID
			}
			return result, nil
		}
	}

	client, err := s.store.GetClientByTaxID(ctx, req.TaxID)
	if err != nil {
		util.CheckoutsFailedTotal.WithLabelValues("client_lookup").Inc()
		return nil, err
	}
	if client == nil {
		client = &models.Client{
			Name:           req.ClientName,
			TaxID:          req.TaxID,
			FiscalCategory: models.FiscalConsumidorFinal,
			Phone:          req.Phone,
			Address:        req.Address,
		}
		if err := s.store.CreateClient(ctx, client); err != nil {
			util.CheckoutsFailedTotal.WithLabelValues("client_create").Inc()
			return nil, fmt.Errorf("failed to create client: %w", err)
		}
		s.logger.Info("Client created from checkout",
			zap.Int64("client_id", client.ID),
			zap.String("tax_id", client.TaxID))
	}

	var sellerID *int64
	if req.SellerEmail != "" {
		seller, err := s.store.GetSellerByEmail(ctx, req.SellerEmail)
		if err != nil {
			util.CheckoutsFailedTotal.WithLabelValues("seller_lookup").Inc()
			return nil, err
		}
		if seller != nil {
			sellerID = &seller.ID
		}
	}

	products, err := s.resolveProducts(ctx, req.Items)
	if err != nil {
		util.CheckoutsFailedTotal.WithLabelValues("product_lookup").Inc()
		return nil, err
	}

	items := make(models.OrderItems, 0, len(req.Items))
	for _, item := range req.Items {
		p := products[item.ProductID]
		items = append(items, models.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  item.Quantity,
			UnitPrice: p.Price,
		})
	}

	address := req.Address
	if address == "" {
		address = client.Address
	}

	order := &models.Order{
		ClientID:   &client.ID,
		ClientName: client.Name,
		Address:    address,
		Status:     models.OrderStatusPending,
		Items:      items,
	}
	if err := s.store.CreateOrder(ctx, order); err != nil {
		util.CheckoutsFailedTotal.WithLabelValues("order_create").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if req.IdempotencyKey != "" && s.idempotency != nil {
		if _, err := s.idempotency.ClaimIdempotencyKey(ctx, req.IdempotencyKey, order.ID, idempotencyTTL); err != nil {
			s.logger.Warn("Failed to claim idempotency key", zap.Error(err))
		}
	}

	util.CheckoutsTotal.Inc()
	s.logger.Info("Checkout registered",
		zap.Int64("order_id", order.ID),
		zap.Int64("client_id", client.ID))

	return &CheckoutResult{
		OrderID:  order.ID,
		ClientID: client.ID,
		SellerID: sellerID,
		Status:   order.Status,
	}, nil
}

// GetSale retrieves a sale with its items
func (s *SaleService) GetSale(ctx context.Context, id int64) (*models.Sale, error) {
	return s.store.GetSaleByID(ctx, id)
}

// ListSales retrieves all sales, newest first
func (s *SaleService) ListSales(ctx context.Context) ([]models.Sale, error) {
	return s.store.GetSales(ctx)
}

// resolveProducts loads the referenced products and indexes them by id. Any
// id without a matching product is a not-found error.
func (s *SaleService) resolveProducts(ctx context.Context, items []SaleItemRequest) (map[int64]*models.Product, error) {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.store.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	byID := make(map[int64]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, apperrors.NewNotFoundError("product", strconv.FormatInt(id, 10))
		}
	}
	return byID, nil
}

func (s *SaleService) publishSaleCompleted(ctx context.Context, sale *models.Sale) {
	if s.publisher == nil {
		return
	}

	items := make([]models.SaleItemData, 0, len(sale.Items))
	for _, item := range sale.Items {
		items = append(items, models.SaleItemData{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	event := &models.SaleCompletedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeSaleCompleted,
			Timestamp: time.Now(),
		},
		SaleID:      sale.ID,
		ClientID:    sale.ClientID,
		SellerID:    sale.SellerID,
		Total:       sale.Total,
		PaymentType: sale.PaymentType,
		Items:       items,
	}

	if err := s.publisher.PublishSaleCompleted(ctx, event); err != nil {
		s.logger.Warn("Failed to publish SaleCompleted event",
			zap.Int64("sale_id", sale.ID),
			zap.Error(err))
	}
}
