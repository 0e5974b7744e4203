package service

import (
	"context"
	"fmt"
	"time"

	"heladeria-backend/internal/apperrors"
	"heladeria-backend/internal/models"
	"heladeria-backend/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderStore is the persistence surface for fulfillment orders
type OrderStore interface {
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	GetOrders(ctx context.Context, status string) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) error
	LinkOrderToSale(ctx context.Context, orderID, saleID int64) error
	GetSaleByID(ctx context.Context, id int64) (*models.Sale, error)
}

// OrderEventPublisher publishes order lifecycle events
type OrderEventPublisher interface {
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
}

// OrderService drives the fulfillment state machine:
// pending -> preparation -> delivery -> completed, with cancellation allowed
// from any non-terminal state.
type OrderService struct {
	store     OrderStore
	publisher OrderEventPublisher
	logger    *zap.Logger
}

// NewOrderService creates an order service. publisher may be nil.
func NewOrderService(store OrderStore, publisher OrderEventPublisher) *OrderService {
	return &OrderService{
		store:     store,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

var orderTransitions = map[string][]string{
	models.OrderStatusPending:     {models.OrderStatusPreparation, models.OrderStatusCancelled},
	models.OrderStatusPreparation: {models.OrderStatusDelivery, models.OrderStatusCancelled},
	models.OrderStatusDelivery:    {models.OrderStatusCompleted, models.OrderStatusCancelled},
	models.OrderStatusCompleted:   {},
	models.OrderStatusCancelled:   {},
}

// CanTransition reports whether an order may move between two statuses
func CanTransition(from, to string) bool {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AdvanceOrder moves an order to a new status. Completion additionally
// requires the order to be linked to a processed sale.
func (s *OrderService) AdvanceOrder(ctx context.Context, orderID int64, toStatus string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.AdvanceOrder")
	defer span.End()

	if _, ok := orderTransitions[toStatus]; !ok {
		return nil, apperrors.NewFieldValidationError("status", "unknown order status")
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !CanTransition(order.Status, toStatus) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("cannot move order from %s to %s", order.Status, toStatus))
	}
	if toStatus == models.OrderStatusCompleted && order.SaleID == nil {
		return nil, apperrors.NewValidationError("order has no linked sale, cannot complete")
	}

	if err := s.store.UpdateOrderStatus(ctx, orderID, toStatus); err != nil {
		return nil, err
	}

	fromStatus := order.Status
	order.Status = toStatus
	util.OrdersAdvancedTotal.WithLabelValues(toStatus).Inc()
	s.logger.Info("Order advanced",
		zap.Int64("order_id", orderID),
		zap.String("from", fromStatus),
		zap.String("to", toStatus))

	s.publishStatusChanged(ctx, orderID, fromStatus, toStatus)
	return order, nil
}

// LinkSale attaches a processed sale to a storefront order so it can later be
// completed.
func (s *OrderService) LinkSale(ctx context.Context, orderID, saleID int64) error {
	ctx, span := util.StartSpan(ctx, "OrderService.LinkSale")
	defer span.End()

	if _, err := s.store.GetSaleByID(ctx, saleID); err != nil {
		return err
	}
	return s.store.LinkOrderToSale(ctx, orderID, saleID)
}

// GetOrder retrieves an order by id
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	return s.store.GetOrderByID(ctx, id)
}

// ListOrders retrieves orders, optionally filtered by status
func (s *OrderService) ListOrders(ctx context.Context, status string) ([]models.Order, error) {
	if status != "" {
		if _, ok := orderTransitions[status]; !ok {
			return nil, apperrors.NewFieldValidationError("status", "unknown order status")
		}
	}
	return s.store.GetOrders(ctx, status)
}

func (s *OrderService) publishStatusChanged(ctx context.Context, orderID int64, from, to string) {
	if s.publisher == nil {
		return
	}

	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID:    orderID,
		FromStatus: from,
		ToStatus:   to,
	}

	if err := s.publisher.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Warn("Failed to publish OrderStatusChanged event",
			zap.Int64("order_id", orderID),
			zap.Error(err))
	}
}
