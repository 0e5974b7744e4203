package service

import (
	"context"
	"sync"
	"time"

	"heladeria-backend/internal/models"
	"heladeria-backend/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CommissionStore is the persistence surface for seller commissions
type CommissionStore interface {
	GetCommissionByID(ctx context.Context, id int64) (*models.Commission, error)
	GetCommissionsBySeller(ctx context.Context, sellerID int64, unpaidOnly bool) ([]models.Commission, error)
	MarkCommissionPaid(ctx context.Context, id int64) error
	GetSellerByID(ctx context.Context, id int64) (*models.Seller, error)
}

// CommissionEventPublisher publishes commission settlement events
type CommissionEventPublisher interface {
	PublishCommissionPaid(ctx context.Context, event *models.CommissionPaidEvent) error
}

// CommissionService settles seller commissions
type CommissionService struct {
	store     CommissionStore
	publisher CommissionEventPublisher
	logger    *zap.Logger
}

// NewCommissionService creates a commission service. publisher may be nil.
func NewCommissionService(store CommissionStore, publisher CommissionEventPublisher) *CommissionService {
	return &CommissionService{
		store:     store,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// PayAllResult reports a bulk settlement outcome
type PayAllResult struct {
	Paid      int     `json:"paid"`
	Failed    []int64 `json:"failed,omitempty"`
	TotalPaid float64 `json:"total_paid"`
}

// PayCommission settles one commission. Paying an already-settled commission
// is harmless and keeps the original paid timestamp.
func (s *CommissionService) PayCommission(ctx context.Context, id int64) (*models.Commission, error) {
	ctx, span := util.StartSpan(ctx, "CommissionService.PayCommission")
	defer span.End()

	commission, err := s.store.GetCommissionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.MarkCommissionPaid(ctx, id); err != nil {
		return nil, err
	}

	if !commission.IsPaid {
		util.CommissionsPaidTotal.Inc()
		s.publishPaid(ctx, commission)
	}

	commission.IsPaid = true
	if commission.PaidAt == nil {
		now := time.Now()
		commission.PaidAt = &now
	}

	s.logger.Info("Commission paid",
		zap.Int64("commission_id", commission.ID),
		zap.Int64("seller_id", commission.SellerID),
		zap.Float64("amount", commission.CommissionAmount))
	return commission, nil
}

// PayAllCommissions settles every unpaid commission for a seller. Settlements
// run concurrently; failures are collected per commission rather than aborting
// the batch.
func (s *CommissionService) PayAllCommissions(ctx context.Context, sellerID int64) (*PayAllResult, error) {
	ctx, span := util.StartSpan(ctx, "CommissionService.PayAllCommissions")
	defer span.End()

	if _, err := s.store.GetSellerByID(ctx, sellerID); err != nil {
		return nil, err
	}

	unpaid, err := s.store.GetCommissionsBySeller(ctx, sellerID, true)
	if err != nil {
		return nil, err
	}

	result := &PayAllResult{}
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := range unpaid {
		commission := unpaid[i]
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := s.store.MarkCommissionPaid(ctx, commission.ID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Error("Failed to pay commission",
					zap.Int64("commission_id", commission.ID),
					zap.Error(err))
				result.Failed = append(result.Failed, commission.ID)
				return
			}
			result.Paid++
			result.TotalPaid += commission.CommissionAmount
			util.CommissionsPaidTotal.Inc()
			s.publishPaid(ctx, &commission)
		}()
	}
	wg.Wait()

	s.logger.Info("Seller commissions settled",
		zap.Int64("seller_id", sellerID),
		zap.Int("paid", result.Paid),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}

// ListCommissions retrieves a seller's commissions
func (s *CommissionService) ListCommissions(ctx context.Context, sellerID int64, unpaidOnly bool) ([]models.Commission, error) {
	if _, err := s.store.GetSellerByID(ctx, sellerID); err != nil {
		return nil, err
	}
	return s.store.GetCommissionsBySeller(ctx, sellerID, unpaidOnly)
}

func (s *CommissionService) publishPaid(ctx context.Context, commission *models.Commission) {
	if s.publisher == nil {
		return
	}

	event := &models.CommissionPaidEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeCommissionPaid,
			Timestamp: time.Now(),
		},
		CommissionID: commission.ID,
		SellerID:     commission.SellerID,
		Amount:       commission.CommissionAmount,
	}

	if err := s.publisher.PublishCommissionPaid(ctx, event); err != nil {
		s.logger.Warn("Failed to publish CommissionPaid event",
			zap.Int64("commission_id", commission.ID),
			zap.Error(err))
	}
}
