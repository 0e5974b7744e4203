package models

import "time"

// Event types
const (
	EventTypeSaleCompleted      = "SALE_COMPLETED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	EventTypeInvoiceIssued      = "INVOICE_ISSUED"
	EventTypeCommissionPaid     = "COMMISSION_PAID"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// SaleItemData represents item data in events
type SaleItemData struct {
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// SaleCompletedEvent published after the sale transaction commits
type SaleCompletedEvent struct {
	BaseEvent
	SaleID      int64          `json:"sale_id"`
	ClientID    *int64         `json:"client_id,omitempty"`
	SellerID    *int64         `json:"seller_id,omitempty"`
	Total       float64        `json:"total"`
	PaymentType string         `json:"payment_type"`
	Items       []SaleItemData `json:"items"`
}

// OrderStatusChangedEvent published when a fulfillment order advances
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID    int64  `json:"order_id"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
}

// InvoiceIssuedEvent published after fiscal fields are persisted
type InvoiceIssuedEvent struct {
	BaseEvent
	SaleID        int64  `json:"sale_id"`
	InvoiceNumber string `json:"invoice_number"`
	CAE           string `json:"cae"`
	Simulated     bool   `json:"simulated"`
}

// CommissionPaidEvent published when a commission is settled
type CommissionPaidEvent struct {
	BaseEvent
	CommissionID int64   `json:"commission_id"`
	SellerID     int64   `json:"seller_id"`
	Amount       float64 `json:"amount"`
}
