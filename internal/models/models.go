package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Product represents a catalog product
type Product struct {
	ID        int64     `db:"id" json:"id"`
	SKU       string    `db:"sku" json:"sku"`
	Name      string    `db:"name" json:"name"`
	Category  string    `db:"category" json:"category"`
	Price     float64   `db:"price" json:"price"`
	Stock     int       `db:"stock" json:"stock"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Client represents a business client with a running balance
type Client struct {
	ID             int64     `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	TaxID          string    `db:"tax_id" json:"tax_id"`
	FiscalCategory string    `db:"fiscal_category" json:"fiscal_category"`
	Phone          string    `db:"phone" json:"phone"`
	Address        string    `db:"address" json:"address"`
	CreditLimit    float64   `db:"credit_limit" json:"credit_limit"`
	CurrentBalance float64   `db:"current_balance" json:"current_balance"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Seller represents a salesperson with aggregate totals
type Seller struct {
	ID              int64     `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Email           string    `db:"email" json:"email"`
	CommissionRate  float64   `db:"commission_rate" json:"commission_rate"`
	TotalSales      float64   `db:"total_sales" json:"total_sales"`
	TotalCommission float64   `db:"total_commission" json:"total_commission"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Sale represents a completed sale with its fiscal metadata
type Sale struct {
	ID             int64      `db:"id" json:"id"`
	ClientID       *int64     `db:"client_id" json:"client_id,omitempty"`
	SellerID       *int64     `db:"seller_id" json:"seller_id,omitempty"`
	ClientName     string     `db:"client_name" json:"client_name"`
	Address        string     `db:"address" json:"address"`
	Total          float64    `db:"total" json:"total"`
	PaymentType    string     `db:"payment_type" json:"payment_type"`
	Status         string     `db:"status" json:"status"`
	InvoiceEmitted bool       `db:"invoice_emitted" json:"invoice_emitted"`
	InvoiceNumber  *string    `db:"invoice_number" json:"invoice_number,omitempty"`
	CAE            *string    `db:"cae" json:"cae,omitempty"`
	CAEExpiry      *time.Time `db:"cae_expiry" json:"cae_expiry,omitempty"`
	PointOfSale    *int       `db:"point_of_sale" json:"point_of_sale,omitempty"`
	VoucherNumber  *int64     `db:"voucher_number" json:"voucher_number,omitempty"`
	RemitoNumber   *string    `db:"remito_number" json:"remito_number,omitempty"`
	InvoicePDF     *string    `db:"invoice_pdf" json:"-"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`

	Items []SaleItem `db:"-" json:"items,omitempty"`
}

// SaleItem is a sale line with the unit price snapshotted at sale time
type SaleItem struct {
	ID        int64   `db:"id" json:"id"`
	SaleID    int64   `db:"sale_id" json:"sale_id"`
	ProductID int64   `db:"product_id" json:"product_id"`
	Name      string  `db:"name" json:"name"`
	Quantity  int     `db:"quantity" json:"quantity"`
	UnitPrice float64 `db:"unit_price" json:"unit_price"`
}

// Commission is a per-sale payout owed to a seller
type Commission struct {
	ID               int64      `db:"id" json:"id"`
	SellerID         int64      `db:"seller_id" json:"seller_id"`
	SaleID           int64      `db:"sale_id" json:"sale_id"`
	SaleTotal        float64    `db:"sale_total" json:"sale_total"`
	CommissionRate   float64    `db:"commission_rate" json:"commission_rate"`
	CommissionAmount float64    `db:"commission_amount" json:"commission_amount"`
	IsPaid           bool       `db:"is_paid" json:"is_paid"`
	PaidAt           *time.Time `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}

// OrderItem is a line inside a fulfillment order
type OrderItem struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// OrderItems is stored as a jsonb column
type OrderItems []OrderItem

func (oi OrderItems) Value() (driver.Value, error) {
	return json.Marshal(oi)
}

func (oi *OrderItems) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, oi)
	case string:
		return json.Unmarshal([]byte(v), oi)
	case nil:
		*oi = nil
		return nil
	default:
		return fmt.Errorf("cannot scan %T into OrderItems", src)
	}
}

// Order represents a fulfillment order for delivering a sale's items
type Order struct {
	ID         int64      `db:"id" json:"id"`
	SaleID     *int64     `db:"sale_id" json:"sale_id,omitempty"`
	ClientID   *int64     `db:"client_id" json:"client_id,omitempty"`
	ClientName string     `db:"client_name" json:"client_name"`
	Address    string     `db:"address" json:"address"`
	Status     string     `db:"status" json:"status"`
	Items      OrderItems `db:"items" json:"items"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// LedgerEntry is an append-only record of a client balance change
type LedgerEntry struct {
	ID        int64     `db:"id" json:"id"`
	ClientID  int64     `db:"client_id" json:"client_id"`
	Type      string    `db:"type" json:"type"`
	Amount    float64   `db:"amount" json:"amount"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// StockMovement is an audit record of a stock adjustment (signed quantity)
type StockMovement struct {
	ID        int64     `db:"id" json:"id"`
	ProductID int64     `db:"product_id" json:"product_id"`
	SaleID    *int64    `db:"sale_id" json:"sale_id,omitempty"`
	Quantity  int       `db:"quantity" json:"quantity"`
	Reason    string    `db:"reason" json:"reason"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SaleBatch is the full write-set of one sale. The store persists it as a
// single all-or-nothing database transaction.
type SaleBatch struct {
	Sale       *Sale
	Order      *Order
	Commission *Commission
	DebtEntry  *LedgerEntry
	Movements  []StockMovement
}

// Payment types
const (
	PaymentTypeCash   = "cash"
	PaymentTypeCredit = "credit"
	PaymentTypeMixed  = "mixed"
)

// Sale statuses
const (
	SaleStatusCompleted = "completed"
)

// Fulfillment order statuses
const (
	OrderStatusPending     = "pending"
	OrderStatusPreparation = "preparation"
	OrderStatusDelivery    = "delivery"
	OrderStatusCompleted   = "completed"
	OrderStatusCancelled   = "cancelled"
)

// Ledger entry types
const (
	LedgerTypePayment = "payment"
	LedgerTypeDebt    = "debt"
)

// Stock movement reasons
const (
	MovementReasonSale       = "sale"
	MovementReasonAdjustment = "adjustment"
)

// Client fiscal categories (AFIP taxpayer categories)
const (
	FiscalResponsableInscripto = "responsable_inscripto"
	FiscalMonotributo          = "monotributo"
	FiscalConsumidorFinal      = "consumidor_final"
	FiscalExento               = "exento"
)
