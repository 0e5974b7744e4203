package api

import (
	"context"
	"net/http"

	"heladeria-backend/internal/models"
	"heladeria-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// ClientDirectory is the client registry surface the API exposes
type ClientDirectory interface {
	GetClients(ctx context.Context) ([]models.Client, error)
	GetClientByID(ctx context.Context, id int64) (*models.Client, error)
	GetClientByTaxID(ctx context.Context, taxID string) (*models.Client, error)
	CreateClient(ctx context.Context, client *models.Client) error
	UpdateClient(ctx context.Context, client *models.Client) error
	RegisterPayment(ctx context.Context, clientID int64, amount float64) (*models.LedgerEntry, error)
	GetLedgerEntries(ctx context.Context, clientID int64) ([]models.LedgerEntry, error)
}

// SellerDirectory is the seller registry surface the API exposes
type SellerDirectory interface {
	GetSellers(ctx context.Context) ([]models.Seller, error)
	GetSellerByID(ctx context.Context, id int64) (*models.Seller, error)
	GetSellerByEmail(ctx context.Context, email string) (*models.Seller, error)
	CreateSeller(ctx context.Context, seller *models.Seller) error
	UpdateSeller(ctx context.Context, seller *models.Seller) error
}

// Handler bundles the HTTP endpoints
type Handler struct {
	sales       *service.SaleService
	orders      *service.OrderService
	commissions *service.CommissionService
	invoices    *service.InvoiceService
	catalog     *service.CatalogService
	clients     ClientDirectory
	sellers     SellerDirectory
	files       service.FileHost
}

// NewHandler creates the API handler. files may be nil when file hosting is
// not configured.
func NewHandler(
	sales *service.SaleService,
	orders *service.OrderService,
	commissions *service.CommissionService,
	invoices *service.InvoiceService,
	catalog *service.CatalogService,
	clients ClientDirectory,
	sellers SellerDirectory,
	files service.FileHost,
) *Handler {
	return &Handler{
		sales:       sales,
		orders:      orders,
		commissions: commissions,
		invoices:    invoices,
		catalog:     catalog,
		clients:     clients,
		sellers:     sellers,
		files:       files,
	}
}

// Health handles liveness checks
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Ready handles readiness checks
func (h *Handler) Ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
