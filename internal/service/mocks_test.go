package service

import (
	"context"
	"time"

	"heladeria-backend/internal/afip"
	"heladeria-backend/internal/models"
)

type mockSaleStore struct {
	getProductsByIDs func(ctx context.Context, ids []int64) ([]models.Product, error)
	getClientByID    func(ctx context.Context, id int64) (*models.Client, error)
	getClientByTaxID func(ctx context.Context, taxID string) (*models.Client, error)
	createClient     func(ctx context.Context, client *models.Client) error
	getSellerByID    func(ctx context.Context, id int64) (*models.Seller, error)
	getSellerByEmail func(ctx context.Context, email string) (*models.Seller, error)
	createSaleTx     func(ctx context.Context, batch *models.SaleBatch) error
	getSaleByID      func(ctx context.Context, id int64) (*models.Sale, error)
	getSales         func(ctx context.Context) ([]models.Sale, error)
	createOrder      func(ctx context.Context, order *models.Order) error
	getOrderByID     func(ctx context.Context, id int64) (*models.Order, error)
}

func (m *mockSaleStore) GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	return m.getProductsByIDs(ctx, ids)
}
func (m *mockSaleStore) GetClientByID(ctx context.Context, id int64) (*models.Client, error) {
	return m.getClientByID(ctx, id)
}
func (m *mockSaleStore) GetClientByTaxID(ctx context.Context, taxID string) (*models.Client, error) {
	return m.getClientByTaxID(ctx, taxID)
}
func (m *mockSaleStore) CreateClient(ctx context.Context, client *models.Client) error {
	return m.createClient(ctx, client)
}
func (m *mockSaleStore) GetSellerByID(ctx context.Context, id int64) (*models.Seller, error) {
	return m.getSellerByID(ctx, id)
}
func (m *mockSaleStore) GetSellerByEmail(ctx context.Context, email string) (*models.Seller, error) {
	return m.getSellerByEmail(ctx, email)
}
func (m *mockSaleStore) CreateSaleTx(ctx context.Context, batch *models.SaleBatch) error {
	return m.createSaleTx(ctx, batch)
}
func (m *mockSaleStore) GetSaleByID(ctx context.Context, id int64) (*models.Sale, error) {
	return m.getSaleByID(ctx, id)
}
func (m *mockSaleStore) GetSales(ctx context.Context) ([]models.Sale, error) {
	return m.getSales(ctx)
}
func (m *mockSaleStore) CreateOrder(ctx context.Context, order *models.Order) error {
	return m.createOrder(ctx, order)
}
func (m *mockSaleStore) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	return m.getOrderByID(ctx, id)
}

type mockOrderStore struct {
	getOrderByID      func(ctx context.Context, id int64) (*models.Order, error)
	getOrders         func(ctx context.Context, status string) ([]models.Order, error)
	updateOrderStatus func(ctx context.Context, orderID int64, status string) error
	linkOrderToSale   func(ctx context.Context, orderID, saleID int64) error
	getSaleByID       func(ctx context.Context, id int64) (*models.Sale, error)
}

func (m *mockOrderStore) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	return m.getOrderByID(ctx, id)
}
func (m *mockOrderStore) GetOrders(ctx context.Context, status string) ([]models.Order, error) {
	return m.getOrders(ctx, status)
}
func (m *mockOrderStore) UpdateOrderStatus(ctx context.Context, orderID int64, status string) error {
	return m.updateOrderStatus(ctx, orderID, status)
}
func (m *mockOrderStore) LinkOrderToSale(ctx context.Context, orderID, saleID int64) error {
	return m.linkOrderToSale(ctx, orderID, saleID)
}
func (m *mockOrderStore) GetSaleByID(ctx context.Context, id int64) (*models.Sale, error) {
	return m.getSaleByID(ctx, id)
}

type mockCommissionStore struct {
	getCommissionByID      func(ctx context.Context, id int64) (*models.Commission, error)
	getCommissionsBySeller func(ctx context.Context, sellerID int64, unpaidOnly bool) ([]models.Commission, error)
	markCommissionPaid     func(ctx context.Context, id int64) error
	getSellerByID          func(ctx context.Context, id int64) (*models.Seller, error)
}

func (m *mockCommissionStore) GetCommissionByID(ctx context.Context, id int64) (*models.Commission, error) {
	return m.getCommissionByID(ctx, id)
}
func (m *mockCommissionStore) GetCommissionsBySeller(ctx context.Context, sellerID int64, unpaidOnly bool) ([]models.Commission, error) {
	return m.getCommissionsBySeller(ctx, sellerID, unpaidOnly)
}
func (m *mockCommissionStore) MarkCommissionPaid(ctx context.Context, id int64) error {
	return m.markCommissionPaid(ctx, id)
}
func (m *mockCommissionStore) GetSellerByID(ctx context.Context, id int64) (*models.Seller, error) {
	return m.getSellerByID(ctx, id)
}

type mockInvoiceStore struct {
	getSaleByID          func(ctx context.Context, id int64) (*models.Sale, error)
	getClientByID        func(ctx context.Context, id int64) (*models.Client, error)
	setSaleInvoiceFields func(ctx context.Context, saleID int64, invoiceNumber, cae string, caeExpiry time.Time, pointOfSale int, voucherNumber int64) error
	setSaleRemitoNumber  func(ctx context.Context, saleID int64, remitoNumber string) error
	setSalePDF           func(ctx context.Context, saleID int64, content string) error
	nextVoucherNumber    func(ctx context.Context, pointOfSale int) (int64, error)
	nextRemitoNumber     func(ctx context.Context) (int64, error)
}

func (m *mockInvoiceStore) GetSaleByID(ctx context.Context, id int64) (*models.Sale, error) {
	return m.getSaleByID(ctx, id)
}
func (m *mockInvoiceStore) GetClientByID(ctx context.Context, id int64) (*models.Client, error) {
	return m.getClientByID(ctx, id)
}
func (m *mockInvoiceStore) SetSaleInvoiceFields(ctx context.Context, saleID int64, invoiceNumber, cae string, caeExpiry time.Time, pointOfSale int, voucherNumber int64) error {
	return m.setSaleInvoiceFields(ctx, saleID, invoiceNumber, cae, caeExpiry, pointOfSale, voucherNumber)
}
func (m *mockInvoiceStore) SetSaleRemitoNumber(ctx context.Context, saleID int64, remitoNumber string) error {
	return m.setSaleRemitoNumber(ctx, saleID, remitoNumber)
}
func (m *mockInvoiceStore) SetSalePDF(ctx context.Context, saleID int64, content string) error {
	return m.setSalePDF(ctx, saleID, content)
}
func (m *mockInvoiceStore) NextVoucherNumber(ctx context.Context, pointOfSale int) (int64, error) {
	return m.nextVoucherNumber(ctx, pointOfSale)
}
func (m *mockInvoiceStore) NextRemitoNumber(ctx context.Context) (int64, error) {
	return m.nextRemitoNumber(ctx)
}

// mockPublisher records every published event and satisfies all publisher
// interfaces.
type mockPublisher struct {
	saleCompleted      []*models.SaleCompletedEvent
	orderStatusChanged []*models.OrderStatusChangedEvent
	invoiceIssued      []*models.InvoiceIssuedEvent
	commissionPaid     []*models.CommissionPaidEvent
}

func (m *mockPublisher) PublishSaleCompleted(_ context.Context, event *models.SaleCompletedEvent) error {
	m.saleCompleted = append(m.saleCompleted, event)
	return nil
}
func (m *mockPublisher) PublishOrderStatusChanged(_ context.Context, event *models.OrderStatusChangedEvent) error {
	m.orderStatusChanged = append(m.orderStatusChanged, event)
	return nil
}
func (m *mockPublisher) PublishInvoiceIssued(_ context.Context, event *models.InvoiceIssuedEvent) error {
	m.invoiceIssued = append(m.invoiceIssued, event)
	return nil
}
func (m *mockPublisher) PublishCommissionPaid(_ context.Context, event *models.CommissionPaidEvent) error {
	m.commissionPaid = append(m.commissionPaid, event)
	return nil
}

type mockIdempotency struct {
	claims map[string]int64
}

func newMockIdempotency() *mockIdempotency {
	return &mockIdempotency{claims: map[string]int64{}}
}

func (m *mockIdempotency) ClaimIdempotencyKey(_ context.Context, key string, orderID int64, _ time.Duration) (bool, error) {
	if _, ok := m.claims[key]; ok {
		return false, nil
	}
	m.claims[key] = orderID
	return true, nil
}

func (m *mockIdempotency) GetIdempotentOrderID(_ context.Context, key string) (int64, error) {
	return m.claims[key], nil
}

type mockFiscal struct {
	authorize func(ctx context.Context, req *afip.VoucherRequest) (*afip.VoucherResponse, error)
	simulate  func(req *afip.VoucherRequest) *afip.VoucherResponse
}

func (m *mockFiscal) Authorize(ctx context.Context, req *afip.VoucherRequest) (*afip.VoucherResponse, error) {
	return m.authorize(ctx, req)
}
func (m *mockFiscal) Simulate(req *afip.VoucherRequest) *afip.VoucherResponse {
	if m.simulate != nil {
		return m.simulate(req)
	}
	return &afip.VoucherResponse{
		CAE:           "70123456789012",
		CAEExpiry:     "2026-09-11",
		VoucherNumber: req.VoucherNumber,
		PointOfSale:   req.PointOfSale,
		Simulated:     true,
	}
}

type mockRenderer struct {
	renderInvoice func(sale *models.Sale) (string, error)
	renderRemito  func(sale *models.Sale) (string, error)
}

func (m *mockRenderer) RenderInvoice(sale *models.Sale) (string, error) {
	if m.renderInvoice != nil {
		return m.renderInvoice(sale)
	}
	return "aW52b2ljZQ==", nil
}
func (m *mockRenderer) RenderRemito(sale *models.Sale) (string, error) {
	if m.renderRemito != nil {
		return m.renderRemito(sale)
	}
	return "cmVtaXRv", nil
}

type mockFileHost struct {
	upload func(ctx context.Context, filename, contentBase64 string) (string, error)
}

func (m *mockFileHost) Upload(ctx context.Context, filename, contentBase64 string) (string, error) {
	return m.upload(ctx, filename, contentBase64)
}
