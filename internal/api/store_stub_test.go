package api

import (
	"context"
	"strconv"
	"sync"
	"time"

	"heladeria-backend/internal/apperrors"
	"heladeria-backend/internal/models"
)

// stubStore is an in-memory stand-in for the database store, good enough to
// drive the real services end to end in handler tests.
type stubStore struct {
	mu          sync.Mutex
	products    map[int64]*models.Product
	clients     map[int64]*models.Client
	sellers     map[int64]*models.Seller
	sales       map[int64]*models.Sale
	orders      map[int64]*models.Order
	commissions map[int64]*models.Commission
	ledger      []models.LedgerEntry
	movements   []models.StockMovement
	nextID      int64
}

func newStubStore() *stubStore {
	return &stubStore{
		products:    map[int64]*models.Product{},
		clients:     map[int64]*models.Client{},
		sellers:     map[int64]*models.Seller{},
		sales:       map[int64]*models.Sale{},
		orders:      map[int64]*models.Order{},
		commissions: map[int64]*models.Commission{},
		nextID:      100,
	}
}

func (s *stubStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *stubStore) GetProducts(_ context.Context) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, *p)
	}
	return out, nil
}

func (s *stubStore) GetProductByID(_ context.Context, id int64) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("product", strconv.FormatInt(id, 10))
	}
	copied := *p
	return &copied, nil
}

func (s *stubStore) GetProductsByIDs(_ context.Context, ids []int64) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Product
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *stubStore) CreateProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	copied := *p
	s.products[p.ID] = &copied
	return nil
}

func (s *stubStore) UpdateProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return apperrors.NewNotFoundError("product", strconv.FormatInt(p.ID, 10))
	}
	copied := *p
	s.products[p.ID] = &copied
	return nil
}

func (s *stubStore) DeleteProduct(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return apperrors.NewNotFoundError("product", strconv.FormatInt(id, 10))
	}
	delete(s.products, id)
	return nil
}

func (s *stubStore) RecordStockMovement(_ context.Context, m *models.StockMovement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.id()
	s.movements = append(s.movements, *m)
	return nil
}

func (s *stubStore) GetStockMovements(_ context.Context, productID int64) ([]models.StockMovement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.StockMovement
	for _, m := range s.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *stubStore) GetClients(_ context.Context) ([]models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, *c)
	}
	return out, nil
}

func (s *stubStore) GetClientByID(_ context.Context, id int64) (*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("client", strconv.FormatInt(id, 10))
	}
	copied := *c
	return &copied, nil
}

func (s *stubStore) GetClientByTaxID(_ context.Context, taxID string) (*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		if c.TaxID == taxID {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *stubStore) CreateClient(_ context.Context, c *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id()
	copied := *c
	s.clients[c.ID] = &copied
	return nil
}

func (s *stubStore) UpdateClient(_ context.Context, c *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c.ID]; !ok {
		return apperrors.NewNotFoundError("client", strconv.FormatInt(c.ID, 10))
	}
	copied := *c
	s.clients[c.ID] = &copied
	return nil
}

func (s *stubStore) RegisterPayment(_ context.Context, clientID int64, amount float64) (*models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[clientID]
	if !ok {
		return nil, apperrors.NewNotFoundError("client", strconv.FormatInt(clientID, 10))
	}
	c.CurrentBalance -= amount
	entry := models.LedgerEntry{
		ID:        s.id(),
		ClientID:  clientID,
		Type:      models.LedgerTypePayment,
		Amount:    amount,
		CreatedAt: time.Now(),
	}
	s.ledger = append(s.ledger, entry)
	return &entry, nil
}

func (s *stubStore) GetLedgerEntries(_ context.Context, clientID int64) ([]models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.LedgerEntry
	for _, e := range s.ledger {
		if e.ClientID == clientID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *stubStore) GetSellers(_ context.Context) ([]models.Seller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Seller, 0, len(s.sellers))
	for _, sl := range s.sellers {
		out = append(out, *sl)
	}
	return out, nil
}

func (s *stubStore) GetSellerByID(_ context.Context, id int64) (*models.Seller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.sellers[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("seller", strconv.FormatInt(id, 10))
	}
	copied := *sl
	return &copied, nil
}

func (s *stubStore) GetSellerByEmail(_ context.Context, email string) (*models.Seller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sl := range s.sellers {
		if sl.Email == email {
			copied := *sl
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *stubStore) CreateSeller(_ context.Context, sl *models.Seller) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl.ID = s.id()
	copied := *sl
	s.sellers[sl.ID] = &copied
	return nil
}

func (s *stubStore) UpdateSeller(_ context.Context, sl *models.Seller) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sellers[sl.ID]; !ok {
		return apperrors.NewNotFoundError("seller", strconv.FormatInt(sl.ID, 10))
	}
	copied := *sl
	s.sellers[sl.ID] = &copied
	return nil
}

func (s *stubStore) CreateSaleTx(_ context.Context, batch *models.SaleBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sale := batch.Sale
	sale.ID = s.id()
	for i := range sale.Items {
		sale.Items[i].ID = s.id()
		sale.Items[i].SaleID = sale.ID
		if p, ok := s.products[sale.Items[i].ProductID]; ok {
			p.Stock -= sale.Items[i].Quantity
		}
	}
	copied := *sale
	s.sales[sale.ID] = &copied

	if batch.Order != nil {
		batch.Order.ID = s.id()
		batch.Order.SaleID = &sale.ID
		o := *batch.Order
		s.orders[o.ID] = &o
	}
	for i := range batch.Movements {
		batch.Movements[i].ID = s.id()
		batch.Movements[i].SaleID = &sale.ID
		s.movements = append(s.movements, batch.Movements[i])
	}
	if batch.DebtEntry != nil {
		if c, ok := s.clients[batch.DebtEntry.ClientID]; ok {
			c.CurrentBalance += batch.DebtEntry.Amount
		}
		batch.DebtEntry.ID = s.id()
		s.ledger = append(s.ledger, *batch.DebtEntry)
	}
	if batch.Commission != nil {
		batch.Commission.ID = s.id()
		batch.Commission.SaleID = sale.ID
		cm := *batch.Commission
		s.commissions[cm.ID] = &cm
		if sl, ok := s.sellers[cm.SellerID]; ok {
			sl.TotalSales += cm.SaleTotal
			sl.TotalCommission += cm.CommissionAmount
		}
	}
	return nil
}

func (s *stubStore) GetSaleByID(_ context.Context, id int64) (*models.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale, ok := s.sales[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("sale", strconv.FormatInt(id, 10))
	}
	copied := *sale
	return &copied, nil
}

func (s *stubStore) GetSales(_ context.Context) ([]models.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		out = append(out, *sale)
	}
	return out, nil
}

func (s *stubStore) SetSaleInvoiceFields(_ context.Context, saleID int64, invoiceNumber, cae string, caeExpiry time.Time, pointOfSale int, voucherNumber int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale, ok := s.sales[saleID]
	if !ok {
		return apperrors.NewNotFoundError("sale", strconv.FormatInt(saleID, 10))
	}
	sale.InvoiceEmitted = true
	sale.InvoiceNumber = &invoiceNumber
	sale.CAE = &cae
	sale.CAEExpiry = &caeExpiry
	sale.PointOfSale = &pointOfSale
	sale.VoucherNumber = &voucherNumber
	return nil
}

func (s *stubStore) SetSaleRemitoNumber(_ context.Context, saleID int64, remitoNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale, ok := s.sales[saleID]
	if !ok {
		return apperrors.NewNotFoundError("sale", strconv.FormatInt(saleID, 10))
	}
	sale.RemitoNumber = &remitoNumber
	return nil
}

func (s *stubStore) SetSalePDF(_ context.Context, saleID int64, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale, ok := s.sales[saleID]
	if !ok {
		return apperrors.NewNotFoundError("sale", strconv.FormatInt(saleID, 10))
	}
	sale.InvoicePDF = &content
	return nil
}

func (s *stubStore) NextVoucherNumber(_ context.Context, pointOfSale int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var max int64
	for _, sale := range s.sales {
		if sale.PointOfSale != nil && *sale.PointOfSale == pointOfSale &&
			sale.VoucherNumber != nil && *sale.VoucherNumber > max {
			max = *sale.VoucherNumber
		}
	}
	return max + 1, nil
}

func (s *stubStore) NextRemitoNumber(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, sale := range s.sales {
		if sale.RemitoNumber != nil {
			count++
		}
	}
	return count + 1, nil
}

func (s *stubStore) CreateOrder(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = s.id()
	copied := *o
	s.orders[o.ID] = &copied
	return nil
}

func (s *stubStore) GetOrderByID(_ context.Context, id int64) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("order", strconv.FormatInt(id, 10))
	}
	copied := *o
	return &copied, nil
}

func (s *stubStore) GetOrders(_ context.Context, status string) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Order
	for _, o := range s.orders {
		if status == "" || o.Status == status {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *stubStore) UpdateOrderStatus(_ context.Context, orderID int64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return apperrors.NewNotFoundError("order", strconv.FormatInt(orderID, 10))
	}
	o.Status = status
	return nil
}

func (s *stubStore) LinkOrderToSale(_ context.Context, orderID, saleID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return apperrors.NewNotFoundError("order", strconv.FormatInt(orderID, 10))
	}
	o.SaleID = &saleID
	return nil
}

func (s *stubStore) GetCommissionByID(_ context.Context, id int64) (*models.Commission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.commissions[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("commission", strconv.FormatInt(id, 10))
	}
	copied := *c
	return &copied, nil
}

func (s *stubStore) GetCommissionsBySeller(_ context.Context, sellerID int64, unpaidOnly bool) ([]models.Commission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Commission
	for _, c := range s.commissions {
		if c.SellerID != sellerID {
			continue
		}
		if unpaidOnly && c.IsPaid {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (s *stubStore) MarkCommissionPaid(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.commissions[id]
	if !ok {
		return apperrors.NewNotFoundError("commission", strconv.FormatInt(id, 10))
	}
	c.IsPaid = true
	if c.PaidAt == nil {
		now := time.Now()
		c.PaidAt = &now
	}
	return nil
}
