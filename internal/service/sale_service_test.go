package service

import (
	"context"
	"testing"

	"heladeria-backend/internal/apperrors"
	"heladeria-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogFixture() map[int64]models.Product {
	return map[int64]models.Product{
		1: {ID: 1, SKU: "HEL-001", Name: "Helado 1kg Chocolate", Price: 3200, Stock: 50},
		2: {ID: 2, SKU: "HEL-002", Name: "Helado 1/2kg Frutilla", Price: 2800, Stock: 30},
	}
}

func newSaleStoreFixture() *mockSaleStore {
	catalog := catalogFixture()
	return &mockSaleStore{
		getProductsByIDs: func(_ context.Context, ids []int64) ([]models.Product, error) {
			var products []models.Product
			for _, id := range ids {
				if p, ok := catalog[id]; ok {
					products = append(products, p)
				}
			}
			return products, nil
		},
		getClientByID: func(_ context.Context, id int64) (*models.Client, error) {
			if id == 7 {
				return &models.Client{ID: 7, Name: "Kiosco El Faro", TaxID: "20304050607",
					FiscalCategory: models.FiscalMonotributo, Address: "Av. San Martín 1200"}, nil
			}
			return nil, apperrors.NewNotFoundError("client", "x")
		},
		getSellerByID: func(_ context.Context, id int64) (*models.Seller, error) {
			if id == 3 {
				return &models.Seller{ID: 3, Name: "Marta", Email: "marta@heladeria.com", CommissionRate: 0.10}, nil
			}
			return nil, apperrors.NewNotFoundError("seller", "x")
		},
		createSaleTx: func(_ context.Context, batch *models.SaleBatch) error {
			batch.Sale.ID = 42
			if batch.Order != nil {
				batch.Order.ID = 10
			}
			return nil
		},
	}
}

func TestProcessSaleCreditWithClient(t *testing.T) {
	store := newSaleStoreFixture()
	var captured *models.SaleBatch
	inner := store.createSaleTx
	store.createSaleTx = func(ctx context.Context, batch *models.SaleBatch) error {
		captured = batch
		return inner(ctx, batch)
	}

	publisher := &mockPublisher{}
	svc := NewSaleService(store, nil, publisher, 0.10)

	clientID := int64(7)
	sale, err := svc.ProcessSale(context.Background(), &CreateSaleRequest{
		ClientID:    &clientID,
		PaymentType: models.PaymentTypeCredit,
		Items: []SaleItemRequest{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 9200.0, sale.Total)
	assert.Equal(t, "Kiosco El Faro", sale.ClientName)
	assert.Len(t, sale.Items, 2)
	assert.Equal(t, 3200.0, sale.Items[0].UnitPrice)

	require.NotNil(t, captured.DebtEntry)
	assert.Equal(t, int64(7), captured.DebtEntry.ClientID)
	assert.Equal(t, models.LedgerTypeDebt, captured.DebtEntry.Type)
	assert.Equal(t, 9200.0, captured.DebtEntry.Amount)

	require.NotNil(t, captured.Order)
	assert.Equal(t, models.OrderStatusPending, captured.Order.Status)
	assert.Len(t, captured.Order.Items, 2)

	require.Len(t, captured.Movements, 2)
	assert.Equal(t, -2, captured.Movements[0].Quantity)
	assert.Equal(t, -1, captured.Movements[1].Quantity)
	assert.Equal(t, models.MovementReasonSale, captured.Movements[0].Reason)

	assert.Nil(t, captured.Commission)

	require.Len(t, publisher.saleCompleted, 1)
	assert.Equal(t, int64(42), publisher.saleCompleted[0].SaleID)
	assert.Equal(t, 9200.0, publisher.saleCompleted[0].Total)
}

func TestProcessSaleCashSkipsDebt(t *testing.T) {
	store := newSaleStoreFixture()
	var captured *models.SaleBatch
	inner := store.createSaleTx
	store.createSaleTx = func(ctx context.Context, batch *models.SaleBatch) error {
		captured = batch
		return inner(ctx, batch)
	}
	svc := NewSaleService(store, nil, nil, 0.10)

	clientID := int64(7)
	_, err := svc.ProcessSale(context.Background(), &CreateSaleRequest{
		ClientID:    &clientID,
		PaymentType: models.PaymentTypeCash,
		Items:       []SaleItemRequest{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Nil(t, captured.DebtEntry)
}

func TestProcessSaleWithSellerCommission(t *testing.T) {
	store := newSaleStoreFixture()
	var captured *models.SaleBatch
	inner := store.createSaleTx
	store.createSaleTx = func(ctx context.Context, batch *models.SaleBatch) error {
		captured = batch
		return inner(ctx, batch)
	}
	svc := NewSaleService(store, nil, nil, 0.10)

	sellerID := int64(3)
	sale, err := svc.ProcessSale(context.Background(), &CreateSaleRequest{
		SellerID:    &sellerID,
		PaymentType: models.PaymentTypeCash,
		Items: []SaleItemRequest{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
	})
	require.NoError(t, err)

	require.NotNil(t, captured.Commission)
	assert.Equal(t, int64(3), captured.Commission.SellerID)
	assert.Equal(t, 9200.0, captured.Commission.SaleTotal)
	assert.Equal(t, 0.10, captured.Commission.CommissionRate)
	assert.InDelta(t, 920.0, captured.Commission.CommissionAmount, 0.001)

	// Walk-in billing when no client is attached.
	assert.Equal(t, "Consumidor Final", sale.ClientName)
	assert.Nil(t, captured.DebtEntry)
}

func TestProcessSaleRejectsEmptyCart(t *testing.T) {
	svc := NewSaleService(newSaleStoreFixture(), nil, nil, 0.10)

	_, err := svc.ProcessSale(context.Background(), &CreateSaleRequest{
		PaymentType: models.PaymentTypeCash,
	})
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestProcessSaleRejectsBadPaymentType(t *testing.T) {
	svc := NewSaleService(newSaleStoreFixture(), nil, nil, 0.10)

	_, err := svc.ProcessSale(context.Background(), &CreateSaleRequest{
		PaymentType: "barter",
		Items:       []SaleItemRequest{{ProductID: 1, Quantity: 1}},
	})
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestProcessSaleUnknownProduct(t *testing.T) {
	svc := NewSaleService(newSaleStoreFixture(), nil, nil, 0.10)

	_, err := svc.ProcessSale(context.Background(), &CreateSaleRequest{
		PaymentType: models.PaymentTypeCash,
		Items:       []SaleItemRequest{{ProductID: 999, Quantity: 1}},
	})
	nf, ok := apperrors.IsNotFoundError(err)
	require.True(t, ok)
	assert.Equal(t, "product", nf.Resource)
}

func TestProcessSaleUnknownClient(t *testing.T) {
	svc := NewSaleService(newSaleStoreFixture(), nil, nil, 0.10)

	clientID := int64(999)
	_, err := svc.ProcessSale(context.Background(), &CreateSaleRequest{
		ClientID:    &clientID,
		PaymentType: models.PaymentTypeCredit,
		Items:       []SaleItemRequest{{ProductID: 1, Quantity: 1}},
	})
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestCheckoutCreatesClientAndOrder(t *testing.T) {
	store := newSaleStoreFixture()
	store.getClientByTaxID = func(_ context.Context, _ string) (*models.Client, error) {
		return nil, nil
	}
	store.createClient = func(_ context.Context, client *models.Client) error {
		client.ID = 8
		return nil
	}
	store.getSellerByEmail = func(_ context.Context, email string) (*models.Seller, error) {
		if email == "marta@heladeria.com" {
			return &models.Seller{ID: 3, Email: email}, nil
		}
		return nil, nil
	}
	var createdOrder *models.Order
	store.createOrder = func(_ context.Context, order *models.Order) error {
		order.ID = 15
		createdOrder = order
		return nil
	}

	svc := NewSaleService(store, newMockIdempotency(), nil, 0.10)

	result, err := svc.Checkout(context.Background(), &CheckoutRequest{
		ClientName:     "Almacén Doña Rosa",
		TaxID:          "27112223334",
		Address:        "Belgrano 450",
		SellerEmail:    "marta@heladeria.com",
		Items:          []SaleItemRequest{{ProductID: 2, Quantity: 4}},
		IdempotencyKey: "chk-001",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(15), result.OrderID)
	assert.Equal(t, int64(8), result.ClientID)
	require.NotNil(t, result.SellerID)
	assert.Equal(t, int64(3), *result.SellerID)
	assert.False(t, result.Replayed)

	assert.Equal(t, models.OrderStatusPending, createdOrder.Status)
	assert.Equal(t, "Almacén Doña Rosa", createdOrder.ClientName)
	require.Len(t, createdOrder.Items, 1)
	assert.Equal(t, 2800.0, createdOrder.Items[0].UnitPrice)
}

func TestCheckoutReusesClientByTaxID(t *testing.T) {
	store := newSaleStoreFixture()
	existing := &models.Client{ID: 7, Name: "Kiosco El Faro", TaxID: "20304050607", Address: "Av. San Martín 1200"}
	store.getClientByTaxID = func(_ context.Context, taxID string) (*models.Client, error) {
		if taxID == existing.TaxID {
			return existing, nil
		}
		return nil, nil
	}
	store.createClient = func(_ context.Context, _ *models.Client) error {
		t.Fatal("should not create a client when the tax id already exists")
		return nil
	}
	store.createOrder = func(_ context.Context, order *models.Order) error {
		order.ID = 16
		return nil
	}

	svc := NewSaleService(store, nil, nil, 0.10)

	result, err := svc.Checkout(context.Background(), &CheckoutRequest{
		ClientName: "Kiosco El Faro",
		TaxID:      "20304050607",
		Items:      []SaleItemRequest{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.ClientID)
}

func TestCheckoutReplaysIdempotencyKey(t *testing.T) {
	store := newSaleStoreFixture()
	store.getClientByTaxID = func(_ context.Context, _ string) (*models.Client, error) {
		return &models.Client{ID: 7, Name: "Kiosco El Faro", TaxID: "20304050607"}, nil
	}
	orders := 0
	store.createOrder = func(_ context.Context, order *models.Order) error {
		orders++
		order.ID = 20
		return nil
	}
	clientID := int64(7)
	store.getOrderByID = func(_ context.Context, id int64) (*models.Order, error) {
		return &models.Order{ID: id, ClientID: &clientID, Status: models.OrderStatusPending}, nil
	}

	svc := NewSaleService(store, newMockIdempotency(), nil, 0.10)

	req := &CheckoutRequest{
		ClientName:     "Kiosco El Faro",
		TaxID:          "20304050607",
		Items:          []SaleItemRequest{{ProductID: 1, Quantity: 1}},
		IdempotencyKey: "chk-dup",
	}

	first, err := svc.Checkout(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	second, err := svc.Checkout(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.OrderID, second.OrderID)
	assert.Equal(t, 1, orders)
}

func TestCheckoutRequiresIdentity(t *testing.T) {
	svc := NewSaleService(newSaleStoreFixture(), nil, nil, 0.10)

	_, err := svc.Checkout(context.Background(), &CheckoutRequest{
		Items: []SaleItemRequest{{ProductID: 1, Quantity: 1}},
	})
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}
