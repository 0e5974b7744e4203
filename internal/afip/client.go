package afip

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"heladeria-backend/internal/apperrors"
	"heladeria-backend/internal/models"
	"heladeria-backend/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AFIP voucher types
const (
	VoucherFacturaA = 1
	VoucherFacturaB = 6
	VoucherFacturaC = 11
)

// AFIP receiver document types
const (
	DocTypeCUIT  = 80
	DocTypeDNI   = 96
	DocTypeFinal = 99
)

// VoucherRequest is the payload sent to the invoicing provider
type VoucherRequest struct {
	CUIT          string  `json:"cuit"`
	PointOfSale   int     `json:"point_of_sale"`
	VoucherType   int     `json:"voucher_type"`
	VoucherNumber int64   `json:"voucher_number"`
	DocType       int     `json:"doc_type"`
	DocNumber     string  `json:"doc_number"`
	NetAmount     float64 `json:"net_amount"`
	TaxAmount     float64 `json:"tax_amount"`
	TotalAmount   float64 `json:"total_amount"`
	Concept       int     `json:"concept"`
	Date          string  `json:"date"`
}

// VoucherResponse carries the fiscal approval
type VoucherResponse struct {
	CAE           string `json:"cae"`
	CAEExpiry     string `json:"cae_expiry"`
	VoucherNumber int64  `json:"voucher_number"`
	PointOfSale   int    `json:"point_of_sale"`
	Simulated     bool   `json:"simulated,omitempty"`
}

// ExpiryTime parses the CAE expiry date
func (r *VoucherResponse) ExpiryTime() (time.Time, error) {
	return time.Parse("2006-01-02", r.CAEExpiry)
}

// Client wraps the external invoicing provider. When the provider URL or API
// key is absent, Authorize returns simulated approvals instead of failing, so
// the rest of the issuance flow keeps working in unconfigured environments.
type Client struct {
	providerURL string
	apiKey      string
	cuit        string
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewClient creates a fiscal authority client
func NewClient(providerURL, apiKey, cuit string) *Client {
	return &Client{
		providerURL: providerURL,
		apiKey:      apiKey,
		cuit:        cuit,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		logger:      util.GetLogger(),
	}
}

// Configured reports whether a real provider is wired
func (c *Client) Configured() bool {
	return c.providerURL != "" && c.apiKey != ""
}

// Authorize submits a voucher for fiscal approval. The response must carry
// both a CAE and its expiry; anything else is an upstream failure.
func (c *Client) Authorize(ctx context.Context, req *VoucherRequest) (*VoucherResponse, error) {
	ctx, span := util.StartSpan(ctx, "afip.Authorize")
	defer span.End()

	start := time.Now()
	defer func() {
		util.AfipRequestLatency.Observe(time.Since(start).Seconds())
	}()

	if !c.Configured() {
		c.logger.Warn("Invoice provider not configured, returning simulated approval",
			zap.Int64("voucher_number", req.VoucherNumber))
		return c.Simulate(req), nil
	}

	req.CUIT = c.cuit

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal voucher request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.providerURL+"/vouchers", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperrors.NewUpstreamError("afip", "provider request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, apperrors.NewUpstreamError("afip",
			fmt.Sprintf("provider returned status %d: %s", resp.StatusCode, string(raw)), nil)
	}

	var voucher VoucherResponse
	if err := json.NewDecoder(resp.Body).Decode(&voucher); err != nil {
		return nil, apperrors.NewUpstreamError("afip", "failed to decode provider response", err)
	}

	if voucher.CAE == "" || voucher.CAEExpiry == "" {
		return nil, apperrors.NewUpstreamError("afip", "response missing CAE or CAE expiry", nil)
	}

	return &voucher, nil
}

// Simulate builds a fake approval in the provider's shape. CAE expiries run
// ten days out, matching AFIP's usual window. Used both as the unconfigured
// fallback and for internal (non-fiscal) vouchers.
func (c *Client) Simulate(req *VoucherRequest) *VoucherResponse {
	return &VoucherResponse{
		CAE:           fmt.Sprintf("%d", time.Now().UnixNano()/100)[:14],
		CAEExpiry:     time.Now().AddDate(0, 0, 10).Format("2006-01-02"),
		VoucherNumber: req.VoucherNumber,
		PointOfSale:   req.PointOfSale,
		Simulated:     true,
	}
}

// BuildVoucher maps a sale and its client's fiscal category onto a voucher
// payload, splitting the total into net and tax at the given rate.
func BuildVoucher(sale *models.Sale, client *models.Client, taxRate float64, pointOfSale int, voucherNumber int64) *VoucherRequest {
	voucherType, docType := VoucherFacturaB, DocTypeFinal
	docNumber := "0"

	if client != nil {
		docNumber = client.TaxID
		switch client.FiscalCategory {
		case models.FiscalResponsableInscripto:
			voucherType, docType = VoucherFacturaA, DocTypeCUIT
		case models.FiscalMonotributo, models.FiscalExento:
			voucherType, docType = VoucherFacturaC, DocTypeCUIT
		default:
			voucherType, docType = VoucherFacturaB, DocTypeDNI
		}
	}

	net, tax := SplitTax(sale.Total, taxRate)

	return &VoucherRequest{
		PointOfSale:   pointOfSale,
		VoucherType:   voucherType,
		VoucherNumber: voucherNumber,
		DocType:       docType,
		DocNumber:     docNumber,
		NetAmount:     net,
		TaxAmount:     tax,
		TotalAmount:   sale.Total,
		Concept:       1, // products
		Date:          time.Now().Format("2006-01-02"),
	}
}

// SplitTax splits a tax-inclusive total into net and tax amounts, rounding
// the net to two decimal places so net+tax always equals the total.
func SplitTax(total, rate float64) (net, tax float64) {
	d := decimal.NewFromFloat(total)
	divisor := decimal.NewFromFloat(1).Add(decimal.NewFromFloat(rate))

	netD := d.Div(divisor).Round(2)
	taxD := d.Sub(netD)

	net, _ = netD.Float64()
	tax, _ = taxD.Float64()
	return net, tax
}
