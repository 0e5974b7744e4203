package service

import (
	"context"
	"fmt"
	"time"

	"heladeria-backend/internal/afip"
	"heladeria-backend/internal/apperrors"
	"heladeria-backend/internal/models"
	"heladeria-backend/internal/util"
	"heladeria-backend/internal/whatsapp"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Document kinds a sale can produce
const (
	DocumentInvoice = "invoice"
	DocumentRemito  = "remito"
)

// InvoiceStore is the persistence surface for fiscal documents
type InvoiceStore interface {
	GetSaleByID(ctx context.Context, id int64) (*models.Sale, error)
	GetClientByID(ctx context.Context, id int64) (*models.Client, error)
	SetSaleInvoiceFields(ctx context.Context, saleID int64, invoiceNumber, cae string, caeExpiry time.Time, pointOfSale int, voucherNumber int64) error
	SetSaleRemitoNumber(ctx context.Context, saleID int64, remitoNumber string) error
	SetSalePDF(ctx context.Context, saleID int64, content string) error
	NextVoucherNumber(ctx context.Context, pointOfSale int) (int64, error)
	NextRemitoNumber(ctx context.Context) (int64, error)
}

// FiscalAuthority authorizes vouchers with the tax authority
type FiscalAuthority interface {
	Authorize(ctx context.Context, req *afip.VoucherRequest) (*afip.VoucherResponse, error)
	Simulate(req *afip.VoucherRequest) *afip.VoucherResponse
}

// DocumentRenderer produces base64 PDF documents for a sale
type DocumentRenderer interface {
	RenderInvoice(sale *models.Sale) (string, error)
	RenderRemito(sale *models.Sale) (string, error)
}

// FileHost publishes a document and returns a shareable URL
type FileHost interface {
	Upload(ctx context.Context, filename, contentBase64 string) (string, error)
}

// InvoiceEventPublisher publishes invoice lifecycle events
type InvoiceEventPublisher interface {
	PublishInvoiceIssued(ctx context.Context, event *models.InvoiceIssuedEvent) error
}

// InvoiceService issues invoices and remitos for processed sales, renders
// their PDFs and shares them through the file host and WhatsApp deep links.
type InvoiceService struct {
	store       InvoiceStore
	fiscal      FiscalAuthority
	renderer    DocumentRenderer
	files       FileHost
	publisher   InvoiceEventPublisher
	taxRate     float64
	pointOfSale int
	logger      *zap.Logger
}

// NewInvoiceService creates an invoice service. files and publisher may be nil.
func NewInvoiceService(store InvoiceStore, fiscal FiscalAuthority, renderer DocumentRenderer, files FileHost, publisher InvoiceEventPublisher, taxRate float64, pointOfSale int) *InvoiceService {
	return &InvoiceService{
		store:       store,
		fiscal:      fiscal,
		renderer:    renderer,
		files:       files,
		publisher:   publisher,
		taxRate:     taxRate,
		pointOfSale: pointOfSale,
		logger:      util.GetLogger(),
	}
}

// InvoiceResult reports an issued invoice
type InvoiceResult struct {
	SaleID        int64     `json:"sale_id"`
	InvoiceNumber string    `json:"invoice_number"`
	CAE           string    `json:"cae"`
	CAEExpiry     time.Time `json:"cae_expiry"`
	PointOfSale   int       `json:"point_of_sale"`
	VoucherNumber int64     `json:"voucher_number"`
	Simulated     bool      `json:"simulated"`
	PDF           string    `json:"pdf"`
}

// RemitoResult reports an issued remito
type RemitoResult struct {
	SaleID       int64  `json:"sale_id"`
	RemitoNumber string `json:"remito_number"`
	PDF          string `json:"pdf"`
}

// ShareResult carries the hosted document URL and its WhatsApp deep link
type ShareResult struct {
	FileURL      string `json:"file_url"`
	WhatsappLink string `json:"whatsapp_url"`
	Message      string `json:"message"`
}

// IssueInvoice authorizes a voucher for the sale and persists the fiscal
// fields. With emitFiscal the voucher goes through the tax authority and the
// sale stays untouched if authorization fails; without it a simulated internal
// approval is recorded instead.
func (s *InvoiceService) IssueInvoice(ctx context.Context, saleID int64, emitFiscal bool) (*InvoiceResult, error) {
	ctx, span := util.StartSpan(ctx, "InvoiceService.IssueInvoice")
	defer span.End()

	sale, err := s.store.GetSaleByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale.InvoiceEmitted {
		return nil, apperrors.NewValidationError("sale already has an invoice")
	}

	var client *models.Client
	if sale.ClientID != nil {
		client, err = s.store.GetClientByID(ctx, *sale.ClientID)
		if err != nil {
			return nil, err
		}
	}

	voucherNumber, err := s.store.NextVoucherNumber(ctx, s.pointOfSale)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate voucher number: %w", err)
	}

	voucher := afip.BuildVoucher(sale, client, s.taxRate, s.pointOfSale, voucherNumber)

	var approval *afip.VoucherResponse
	if emitFiscal {
		approval, err = s.fiscal.Authorize(ctx, voucher)
		if err != nil {
			util.InvoicesFailedTotal.WithLabelValues("authorization").Inc()
			s.logger.Error("Fiscal authorization failed",
				zap.Int64("sale_id", saleID),
				zap.Error(err))
			return nil, err
		}
	} else {
		approval = s.fiscal.Simulate(voucher)
	}

	if approval.CAE == "" || approval.CAEExpiry == "" {
		util.InvoicesFailedTotal.WithLabelValues("missing_cae").Inc()
		return nil, apperrors.NewUpstreamError("afip", "approval missing CAE or CAE expiry", nil)
	}
	expiry, err := approval.ExpiryTime()
	if err != nil {
		util.InvoicesFailedTotal.WithLabelValues("bad_expiry").Inc()
		return nil, apperrors.NewUpstreamError("afip", "unparseable CAE expiry", err)
	}

	invoiceNumber := fmt.Sprintf("%04d-%08d", approval.PointOfSale, approval.VoucherNumber)
	if err := s.store.SetSaleInvoiceFields(ctx, saleID, invoiceNumber, approval.CAE, expiry, approval.PointOfSale, approval.VoucherNumber); err != nil {
		return nil, fmt.Errorf("failed to persist invoice fields: %w", err)
	}

	sale.InvoiceEmitted = true
	sale.InvoiceNumber = &invoiceNumber
	sale.CAE = &approval.CAE
	sale.CAEExpiry = &expiry
	sale.PointOfSale = &approval.PointOfSale
	sale.VoucherNumber = &approval.VoucherNumber

	pdf, err := s.renderer.RenderInvoice(sale)
	if err != nil {
		util.InvoicesFailedTotal.WithLabelValues("pdf").Inc()
		return nil, err
	}
	if err := s.store.SetSalePDF(ctx, saleID, pdf); err != nil {
		return nil, fmt.Errorf("failed to store invoice pdf: %w", err)
	}

	mode := "fiscal"
	if approval.Simulated {
		mode = "simulated"
	}
	util.InvoicesIssuedTotal.WithLabelValues(mode).Inc()
	s.logger.Info("Invoice issued",
		zap.Int64("sale_id", saleID),
		zap.String("invoice_number", invoiceNumber),
		zap.String("mode", mode))

	s.publishIssued(ctx, saleID, invoiceNumber, approval.CAE, approval.Simulated)

	return &InvoiceResult{
		SaleID:        saleID,
		InvoiceNumber: invoiceNumber,
		CAE:           approval.CAE,
		CAEExpiry:     expiry,
		PointOfSale:   approval.PointOfSale,
		VoucherNumber: approval.VoucherNumber,
		Simulated:     approval.Simulated,
		PDF:           pdf,
	}, nil
}

// IssueRemito assigns the sale a delivery-note number (reusing an existing
// one) and renders the remito PDF.
func (s *InvoiceService) IssueRemito(ctx context.Context, saleID int64) (*RemitoResult, error) {
	ctx, span := util.StartSpan(ctx, "InvoiceService.IssueRemito")
	defer span.End()

	sale, err := s.store.GetSaleByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	if sale.RemitoNumber == nil {
		seq, err := s.store.NextRemitoNumber(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to allocate remito number: %w", err)
		}
		remitoNumber := fmt.Sprintf("R-%04d-%08d", s.pointOfSale, seq)
		if err := s.store.SetSaleRemitoNumber(ctx, saleID, remitoNumber); err != nil {
			return nil, err
		}
		sale.RemitoNumber = &remitoNumber
	}

	pdf, err := s.renderer.RenderRemito(sale)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Remito issued",
		zap.Int64("sale_id", saleID),
		zap.String("remito_number", *sale.RemitoNumber))

	return &RemitoResult{
		SaleID:       saleID,
		RemitoNumber: *sale.RemitoNumber,
		PDF:          pdf,
	}, nil
}

// GetPDF returns the base64 PDF for one of the sale's documents. Stored
// invoice PDFs are returned as-is; everything else renders on demand.
func (s *InvoiceService) GetPDF(ctx context.Context, saleID int64, document string) (string, error) {
	sale, err := s.store.GetSaleByID(ctx, saleID)
	if err != nil {
		return "", err
	}

	switch document {
	case DocumentInvoice:
		if sale.InvoicePDF != nil && *sale.InvoicePDF != "" {
			return *sale.InvoicePDF, nil
		}
		return s.renderer.RenderInvoice(sale)
	case DocumentRemito:
		if sale.RemitoNumber == nil {
			return "", apperrors.NewValidationError("sale has no remito, issue one first")
		}
		return s.renderer.RenderRemito(sale)
	default:
		return "", apperrors.NewFieldValidationError("document", "must be invoice or remito")
	}
}

// Share uploads the sale's document to the file host with public read access
// and builds a WhatsApp deep link to the sale's client with the download URL.
func (s *InvoiceService) Share(ctx context.Context, saleID int64, document string) (*ShareResult, error) {
	ctx, span := util.StartSpan(ctx, "InvoiceService.Share")
	defer span.End()

	if s.files == nil {
		return nil, apperrors.NewUpstreamError("drive", "file hosting not configured", nil)
	}

	sale, err := s.store.GetSaleByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	pdf, err := s.GetPDF(ctx, saleID, document)
	if err != nil {
		return nil, err
	}

	docName := "factura"
	reference := fmt.Sprintf("venta-%d", saleID)
	if document == DocumentRemito {
		docName = "remito"
		if sale.RemitoNumber != nil {
			reference = *sale.RemitoNumber
		}
	} else if sale.InvoiceNumber != nil {
		reference = *sale.InvoiceNumber
	}
	filename := fmt.Sprintf("%s-%s.pdf", docName, reference)

	fileURL, err := s.files.Upload(ctx, filename, pdf)
	if err != nil {
		return nil, err
	}

	phone := ""
	if sale.ClientID != nil {
		client, err := s.store.GetClientByID(ctx, *sale.ClientID)
		if err != nil {
			return nil, err
		}
		phone = client.Phone
	}

	message := whatsapp.DocumentMessage(sale.ClientName, docName, fileURL)
	link := whatsapp.MessageLink(phone, message)

	s.logger.Info("Document shared",
		zap.Int64("sale_id", saleID),
		zap.String("document", document),
		zap.String("file_url", fileURL))

	return &ShareResult{
		FileURL:      fileURL,
		WhatsappLink: link,
		Message:      message,
	}, nil
}

func (s *InvoiceService) publishIssued(ctx context.Context, saleID int64, invoiceNumber, cae string, simulated bool) {
	if s.publisher == nil {
		return
	}

	event := &models.InvoiceIssuedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeInvoiceIssued,
			Timestamp: time.Now(),
		},
		SaleID:        saleID,
		InvoiceNumber: invoiceNumber,
		CAE:           cae,
		Simulated:     simulated,
	}

	if err := s.publisher.PublishInvoiceIssued(ctx, event); err != nil {
		s.logger.Warn("Failed to publish InvoiceIssued event",
			zap.Int64("sale_id", saleID),
			zap.Error(err))
	}
}
