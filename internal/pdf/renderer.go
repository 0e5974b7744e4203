package pdf

import (
	"encoding/base64"
	"fmt"
	"time"

	"heladeria-backend/internal/apperrors"
	"heladeria-backend/internal/models"
	"heladeria-backend/internal/util"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// Renderer produces A4, zero-margin sale documents encoded as base64. The
// encoded output is capped at maxBytes because it is stored inline on the
// sale record; oversized documents fail with a size-limit error instead of a
// generic write failure.
type Renderer struct {
	companyName string
	maxBytes    int
}

// NewRenderer creates a document renderer
func NewRenderer(companyName string, maxBytes int) *Renderer {
	if companyName == "" {
		companyName = "Distribuidora de Helados"
	}
	return &Renderer{companyName: companyName, maxBytes: maxBytes}
}

// RenderInvoice renders the fiscal invoice for a sale
func (r *Renderer) RenderInvoice(sale *models.Sale) (string, error) {
	start := time.Now()
	defer func() {
		util.PDFRenderLatency.Observe(time.Since(start).Seconds())
	}()

	title := "FACTURA"
	if !sale.InvoiceEmitted {
		title = "COMPROBANTE NO FISCAL"
	}

	m := r.newDocument()
	r.addHeader(m, title, invoiceReference(sale), sale.CreatedAt)
	r.addParty(m, sale)
	r.addItems(m, sale.Items)
	r.addTotal(m, sale.Total)

	if sale.CAE != nil && sale.CAEExpiry != nil {
		m.AddRow(8,
			text.NewCol(6, fmt.Sprintf("CAE: %s", *sale.CAE), props.Text{Size: 8}),
			text.NewCol(6, fmt.Sprintf("Vencimiento CAE: %s", sale.CAEExpiry.Format("02/01/2006")),
				props.Text{Size: 8, Align: align.Right}),
		)
	}

	return r.encode(m)
}

// RenderRemito renders the delivery note for a sale
func (r *Renderer) RenderRemito(sale *models.Sale) (string, error) {
	start := time.Now()
	defer func() {
		util.PDFRenderLatency.Observe(time.Since(start).Seconds())
	}()

	reference := ""
	if sale.RemitoNumber != nil {
		reference = *sale.RemitoNumber
	}

	m := r.newDocument()
	r.addHeader(m, "REMITO", reference, sale.CreatedAt)
	r.addParty(m, sale)
	r.addItems(m, sale.Items)

	m.AddRow(14, col.New(12))
	m.AddRow(8,
		text.NewCol(6, "Recibí conforme: ______________________", props.Text{Size: 9}),
		text.NewCol(6, "Aclaración: ______________________", props.Text{Size: 9, Align: align.Right}),
	)

	return r.encode(m)
}

func (r *Renderer) newDocument() core.Maroto {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(0).
		WithTopMargin(0).
		WithRightMargin(0).
		Build()

	return maroto.New(cfg)
}

func (r *Renderer) addHeader(m core.Maroto, title, reference string, date time.Time) {
	m.AddRow(12, text.NewCol(12, r.companyName,
		props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Center, Top: 3}))
	m.AddRow(8, text.NewCol(12, title,
		props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Center}))

	if reference != "" {
		m.AddRow(6, text.NewCol(12, reference, props.Text{Size: 9, Align: align.Center}))
	}
	m.AddRow(6, text.NewCol(12, fmt.Sprintf("Fecha: %s", date.Format("02/01/2006")),
		props.Text{Size: 9, Align: align.Center}))
	m.AddRow(4, line.NewCol(12))
}

func (r *Renderer) addParty(m core.Maroto, sale *models.Sale) {
	m.AddRow(7, text.NewCol(12, fmt.Sprintf("Cliente: %s", sale.ClientName),
		props.Text{Size: 10, Left: 4}))
	if sale.Address != "" {
		m.AddRow(6, text.NewCol(12, fmt.Sprintf("Dirección: %s", sale.Address),
			props.Text{Size: 9, Left: 4}))
	}
	m.AddRow(4, line.NewCol(12))
}

func (r *Renderer) addItems(m core.Maroto, items []models.SaleItem) {
	m.AddRow(7,
		text.NewCol(6, "Producto", props.Text{Size: 9, Style: fontstyle.Bold, Left: 4}),
		text.NewCol(2, "Cant.", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Precio", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Subtotal", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)

	for _, item := range items {
		m.AddRow(6,
			text.NewCol(6, item.Name, props.Text{Size: 9, Left: 4}),
			text.NewCol(2, fmt.Sprintf("%d", item.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, formatAmount(item.UnitPrice), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, formatAmount(item.UnitPrice*float64(item.Quantity)),
				props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(4, line.NewCol(12))
}

func (r *Renderer) addTotal(m core.Maroto, total float64) {
	m.AddRow(9,
		text.NewCol(8, "TOTAL", props.Text{Size: 11, Style: fontstyle.Bold, Left: 4}),
		text.NewCol(4, formatAmount(total),
			props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right}),
	)
}

func (r *Renderer) encode(m core.Maroto) (string, error) {
	doc, err := m.Generate()
	if err != nil {
		return "", fmt.Errorf("failed to generate pdf: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(doc.GetBytes())
	if r.maxBytes > 0 && len(encoded) > r.maxBytes {
		return "", apperrors.NewSizeLimitError(len(encoded), r.maxBytes)
	}
	return encoded, nil
}

func invoiceReference(sale *models.Sale) string {
	if sale.InvoiceNumber != nil {
		return fmt.Sprintf("Nº %s", *sale.InvoiceNumber)
	}
	return ""
}

func formatAmount(v float64) string {
	return fmt.Sprintf("$ %.2f", v)
}
