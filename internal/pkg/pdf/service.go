// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/furnishop/furniture-backend/internal/config"
	"github.com/furnishop/furniture-backend/internal/domain/order"
	"github.com/furnishop/furniture-backend/internal/pkg/money"
)

// Service handles PDF generation
type Service struct {
	config *config.Config
	tmpl   *template.Template
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	symbol := cfg.Invoice.CurrencySymbol
	funcs := template.FuncMap{
		"amount": func(a money.Amount) string { return a.Format(symbol) },
		"date":   func(t time.Time) string { return t.In(cfg.Location()).Format("January 2, 2006") },
	}
	return &Service{
		config: cfg,
		tmpl:   template.Must(template.New("invoice").Funcs(funcs).Parse(invoiceTemplate)),
	}
}

// InvoiceData represents the data passed to the invoice template
type InvoiceData struct {
	InvoiceNumber string
	InvoiceDate   time.Time
	Order         *order.Order
	Company       CompanyInfo
}

// CompanyInfo represents company information
type CompanyInfo struct {
	Name    string
	Address string
	Email   string
}

// InvoiceNumber derives a short printable number from the order id
func InvoiceNumber(o *order.Order) string {
	id := strings.ReplaceAll(o.ID, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return "INV-" + strings.ToUpper(id)
}

// RenderInvoiceHTML renders the invoice page that GenerateInvoice converts to PDF
func (s *Service) RenderInvoiceHTML(o *order.Order, issued time.Time) (string, error) {
	data := InvoiceData{
		InvoiceNumber: InvoiceNumber(o),
		InvoiceDate:   issued,
		Order:         o,
		Company: CompanyInfo{
			Name:    s.config.Invoice.CompanyName,
			Address: s.config.Invoice.CompanyAddress,
			Email:   s.config.Invoice.CompanyEmail,
		},
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// GenerateInvoice generates a PDF invoice for an order
func (s *Service) GenerateInvoice(o *order.Order) (*bytes.Buffer, error) {
	htmlContent, err := s.RenderInvoiceHTML(o, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(strings.NewReader(htmlContent))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

const invoiceTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Invoice {{.InvoiceNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { margin-bottom: 30px; border-bottom: 2px solid #eee; padding-bottom: 20px; }
        .invoice-title { font-size: 28px; font-weight: bold; color: #8b5e34; }
        .section-title { font-size: 16px; font-weight: bold; margin-bottom: 10px; }
        .items-table { width: 100%; border-collapse: collapse; margin: 30px 0; }
        .items-table th, .items-table td { border: 1px solid #ddd; padding: 10px 8px; text-align: left; }
        .items-table th { background-color: #f8f5f1; }
        .num { text-align: right; }
        .total-row td { font-size: 18px; font-weight: bold; border-top: 2px solid #333; }
        .footer { margin-top: 50px; text-align: center; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.Company.Name}}</h1>
        <p>{{.Company.Address}}</p>
        <p>{{.Company.Email}}</p>
        <div class="invoice-title">INVOICE</div>
        <p><strong>Invoice #:</strong> {{.InvoiceNumber}}</p>
        <p><strong>Invoice Date:</strong> {{date .InvoiceDate}}</p>
        <p><strong>Order Date:</strong> {{date .Order.OrderDate}}</p>
        <p><strong>Status:</strong> {{.Order.Status}}</p>
    </div>

    <div>
        <div class="section-title">Ship To:</div>
        <p><strong>{{.Order.UserName}}</strong></p>
        <p>{{.Order.Address}}</p>
        <p><strong>Payment:</strong> {{.Order.PaymentMethod}}</p>
    </div>

    <table class="items-table">
        <thead>
            <tr>
                <th>Item</th>
                <th class="num">Qty</th>
                <th class="num">Price</th>
                <th class="num">Total</th>
            </tr>
        </thead>
        <tbody>
            {{range .Order.Products}}
            <tr>
                <td>{{.ProductName}}</td>
                <td class="num">{{.Quantity}}</td>
                <td class="num">{{amount .Price}}</td>
                <td class="num">{{amount .Total}}</td>
            </tr>
            {{end}}
            <tr class="total-row">
                <td colspan="3" class="num">Total:</td>
                <td class="num">{{amount .Order.TotalAmount}}</td>
            </tr>
        </tbody>
    </table>

    <div class="footer">
        <p>Thank you for shopping with us!</p>
        <p>Questions about this invoice? Contact us at {{.Company.Email}}</p>
    </div>
</body>
</html>
`
