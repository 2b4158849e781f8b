// internal/pkg/invoice/service.go
package invoice

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

// Service renders order invoices as PDF
type Service struct {
	config *config.Config
}

// NewService creates a new invoice service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
	}
}

// Generate renders a PDF invoice for an order
func (s *Service) Generate(ord *order.Order) (*bytes.Buffer, error) {
	data := invoiceData{
		InvoiceNumber: fmt.Sprintf("INV-%s", ord.OrderNumber),
		InvoiceDate:   time.Now().UTC().Format("January 2, 2006"),
		Order:         ord,
		Company: companyInfo{
			Name:    s.config.App.CompanyName,
			Address: s.config.App.CompanyAddress,
			Email:   s.config.App.CompanyEmail,
		},
	}

	htmlContent, err := s.renderHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to render invoice HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

func (s *Service) renderHTML(data invoiceData) (string, error) {
	tmpl := template.Must(template.New("invoice").Funcs(template.FuncMap{
		"money": formatMoney,
	}).Parse(invoiceTemplate))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// formatMoney renders an amount in cents as a decimal string
func formatMoney(cents int64) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}

type invoiceData struct {
	InvoiceNumber string
	InvoiceDate   string
	Order         *order.Order
	Company       companyInfo
}

type companyInfo struct {
	Name    string
	Address string
	Email   string
}

const invoiceTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Invoice {{.InvoiceNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 24px; color: #333; }
        .header { margin-bottom: 30px; border-bottom: 2px solid #eee; padding-bottom: 16px; }
        .invoice-title { font-size: 26px; font-weight: bold; color: #2563eb; }
        .meta { margin-bottom: 24px; font-size: 13px; }
        .meta div { margin-bottom: 2px; }
        table { width: 100%; border-collapse: collapse; margin-bottom: 24px; }
        th { background: #f3f4f6; text-align: left; padding: 8px; font-size: 12px; text-transform: uppercase; }
        td { padding: 8px; border-bottom: 1px solid #eee; font-size: 13px; }
        .right { text-align: right; }
        .total-row td { font-weight: bold; border-top: 2px solid #333; }
        .footer { font-size: 11px; color: #777; margin-top: 32px; }
    </style>
</head>
<body>
    <div class="header">
        <div class="invoice-title">{{.Company.Name}}</div>
        <div>{{.Company.Address}}</div>
        <div>{{.Company.Email}}</div>
    </div>

    <div class="meta">
        <div><strong>Invoice:</strong> {{.InvoiceNumber}}</div>
        <div><strong>Date:</strong> {{.InvoiceDate}}</div>
        <div><strong>Order:</strong> {{.Order.OrderNumber}}</div>
        <div><strong>Status:</strong> {{.Order.Status}}</div>
        <div><strong>Ship to:</strong> {{.Order.ShippingAddress}}</div>
    </div>

    <table>
        <thead>
            <tr>
                <th>Item</th>
                <th>SKU</th>
                <th class="right">Qty</th>
                <th class="right">Unit Price</th>
                <th class="right">Total</th>
            </tr>
        </thead>
        <tbody>
            {{range .Order.Items}}
            <tr>
                <td>{{.Name}}</td>
                <td>{{.SKU}}</td>
                <td class="right">{{.Quantity}}</td>
                <td class="right">{{money .Price}}</td>
                <td class="right">{{money .TotalPrice}}</td>
            </tr>
            {{end}}
            <tr class="total-row">
                <td colspan="4" class="right">Total</td>
                <td class="right">{{money .Order.TotalAmount}}</td>
            </tr>
        </tbody>
    </table>

    <div class="footer">Thank you for your order.</div>
</body>
</html>
`
