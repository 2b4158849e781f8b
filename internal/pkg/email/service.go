// internal/pkg/email/service.go
package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

// Service sends transactional mail over SMTP. Sending is best-effort:
// callers log failures instead of failing the surrounding operation.
type Service struct {
	config *config.Config
}

// NewService creates a new email service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
	}
}

// SendOrderConfirmation sends the order confirmation email to the customer
func (s *Service) SendOrderConfirmation(toEmail, customerName string, ord *order.Order) error {
	if !s.config.Email.Enabled {
		return nil
	}

	htmlContent, err := s.renderOrderConfirmation(customerName, ord)
	if err != nil {
		return fmt.Errorf("failed to render order confirmation: %w", err)
	}

	subject := fmt.Sprintf("Order confirmation %s", ord.OrderNumber)
	return s.send(toEmail, subject, htmlContent)
}

// send delivers one HTML message over SMTP
func (s *Service) send(to, subject, htmlContent string) error {
	if s.config.Email.SMTPHost == "" {
		return fmt.Errorf("SMTP configuration incomplete: missing host")
	}

	from := s.config.Email.FromEmail
	if s.config.Email.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.Email.FromName, s.config.Email.FromEmail)
	}

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlContent)

	addr := fmt.Sprintf("%s:%d", s.config.Email.SMTPHost, s.config.Email.SMTPPort)

	var auth smtp.Auth
	if s.config.Email.SMTPUser != "" {
		auth = smtp.PlainAuth("", s.config.Email.SMTPUser, s.config.Email.SMTPPass, s.config.Email.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func (s *Service) renderOrderConfirmation(customerName string, ord *order.Order) (string, error) {
	tmpl := template.Must(template.New("order_confirmation").Funcs(template.FuncMap{
		"money": func(cents int64) string { return fmt.Sprintf("$%.2f", float64(cents)/100) },
	}).Parse(orderConfirmationTemplate))

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, map[string]interface{}{
		"CustomerName": customerName,
		"Order":        ord,
		"CompanyName":  s.config.App.CompanyName,
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

const orderConfirmationTemplate = `
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
    <h2>Thanks for your order, {{.CustomerName}}!</h2>
    <p>We received your order <strong>{{.Order.OrderNumber}}</strong> and will let you know when it ships.</p>
    <table style="width: 100%; border-collapse: collapse;">
        <tr>
            <th align="left" style="border-bottom: 1px solid #ccc; padding: 6px;">Item</th>
            <th align="right" style="border-bottom: 1px solid #ccc; padding: 6px;">Qty</th>
            <th align="right" style="border-bottom: 1px solid #ccc; padding: 6px;">Price</th>
        </tr>
        {{range .Order.Items}}
        <tr>
            <td style="padding: 6px;">{{.Name}}</td>
            <td align="right" style="padding: 6px;">{{.Quantity}}</td>
            <td align="right" style="padding: 6px;">{{money .TotalPrice}}</td>
        </tr>
        {{end}}
        <tr>
            <td colspan="2" align="right" style="padding: 6px;"><strong>Total</strong></td>
            <td align="right" style="padding: 6px;"><strong>{{money .Order.TotalAmount}}</strong></td>
        </tr>
    </table>
    <p>Shipping to: {{.Order.ShippingAddress}}</p>
    <p>&mdash; {{.CompanyName}}</p>
</body>
</html>
`
