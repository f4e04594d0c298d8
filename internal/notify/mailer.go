package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"

	"github.com/wneessen/go-mail"

	"noel_back_end/internal/config"
	"noel_back_end/internal/models"
)

// Kind destinataire d'un e-mail de commande
type Kind string

const (
	KindAdmin    Kind = "admin"
	KindCustomer Kind = "customer"
)

func (k Kind) Valid() bool {
	return k == KindAdmin || k == KindCustomer
}

type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPSender envoie via go-mail
type SMTPSender struct {
	cfg config.SMTPConfig
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	client, err := mail.NewClient(s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	return client.DialAndSendWithContext(ctx, msg)
}

// LogSender n'envoie rien, il journalise (SMTP non configuré)
type LogSender struct{}

func (LogSender) Send(_ context.Context, to, subject, _ string) error {
	log.Printf("📧 [stub] e-mail %q pour %s", subject, to)
	return nil
}

// NewSender choisit SMTP si un hôte est configuré
func NewSender(cfg config.SMTPConfig) Sender {
	if cfg.Host == "" {
		log.Println("⚠️ SMTP non configuré, les e-mails seront seulement journalisés")
		return LogSender{}
	}
	return NewSMTPSender(cfg)
}

// Mailer rend et envoie les e-mails de commande
type Mailer struct {
	sender    Sender
	storeName string
}

func NewMailer(sender Sender, storeName string) *Mailer {
	return &Mailer{sender: sender, storeName: storeName}
}

func (m *Mailer) OrderEmail(ctx context.Context, to string, order models.Order, kind Kind) error {
	if !kind.Valid() {
		return fmt.Errorf("type d'e-mail inconnu: %q", kind)
	}
	body, err := RenderOrderEmail(order, kind, m.storeName)
	if err != nil {
		return err
	}
	if err := m.sender.Send(ctx, to, orderSubject(order, kind), body); err != nil {
		return fmt.Errorf("envoi e-mail %s: %w", kind, err)
	}
	log.Printf("📧 E-mail %s envoyé: %s (commande: %s)", kind, to, order.ID)
	return nil
}

func orderSubject(order models.Order, kind Kind) string {
	if kind == KindAdmin {
		return fmt.Sprintf("🎄 Novo pedido de %s", order.CustomerName)
	}
	return "✅ Recebemos seu pedido"
}

var orderTemplate = template.Must(template.New("order").Funcs(template.FuncMap{
	"brl": FormatBRL,
}).Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head><meta charset="UTF-8"><title>{{.Store}}</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		{{if .Admin}}<h2>Novo pedido de {{.Order.CustomerName}}</h2>
		<p>Telefone: {{.Order.CustomerPhone}}{{if .Order.Email}} · {{.Order.Email}}{{end}}</p>
		{{else}}<h2>Obrigado, {{.Order.CustomerName}}!</h2>
		<p>Recebemos seu pedido. Entraremos em contato para confirmar o pagamento.</p>{{end}}
		<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
			<thead><tr style="background-color: #f0f0f0;"><th align="left">Produto</th><th>Qtd</th><th align="right">Total</th></tr></thead>
			<tbody>{{range .Order.Items}}
				<tr><td>{{.Name}}{{if .VariantName}} ({{.VariantName}}){{end}}</td><td align="center">{{.Quantity}}</td><td align="right">{{brl .LineTotal}}</td></tr>{{end}}
			</tbody>
			<tfoot><tr><td colspan="2" align="right"><strong>Total:</strong></td><td align="right"><strong>{{brl .Order.Total}}</strong></td></tr></tfoot>
		</table>
		<p>Entrega: {{.Order.DeliveryAddress}} · {{.Order.DeliveryDate}}</p>
		<p>Pagamento: {{.Order.PaymentMethod}}</p>
		<p style="margin-top: 30px; color: #555;"><strong>{{.Store}}</strong></p>
	</div>
</body>
</html>`))

// RenderOrderEmail produit le HTML de l'e-mail de commande
func RenderOrderEmail(order models.Order, kind Kind, storeName string) (string, error) {
	var buf bytes.Buffer
	err := orderTemplate.Execute(&buf, map[string]any{
		"Order": order,
		"Admin": kind == KindAdmin,
		"Store": storeName,
	})
	if err != nil {
		return "", fmt.Errorf("rendu e-mail: %w", err)
	}
	return buf.String(), nil
}
