package orders

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"noel_back_end/internal/models"
	"noel_back_end/internal/notify"
)

var paymentLabels = map[string]string{
	models.PaymentMethodPix:      "PIX",
	models.PaymentMethodCardLink: "Link de pagamento (cartão)",
}

// BuildMessage texte du récapitulatif envoyé sur WhatsApp
func BuildMessage(order models.Order, fee decimal.Decimal, storeName string) string {
	var b strings.Builder

	title := "Novo pedido"
	if storeName != "" {
		title += " - " + storeName
	}
	fmt.Fprintf(&b, "🎄 *%s*\n\n", title)

	fmt.Fprintf(&b, "*Cliente:* %s\n", order.CustomerName)
	fmt.Fprintf(&b, "*Telefone:* %s\n", order.CustomerPhone)
	if order.Email != "" {
		fmt.Fprintf(&b, "*E-mail:* %s\n", order.Email)
	}

	b.WriteString("\n*Itens:*\n")
	for _, item := range order.Items {
		name := item.Name
		if item.VariantName != "" {
			name += " (" + item.VariantName + ")"
		}
		fmt.Fprintf(&b, "• %dx %s - %s\n", item.Quantity, name, notify.FormatBRL(item.LineTotal()))
	}

	fmt.Fprintf(&b, "\n*Subtotal:* %s\n", notify.FormatBRL(order.Subtotal()))
	if order.DeliveryType == models.DeliveryTypeDelivery && fee.IsPositive() {
		fmt.Fprintf(&b, "*Taxa de entrega:* %s\n", notify.FormatBRL(fee))
	}
	fmt.Fprintf(&b, "*Total:* %s\n\n", notify.FormatBRL(order.Total))

	if order.DeliveryType == models.DeliveryTypeDelivery {
		fmt.Fprintf(&b, "*Entrega:* %s\n", order.DeliveryAddress)
	} else {
		fmt.Fprintf(&b, "*Entrega:* %s\n", models.PickupAddress)
	}
	fmt.Fprintf(&b, "*Data:* %s\n", order.DeliveryDate)

	payment, ok := paymentLabels[order.PaymentMethod]
	if !ok {
		payment = order.PaymentMethod
	}
	fmt.Fprintf(&b, "*Pagamento:* %s", payment)
	return b.String()
}
