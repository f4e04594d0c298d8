package checkout

import (
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"noel_back_end/internal/models"
)

// Summary récapitulatif affiché au client avant validation
type Summary struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Total       decimal.Decimal `json:"total"`
}

// Summarize : les frais ne s'appliquent qu'à la livraison
func Summarize(subtotal decimal.Decimal, deliveryType string, fee decimal.Decimal) Summary {
	if deliveryType != models.DeliveryTypeDelivery {
		fee = decimal.Zero
	}
	return Summary{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       subtotal.Add(fee),
	}
}

// DeliveryFee lit delivery_fee dans la configuration du site ("40", "40.00" ou "40,00").
// Une valeur absente ou invalide vaut zéro.
func DeliveryFee(siteConfig map[string]string) decimal.Decimal {
	raw := strings.TrimSpace(siteConfig[models.ConfigDeliveryFee])
	if raw == "" {
		return decimal.Zero
	}
	fee, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
	if err != nil || fee.IsNegative() {
		log.Printf("⚠️ delivery_fee invalide: %q", raw)
		return decimal.Zero
	}
	return fee
}
