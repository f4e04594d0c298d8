package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DeliveryTypeDelivery = "delivery"
	DeliveryTypePickup   = "pickup"

	PaymentMethodPix      = "pix"
	PaymentMethodCardLink = "card-link"

	PaymentStatusPending   = "pending"
	PaymentStatusConfirmed = "confirmed"
	PaymentStatusPaid      = "paid"
	PaymentStatusCancelled = "cancelled"

	// PickupAddress remplace l'adresse quand le client retire sur place
	PickupAddress = "Retirada no local"
)

type OrderItem struct {
	ProductID          string          `json:"productId"`
	VariantID          string          `json:"variantId,omitempty"`
	VariantName        string          `json:"variantName,omitempty"`
	VariantDescription string          `json:"variantDescription,omitempty"`
	Name               string          `json:"name"`
	Price              decimal.Decimal `json:"price"`
	Quantity           int             `json:"quantity"`
}

// LineTotal prix × quantité
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order : PaymentStatus (workflow) et Paid (argent reçu) sont indépendants.
type Order struct {
	ID              string          `json:"id"`
	CustomerName    string          `json:"customerName"`
	CustomerPhone   string          `json:"customerPhone"`
	Email           string          `json:"email,omitempty"`
	Items           []OrderItem     `json:"items"`
	Total           decimal.Decimal `json:"total"`
	DeliveryType    string          `json:"deliveryType"`
	DeliveryAddress string          `json:"deliveryAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	DeliveryDate    string          `json:"deliveryDate"`
	PaymentStatus   string          `json:"paymentStatus"`
	Paid            bool            `json:"paid"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// Subtotal somme des lignes, hors frais de livraison
func (o Order) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// ValidPaymentStatus vrai pour les quatre statuts connus
func ValidPaymentStatus(status string) bool {
	switch status {
	case PaymentStatusPending, PaymentStatusConfirmed, PaymentStatusPaid, PaymentStatusCancelled:
		return true
	}
	return false
}
