package models

import "github.com/shopspring/decimal"

// MaxItemQuantity plafond d'une ligne de panier ou de commande
const MaxItemQuantity = 999

// CartItem est identifié par le couple (ProductID, VariantID).
// Name, Price et les libellés de variante sont figés au moment de l'ajout.
type CartItem struct {
	ProductID          string          `json:"productId"`
	VariantID          string          `json:"variantId,omitempty"`
	Name               string          `json:"name"`
	Price              decimal.Decimal `json:"price"`
	Quantity           int             `json:"quantity"`
	VariantName        string          `json:"variantName,omitempty"`
	VariantDescription string          `json:"variantDescription,omitempty"`
	Product            *Product        `json:"product,omitempty"`
}

// LineTotal prix × quantité
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
