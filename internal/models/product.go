package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ProductAvailable = "available"
	ProductSoldOut   = "soldOut"
)

type Product struct {
	ID               string          `json:"id"`
	Slug             string          `json:"slug"`
	Name             string          `json:"name"`
	ShortDescription string          `json:"shortDescription"`
	LongDescription  string          `json:"longDescription"`
	Size             string          `json:"size"`
	BasePrice        decimal.Decimal `json:"basePrice"`
	Photos           []string        `json:"photos"` // la première est la couverture
	Featured         bool            `json:"featured"`
	Status           string          `json:"status"`
	DisplayOrder     int             `json:"displayOrder"`
	Stock            *int            `json:"stock,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// CoverPhoto retourne la photo de couverture ou "" si le produit n'a pas de photo
func (p Product) CoverPhoto() string {
	if len(p.Photos) == 0 {
		return ""
	}
	return p.Photos[0]
}

// OutOfStock vrai si le produit est épuisé (statut ou stock à zéro)
func (p Product) OutOfStock() bool {
	if p.Status == ProductSoldOut {
		return true
	}
	return p.Stock != nil && *p.Stock == 0
}

// ProductVariant est une déclinaison de prix persistée.
// La suppression est logique : IsActive passe à false.
type ProductVariant struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"productId"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	IsDefault    bool            `json:"isDefault"`
	DisplayOrder int             `json:"displayOrder"`
	IsActive     bool            `json:"isActive"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}
