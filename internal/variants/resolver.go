// Package variants détermine les déclinaisons de prix d'un produit.
package variants

import (
	"cmp"
	"encoding/json"
	"slices"

	"github.com/shopspring/decimal"

	"noel_back_end/internal/models"
)

// Kind distingue une variante persistée d'une variante synthétisée
type Kind int

const (
	KindReal Kind = iota
	KindVirtual
)

// MarshalJSON expose le genre sous forme de booléen "virtual"
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k == KindVirtual)
}

func (k *Kind) UnmarshalJSON(data []byte) error {
	var virtual bool
	if err := json.Unmarshal(data, &virtual); err != nil {
		return err
	}
	*k = KindReal
	if virtual {
		*k = KindVirtual
	}
	return nil
}

const (
	virtualPrefix = "virtual-"
	standardName  = "Standard"
)

// Variant est la vue résolue d'une déclinaison. Une variante KindVirtual
// n'est jamais écrite en base.
type Variant struct {
	Kind         Kind            `json:"virtual"`
	ID           string          `json:"id"`
	ProductID    string          `json:"productId"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	IsDefault    bool            `json:"isDefault"`
	DisplayOrder int             `json:"displayOrder"`
}

func (v Variant) IsVirtual() bool { return v.Kind == KindVirtual }

func fromModel(m models.ProductVariant) Variant {
	return Variant{
		Kind:         KindReal,
		ID:           m.ID,
		ProductID:    m.ProductID,
		Name:         m.Name,
		Description:  m.Description,
		Price:        m.Price,
		IsDefault:    m.IsDefault,
		DisplayOrder: m.DisplayOrder,
	}
}

// VirtualFor synthétise l'unique variante d'un produit sans déclinaison active
func VirtualFor(p models.Product) Variant {
	name := p.Size
	if name == "" {
		name = standardName
	}
	return Variant{
		Kind:        KindVirtual,
		ID:          virtualPrefix + p.ID,
		ProductID:   p.ID,
		Name:        name,
		Description: p.ShortDescription,
		Price:       p.BasePrice,
		IsDefault:   true,
	}
}

// Resolve retourne toujours au moins une variante : les variantes actives du
// produit triées par (DisplayOrder, CreatedAt), sinon la variante virtuelle.
func Resolve(p models.Product, all []models.ProductVariant) []Variant {
	active := make([]models.ProductVariant, 0, len(all))
	for _, v := range all {
		if v.ProductID == p.ID && v.IsActive {
			active = append(active, v)
		}
	}
	if len(active) == 0 {
		return []Variant{VirtualFor(p)}
	}

	slices.SortStableFunc(active, func(a, b models.ProductVariant) int {
		if c := cmp.Compare(a.DisplayOrder, b.DisplayOrder); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	out := make([]Variant, len(active))
	for i, v := range active {
		out[i] = fromModel(v)
	}
	return out
}

// Default la variante marquée par défaut, sinon la première.
// vs doit provenir de Resolve (jamais vide).
func Default(vs []Variant) Variant {
	for _, v := range vs {
		if v.IsDefault {
			return v
		}
	}
	return vs[0]
}

// HasChoice vrai si l'interface doit proposer un choix de variante :
// une variante unique, réelle ou virtuelle, ne laisse rien à choisir.
func HasChoice(vs []Variant) bool {
	return len(vs) > 1
}

// Find cherche une variante par identifiant
func Find(vs []Variant, id string) (Variant, bool) {
	for _, v := range vs {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}
