package orders

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"noel_back_end/internal/models"
)

// Input corps de POST /api/order. Items reste brut pour que la validation
// puisse distinguer "absent", "pas une liste" et "ligne invalide".
type Input struct {
	Name            string           `json:"name"`
	Phone           string           `json:"phone"`
	Email           string           `json:"email"`
	Items           json.RawMessage  `json:"items"`
	Total           *decimal.Decimal `json:"total"`
	DeliveryType    string           `json:"deliveryType"`
	DeliveryAddress string           `json:"deliveryAddress"`
	PaymentMethod   string           `json:"paymentMethod"`
	DeliveryDate    string           `json:"deliveryDate"`
}

var maxQuantity = decimal.NewFromInt(models.MaxItemQuantity)

type itemInput struct {
	ProductID          string           `json:"productId"`
	VariantID          string           `json:"variantId"`
	VariantName        string           `json:"variantName"`
	VariantDescription string           `json:"variantDescription"`
	Name               string           `json:"name"`
	Price              *decimal.Decimal `json:"price"`
	Quantity           *decimal.Decimal `json:"quantity"`
}

// validate applique les contrôles dans l'ordre, la première erreur l'emporte
func (in Input) validate(deliveryDates []string) ([]models.OrderItem, error) {
	var missing []string
	for _, f := range []struct {
		name  string
		empty bool
	}{
		{"name", strings.TrimSpace(in.Name) == ""},
		{"phone", strings.TrimSpace(in.Phone) == ""},
		{"items", itemsAbsent(in.Items)},
		{"deliveryType", strings.TrimSpace(in.DeliveryType) == ""},
		{"paymentMethod", strings.TrimSpace(in.PaymentMethod) == ""},
		{"deliveryDate", strings.TrimSpace(in.DeliveryDate) == ""},
	} {
		if f.empty {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, invalid("Campos obrigatórios ausentes: " + strings.Join(missing, ", "))
	}

	deliveryType := strings.TrimSpace(in.DeliveryType)
	if deliveryType == models.DeliveryTypeDelivery && strings.TrimSpace(in.DeliveryAddress) == "" {
		return nil, invalid("Endereço de entrega é obrigatório para entrega")
	}

	items, err := parseItems(in.Items)
	if err != nil {
		return nil, err
	}

	if deliveryType != models.DeliveryTypeDelivery && deliveryType != models.DeliveryTypePickup {
		return nil, invalid("Tipo de entrega inválido")
	}
	if pm := strings.TrimSpace(in.PaymentMethod); pm != models.PaymentMethodPix && pm != models.PaymentMethodCardLink {
		return nil, invalid("Forma de pagamento inválida")
	}
	if len(deliveryDates) > 0 && !slices.Contains(deliveryDates, strings.TrimSpace(in.DeliveryDate)) {
		return nil, invalid("Data de entrega inválida")
	}
	return items, nil
}

func itemsAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	switch string(trimmed) {
	case "", "null", `""`:
		return true
	}
	var list []json.RawMessage
	return json.Unmarshal(trimmed, &list) == nil && len(list) == 0
}

func parseItems(raw json.RawMessage) ([]models.OrderItem, error) {
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, invalid("Itens do pedido devem ser uma lista")
	}

	items := make([]models.OrderItem, 0, len(list))
	for _, elem := range list {
		var in itemInput
		if err := json.Unmarshal(elem, &in); err != nil || !in.complete() {
			return nil, &ValidationError{Message: "Item inválido no pedido", Item: elem}
		}
		items = append(items, models.OrderItem{
			ProductID:          strings.TrimSpace(in.ProductID),
			VariantID:          strings.TrimSpace(in.VariantID),
			VariantName:        strings.TrimSpace(in.VariantName),
			VariantDescription: strings.TrimSpace(in.VariantDescription),
			Name:               strings.TrimSpace(in.Name),
			Price:              *in.Price,
			Quantity:           int(in.Quantity.IntPart()),
		})
	}
	return items, nil
}

func (i itemInput) complete() bool {
	if strings.TrimSpace(i.ProductID) == "" || strings.TrimSpace(i.Name) == "" {
		return false
	}
	if i.Price == nil || i.Quantity == nil {
		return false
	}
	return !i.Price.IsNegative() && i.Quantity.IsInteger() && i.Quantity.IsPositive() &&
		i.Quantity.LessThanOrEqual(maxQuantity)
}
