package models

import "time"

// CheckoutForm est l'instantané du formulaire de commande en cours
type CheckoutForm struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	DeliveryType  string `json:"deliveryType"`
	Address       string `json:"address"`
	PaymentMethod string `json:"paymentMethod"`
	DeliveryDate  string `json:"deliveryDate"`
}

type CheckoutDraft struct {
	SessionID string       `json:"sessionId"`
	FormData  CheckoutForm `json:"formData"`
	ExpiresAt time.Time    `json:"expiresAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Expired vrai si le brouillon a dépassé son expiration
func (d CheckoutDraft) Expired(now time.Time) bool {
	return !d.ExpiresAt.IsZero() && now.After(d.ExpiresAt)
}
