package orders

import (
	"encoding/json"
	"errors"
)

// ErrNotConfigured une dépendance indispensable (base, configuration) est absente
var ErrNotConfigured = errors.New("orders: service non configuré")

// ValidationError entrée client refusée avant toute écriture
type ValidationError struct {
	Message string
	Item    json.RawMessage // ligne fautive renvoyée au client, si applicable
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(message string) *ValidationError {
	return &ValidationError{Message: message}
}
