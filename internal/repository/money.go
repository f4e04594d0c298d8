// Package repository implémente la persistance ScyllaDB du catalogue,
// des commandes, des brouillons et de la configuration du site.
package repository

import (
	"github.com/gocql/gocql"
	"github.com/shopspring/decimal"
	"gopkg.in/inf.v0"
)

// toDec convertit vers le type decimal CQL
func toDec(d decimal.Decimal) *inf.Dec {
	return new(inf.Dec).SetUnscaledBig(d.Coefficient()).SetScale(inf.Scale(-d.Exponent()))
}

func fromDec(d *inf.Dec) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(d.UnscaledBig(), -int32(d.Scale()))
}

// parseID : un identifiant mal formé ne peut désigner aucune ligne
func parseID(id string) (gocql.UUID, error) {
	u, err := gocql.ParseUUID(id)
	if err != nil {
		return gocql.UUID{}, ErrNotFound
	}
	return u, nil
}

func notFound(err error) error {
	if err == gocql.ErrNotFound {
		return ErrNotFound
	}
	return err
}
