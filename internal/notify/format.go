// Package notify envoie les notifications de commande : e-mail et lien WhatsApp.
package notify

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var brl = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL formate un montant en réais : R$ 1.234,56
func FormatBRL(d decimal.Decimal) string {
	scale, _ := currency.Standard.Rounding(currency.BRL)
	rounded := d.Round(int32(scale))

	out := "R$ " + brl.Sprint(number.Decimal(rounded.Abs().InexactFloat64(), number.Scale(scale)))
	if rounded.IsNegative() {
		out = "-" + out
	}
	return out
}
