package notify

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"
)

const waBase = "https://wa.me/"

// Digits ne garde que les chiffres d'un numéro de téléphone
func Digits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EncodeMessage encode le texte pour le paramètre text de wa.me (espaces en %20)
func EncodeMessage(message string) string {
	return strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
}

// WhatsAppURL lien wa.me pré-rempli, "" si le numéro ne contient aucun chiffre
func WhatsAppURL(phone, message string) string {
	digits := Digits(phone)
	if digits == "" {
		return ""
	}
	return waBase + digits + "?text=" + EncodeMessage(message)
}

// QRCode encode le lien en PNG, retourné en data URI
func QRCode(link string) (string, error) {
	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("génération QR: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
