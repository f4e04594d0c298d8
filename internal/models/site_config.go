package models

// Clés connues de la configuration du site
const (
	ConfigDeliveryPhone = "delivery_phone"
	ConfigSalesEmail    = "sales_email"
	ConfigDeliveryFee   = "delivery_fee"
	ConfigStoreName     = "store_name"
)

type SiteConfigEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Type  string `json:"type"` // "text", "number", "phone", "email"...
}
