package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"noel_back_end/internal/checkout"
	"noel_back_end/internal/models"
	"noel_back_end/internal/notify"
	"noel_back_end/internal/orders"
)

// NotifyEmail POST /api/admin/notify/email {to, order, kind}
func (h *Handler) NotifyEmail(c *gin.Context) {
	var input struct {
		To    string       `json:"to" binding:"required"`
		Order models.Order `json:"order"`
		Kind  notify.Kind  `json:"kind"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
		return
	}
	if !input.Kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind deve ser admin ou customer"})
		return
	}
	if err := h.mailer.OrderEmail(c.Request.Context(), input.To, input.Order, input.Kind); err != nil {
		h.serverError(c, "Erro ao enviar e-mail", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// NotifyWhatsApp POST /api/admin/notify/whatsapp {phone, order} → {whatsappUrl, qrCode}
func (h *Handler) NotifyWhatsApp(c *gin.Context) {
	var input struct {
		Phone string       `json:"phone" binding:"required"`
		Order models.Order `json:"order"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
		return
	}

	siteConfig, err := h.siteConfig.SiteConfig(c.Request.Context())
	if err != nil {
		logDegraded("configuration du site", err)
	}
	message := orders.BuildMessage(input.Order, checkout.DeliveryFee(siteConfig), siteConfig[models.ConfigStoreName])

	link := notify.WhatsAppURL(input.Phone, message)
	if link == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Telefone inválido"})
		return
	}
	qr, err := notify.QRCode(link)
	if err != nil {
		h.serverError(c, "Erro ao gerar QR code", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"whatsappUrl": link, "qrCode": qr})
}
