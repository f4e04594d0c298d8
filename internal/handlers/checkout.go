package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"noel_back_end/internal/models"
	"noel_back_end/internal/orders"
)

// GetDraft GET /api/checkout/draft
func (h *Handler) GetDraft(c *gin.Context) {
	id := sessionID(c)
	c.JSON(http.StatusOK, gin.H{
		"formData":  h.drafts.Load(c.Request.Context(), id),
		"sessionId": id,
	})
}

// SaveDraft POST /api/checkout/draft : écriture différée, jamais bloquante
func (h *Handler) SaveDraft(c *gin.Context) {
	var input struct {
		FormData *models.CheckoutForm `json:"formData"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.FormData == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "formData obrigatório"})
		return
	}
	id := sessionID(c)
	if err := h.drafts.Schedule(id, *input.FormData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "sessionId": id})
}

// DeleteDraft DELETE /api/checkout/draft
func (h *Handler) DeleteDraft(c *gin.Context) {
	if err := h.drafts.Clear(c.Request.Context(), sessionID(c)); err != nil {
		h.serverError(c, "Erro ao limpar rascunho", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CreateOrder POST /api/order
func (h *Handler) CreateOrder(c *gin.Context) {
	var input orders.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "JSON inválido"})
		return
	}

	ctx := c.Request.Context()
	result, err := h.orders.Submit(ctx, input)
	if err != nil {
		var verr *orders.ValidationError
		switch {
		case errors.As(err, &verr):
			body := gin.H{"error": verr.Message}
			if len(verr.Item) > 0 {
				body["item"] = verr.Item
			}
			c.JSON(http.StatusBadRequest, body)
		case errors.Is(err, orders.ErrNotConfigured):
			h.serverError(c, "Erro de configuração do servidor", err)
		default:
			h.serverError(c, "Erro ao criar pedido", err)
		}
		return
	}

	// commande confirmée : le panier et le brouillon de la session sont vidés
	if id := sessionID(c); id != "" {
		h.carts.Get(ctx, id).ClearCart()
		if err := h.drafts.Clear(ctx, id); err != nil {
			log.Printf("⚠️ Brouillon %s non supprimé après commande: %v", id, err)
		}
	}

	body := gin.H{
		"success": true,
		"orderId": result.OrderID,
		"message": result.Message,
	}
	if result.WhatsAppURL != "" {
		body["whatsappUrl"] = result.WhatsAppURL
	}
	c.JSON(http.StatusOK, body)
}
