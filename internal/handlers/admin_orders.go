package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"noel_back_end/internal/orders"
)

func (h *Handler) orderError(c *gin.Context, message string, err error) {
	var verr *orders.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
		return
	}
	h.storeError(c, message, err)
}

// ListOrders GET /api/admin/orders
func (h *Handler) ListOrders(c *gin.Context) {
	list, err := h.orders.List(c.Request.Context())
	if err != nil {
		h.orderError(c, "Erro ao carregar pedidos", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

// GetOrder GET /api/admin/orders/:id
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.orderError(c, "Erro ao carregar pedido", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// SetOrderStatus PATCH /api/admin/orders/:id/status {status}
func (h *Handler) SetOrderStatus(c *gin.Context) {
	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status obrigatório"})
		return
	}
	if err := h.orders.SetStatus(c.Request.Context(), c.Param("id"), input.Status); err != nil {
		h.orderError(c, "Erro ao atualizar status", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "paymentStatus": input.Status})
}

// ToggleOrderPaid POST /api/admin/orders/:id/paid ; {paid} force la valeur, sinon bascule
func (h *Handler) ToggleOrderPaid(c *gin.Context) {
	var input struct {
		Paid *bool `json:"paid"`
	}
	_ = c.ShouldBindJSON(&input)

	ctx := c.Request.Context()
	id := c.Param("id")
	var (
		paid bool
		err  error
	)
	if input.Paid != nil {
		paid = *input.Paid
		err = h.orders.SetPaid(ctx, id, paid)
	} else {
		paid, err = h.orders.TogglePaid(ctx, id)
	}
	if err != nil {
		h.orderError(c, "Erro ao atualizar pagamento", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "paid": paid})
}

// DeleteOrder DELETE /api/admin/orders/:id
func (h *Handler) DeleteOrder(c *gin.Context) {
	if err := h.orders.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.orderError(c, "Erro ao excluir pedido", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
