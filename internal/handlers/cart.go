package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"noel_back_end/internal/cart"
	"noel_back_end/internal/checkout"
	"noel_back_end/internal/models"
	"noel_back_end/internal/variants"
)

func (h *Handler) cartFor(c *gin.Context) *cart.Store {
	return h.carts.Get(c.Request.Context(), sessionID(c))
}

func cartBody(s *cart.Store) gin.H {
	return gin.H{
		"items": s.Items(),
		"total": s.Total(),
		"count": s.ItemCount(),
	}
}

// GetCart GET /api/cart
func (h *Handler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, cartBody(h.cartFor(c)))
}

// AddCartItem POST /api/cart/items
func (h *Handler) AddCartItem(c *gin.Context) {
	var input struct {
		ProductID string `json:"productId" binding:"required"`
		VariantID string `json:"variantId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
		return
	}

	ctx := c.Request.Context()
	p, err := h.catalog.GetProduct(ctx, input.ProductID)
	if err != nil {
		h.storeError(c, "Erro ao carregar produto", err)
		return
	}
	if p.OutOfStock() {
		c.JSON(http.StatusConflict, gin.H{"error": "Produto esgotado"})
		return
	}

	vs := variants.Resolve(*p, h.loadVariants(ctx, p.ID))
	selected := variants.Default(vs)
	if input.VariantID != "" {
		v, ok := variants.Find(vs, input.VariantID)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Variação inválida"})
			return
		}
		selected = v
	}

	store := h.cartFor(c)
	ev := store.AddToCart(*p, &selected)
	body := cartBody(store)
	body["item"] = ev.Item
	body["message"] = ev.Message
	c.JSON(http.StatusOK, body)
}

// UpdateCartItem PATCH /api/cart/items/:productId
func (h *Handler) UpdateCartItem(c *gin.Context) {
	var input struct {
		Delta     int    `json:"delta"`
		VariantID string `json:"variantId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Delta == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
		return
	}
	store := h.cartFor(c)
	store.UpdateQuantity(c.Param("productId"), input.Delta, input.VariantID)
	c.JSON(http.StatusOK, cartBody(store))
}

// RemoveCartItem DELETE /api/cart/items/:productId?variantId=
func (h *Handler) RemoveCartItem(c *gin.Context) {
	store := h.cartFor(c)
	store.RemoveFromCart(c.Param("productId"), c.Query("variantId"))
	c.JSON(http.StatusOK, cartBody(store))
}

// ClearCart DELETE /api/cart
func (h *Handler) ClearCart(c *gin.Context) {
	store := h.cartFor(c)
	store.ClearCart()
	c.JSON(http.StatusOK, cartBody(store))
}

// CheckoutSummary GET /api/checkout/summary?deliveryType=
func (h *Handler) CheckoutSummary(c *gin.Context) {
	ctx := c.Request.Context()
	siteConfig, err := h.siteConfig.SiteConfig(ctx)
	if err != nil {
		logDegraded("configuration du site", err)
	}
	deliveryType := c.DefaultQuery("deliveryType", models.DeliveryTypeDelivery)
	summary := checkout.Summarize(h.cartFor(c).Total(), deliveryType, checkout.DeliveryFee(siteConfig))
	c.JSON(http.StatusOK, summary)
}
