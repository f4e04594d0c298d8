package handlers

import (
	"context"
	"log"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"noel_back_end/internal/models"
	"noel_back_end/internal/repository"
)

type productInput struct {
	Name             string          `json:"name" binding:"required"`
	Slug             string          `json:"slug"`
	ShortDescription string          `json:"shortDescription"`
	LongDescription  string          `json:"longDescription"`
	Size             string          `json:"size"`
	BasePrice        decimal.Decimal `json:"basePrice"`
	Featured         bool            `json:"featured"`
	Status           string          `json:"status"`
	DisplayOrder     int             `json:"displayOrder"`
	Stock            *int            `json:"stock"`
}

func (in productInput) valid() (string, bool) {
	if strings.TrimSpace(in.Name) == "" {
		return "Nome obrigatório", false
	}
	if in.BasePrice.IsNegative() {
		return "Preço inválido", false
	}
	if in.Status != "" && in.Status != models.ProductAvailable && in.Status != models.ProductSoldOut {
		return "Status inválido", false
	}
	if in.Stock != nil && *in.Stock < 0 {
		return "Estoque inválido", false
	}
	return "", true
}

func (in productInput) apply(p *models.Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.Slug = strings.TrimSpace(in.Slug)
	p.ShortDescription = strings.TrimSpace(in.ShortDescription)
	p.LongDescription = strings.TrimSpace(in.LongDescription)
	p.Size = strings.TrimSpace(in.Size)
	p.BasePrice = in.BasePrice
	p.Featured = in.Featured
	p.Status = in.Status
	p.DisplayOrder = in.DisplayOrder
	p.Stock = in.Stock
}

func bindProduct(c *gin.Context) (productInput, bool) {
	var input productInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
		return input, false
	}
	if msg, ok := input.valid(); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return input, false
	}
	return input, true
}

// catalogChanged invalide le cache et met l'index de recherche à jour
func (h *Handler) catalogChanged(ctx context.Context, p *models.Product, deleted ...string) {
	h.invalidateCatalog(ctx)
	if h.search == nil {
		return
	}
	if p != nil {
		if err := h.search.IndexProduct(ctx, *p); err != nil {
			log.Printf("⚠️ Indexation %s: %v", p.ID, err)
		}
	}
	for _, id := range deleted {
		if err := h.search.DeleteProduct(ctx, id); err != nil {
			log.Printf("⚠️ Désindexation %s: %v", id, err)
		}
	}
}

// AdminListProducts GET /api/admin/products
func (h *Handler) AdminListProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context())
	if err != nil {
		h.serverError(c, "Erro ao carregar produtos", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// CreateProduct POST /api/admin/products
func (h *Handler) CreateProduct(c *gin.Context) {
	input, ok := bindProduct(c)
	if !ok {
		return
	}
	var p models.Product
	input.apply(&p)
	p.Photos = []string{}

	ctx := c.Request.Context()
	if err := h.catalog.CreateProduct(ctx, &p); err != nil {
		h.storeError(c, "Erro ao criar produto", err)
		return
	}
	log.Printf("🆕 Produit créé: %s (%s)", p.Name, p.Slug)
	h.catalogChanged(ctx, &p)
	c.JSON(http.StatusCreated, p)
}

// UpdateProduct PUT /api/admin/products/:id
func (h *Handler) UpdateProduct(c *gin.Context) {
	input, ok := bindProduct(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	p, err := h.catalog.GetProduct(ctx, c.Param("id"))
	if err != nil {
		h.storeError(c, "Erro ao carregar produto", err)
		return
	}
	input.apply(p)
	if err := h.catalog.UpdateProduct(ctx, p); err != nil {
		h.storeError(c, "Erro ao atualizar produto", err)
		return
	}
	h.catalogChanged(ctx, p)
	c.JSON(http.StatusOK, p)
}

// DeleteProduct DELETE /api/admin/products/:id (variantes comprises)
func (h *Handler) DeleteProduct(c *gin.Context) {
	h.deleteProducts(c, []string{c.Param("id")})
}

// DeleteProducts POST /api/admin/products/bulk-delete {ids}
func (h *Handler) DeleteProducts(c *gin.Context) {
	var input struct {
		IDs []string `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || len(input.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids obrigatório"})
		return
	}
	h.deleteProducts(c, input.IDs)
}

func (h *Handler) deleteProducts(c *gin.Context, ids []string) {
	ctx := c.Request.Context()
	if err := h.catalog.DeleteProducts(ctx, ids...); err != nil {
		h.storeError(c, "Erro ao excluir produto", err)
		return
	}
	log.Printf("🗑️ %d produit(s) supprimé(s)", len(ids))
	h.catalogChanged(ctx, nil, ids...)
	c.JSON(http.StatusOK, gin.H{"success": true, "deleted": len(ids)})
}

// MoveProduct POST /api/admin/products/:id/move {direction: "up"|"down"}
func (h *Handler) MoveProduct(c *gin.Context) {
	var input struct {
		Direction string `json:"direction" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "direction obrigatório"})
		return
	}
	var dir repository.Direction
	switch input.Direction {
	case "up":
		dir = repository.Up
	case "down":
		dir = repository.Down
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "direction deve ser up ou down"})
		return
	}

	ctx := c.Request.Context()
	if err := h.catalog.MoveProduct(ctx, c.Param("id"), dir); err != nil {
		h.storeError(c, "Erro ao reordenar produtos", err)
		return
	}
	h.invalidateCatalog(ctx)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UploadPhoto POST /api/admin/products/:id/photos (multipart "file")
func (h *Handler) UploadPhoto(c *gin.Context) {
	if h.images == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Armazenamento de imagens indisponível"})
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Arquivo ausente"})
		return
	}
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "O arquivo deve ser uma imagem"})
		return
	}

	ctx := c.Request.Context()
	p, err := h.catalog.GetProduct(ctx, c.Param("id"))
	if err != nil {
		h.storeError(c, "Erro ao carregar produto", err)
		return
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Arquivo ilegível"})
		return
	}
	defer f.Close()

	url, err := h.images.Upload(ctx, p.ID, header.Filename, header.Header.Get("Content-Type"), f, header.Size)
	if err != nil {
		h.serverError(c, "Erro ao enviar imagem", err)
		return
	}
	photos := append(slices.Clone(p.Photos), url)
	if err := h.catalog.SetPhotos(ctx, p.ID, photos); err != nil {
		h.storeError(c, "Erro ao salvar fotos", err)
		return
	}
	h.invalidateCatalog(ctx)
	c.JSON(http.StatusOK, gin.H{"url": url, "photos": photos})
}

// RemovePhoto DELETE /api/admin/products/:id/photos {url}
func (h *Handler) RemovePhoto(c *gin.Context) {
	var input struct {
		URL string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url obrigatório"})
		return
	}

	ctx := c.Request.Context()
	p, err := h.catalog.GetProduct(ctx, c.Param("id"))
	if err != nil {
		h.storeError(c, "Erro ao carregar produto", err)
		return
	}
	idx := slices.Index(p.Photos, input.URL)
	if idx < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Foto não encontrada"})
		return
	}
	photos := slices.Delete(slices.Clone(p.Photos), idx, idx+1)
	if err := h.catalog.SetPhotos(ctx, p.ID, photos); err != nil {
		h.storeError(c, "Erro ao salvar fotos", err)
		return
	}
	if h.images != nil {
		if err := h.images.Remove(ctx, input.URL); err != nil {
			log.Printf("⚠️ Objet %s non supprimé: %v", input.URL, err)
		}
	}
	h.invalidateCatalog(ctx)
	c.JSON(http.StatusOK, gin.H{"photos": photos})
}

type variantInput struct {
	Name         string          `json:"name" binding:"required"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	IsDefault    bool            `json:"isDefault"`
	DisplayOrder int             `json:"displayOrder"`
	IsActive     *bool           `json:"isActive"`
}

// ListVariants GET /api/admin/products/:id/variants (inactives comprises)
func (h *Handler) ListVariants(c *gin.Context) {
	vs, err := h.catalog.ListVariants(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.storeError(c, "Erro ao carregar variações", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"variants": vs})
}

// SaveVariant POST /api/admin/products/:id/variants et PUT .../:variantId
func (h *Handler) SaveVariant(c *gin.Context) {
	var input variantInput
	if err := c.ShouldBindJSON(&input); err != nil || strings.TrimSpace(input.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nome obrigatório"})
		return
	}
	if !input.Price.GreaterThan(decimal.Zero) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "O preço deve ser maior que zero"})
		return
	}

	v := models.ProductVariant{
		ID:           c.Param("variantId"),
		ProductID:    c.Param("id"),
		Name:         strings.TrimSpace(input.Name),
		Description:  strings.TrimSpace(input.Description),
		Price:        input.Price,
		IsDefault:    input.IsDefault,
		DisplayOrder: input.DisplayOrder,
		IsActive:     input.IsActive == nil || *input.IsActive,
	}
	ctx := c.Request.Context()
	if err := h.catalog.SaveVariant(ctx, &v); err != nil {
		h.storeError(c, "Erro ao salvar variação", err)
		return
	}
	h.invalidateCatalog(ctx)
	status := http.StatusOK
	if c.Param("variantId") == "" {
		status = http.StatusCreated
	}
	c.JSON(status, v)
}

// DeleteVariant DELETE /api/admin/products/:id/variants/:variantId (suppression logique)
func (h *Handler) DeleteVariant(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.catalog.DeactivateVariant(ctx, c.Param("id"), c.Param("variantId")); err != nil {
		h.storeError(c, "Erro ao excluir variação", err)
		return
	}
	h.invalidateCatalog(ctx)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
