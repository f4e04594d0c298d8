package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"noel_back_end/internal/cache"
	"noel_back_end/internal/models"
	"noel_back_end/internal/variants"
)

// CatalogEntry produit avec ses variantes résolues
type CatalogEntry struct {
	models.Product
	Variants       []variants.Variant `json:"variants"`
	DefaultVariant variants.Variant   `json:"defaultVariant"`
	HasChoice      bool               `json:"hasChoice"`
}

func entryFor(p models.Product, all []models.ProductVariant) CatalogEntry {
	vs := variants.Resolve(p, all)
	return CatalogEntry{
		Product:        p,
		Variants:       vs,
		DefaultVariant: variants.Default(vs),
		HasChoice:      variants.HasChoice(vs),
	}
}

// loadVariants une erreur de lecture retombe sur les variantes virtuelles
func (h *Handler) loadVariants(ctx context.Context, productID string) []models.ProductVariant {
	var (
		vs  []models.ProductVariant
		err error
	)
	if productID == "" {
		vs, err = h.catalog.ListAllVariants(ctx)
	} else {
		vs, err = h.catalog.ListVariants(ctx, productID)
	}
	if err != nil {
		logDegraded("variantes", err)
		return nil
	}
	return vs
}

func (h *Handler) catalogEntries(ctx context.Context) ([]CatalogEntry, error) {
	if entries, ok := cache.GetJSON[[]CatalogEntry](ctx, h.redis, cache.CatalogKey); ok {
		return entries, nil
	}

	products, err := h.catalog.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	all := h.loadVariants(ctx, "")
	entries := make([]CatalogEntry, 0, len(products))
	for _, p := range products {
		entries = append(entries, entryFor(p, all))
	}
	cache.SetJSON(ctx, h.redis, cache.CatalogKey, entries, cache.CatalogTTL)
	return entries, nil
}

// signPhotos remplace les URLs des photos par des liens temporaires quand le
// bucket est privé. Une signature en échec garde l'URL d'origine.
func (h *Handler) signPhotos(ctx context.Context, entries []CatalogEntry) {
	ttl := h.cfg.MinIO.SignedURLTTL
	if h.images == nil || ttl <= 0 {
		return
	}
	for i := range entries {
		photos := make([]string, len(entries[i].Photos))
		for j, photo := range entries[i].Photos {
			signed, err := h.images.SignedURL(ctx, photo, ttl)
			if err != nil {
				log.Printf("⚠️ Signature photo %s: %v", photo, err)
				signed = photo
			}
			photos[j] = signed
		}
		entries[i].Photos = photos
	}
}

func (h *Handler) invalidateCatalog(ctx context.Context) {
	cache.Invalidate(ctx, h.redis, cache.CatalogKey)
}

// ListProducts GET /api/products
func (h *Handler) ListProducts(c *gin.Context) {
	entries, err := h.catalogEntries(c.Request.Context())
	if err != nil {
		h.serverError(c, "Erro ao carregar produtos", err)
		return
	}
	h.signPhotos(c.Request.Context(), entries)
	c.JSON(http.StatusOK, gin.H{"products": entries})
}

// GetProductBySlug GET /api/products/:slug
func (h *Handler) GetProductBySlug(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.catalog.GetProductBySlug(ctx, c.Param("slug"))
	if err != nil {
		h.storeError(c, "Erro ao carregar produto", err)
		return
	}
	entries := []CatalogEntry{entryFor(*p, h.loadVariants(ctx, p.ID))}
	h.signPhotos(ctx, entries)
	c.JSON(http.StatusOK, entries[0])
}

// SearchProducts GET /api/products/search?q=
func (h *Handler) SearchProducts(c *gin.Context) {
	if h.search == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Busca indisponível"})
		return
	}
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Parâmetro q obrigatório"})
		return
	}

	ctx := c.Request.Context()
	ids, err := h.search.SearchProducts(ctx, query)
	if err != nil {
		h.serverError(c, "Erro na busca", err)
		return
	}
	entries, err := h.catalogEntries(ctx)
	if err != nil {
		h.serverError(c, "Erro ao carregar produtos", err)
		return
	}

	byID := make(map[string]CatalogEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	results := make([]CatalogEntry, 0, len(ids))
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			results = append(results, e)
		}
	}
	h.signPhotos(ctx, results)
	c.JSON(http.StatusOK, gin.H{"products": results, "query": query})
}
