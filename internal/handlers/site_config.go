package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"noel_back_end/internal/models"
)

// GetSiteConfig GET /api/admin/site-config
func (h *Handler) GetSiteConfig(c *gin.Context) {
	entries, err := h.siteConfig.Entries(c.Request.Context())
	if err != nil {
		h.serverError(c, "Erro ao carregar configurações", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// UpsertSiteConfig PUT /api/admin/site-config {key, value, type}
func (h *Handler) UpsertSiteConfig(c *gin.Context) {
	var e models.SiteConfigEntry
	if err := c.ShouldBindJSON(&e); err != nil || strings.TrimSpace(e.Key) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key obrigatório"})
		return
	}
	e.Key = strings.TrimSpace(e.Key)
	e.Value = strings.TrimSpace(e.Value)
	if e.Type == "" {
		e.Type = "text"
	}
	if err := h.siteConfig.Upsert(c.Request.Context(), e); err != nil {
		h.serverError(c, "Erro ao salvar configuração", err)
		return
	}
	c.JSON(http.StatusOK, e)
}
