// Package handlers expose l'API HTTP de la boutique (gin).
package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"noel_back_end/internal/cart"
	"noel_back_end/internal/checkout"
	"noel_back_end/internal/config"
	"noel_back_end/internal/dashboard"
	"noel_back_end/internal/middleware"
	"noel_back_end/internal/models"
	"noel_back_end/internal/notify"
	"noel_back_end/internal/orders"
	"noel_back_end/internal/repository"
)

// Catalog accès aux produits et variantes
type Catalog interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	SetPhotos(ctx context.Context, id string, photos []string) error
	DeleteProducts(ctx context.Context, ids ...string) error
	MoveProduct(ctx context.Context, id string, dir repository.Direction) error
	ListVariants(ctx context.Context, productID string) ([]models.ProductVariant, error)
	ListAllVariants(ctx context.Context) ([]models.ProductVariant, error)
	SaveVariant(ctx context.Context, v *models.ProductVariant) error
	DeactivateVariant(ctx context.Context, productID, id string) error
}

// SiteConfigStore configuration du site avec cache
type SiteConfigStore interface {
	SiteConfig(ctx context.Context) (map[string]string, error)
	Entries(ctx context.Context) ([]models.SiteConfigEntry, error)
	Upsert(ctx context.Context, e models.SiteConfigEntry) error
}

// ImageStore stockage des photos produit
type ImageStore interface {
	Upload(ctx context.Context, productID, filename, contentType string, r io.Reader, size int64) (string, error)
	Remove(ctx context.Context, imageURL string) error
	SignedURL(ctx context.Context, imageURL string, ttl time.Duration) (string, error)
}

// Searcher index de recherche du catalogue
type Searcher interface {
	IndexProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	SearchProducts(ctx context.Context, query string) ([]string, error)
}

type OrderMailer interface {
	OrderEmail(ctx context.Context, to string, order models.Order, kind notify.Kind) error
}

// Deps dépendances du Handler. Images, Search et Redis sont optionnels.
type Deps struct {
	Config     *config.Config
	Catalog    Catalog
	SiteConfig SiteConfigStore
	Orders     *orders.Service
	Carts      *cart.Registry
	Drafts     *checkout.DraftSync
	Dashboard  dashboard.Source
	Mailer     OrderMailer
	Images     ImageStore
	Search     Searcher
	Redis      redis.Cmdable
}

type Handler struct {
	cfg        *config.Config
	catalog    Catalog
	siteConfig SiteConfigStore
	orders     *orders.Service
	carts      *cart.Registry
	drafts     *checkout.DraftSync
	dashboard  dashboard.Source
	mailer     OrderMailer
	images     ImageStore
	search     Searcher
	redis      redis.Cmdable
	loc        *time.Location
	upgrader   websocket.Upgrader
}

func NewHandler(d Deps) *Handler {
	h := &Handler{
		cfg:        d.Config,
		catalog:    d.Catalog,
		siteConfig: d.SiteConfig,
		orders:     d.Orders,
		carts:      d.Carts,
		drafts:     d.Drafts,
		dashboard:  d.Dashboard,
		mailer:     d.Mailer,
		images:     d.Images,
		search:     d.Search,
		redis:      d.Redis,
		loc:        d.Config.Location(),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// Health état du service
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func sessionID(c *gin.Context) string {
	return c.GetString(middleware.ContextSessionID)
}

// serverError 500 générique en production, détaillé sinon
func (h *Handler) serverError(c *gin.Context, message string, err error) {
	log.Printf("❌ %s: %v", message, err)
	body := gin.H{"error": message}
	if !h.cfg.IsProduction() {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}

// storeError traduit les erreurs du dépôt (404 / 409 / 500)
func (h *Handler) storeError(c *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Não encontrado"})
	case errors.Is(err, repository.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.serverError(c, message, err)
	}
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.cfg.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func logDegraded(what string, err error) {
	log.Printf("⚠️ Lecture %s impossible, mode dégradé: %v", what, err)
}
