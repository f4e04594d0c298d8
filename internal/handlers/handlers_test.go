package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noel_back_end/internal/auth"
	"noel_back_end/internal/cart"
	"noel_back_end/internal/checkout"
	"noel_back_end/internal/config"
	"noel_back_end/internal/handlers"
	"noel_back_end/internal/models"
	"noel_back_end/internal/notify"
	"noel_back_end/internal/orders"
	"noel_back_end/internal/repository"
	"noel_back_end/internal/routes"
	"noel_back_end/internal/storage"
)

const jwtSecret = "segredo-de-teste"

func init() {
	gin.SetMode(gin.TestMode)
}

// --- faux dépôts ---

type fakeCatalog struct {
	mu       sync.Mutex
	products map[string]models.Product
	variants []models.ProductVariant
}

func (f *fakeCatalog) ListProducts(context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	repository.SortProducts(out)
	return out, nil
}

func (f *fakeCatalog) GetProduct(_ context.Context, id string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (f *fakeCatalog) GetProductBySlug(_ context.Context, slug string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCatalog) CreateProduct(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = uuid.NewString()
	p.Slug = repository.Slugify(p.Name)
	p.CreatedAt = time.Now()
	if p.Status == "" {
		p.Status = models.ProductAvailable
	}
	f.products[p.ID] = *p
	return nil
}

func (f *fakeCatalog) UpdateProduct(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[p.ID]; !ok {
		return repository.ErrNotFound
	}
	f.products[p.ID] = *p
	return nil
}

func (f *fakeCatalog) SetPhotos(_ context.Context, id string, photos []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Photos = photos
	f.products[id] = p
	return nil
}

func (f *fakeCatalog) DeleteProducts(_ context.Context, ids ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		if _, ok := f.products[id]; !ok {
			return repository.ErrNotFound
		}
	}
	for _, id := range ids {
		delete(f.products, id)
	}
	return nil
}

func (f *fakeCatalog) MoveProduct(context.Context, string, repository.Direction) error {
	return nil
}

func (f *fakeCatalog) ListVariants(_ context.Context, productID string) ([]models.ProductVariant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ProductVariant
	for _, v := range f.variants {
		if v.ProductID == productID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeCatalog) ListAllVariants(context.Context) ([]models.ProductVariant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.variants), nil
}

func (f *fakeCatalog) SaveVariant(_ context.Context, v *models.ProductVariant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	f.variants = append(f.variants, *v)
	return nil
}

func (f *fakeCatalog) DeactivateVariant(_ context.Context, _, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.variants {
		if f.variants[i].ID == id {
			f.variants[i].IsActive = false
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeSiteConfig struct {
	values map[string]string
}

func (f *fakeSiteConfig) SiteConfig(context.Context) (map[string]string, error) {
	return f.values, nil
}

func (f *fakeSiteConfig) Entries(context.Context) ([]models.SiteConfigEntry, error) {
	var out []models.SiteConfigEntry
	for k, v := range f.values {
		out = append(out, models.SiteConfigEntry{Key: k, Value: v, Type: "text"})
	}
	return out, nil
}

func (f *fakeSiteConfig) Upsert(_ context.Context, e models.SiteConfigEntry) error {
	f.values[e.Key] = e.Value
	return nil
}

type fakeOrders struct {
	mu     sync.Mutex
	orders map[string]models.Order
}

func (f *fakeOrders) CreateOrder(_ context.Context, o models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[o.ID] = o
	return nil
}

func (f *fakeOrders) ListOrders(context.Context) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeOrders) GetOrder(_ context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &o, nil
}

func (f *fakeOrders) UpdatePaymentStatus(_ context.Context, id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.PaymentStatus = status
	f.orders[id] = o
	return nil
}

func (f *fakeOrders) SetPaid(_ context.Context, id string, paid bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Paid = paid
	f.orders[id] = o
	return nil
}

func (f *fakeOrders) DeleteOrder(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.orders, id)
	return nil
}

func (f *fakeOrders) OrdersSince(context.Context, time.Time) ([]models.Order, error) {
	return f.ListOrders(context.Background())
}

func (f *fakeOrders) RecentOrders(ctx context.Context, _ int) ([]models.Order, error) {
	return f.ListOrders(ctx)
}

func (f *fakeOrders) CountByStatus(context.Context, string) (int, error) {
	return 0, nil
}

func (f *fakeOrders) OutOfStockCount(context.Context) (int, error) {
	return 0, nil
}

type fakeDrafts struct {
	mu     sync.Mutex
	drafts map[string]models.CheckoutDraft
}

func (f *fakeDrafts) GetDraft(_ context.Context, id string) (*models.CheckoutDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.drafts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (f *fakeDrafts) UpsertDraft(_ context.Context, d models.CheckoutDraft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drafts[d.SessionID] = d
	return nil
}

func (f *fakeDrafts) DeleteDraft(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.drafts, id)
	return nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []notify.Kind
}

func (f *fakeMailer) OrderEmail(_ context.Context, _ string, _ models.Order, kind notify.Kind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, kind)
	return nil
}

type fakeImages struct{}

func (fakeImages) Upload(_ context.Context, productID, filename, _ string, _ io.Reader, _ int64) (string, error) {
	return "http://minio/noel-images/products/" + productID + "/" + filename, nil
}

func (fakeImages) Remove(context.Context, string) error { return nil }

func (fakeImages) SignedURL(_ context.Context, imageURL string, ttl time.Duration) (string, error) {
	if !strings.HasPrefix(imageURL, "http://minio/") {
		return "", errors.New("image hors du bucket")
	}
	return imageURL + "?expires=" + ttl.String(), nil
}

type memoryCounter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (m *memoryCounter) Increment(_ context.Context, key string, _ time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key]++
	return m.counts[key], nil
}

// --- banc de test ---

type bench struct {
	router  *gin.Engine
	catalog *fakeCatalog
	orders  *fakeOrders
	drafts  *checkout.DraftSync
	service *orders.Service
	cookies []*http.Cookie
}

func newBench(t *testing.T, opts ...func(*handlers.Deps)) *bench {
	t.Helper()
	cfg := &config.Config{
		Env:            config.EnvDevelopment,
		JWTSecret:      jwtSecret,
		AllowedOrigins: []string{"http://localhost:3000"},
		Checkout:       config.CheckoutConfig{DeliveryDates: []string{"24/12", "31/12"}},
		Dashboard:      config.DashboardConfig{Timezone: "UTC"},
	}

	catalog := &fakeCatalog{products: map[string]models.Product{
		"bolo": {ID: "bolo", Slug: "bolo-de-natal", Name: "Bolo de Natal", Size: "1kg",
			BasePrice: decimal.NewFromInt(100), Status: models.ProductAvailable, DisplayOrder: 0},
		"torta": {ID: "torta", Slug: "torta", Name: "Torta", BasePrice: decimal.NewFromInt(80),
			Status: models.ProductAvailable, DisplayOrder: 1},
		"esgotado": {ID: "esgotado", Slug: "esgotado", Name: "Panetone", BasePrice: decimal.NewFromInt(50),
			Status: models.ProductSoldOut, DisplayOrder: 2},
	}}
	catalog.variants = []models.ProductVariant{
		{ID: "p", ProductID: "torta", Name: "Pequena", Price: decimal.NewFromInt(60), IsActive: true, DisplayOrder: 0},
		{ID: "g", ProductID: "torta", Name: "Grande", Price: decimal.NewFromInt(120), IsActive: true, IsDefault: true, DisplayOrder: 1},
	}

	site := &fakeSiteConfig{values: map[string]string{
		models.ConfigDeliveryFee:   "40",
		models.ConfigDeliveryPhone: "(11) 99999-9999",
		models.ConfigSalesEmail:    "vendas@example.com",
	}}
	orderRepo := &fakeOrders{orders: map[string]models.Order{}}
	mailer := &fakeMailer{}
	service := orders.NewService(orderRepo, site, mailer, cfg.Checkout.DeliveryDates)

	carts, err := cart.NewRegistry(storage.NewMemoryKV(), 16, nil)
	require.NoError(t, err)
	drafts := checkout.NewDraftSync(&fakeDrafts{drafts: map[string]models.CheckoutDraft{}},
		storage.NewMemoryKV(), checkout.DefaultDraftTTL, checkout.DefaultDebounce)

	deps := handlers.Deps{
		Config:     cfg,
		Catalog:    catalog,
		SiteConfig: site,
		Orders:     service,
		Carts:      carts,
		Drafts:     drafts,
		Dashboard:  orderRepo,
		Mailer:     mailer,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	h := handlers.NewHandler(deps)
	r := routes.NewRouter(cfg)
	routes.RegisterRoutes(r, h, cfg, checkout.NewSessions("segredo-de-sessao", time.Hour, false),
		&memoryCounter{counts: map[string]int64{}})

	t.Cleanup(func() {
		carts.Close()
		drafts.Close()
		service.Wait()
	})
	return &bench{router: r, catalog: catalog, orders: orderRepo, drafts: drafts, service: service}
}

func adminToken(t *testing.T, role string) string {
	t.Helper()
	token, err := auth.IssueToken([]byte(jwtSecret), auth.Claims{UserID: "admin-1", Role: role}, time.Hour)
	require.NoError(t, err)
	return token
}

// do envoie la requête en conservant le cookie de session entre les appels
func (b *bench) do(t *testing.T, method, path string, body any, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	b.router.ServeHTTP(rec, req)
	if cookies := rec.Result().Cookies(); len(cookies) > 0 {
		b.cookies = cookies
	}

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func TestListProductsResolvesVariants(t *testing.T) {
	b := newBench(t)
	rec, body := b.do(t, http.MethodGet, "/api/products", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	products := body["products"].([]any)
	require.Len(t, products, 3)

	bolo := products[0].(map[string]any)
	assert.Equal(t, "bolo", bolo["id"])
	variants := bolo["variants"].([]any)
	require.Len(t, variants, 1)
	virtual := variants[0].(map[string]any)
	assert.Equal(t, "virtual-bolo", virtual["id"])
	assert.Equal(t, "1kg", virtual["name"])
	assert.Equal(t, "100", virtual["price"])
	assert.Equal(t, true, virtual["virtual"])
	assert.Equal(t, false, bolo["hasChoice"])

	torta := products[1].(map[string]any)
	assert.Len(t, torta["variants"].([]any), 2)
	assert.Equal(t, "g", torta["defaultVariant"].(map[string]any)["id"])
	assert.Equal(t, true, torta["hasChoice"])
}

func TestCatalogSignsPhotosForPrivateBucket(t *testing.T) {
	b := newBench(t, func(d *handlers.Deps) {
		d.Images = fakeImages{}
		d.Config.MinIO.SignedURLTTL = time.Hour
	})
	bolo := b.catalog.products["bolo"]
	bolo.Photos = []string{"http://minio/noel-images/products/bolo/a.png", "https://cdn.example.com/b.png"}
	b.catalog.products["bolo"] = bolo

	rec, body := b.do(t, http.MethodGet, "/api/products", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	photos := body["products"].([]any)[0].(map[string]any)["photos"].([]any)
	assert.Equal(t, []any{"http://minio/noel-images/products/bolo/a.png?expires=1h0m0s", "https://cdn.example.com/b.png"}, photos)

	rec, body = b.do(t, http.MethodGet, "/api/products/bolo-de-natal", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://minio/noel-images/products/bolo/a.png?expires=1h0m0s", body["photos"].([]any)[0])

	rec, body = b.do(t, http.MethodGet, "/api/admin/products", nil, adminToken(t, "admin"))
	require.Equal(t, http.StatusOK, rec.Code)
	admin := body["products"].([]any)[0].(map[string]any)
	assert.Equal(t, "http://minio/noel-images/products/bolo/a.png", admin["photos"].([]any)[0])
}

func TestCatalogKeepsPublicPhotoURLs(t *testing.T) {
	b := newBench(t, func(d *handlers.Deps) { d.Images = fakeImages{} })
	bolo := b.catalog.products["bolo"]
	bolo.Photos = []string{"http://minio/noel-images/products/bolo/a.png"}
	b.catalog.products["bolo"] = bolo

	_, body := b.do(t, http.MethodGet, "/api/products/bolo-de-natal", nil, "")
	assert.Equal(t, "http://minio/noel-images/products/bolo/a.png", body["photos"].([]any)[0])
}

func TestGetProductBySlug(t *testing.T) {
	b := newBench(t)
	rec, body := b.do(t, http.MethodGet, "/api/products/bolo-de-natal", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bolo de Natal", body["name"])

	rec, _ = b.do(t, http.MethodGet, "/api/products/inexistente", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchUnavailableWithoutIndex(t *testing.T) {
	b := newBench(t)
	rec, _ := b.do(t, http.MethodGet, "/api/products/search?q=bolo", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCartVariantsAreDistinctLines(t *testing.T) {
	b := newBench(t)

	rec, body := b.do(t, http.MethodPost, "/api/cart/items", gin.H{"productId": "torta", "variantId": "p"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Torta (Pequena) adicionado ao carrinho", body["message"])
	require.NotEmpty(t, b.cookies)

	_, body = b.do(t, http.MethodPost, "/api/cart/items", gin.H{"productId": "torta", "variantId": "p"}, "")
	assert.Equal(t, "Mais um Torta (Pequena) adicionado ao carrinho", body["message"])

	// sans variantId : la variante par défaut
	b.do(t, http.MethodPost, "/api/cart/items", gin.H{"productId": "torta"}, "")

	rec, body = b.do(t, http.MethodGet, "/api/cart", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	items := body["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "p", items[0].(map[string]any)["variantId"])
	assert.EqualValues(t, 2, items[0].(map[string]any)["quantity"])
	assert.Equal(t, "g", items[1].(map[string]any)["variantId"])
	assert.EqualValues(t, 1, items[1].(map[string]any)["quantity"])
	assert.Equal(t, "240", body["total"])
	assert.EqualValues(t, 3, body["count"])
}

func TestCartRejectsSoldOutAndUnknownVariant(t *testing.T) {
	b := newBench(t)

	rec, _ := b.do(t, http.MethodPost, "/api/cart/items", gin.H{"productId": "esgotado"}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = b.do(t, http.MethodPost, "/api/cart/items", gin.H{"productId": "torta", "variantId": "xx"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = b.do(t, http.MethodPost, "/api/cart/items", gin.H{"productId": "nada"}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartQuantityFloorAndRemove(t *testing.T) {
	b := newBench(t)
	b.do(t, http.MethodPost, "/api/cart/items", gin.H{"productId": "bolo"}, "")

	rec, body := b.do(t, http.MethodPatch, "/api/cart/items/bolo", gin.H{"delta": 2}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 3, body["count"])

	_, body = b.do(t, http.MethodPatch, "/api/cart/items/bolo", gin.H{"delta": -10}, "")
	assert.Empty(t, body["items"])
	assert.EqualValues(t, 0, body["count"])

	b.do(t, http.MethodPost, "/api/cart/items", gin.H{"productId": "torta", "variantId": "p"}, "")
	b.do(t, http.MethodPost, "/api/cart/items", gin.H{"productId": "torta", "variantId": "g"}, "")
	_, body = b.do(t, http.MethodDelete, "/api/cart/items/torta?variantId=p", nil, "")
	assert.Len(t, body["items"], 1)

	_, body = b.do(t, http.MethodDelete, "/api/cart", nil, "")
	assert.Empty(t, body["items"])
}

func TestCheckoutSummaryAddsFeeOnlyForDelivery(t *testing.T) {
	b := newBench(t)
	b.do(t, http.MethodPost, "/api/cart/items", gin.H{"productId": "bolo"}, "")
	b.do(t, http.MethodPost, "/api/cart/items", gin.H{"productId": "bolo"}, "")

	_, body := b.do(t, http.MethodGet, "/api/checkout/summary?deliveryType=delivery", nil, "")
	assert.Equal(t, "200", body["subtotal"])
	assert.Equal(t, "40", body["deliveryFee"])
	assert.Equal(t, "240", body["total"])

	_, body = b.do(t, http.MethodGet, "/api/checkout/summary?deliveryType=pickup", nil, "")
	assert.Equal(t, "200", body["total"])
}

func TestDraftRoundTrip(t *testing.T) {
	b := newBench(t)

	rec, body := b.do(t, http.MethodGet, "/api/checkout/draft", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, body["formData"])
	sessionID := body["sessionId"].(string)
	assert.True(t, strings.HasPrefix(sessionID, "session_"))

	form := models.CheckoutForm{Name: "Ana", Phone: "11999", DeliveryType: models.DeliveryTypePickup}
	rec, body = b.do(t, http.MethodPost, "/api/checkout/draft", gin.H{"formData": form}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, sessionID, body["sessionId"])
	assert.True(t, b.drafts.Pending(sessionID))

	b.drafts.Close()
	_, body = b.do(t, http.MethodGet, "/api/checkout/draft", nil, "")
	require.NotNil(t, body["formData"])
	assert.Equal(t, "Ana", body["formData"].(map[string]any)["name"])

	rec, _ = b.do(t, http.MethodDelete, "/api/checkout/draft", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	_, body = b.do(t, http.MethodGet, "/api/checkout/draft", nil, "")
	assert.Nil(t, body["formData"])

	rec, _ = b.do(t, http.MethodPost, "/api/checkout/draft", gin.H{}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func orderPayload(deliveryType, address string) gin.H {
	return gin.H{
		"name":            "Ana",
		"phone":           "11999990000",
		"items":           []gin.H{{"productId": "bolo", "name": "Bolo de Natal", "price": 100, "quantity": 2}},
		"total":           240,
		"deliveryType":    deliveryType,
		"deliveryAddress": address,
		"paymentMethod":   models.PaymentMethodPix,
		"deliveryDate":    "24/12",
	}
}

func TestCreateOrderValidationGate(t *testing.T) {
	b := newBench(t)

	rec, body := b.do(t, http.MethodPost, "/api/order", orderPayload(models.DeliveryTypeDelivery, ""), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "Endereço")
	assert.Empty(t, b.orders.orders)

	bad := orderPayload(models.DeliveryTypePickup, "")
	bad["items"] = []gin.H{{"productId": "bolo", "name": "Bolo"}}
	rec, body = b.do(t, http.MethodPost, "/api/order", bad, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bolo", body["item"].(map[string]any)["productId"])
}

func TestCreateOrderPickupSucceedsAndClearsSession(t *testing.T) {
	b := newBench(t)
	b.do(t, http.MethodPost, "/api/cart/items", gin.H{"productId": "bolo"}, "")

	rec, body := b.do(t, http.MethodPost, "/api/order", orderPayload(models.DeliveryTypePickup, ""), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["success"])
	assert.True(t, strings.HasPrefix(body["whatsappUrl"].(string), "https://wa.me/11999999999?text="))

	order, ok := b.orders.orders[body["orderId"].(string)]
	require.True(t, ok)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.False(t, order.Paid)
	assert.Equal(t, models.PickupAddress, order.DeliveryAddress)
	assert.True(t, decimal.NewFromInt(200).Equal(order.Total))

	_, cartBody := b.do(t, http.MethodGet, "/api/cart", nil, "")
	assert.Empty(t, cartBody["items"])
}

func TestAdminRequiresAdminRole(t *testing.T) {
	b := newBench(t)

	rec, _ := b.do(t, http.MethodGet, "/api/admin/orders", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = b.do(t, http.MethodGet, "/api/admin/orders", nil, adminToken(t, "customer"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = b.do(t, http.MethodGet, "/api/admin/orders", nil, adminToken(t, "admin"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminOrderStatusAndPaidAreIndependent(t *testing.T) {
	b := newBench(t)
	token := adminToken(t, "admin")
	b.orders.orders["o1"] = models.Order{ID: "o1", PaymentStatus: models.PaymentStatusPending}

	rec, _ := b.do(t, http.MethodPatch, "/api/admin/orders/o1/status", gin.H{"status": "shipped"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = b.do(t, http.MethodPatch, "/api/admin/orders/o1/status", gin.H{"status": models.PaymentStatusCancelled}, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := b.do(t, http.MethodPost, "/api/admin/orders/o1/paid", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["paid"])

	o := b.orders.orders["o1"]
	assert.Equal(t, models.PaymentStatusCancelled, o.PaymentStatus)
	assert.True(t, o.Paid)

	rec, _ = b.do(t, http.MethodPatch, "/api/admin/orders/missing/status", gin.H{"status": models.PaymentStatusPaid}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminProductValidationAndCreate(t *testing.T) {
	b := newBench(t)
	token := adminToken(t, "admin")

	rec, _ := b.do(t, http.MethodPost, "/api/admin/products", gin.H{"name": "Cookie", "basePrice": -1}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body := b.do(t, http.MethodPost, "/api/admin/products", gin.H{"name": "Cookie de Gengibre", "basePrice": "12.50"}, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "cookie-de-gengibre", body["slug"])

	id := body["id"].(string)
	rec, _ = b.do(t, http.MethodPost, "/api/admin/products/"+id+"/variants", gin.H{"name": "Caixa", "price": 0}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = b.do(t, http.MethodPost, "/api/admin/products/"+id+"/variants", gin.H{"name": "Caixa", "price": 30}, token)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = b.do(t, http.MethodPost, "/api/admin/products/"+id+"/photos", nil, token)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec, _ = b.do(t, http.MethodDelete, "/api/admin/products/"+id, nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = b.do(t, http.MethodDelete, "/api/admin/products/"+id, nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotifyWhatsAppReturnsLinkAndQRCode(t *testing.T) {
	b := newBench(t)
	token := adminToken(t, "admin")
	order := models.Order{ID: "o1", CustomerName: "Ana", DeliveryType: models.DeliveryTypePickup}

	rec, body := b.do(t, http.MethodPost, "/api/admin/notify/whatsapp", gin.H{"phone": "+55 11 98888-7777", "order": order}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(body["whatsappUrl"].(string), "https://wa.me/5511988887777?text="))
	assert.True(t, strings.HasPrefix(body["qrCode"].(string), "data:image/png;base64,"))

	rec, _ = b.do(t, http.MethodPost, "/api/admin/notify/whatsapp", gin.H{"phone": "abc", "order": order}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = b.do(t, http.MethodPost, "/api/admin/notify/email", gin.H{"to": "a@b.c", "order": order, "kind": "other"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardSnapshot(t *testing.T) {
	b := newBench(t)
	b.orders.orders["o1"] = models.Order{ID: "o1", Total: decimal.NewFromInt(50), CreatedAt: time.Now().UTC(),
		PaymentStatus: models.PaymentStatusPending}

	rec, body := b.do(t, http.MethodGet, "/api/admin/dashboard", nil, adminToken(t, "admin"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["todayOrders"])
	assert.Equal(t, "o1", body["latestOrderId"])
	assert.Len(t, body["series"], 7)
}
