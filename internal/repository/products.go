package repository

import (
	"context"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/gocql/gocql"
	"github.com/shopspring/decimal"
	"gopkg.in/inf.v0"

	"noel_back_end/internal/models"
)

const (
	productColumns = `id, slug, name, short_description, long_description, size, base_price,
		photos, featured, status, display_order, stock, created_at, updated_at`
	variantColumns = `product_id, id, name, description, price, is_default, display_order,
		is_active, created_at, updated_at`

	maxSlugAttempts = 20
)

// Direction d'un déplacement dans l'ordre d'affichage
type Direction int

const (
	Up Direction = iota
	Down
)

type ProductRepository struct {
	session *gocql.Session
}

func NewProductRepository(session *gocql.Session) *ProductRepository {
	return &ProductRepository{session: session}
}

func scanProduct(scan func(dest ...any) bool, p *models.Product) bool {
	var id gocql.UUID
	var price *inf.Dec
	ok := scan(&id, &p.Slug, &p.Name, &p.ShortDescription, &p.LongDescription, &p.Size, &price,
		&p.Photos, &p.Featured, &p.Status, &p.DisplayOrder, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	p.ID = id.String()
	p.BasePrice = fromDec(price)
	return ok
}

// SortProducts : displayOrder croissant, puis les plus récents d'abord
func SortProducts(products []models.Product) {
	slices.SortStableFunc(products, func(a, b models.Product) int {
		if a.DisplayOrder != b.DisplayOrder {
			return a.DisplayOrder - b.DisplayOrder
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

// ListProducts tout le catalogue, trié pour l'affichage
func (r *ProductRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	iter := r.session.Query(`SELECT ` + productColumns + ` FROM products`).WithContext(ctx).Iter()

	var products []models.Product
	for {
		var p models.Product
		if !scanProduct(func(dest ...any) bool { return iter.Scan(dest...) }, &p) {
			break
		}
		products = append(products, p)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture produits: %w", err)
	}

	SortProducts(products)
	return products, nil
}

func (r *ProductRepository) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var p models.Product
	err = r.scanOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, &p, uid)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var id gocql.UUID
	err := r.session.Query(`SELECT product_id FROM products_by_slug WHERE slug = ?`, slug).
		WithContext(ctx).Scan(&id)
	if err != nil {
		return nil, notFound(err)
	}
	return r.GetProduct(ctx, id.String())
}

func (r *ProductRepository) scanOne(ctx context.Context, stmt string, p *models.Product, args ...any) error {
	q := r.session.Query(stmt, args...).WithContext(ctx)
	var scanErr error
	scanProduct(func(dest ...any) bool {
		scanErr = q.Scan(dest...)
		return scanErr == nil
	}, p)
	return notFound(scanErr)
}

// claimSlug réserve base, base-2, base-3... via une écriture conditionnelle
func (r *ProductRepository) claimSlug(ctx context.Context, base string, productID gocql.UUID) (string, error) {
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		slug := slugCandidate(base, attempt)
		existing := map[string]any{}
		applied, err := r.session.Query(
			`INSERT INTO products_by_slug (slug, product_id) VALUES (?, ?) IF NOT EXISTS`,
			slug, productID,
		).WithContext(ctx).MapScanCAS(existing)
		if err != nil {
			return "", fmt.Errorf("réservation slug %s: %w", slug, err)
		}
		if applied {
			return slug, nil
		}
		// déjà à nous (nouvelle tentative après un échec partiel)
		if owner, ok := existing["product_id"].(gocql.UUID); ok && owner == productID {
			return slug, nil
		}
	}
	return "", fmt.Errorf("slug %s: %w", base, ErrConflict)
}

// CreateProduct attribue id, slug unique et horodatage puis insère le produit
func (r *ProductRepository) CreateProduct(ctx context.Context, p *models.Product) error {
	id := gocql.TimeUUID()
	base := p.Slug
	if base == "" {
		base = p.Name
	}
	slug, err := r.claimSlug(ctx, Slugify(base), id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	p.ID = id.String()
	p.Slug = slug
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = models.ProductAvailable
	}

	err = r.session.Query(`INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.Slug, p.Name, p.ShortDescription, p.LongDescription, p.Size, toDec(p.BasePrice),
		p.Photos, p.Featured, p.Status, p.DisplayOrder, p.Stock, p.CreatedAt, p.UpdatedAt,
	).WithContext(ctx).Exec()
	if err != nil {
		r.releaseSlug(ctx, slug)
		return fmt.Errorf("création produit: %w", err)
	}
	return nil
}

func (r *ProductRepository) releaseSlug(ctx context.Context, slug string) {
	if err := r.session.Query(`DELETE FROM products_by_slug WHERE slug = ?`, slug).WithContext(ctx).Exec(); err != nil {
		log.Printf("⚠️ Libération slug %s: %v", slug, err)
	}
}

// UpdateProduct réécrit les champs modifiables. Un nouveau slug est réservé
// avant la libération de l'ancien.
func (r *ProductRepository) UpdateProduct(ctx context.Context, p *models.Product) error {
	current, err := r.GetProduct(ctx, p.ID)
	if err != nil {
		return err
	}
	uid, _ := parseID(p.ID)

	slug := current.Slug
	if p.Slug != "" && Slugify(p.Slug) != current.Slug {
		if slug, err = r.claimSlug(ctx, Slugify(p.Slug), uid); err != nil {
			return err
		}
	}

	p.Slug = slug
	p.CreatedAt = current.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	if p.Status == "" {
		p.Status = current.Status
	}

	err = r.session.Query(`UPDATE products SET slug = ?, name = ?, short_description = ?, long_description = ?,
		size = ?, base_price = ?, photos = ?, featured = ?, status = ?, display_order = ?, stock = ?, updated_at = ?
		WHERE id = ?`,
		p.Slug, p.Name, p.ShortDescription, p.LongDescription, p.Size, toDec(p.BasePrice),
		p.Photos, p.Featured, p.Status, p.DisplayOrder, p.Stock, p.UpdatedAt, uid,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("mise à jour produit: %w", err)
	}
	if slug != current.Slug {
		r.releaseSlug(ctx, current.Slug)
	}
	return nil
}

// SetPhotos remplace la liste ordonnée des photos
func (r *ProductRepository) SetPhotos(ctx context.Context, id string, photos []string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	applied, err := r.session.Query(`UPDATE products SET photos = ?, updated_at = ? WHERE id = ? IF EXISTS`,
		photos, time.Now().UTC(), uid).WithContext(ctx).ScanCAS()
	if err != nil {
		return fmt.Errorf("mise à jour photos: %w", err)
	}
	if !applied {
		return ErrNotFound
	}
	return nil
}

// DeleteProducts supprime les produits, leurs variantes et leurs slugs dans un seul batch
func (r *ProductRepository) DeleteProducts(ctx context.Context, ids ...string) error {
	batch := r.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	for _, id := range ids {
		p, err := r.GetProduct(ctx, id)
		if err != nil {
			return err
		}
		uid, _ := parseID(id)
		batch.Query(`DELETE FROM products WHERE id = ?`, uid)
		batch.Query(`DELETE FROM product_variants WHERE product_id = ?`, uid)
		batch.Query(`DELETE FROM products_by_slug WHERE slug = ?`, p.Slug)
	}
	if batch.Size() == 0 {
		return nil
	}
	if err := r.session.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("suppression produits: %w", err)
	}
	return nil
}

// MoveProduct échange le produit avec son voisin puis renumérote le catalogue
// dans un seul batch journalisé.
func (r *ProductRepository) MoveProduct(ctx context.Context, id string, dir Direction) error {
	products, err := r.ListProducts(ctx)
	if err != nil {
		return err
	}

	reordered, ok := Swap(products, id, dir)
	if !ok {
		idx := slices.IndexFunc(products, func(p models.Product) bool { return p.ID == id })
		if idx < 0 {
			return ErrNotFound
		}
		return nil // déjà en bout de liste
	}

	now := time.Now().UTC()
	batch := r.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	for _, change := range reordered {
		uid, _ := parseID(change.ID)
		batch.Query(`UPDATE products SET display_order = ?, updated_at = ? WHERE id = ?`, change.DisplayOrder, now, uid)
	}
	if err := r.session.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("réordonnancement: %w", err)
	}
	return nil
}

// Swap échange le produit avec son voisin dans products (trié) et retourne
// les produits dont l'ordre d'affichage change une fois renumérotés 0..n-1.
func Swap(products []models.Product, id string, dir Direction) ([]models.Product, bool) {
	idx := slices.IndexFunc(products, func(p models.Product) bool { return p.ID == id })
	if idx < 0 {
		return nil, false
	}
	other := idx - 1
	if dir == Down {
		other = idx + 1
	}
	if other < 0 || other >= len(products) {
		return nil, false
	}

	ordered := slices.Clone(products)
	ordered[idx], ordered[other] = ordered[other], ordered[idx]

	var changed []models.Product
	for i, p := range ordered {
		if p.DisplayOrder != i {
			p.DisplayOrder = i
			changed = append(changed, p)
		}
	}
	return changed, true
}

// ListVariants toutes les variantes du produit, inactives comprises
func (r *ProductRepository) ListVariants(ctx context.Context, productID string) ([]models.ProductVariant, error) {
	uid, err := parseID(productID)
	if err != nil {
		return nil, err
	}
	return r.scanVariants(r.session.Query(`SELECT `+variantColumns+` FROM product_variants WHERE product_id = ?`, uid).
		WithContext(ctx).Iter())
}

// ListAllVariants toutes les variantes du catalogue
func (r *ProductRepository) ListAllVariants(ctx context.Context) ([]models.ProductVariant, error) {
	return r.scanVariants(r.session.Query(`SELECT ` + variantColumns + ` FROM product_variants`).WithContext(ctx).Iter())
}

func (r *ProductRepository) scanVariants(iter *gocql.Iter) ([]models.ProductVariant, error) {
	var out []models.ProductVariant
	for {
		var v models.ProductVariant
		var productID, id gocql.UUID
		var price *inf.Dec
		if !iter.Scan(&productID, &id, &v.Name, &v.Description, &price, &v.IsDefault, &v.DisplayOrder,
			&v.IsActive, &v.CreatedAt, &v.UpdatedAt) {
			break
		}
		v.ProductID = productID.String()
		v.ID = id.String()
		v.Price = fromDec(price)
		out = append(out, v)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture variantes: %w", err)
	}
	return out, nil
}

// SaveVariant crée (ID vide) ou met à jour la variante. Une variante par
// défaut retire le drapeau des autres variantes du produit dans le même batch.
func (r *ProductRepository) SaveVariant(ctx context.Context, v *models.ProductVariant) error {
	if !v.Price.GreaterThan(decimal.Zero) {
		return fmt.Errorf("prix de variante invalide: %s", v.Price)
	}
	productID, err := parseID(v.ProductID)
	if err != nil {
		return err
	}
	if _, err := r.GetProduct(ctx, v.ProductID); err != nil {
		return err
	}

	existing, err := r.ListVariants(ctx, v.ProductID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	var id gocql.UUID
	if v.ID == "" {
		id = gocql.TimeUUID()
		v.ID = id.String()
		v.CreatedAt = now
		v.IsActive = true
	} else {
		if id, err = parseID(v.ID); err != nil {
			return err
		}
		idx := slices.IndexFunc(existing, func(e models.ProductVariant) bool { return e.ID == v.ID })
		if idx < 0 {
			return ErrNotFound
		}
		v.CreatedAt = existing[idx].CreatedAt
	}
	v.UpdatedAt = now

	batch := r.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`INSERT INTO product_variants (`+variantColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		productID, id, v.Name, v.Description, toDec(v.Price), v.IsDefault, v.DisplayOrder,
		v.IsActive, v.CreatedAt, v.UpdatedAt)
	if v.IsDefault {
		for _, other := range existing {
			if other.ID != v.ID && other.IsDefault {
				otherID, _ := parseID(other.ID)
				batch.Query(`UPDATE product_variants SET is_default = false, updated_at = ? WHERE product_id = ? AND id = ?`,
					now, productID, otherID)
			}
		}
	}
	if err := r.session.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("enregistrement variante: %w", err)
	}
	return nil
}

// DeactivateVariant suppression logique : la ligne reste, is_active passe à false
func (r *ProductRepository) DeactivateVariant(ctx context.Context, productID, id string) error {
	pid, err := parseID(productID)
	if err != nil {
		return err
	}
	vid, err := parseID(id)
	if err != nil {
		return err
	}
	applied, err := r.session.Query(`UPDATE product_variants SET is_active = false, is_default = false, updated_at = ?
		WHERE product_id = ? AND id = ? IF EXISTS`, time.Now().UTC(), pid, vid).WithContext(ctx).ScanCAS()
	if err != nil {
		return fmt.Errorf("désactivation variante: %w", err)
	}
	if !applied {
		return ErrNotFound
	}
	return nil
}

// OutOfStockCount produits épuisés (statut ou stock à zéro)
func (r *ProductRepository) OutOfStockCount(ctx context.Context) (int, error) {
	products, err := r.ListProducts(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, p := range products {
		if p.OutOfStock() {
			n++
		}
	}
	return n, nil
}
