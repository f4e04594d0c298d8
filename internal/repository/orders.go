package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/gocql/gocql"
	"gopkg.in/inf.v0"

	"noel_back_end/internal/models"
)

const orderColumns = `id, customer_name, customer_phone, email, items, total, delivery_type, delivery_address,
	payment_method, delivery_date, payment_status, paid, created_at`

// OrderRepository commandes et brouillons (keyspace commandes)
type OrderRepository struct {
	session *gocql.Session
}

func NewOrderRepository(session *gocql.Session) *OrderRepository {
	return &OrderRepository{session: session}
}

func (r *OrderRepository) CreateOrder(ctx context.Context, o models.Order) error {
	id, err := parseID(o.ID)
	if err != nil {
		return fmt.Errorf("identifiant commande invalide %q", o.ID)
	}
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("sérialisation lignes: %w", err)
	}
	return r.session.Query(`INSERT INTO orders (`+orderColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, o.CustomerName, o.CustomerPhone, o.Email, string(items), toDec(o.Total), o.DeliveryType,
		o.DeliveryAddress, o.PaymentMethod, o.DeliveryDate, o.PaymentStatus, o.Paid, o.CreatedAt,
	).WithContext(ctx).Exec()
}

func scanOrder(scan func(dest ...any) bool, o *models.Order) (bool, error) {
	var id gocql.UUID
	var items string
	var total *inf.Dec
	if !scan(&id, &o.CustomerName, &o.CustomerPhone, &o.Email, &items, &total, &o.DeliveryType,
		&o.DeliveryAddress, &o.PaymentMethod, &o.DeliveryDate, &o.PaymentStatus, &o.Paid, &o.CreatedAt) {
		return false, nil
	}
	o.ID = id.String()
	o.Total = fromDec(total)
	if items != "" {
		if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
			return true, fmt.Errorf("lignes de la commande %s illisibles: %w", o.ID, err)
		}
	}
	return true, nil
}

func (r *OrderRepository) scanOrders(iter *gocql.Iter) ([]models.Order, error) {
	var out []models.Order
	for {
		var o models.Order
		ok, err := scanOrder(func(dest ...any) bool { return iter.Scan(dest...) }, &o)
		if err != nil {
			iter.Close()
			return nil, err
		}
		if !ok {
			break
		}
		out = append(out, o)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture commandes: %w", err)
	}
	slices.SortFunc(out, func(a, b models.Order) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

// ListOrders toutes les commandes, les plus récentes d'abord
func (r *OrderRepository) ListOrders(ctx context.Context) ([]models.Order, error) {
	return r.scanOrders(r.session.Query(`SELECT ` + orderColumns + ` FROM orders`).WithContext(ctx).Iter())
}

func (r *OrderRepository) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	q := r.session.Query(`SELECT `+orderColumns+` FROM orders WHERE id = ?`, uid).WithContext(ctx)
	var o models.Order
	var scanErr error
	if _, err := scanOrder(func(dest ...any) bool {
		scanErr = q.Scan(dest...)
		return scanErr == nil
	}, &o); err != nil {
		return nil, err
	}
	if scanErr != nil {
		return nil, notFound(scanErr)
	}
	return &o, nil
}

func (r *OrderRepository) updateIfExists(ctx context.Context, stmt string, args ...any) error {
	applied, err := r.session.Query(stmt, args...).WithContext(ctx).ScanCAS()
	if err != nil {
		return err
	}
	if !applied {
		return ErrNotFound
	}
	return nil
}

func (r *OrderRepository) UpdatePaymentStatus(ctx context.Context, id, status string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	return r.updateIfExists(ctx, `UPDATE orders SET payment_status = ? WHERE id = ? IF EXISTS`, status, uid)
}

func (r *OrderRepository) SetPaid(ctx context.Context, id string, paid bool) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	return r.updateIfExists(ctx, `UPDATE orders SET paid = ? WHERE id = ? IF EXISTS`, paid, uid)
}

func (r *OrderRepository) DeleteOrder(ctx context.Context, id string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	return r.session.Query(`DELETE FROM orders WHERE id = ?`, uid).WithContext(ctx).Exec()
}

// OrdersSince commandes créées depuis since (filtrage côté serveur)
func (r *OrderRepository) OrdersSince(ctx context.Context, since time.Time) ([]models.Order, error) {
	return r.scanOrders(r.session.Query(`SELECT `+orderColumns+` FROM orders WHERE created_at >= ? ALLOW FILTERING`, since).
		WithContext(ctx).Iter())
}

func (r *OrderRepository) RecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	orders, err := r.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	if len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

func (r *OrderRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	var n int64
	err := r.session.Query(`SELECT COUNT(*) FROM orders WHERE payment_status = ? ALLOW FILTERING`, status).
		WithContext(ctx).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("comptage commandes %s: %w", status, err)
	}
	return int(n), nil
}

// GetDraft brouillon de la session, expiré ou non
func (r *OrderRepository) GetDraft(ctx context.Context, sessionID string) (*models.CheckoutDraft, error) {
	var form string
	d := models.CheckoutDraft{SessionID: sessionID}
	err := r.session.Query(`SELECT form_data, expires_at, updated_at FROM checkout_drafts WHERE session_id = ?`, sessionID).
		WithContext(ctx).Scan(&form, &d.ExpiresAt, &d.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	if err := json.Unmarshal([]byte(form), &d.FormData); err != nil {
		return nil, fmt.Errorf("brouillon %s illisible: %w", sessionID, err)
	}
	return &d, nil
}

func (r *OrderRepository) UpsertDraft(ctx context.Context, d models.CheckoutDraft) error {
	form, err := json.Marshal(d.FormData)
	if err != nil {
		return err
	}
	return r.session.Query(`INSERT INTO checkout_drafts (session_id, form_data, expires_at, updated_at) VALUES (?, ?, ?, ?)`,
		d.SessionID, string(form), d.ExpiresAt, d.UpdatedAt).WithContext(ctx).Exec()
}

func (r *OrderRepository) DeleteDraft(ctx context.Context, sessionID string) error {
	return r.session.Query(`DELETE FROM checkout_drafts WHERE session_id = ?`, sessionID).WithContext(ctx).Exec()
}
