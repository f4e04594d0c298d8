// Package cart tient l'état du panier d'une session et sa persistance différée.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"noel_back_end/internal/debounce"
	"noel_back_end/internal/models"
	"noel_back_end/internal/storage"
	"noel_back_end/internal/variants"
)

const (
	DefaultDebounce = 300 * time.Millisecond
	writeTimeout    = 5 * time.Second
)

type EventKind int

const (
	AddedNew EventKind = iota
	AddedAgain
)

// Event signale un ajout au panier (notification d'interface, sans valeur transactionnelle)
type Event struct {
	Kind    EventKind       `json:"-"`
	Item    models.CartItem `json:"item"`
	Message string          `json:"message"`
}

const (
	ChangeUpdated = "updated"
	ChangeCleared = "cleared"
)

type Option func(*Store)

// WithNotifier injecte le destinataire des événements d'ajout
func WithNotifier(fn func(Event)) Option {
	return func(s *Store) { s.notify = fn }
}

// WithOnChange appelé après chaque mutation avec ChangeUpdated ou ChangeCleared
func WithOnChange(fn func(change string)) Option {
	return func(s *Store) { s.onChange = fn }
}

func WithDebounce(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.delay = d
		}
	}
}

// Store est le panier faisant autorité pour une session. Les lignes sont
// uniques par (ProductID, VariantID).
type Store struct {
	mu    sync.Mutex
	items []models.CartItem

	// ioMu sérialise écritures et suppressions dans kv
	ioMu    sync.Mutex
	kv      storage.KV
	key     string
	delay   time.Duration
	persist *debounce.Task

	notify   func(Event)
	onChange func(string)
}

func NewStore(kv storage.KV, key string, opts ...Option) *Store {
	s := &Store{kv: kv, key: key, delay: DefaultDebounce}
	for _, opt := range opts {
		opt(s)
	}
	s.persist = debounce.New(s.delay, s.write)
	return s
}

// Hydrate recharge le panier persisté. Une donnée illisible est supprimée.
func (s *Store) Hydrate(ctx context.Context) error {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("lecture panier %s: %w", s.key, err)
	}

	var items []models.CartItem
	if err := json.Unmarshal(data, &items); err != nil || !wellFormed(items) {
		log.Printf("⚠️ Panier persisté invalide pour %s, suppression", s.key)
		if err := s.kv.Delete(ctx, s.key); err != nil {
			log.Printf("❌ Erreur suppression panier invalide: %v", err)
		}
		return nil
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

func wellFormed(items []models.CartItem) bool {
	seen := make(map[[2]string]bool, len(items))
	for _, item := range items {
		k := [2]string{item.ProductID, item.VariantID}
		if item.ProductID == "" || item.Quantity <= 0 || seen[k] {
			return false
		}
		seen[k] = true
	}
	return true
}

// AddToCart ajoute une unité du produit, au prix de la variante choisie
// (ou au prix de base). Le stock n'est pas vérifié ici, la quantité d'une
// ligne reste bornée par models.MaxItemQuantity.
func (s *Store) AddToCart(p models.Product, selected *variants.Variant) Event {
	price := p.BasePrice
	var variantID, variantName, variantDescription string
	if selected != nil {
		price = selected.Price
		if !selected.IsVirtual() {
			variantID = selected.ID
			variantName = selected.Name
			variantDescription = selected.Description
		}
	}

	s.mu.Lock()
	var ev Event
	idx := s.indexLocked(p.ID, variantID)
	if idx >= 0 {
		s.items[idx].Quantity = clampQuantity(s.items[idx].Quantity, 1)
		ev = Event{Kind: AddedAgain, Item: s.items[idx]}
	} else {
		product := p
		item := models.CartItem{
			ProductID:          p.ID,
			VariantID:          variantID,
			Name:               p.Name,
			Price:              price,
			Quantity:           1,
			VariantName:        variantName,
			VariantDescription: variantDescription,
			Product:            &product,
		}
		s.items = append(s.items, item)
		ev = Event{Kind: AddedNew, Item: item}
	}
	s.mu.Unlock()

	ev.Message = addedMessage(ev)
	s.changed(false)
	if s.notify != nil {
		s.notify(ev)
	}
	return ev
}

func addedMessage(ev Event) string {
	label := ev.Item.Name
	if ev.Item.VariantName != "" {
		label += " (" + ev.Item.VariantName + ")"
	}
	if ev.Kind == AddedAgain {
		return fmt.Sprintf("Mais um %s adicionado ao carrinho", label)
	}
	return fmt.Sprintf("%s adicionado ao carrinho", label)
}

// RemoveFromCart retire les lignes du produit. Sans variantID, toutes les
// variantes du produit sont retirées.
func (s *Store) RemoveFromCart(productID, variantID string) {
	s.mu.Lock()
	kept := s.items[:0]
	for _, item := range s.items {
		if !matches(item, productID, variantID) {
			kept = append(kept, item)
		}
	}
	s.items = kept
	empty := len(s.items) == 0
	s.mu.Unlock()

	s.changed(empty)
}

// UpdateQuantity ajoute delta (signé) aux lignes correspondantes, plancher à 0
// et plafond à models.MaxItemQuantity.
// Les lignes arrivées à 0 sont retirées dans la même opération.
func (s *Store) UpdateQuantity(productID string, delta int, variantID string) {
	s.mu.Lock()
	kept := s.items[:0]
	for _, item := range s.items {
		if matches(item, productID, variantID) {
			item.Quantity = clampQuantity(item.Quantity, delta)
		}
		if item.Quantity > 0 {
			kept = append(kept, item)
		}
	}
	s.items = kept
	empty := len(s.items) == 0
	s.mu.Unlock()

	s.changed(empty)
}

// clampQuantity ajoute delta sans débordement, résultat dans [0, MaxItemQuantity]
func clampQuantity(q, delta int) int {
	q = min(q, models.MaxItemQuantity)
	delta = min(max(delta, -models.MaxItemQuantity), models.MaxItemQuantity)
	return min(max(q+delta, 0), models.MaxItemQuantity)
}

// ClearCart vide le panier et supprime l'instantané persisté
func (s *Store) ClearCart() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()

	s.changed(true)
}

// Total sous-total (prix × quantité), sans frais de livraison
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// ItemCount somme des quantités
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// Items copie des lignes dans l'ordre d'ajout
func (s *Store) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CartItem(nil), s.items...)
}

// Flush écrit immédiatement l'écriture différée en attente
func (s *Store) Flush() {
	s.persist.Flush()
}

func (s *Store) indexLocked(productID, variantID string) int {
	for i, item := range s.items {
		if item.ProductID == productID && item.VariantID == variantID {
			return i
		}
	}
	return -1
}

func matches(item models.CartItem, productID, variantID string) bool {
	if item.ProductID != productID {
		return false
	}
	return variantID == "" || item.VariantID == variantID
}

// changed : panier non vide → écriture différée ; panier vide → suppression immédiate
func (s *Store) changed(empty bool) {
	if empty {
		s.persist.Cancel()
		s.remove()
		if s.onChange != nil {
			s.onChange(ChangeCleared)
		}
		return
	}
	s.persist.Trigger()
	if s.onChange != nil {
		s.onChange(ChangeUpdated)
	}
}

func (s *Store) write() {
	s.ioMu.Lock()
	defer s.ioMu.Unlock()

	items := s.Items()
	if len(items) == 0 {
		return
	}
	data, err := json.Marshal(items)
	if err != nil {
		log.Printf("❌ Erreur sérialisation panier %s: %v", s.key, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		log.Printf("❌ Erreur sauvegarde panier %s: %v", s.key, err)
	}
}

func (s *Store) remove() {
	s.ioMu.Lock()
	defer s.ioMu.Unlock()

	s.mu.Lock()
	empty := len(s.items) == 0
	s.mu.Unlock()
	if !empty {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := s.kv.Delete(ctx, s.key); err != nil {
		log.Printf("❌ Erreur suppression panier %s: %v", s.key, err)
	}
}
