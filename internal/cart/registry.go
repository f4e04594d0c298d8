package cart

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"

	"noel_back_end/internal/storage"
)

// KeyPrefix préfixe des instantanés de panier : cart:<sessionId>
const KeyPrefix = "cart:"

func Key(sessionID string) string {
	return KeyPrefix + sessionID
}

// Registry garde en mémoire un Store par session active. Un Store évincé
// est écrit immédiatement avant d'être oublié.
type Registry struct {
	mu      sync.Mutex
	kv      storage.KV
	stores  *lru.Cache[string, *Store]
	optsFor func(sessionID string) []Option
}

func NewRegistry(kv storage.KV, size int, optsFor func(sessionID string) []Option) (*Registry, error) {
	stores, err := lru.NewWithEvict(size, func(_ string, s *Store) {
		s.Flush()
	})
	if err != nil {
		return nil, fmt.Errorf("création cache paniers: %w", err)
	}
	return &Registry{kv: kv, stores: stores, optsFor: optsFor}, nil
}

// Get retourne le panier de la session, rechargé depuis kv à la première utilisation
func (r *Registry) Get(ctx context.Context, sessionID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores.Get(sessionID); ok {
		return s
	}

	var opts []Option
	if r.optsFor != nil {
		opts = r.optsFor(sessionID)
	}
	s := NewStore(r.kv, Key(sessionID), opts...)
	if err := s.Hydrate(ctx); err != nil {
		log.Printf("⚠️ Panier %s non rechargé: %v", sessionID, err)
	}
	r.stores.Add(sessionID, s)
	return s
}

// Len nombre de paniers en mémoire
func (r *Registry) Len() int {
	return r.stores.Len()
}

// Close écrit tous les paniers en attente (arrêt du serveur)
func (r *Registry) Close() {
	for _, s := range r.stores.Values() {
		s.Flush()
	}
}

// PublishChanges options de session : debounce de persistance et publication
// de chaque mutation sur le canal cart:<sessionId>
func PublishChanges(client redis.Cmdable, debounce time.Duration) func(sessionID string) []Option {
	return func(sessionID string) []Option {
		opts := []Option{WithDebounce(debounce)}
		if client == nil {
			return opts
		}
		channel := Key(sessionID)
		return append(opts, WithOnChange(func(change string) {
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			defer cancel()
			if err := client.Publish(ctx, channel, change).Err(); err != nil {
				log.Printf("⚠️ Publication %s: %v", channel, err)
			}
		}))
	}
}
