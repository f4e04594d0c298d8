// Package cache regroupe les lectures Redis en lecture traversante et les
// compteurs de limitation de débit.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	CatalogKey = "products:all"
	CatalogTTL = 10 * time.Minute
)

// GetJSON lit une valeur JSON ; absente, illisible ou client nil → false
func GetJSON[T any](ctx context.Context, client redis.Cmdable, key string) (T, bool) {
	var out T
	if client == nil {
		return out, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("⚠️ Lecture cache %s: %v", key, err)
		}
		return out, false
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, false
	}
	return out, true
}

// SetJSON écrit sans remonter d'erreur : le cache n'est jamais bloquant
func SetJSON(ctx context.Context, client redis.Cmdable, key string, value any, ttl time.Duration) {
	if client == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := client.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("⚠️ Écriture cache %s: %v", key, err)
	}
}

// Invalidate supprime les clés
func Invalidate(ctx context.Context, client redis.Cmdable, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("⚠️ Invalidation cache %v: %v", keys, err)
	}
}

// IncrementRateLimit incrémente le compteur de la fenêtre et retourne sa valeur.
// La clé naît avec son expiration (SET NX EX) dans la même transaction que
// l'INCR : une fenêtre ne peut pas rester sans TTL.
func IncrementRateLimit(ctx context.Context, client redis.Cmdable, key string, window time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		_, incr = queueRateLimit(ctx, pipe, key, window)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func queueRateLimit(ctx context.Context, pipe redis.Pipeliner, key string, window time.Duration) (*redis.BoolCmd, *redis.IntCmd) {
	return pipe.SetNX(ctx, key, 0, window), pipe.Incr(ctx, key)
}
