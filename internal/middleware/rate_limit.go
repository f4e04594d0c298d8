package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"noel_back_end/internal/cache"
)

const (
	OrderMaxRequests = 5  // par minute et par IP
	CartMaxRequests  = 30 // par minute et par session
	RateWindow       = time.Minute
)

// Counter compte les requêtes d'une fenêtre
type Counter interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisCounter compteur partagé entre instances
type RedisCounter struct {
	client redis.Cmdable
}

func NewRedisCounter(client redis.Cmdable) *RedisCounter {
	return &RedisCounter{client: client}
}

func (r *RedisCounter) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	return cache.IncrementRateLimit(ctx, r.client, key, window)
}

// RateLimit refuse au-delà de limit requêtes par fenêtre pour la clé retournée par keyFn.
// Si le compteur est indisponible la requête passe.
func RateLimit(counter Counter, name string, limit int64, window time.Duration, keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s:%s", name, keyFn(c))
		count, err := counter.Increment(c.Request.Context(), key, window)
		if err != nil {
			log.Printf("⚠️ Limitation %s indisponible: %v", name, err)
			c.Next()
			return
		}

		remaining := limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > limit {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Muitas requisições. Tente novamente em instantes.",
				"retry_after": int(window.Seconds()),
			})
			return
		}
		c.Next()
	}
}

// ByIP clé par adresse client
func ByIP(c *gin.Context) string {
	return c.ClientIP()
}

// BySession clé par session de commande (repli sur l'IP)
func BySession(c *gin.Context) string {
	if id := c.GetString(ContextSessionID); id != "" {
		return id
	}
	return c.ClientIP()
}
