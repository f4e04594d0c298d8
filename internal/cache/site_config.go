package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"noel_back_end/internal/models"
)

const (
	SiteConfigKey = "site_config"
	SiteConfigTTL = 10 * time.Minute
)

type SiteConfigSource interface {
	ListEntries(ctx context.Context) ([]models.SiteConfigEntry, error)
	UpsertEntry(ctx context.Context, e models.SiteConfigEntry) error
}

// SiteConfig configuration du site en lecture traversante (hash Redis)
type SiteConfig struct {
	client redis.Cmdable
	src    SiteConfigSource
}

func NewSiteConfig(client redis.Cmdable, src SiteConfigSource) *SiteConfig {
	return &SiteConfig{client: client, src: src}
}

// SiteConfig carte clé → valeur
func (s *SiteConfig) SiteConfig(ctx context.Context) (map[string]string, error) {
	if s.client != nil {
		values, err := s.client.HGetAll(ctx, SiteConfigKey).Result()
		if err == nil && len(values) > 0 {
			return values, nil
		}
		if err != nil {
			log.Printf("⚠️ Lecture cache configuration: %v", err)
		}
	}

	entries, err := s.src.ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("configuration du site: %w", err)
	}
	values := ToMap(entries)

	if s.client != nil && len(values) > 0 {
		pipe := s.client.TxPipeline()
		pipe.HSet(ctx, SiteConfigKey, values)
		pipe.Expire(ctx, SiteConfigKey, SiteConfigTTL)
		if _, err := pipe.Exec(ctx); err != nil {
			log.Printf("⚠️ Écriture cache configuration: %v", err)
		}
	}
	return values, nil
}

// Entries lecture directe pour l'administration
func (s *SiteConfig) Entries(ctx context.Context) ([]models.SiteConfigEntry, error) {
	return s.src.ListEntries(ctx)
}

// Upsert écrit l'entrée puis invalide le cache
func (s *SiteConfig) Upsert(ctx context.Context, e models.SiteConfigEntry) error {
	if e.Key == "" {
		return fmt.Errorf("clé de configuration vide")
	}
	if err := s.src.UpsertEntry(ctx, e); err != nil {
		return err
	}
	Invalidate(ctx, s.client, SiteConfigKey)
	return nil
}

func ToMap(entries []models.SiteConfigEntry) map[string]string {
	values := make(map[string]string, len(entries))
	for _, e := range entries {
		values[e.Key] = e.Value
	}
	return values
}
