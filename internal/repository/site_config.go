package repository

import (
	"context"
	"fmt"

	"github.com/gocql/gocql"

	"noel_back_end/internal/models"
)

// SiteConfigRepository table clé/valeur site_config (keyspace produits)
type SiteConfigRepository struct {
	session *gocql.Session
}

func NewSiteConfigRepository(session *gocql.Session) *SiteConfigRepository {
	return &SiteConfigRepository{session: session}
}

func (r *SiteConfigRepository) ListEntries(ctx context.Context) ([]models.SiteConfigEntry, error) {
	iter := r.session.Query(`SELECT key, value, type FROM site_config`).WithContext(ctx).Iter()
	var entries []models.SiteConfigEntry
	var e models.SiteConfigEntry
	for iter.Scan(&e.Key, &e.Value, &e.Type) {
		entries = append(entries, e)
		e = models.SiteConfigEntry{}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture configuration: %w", err)
	}
	return entries, nil
}

func (r *SiteConfigRepository) UpsertEntry(ctx context.Context, e models.SiteConfigEntry) error {
	if e.Type == "" {
		e.Type = "text"
	}
	return r.session.Query(`INSERT INTO site_config (key, value, type) VALUES (?, ?, ?)`, e.Key, e.Value, e.Type).
		WithContext(ctx).Exec()
}
