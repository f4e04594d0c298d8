package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

var ErrForeignImage = errors.New("image hors du bucket")

// Images range les photos produit dans un bucket MinIO
type Images struct {
	client *minio.Client
	bucket string
	base   string
}

func NewImages(client *minio.Client, bucket string, secure bool) *Images {
	scheme := "http"
	if secure {
		scheme = "https"
	}
	return &Images{
		client: client,
		bucket: bucket,
		base:   fmt.Sprintf("%s://%s/%s/", scheme, client.EndpointURL().Host, bucket),
	}
}

// ObjectName products/<productId>/<uuid><ext>, extension en minuscules
func ObjectName(productID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join("products", productID, uuid.NewString()+ext)
}

// ObjectKey retrouve la clé d'objet à partir d'une URL publique du bucket
func ObjectKey(base, imageURL string) (string, error) {
	if !strings.HasPrefix(imageURL, base) {
		return "", ErrForeignImage
	}
	key, err := url.PathUnescape(strings.TrimPrefix(imageURL, base))
	if err != nil || key == "" {
		return "", ErrForeignImage
	}
	return key, nil
}

// Upload envoie la photo et retourne son URL publique
func (i *Images) Upload(ctx context.Context, productID, filename, contentType string, r io.Reader, size int64) (string, error) {
	name := ObjectName(productID, filename)
	_, err := i.client.PutObject(ctx, i.bucket, name, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("upload MinIO: %w", err)
	}
	log.Printf("🖼️ Photo envoyée: %s", name)
	return i.base + name, nil
}

// Remove supprime l'objet référencé par l'URL
func (i *Images) Remove(ctx context.Context, imageURL string) error {
	key, err := ObjectKey(i.base, imageURL)
	if err != nil {
		return err
	}
	if err := i.client.RemoveObject(ctx, i.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("suppression MinIO: %w", err)
	}
	return nil
}

// SignedURL lien temporaire vers une photo (bucket privé)
func (i *Images) SignedURL(ctx context.Context, imageURL string, ttl time.Duration) (string, error) {
	key, err := ObjectKey(i.base, imageURL)
	if err != nil {
		return "", err
	}
	u, err := i.client.PresignedGetObject(ctx, i.bucket, key, ttl, make(url.Values))
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
