package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noel_back_end/internal/models"
)

func TestObjectName(t *testing.T) {
	name := ObjectName("p1", "Bolo.JPG")
	assert.True(t, strings.HasPrefix(name, "products/p1/"))
	assert.True(t, strings.HasSuffix(name, ".jpg"))
	assert.NotEqual(t, name, ObjectName("p1", "Bolo.JPG"))
}

func TestObjectKey(t *testing.T) {
	base := "http://localhost:9000/noel-images/"

	key, err := ObjectKey(base, base+"products/p1/a%20b.png")
	require.NoError(t, err)
	assert.Equal(t, "products/p1/a b.png", key)

	_, err = ObjectKey(base, "https://cdn.example.com/x.png")
	assert.ErrorIs(t, err, ErrForeignImage)

	_, err = ObjectKey(base, base)
	assert.ErrorIs(t, err, ErrForeignImage)
}

func TestSignedURL(t *testing.T) {
	client, err := minio.New("localhost:9000", &minio.Options{
		Creds:  credentials.NewStaticV4("minio", "minio-secret", ""),
		Region: "us-east-1",
	})
	require.NoError(t, err)
	images := NewImages(client, "noel-images", false)

	signed, err := images.SignedURL(context.Background(), "http://localhost:9000/noel-images/products/p1/a.png", time.Hour)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(signed, "http://localhost:9000/noel-images/products/p1/a.png?"))
	assert.Contains(t, signed, "X-Amz-Signature=")
	assert.Contains(t, signed, "X-Amz-Expires=3600")

	_, err = images.SignedURL(context.Background(), "https://cdn.example.com/x.png", time.Hour)
	assert.ErrorIs(t, err, ErrForeignImage)
}

func TestSearchBody(t *testing.T) {
	raw, err := SearchBody("panettone")
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	match := body["query"].(map[string]any)["multi_match"].(map[string]any)
	assert.Equal(t, "panettone", match["query"])
	assert.Contains(t, match["fields"], "name^3")
	assert.EqualValues(t, searchLimit, body["size"])
}

func TestParseHits(t *testing.T) {
	ids, err := ParseHits(strings.NewReader(`{"hits":{"total":{"value":2},"hits":[{"_id":"b","_source":{}},{"_id":"a"}]}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids)

	ids, err = ParseHits(strings.NewReader(`{"hits":{"hits":[]}}`))
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = ParseHits(strings.NewReader(`not json`))
	assert.Error(t, err)
}

func TestDocumentFor(t *testing.T) {
	doc := documentFor(models.Product{ID: "p1", Slug: "bolo", Name: "Bolo", Status: models.ProductAvailable})
	assert.Equal(t, "p1", doc.ID)
	assert.Equal(t, "bolo", doc.Slug)
	assert.Equal(t, models.ProductAvailable, doc.Status)
}
