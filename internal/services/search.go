package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"noel_back_end/internal/models"
)

const ProductsIndex = "products"

const searchLimit = 20

// Search indexe le catalogue dans Elasticsearch
type Search struct {
	client *elasticsearch.Client
	index  string
}

func NewSearch(client *elasticsearch.Client) *Search {
	return &Search{client: client, index: ProductsIndex}
}

type productDocument struct {
	ID               string `json:"id"`
	Slug             string `json:"slug"`
	Name             string `json:"name"`
	ShortDescription string `json:"shortDescription"`
	LongDescription  string `json:"longDescription"`
	Size             string `json:"size"`
	Status           string `json:"status"`
}

func documentFor(p models.Product) productDocument {
	return productDocument{
		ID:               p.ID,
		Slug:             p.Slug,
		Name:             p.Name,
		ShortDescription: p.ShortDescription,
		LongDescription:  p.LongDescription,
		Size:             p.Size,
		Status:           p.Status,
	}
}

// IndexProduct crée ou remplace le document du produit
func (s *Search) IndexProduct(ctx context.Context, p models.Product) error {
	data, err := json.Marshal(documentFor(p))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: p.ID,
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("envoi Elastic: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("indexation de %s: %s", p.Name, res.String())
	}
	log.Printf("✅ Produit indexé dans Elasticsearch: %s", p.Name)
	return nil
}

// DeleteProduct retire le document, un document absent n'est pas une erreur
func (s *Search) DeleteProduct(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: s.index, DocumentID: id}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("envoi Elastic: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("suppression de %s: %s", id, res.String())
	}
	return nil
}

// SearchBody requête multi_match sur le nom et les descriptions
func SearchBody(query string) ([]byte, error) {
	return json.Marshal(map[string]any{
		"size": searchLimit,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^3", "shortDescription", "longDescription", "size"},
				"fuzziness": "AUTO",
			},
		},
	})
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

// ParseHits identifiants des produits trouvés, par pertinence
func ParseHits(r io.Reader) ([]string, error) {
	var resp searchResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("décodage JSON: %w", err)
	}
	ids := make([]string, 0, len(resp.Hits.Hits))
	for _, h := range resp.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

// SearchProducts retourne les identifiants des produits correspondants
func (s *Search) SearchProducts(ctx context.Context, query string) ([]string, error) {
	body, err := SearchBody(query)
	if err != nil {
		return nil, err
	}
	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("requête Elastic: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return []string{}, nil
	}
	if res.IsError() {
		log.Printf("❌ Elasticsearch erreur: %s", res.String())
		return nil, errors.New("recherche indisponible")
	}
	return ParseHits(res.Body)
}
