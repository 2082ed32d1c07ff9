package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sandeepkv93/storefront-session-gateway/internal/domain"
)

type InventoryClient struct {
	api *apiClient
}

func NewInventoryClient(baseURL string, httpClient *http.Client) (*InventoryClient, error) {
	api, err := newAPIClient("inventory", baseURL, httpClient)
	if err != nil {
		return nil, err
	}
	return &InventoryClient{api: api}, nil
}

// ListByStore returns the ordered inventory of one store.
func (c *InventoryClient) ListByStore(ctx context.Context, storeID string) ([]domain.InventoryItem, error) {
	query := url.Values{"store_id": {storeID}}
	req, err := c.api.newRequest(ctx, http.MethodGet, "/inventory", query, nil)
	if err != nil {
		return nil, err
	}
	var out []domain.InventoryItem
	notFound, err := c.api.do(req, &out)
	if err != nil {
		return nil, err
	}
	if notFound {
		return nil, nil
	}
	return out, nil
}
