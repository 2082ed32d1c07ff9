package client

import (
	"context"
	"net/http"

	"github.com/sandeepkv93/storefront-session-gateway/internal/domain"
)

type SubscriptionClient struct {
	api *apiClient
}

func NewSubscriptionClient(baseURL string, httpClient *http.Client) (*SubscriptionClient, error) {
	api, err := newAPIClient("subscription", baseURL, httpClient)
	if err != nil {
		return nil, err
	}
	return &SubscriptionClient{api: api}, nil
}

// ByUser lists the user's subscriptions, newest first as the service
// orders them. An empty list is not an error.
func (c *SubscriptionClient) ByUser(ctx context.Context, userID string) ([]domain.Subscription, error) {
	req, err := c.api.newRequest(ctx, http.MethodGet, "/subscriptions/user/"+userID, nil, nil)
	if err != nil {
		return nil, err
	}
	var out []domain.Subscription
	notFound, err := c.api.do(req, &out)
	if err != nil {
		return nil, err
	}
	if notFound {
		return nil, nil
	}
	return out, nil
}
