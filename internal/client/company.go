package client

import (
	"context"
	"net/http"

	"github.com/sandeepkv93/storefront-session-gateway/internal/domain"
)

type CompanyClient struct {
	api *apiClient
}

func NewCompanyClient(baseURL string, httpClient *http.Client) (*CompanyClient, error) {
	api, err := newAPIClient("company", baseURL, httpClient)
	if err != nil {
		return nil, err
	}
	return &CompanyClient{api: api}, nil
}

// ByUser resolves the company owning userID. A user without a company is
// (nil, nil), not an error.
func (c *CompanyClient) ByUser(ctx context.Context, userID string) (*domain.Company, error) {
	return c.fetch(ctx, "/company/user/"+userID)
}

// ByID looks a company up directly; used as fallback when the user lookup
// returns nothing but the credential carries a company id.
func (c *CompanyClient) ByID(ctx context.Context, companyID string) (*domain.Company, error) {
	return c.fetch(ctx, "/company/"+companyID)
}

func (c *CompanyClient) fetch(ctx context.Context, path string) (*domain.Company, error) {
	req, err := c.api.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	var out domain.Company
	notFound, err := c.api.do(req, &out)
	if err != nil {
		return nil, err
	}
	if notFound || out.ID == "" {
		return nil, nil
	}
	return &out, nil
}
