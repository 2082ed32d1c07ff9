package client

import (
	"context"
	"net/http"
)

// IdentityClient talks to the identity service. The refresh credential is a
// server-held cookie the gateway forwards verbatim; it is never decoded or
// stored durably on this side.
type IdentityClient struct {
	api *apiClient
}

func NewIdentityClient(baseURL string, httpClient *http.Client) (*IdentityClient, error) {
	api, err := newAPIClient("identity", baseURL, httpClient)
	if err != nil {
		return nil, err
	}
	return &IdentityClient{api: api}, nil
}

type refreshResponse struct {
	Token string `json:"token"`
}

// Refresh exchanges the server-held credential for a fresh bearer
// credential. ErrUnauthenticated covers the expected anonymous case.
func (c *IdentityClient) Refresh(ctx context.Context, refreshCredential string) (string, error) {
	if refreshCredential == "" {
		return "", ErrUnauthenticated
	}
	req, err := c.api.newRequest(ctx, http.MethodPost, "/auth/refresh", nil, nil)
	if err != nil {
		return "", err
	}
	req.AddCookie(refreshCookie(refreshCredential))

	var out refreshResponse
	notFound, err := c.api.do(req, &out)
	if err != nil {
		return "", err
	}
	if notFound || out.Token == "" {
		return "", ErrUnauthenticated
	}
	return out.Token, nil
}

// Logout asks the identity service to invalidate the server-held
// credential. Callers treat failures as best-effort.
func (c *IdentityClient) Logout(ctx context.Context, refreshCredential string) error {
	req, err := c.api.newRequest(ctx, http.MethodPost, "/auth/logout", nil, nil)
	if err != nil {
		return err
	}
	if refreshCredential != "" {
		req.AddCookie(refreshCookie(refreshCredential))
	}
	_, err = c.api.do(req, nil)
	return err
}
