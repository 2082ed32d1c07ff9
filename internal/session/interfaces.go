package session

import (
	"context"

	"github.com/sandeepkv93/storefront-session-gateway/internal/domain"
)

// IdentityService re-establishes and invalidates the server-held
// credential of one browser.
type IdentityService interface {
	Refresh(ctx context.Context, refreshCredential string) (string, error)
	Logout(ctx context.Context, refreshCredential string) error
}

// CompanyService resolves the company sub-record of a session. Both
// lookups report an absent company as (nil, nil).
type CompanyService interface {
	ByUser(ctx context.Context, userID string) (*domain.Company, error)
	ByID(ctx context.Context, companyID string) (*domain.Company, error)
}

type SubscriptionService interface {
	ByUser(ctx context.Context, userID string) ([]domain.Subscription, error)
}

type InventoryService interface {
	ListByStore(ctx context.Context, storeID string) ([]domain.InventoryItem, error)
}
