package domain

import (
	"time"

	"github.com/sandeepkv93/storefront-session-gateway/internal/authz"
)

// Session is the fully resolved identity of one authenticated browser.
// It is either entirely absent or carries at least User and ExpiresAt;
// Company and Subscription may independently be nil.
type Session struct {
	Credential   string        `json:"-"`
	User         User          `json:"user"`
	Company      *Company      `json:"company,omitempty"`
	Subscription *Subscription `json:"subscription,omitempty"`
	IssuedAt     time.Time     `json:"issued_at"`
	ExpiresAt    time.Time     `json:"expires_at"`
}

// Expired reports whether the session credential lapsed before now,
// comparing at second precision as the credential does. Nothing evicts an
// expired session; consumers check reactively.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now.Truncate(time.Second))
}

// Clone returns a deep copy so published snapshots stay immutable.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.User.Permissions = append([]authz.Permission(nil), s.User.Permissions...)
	out.Company = s.Company.clone()
	if s.Subscription != nil {
		sub := *s.Subscription
		out.Subscription = &sub
	}
	return &out
}

type User struct {
	ID          string             `json:"id"`
	Email       string             `json:"email"`
	Role        string             `json:"role"`
	Permissions []authz.Permission `json:"permissions"`
	GivenName   string             `json:"given_name,omitempty"`
	FamilyName  string             `json:"family_name,omitempty"`
}

type Company struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Stores []Store `json:"stores,omitempty"`
}

func (c *Company) clone() *Company {
	if c == nil {
		return nil
	}
	out := *c
	out.Stores = append([]Store(nil), c.Stores...)
	return &out
}

// HasStore reports whether id belongs to the company's store list.
func (c *Company) HasStore(id string) bool {
	if c == nil {
		return false
	}
	for _, s := range c.Stores {
		if s.ID == id {
			return true
		}
	}
	return false
}

// FirstStoreID returns the default store for a freshly resolved session.
func (c *Company) FirstStoreID() string {
	if c == nil || len(c.Stores) == 0 {
		return ""
	}
	return c.Stores[0].ID
}

type Store struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Subscription struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	PlanID   string `json:"plan_id"`
	PlanName string `json:"plan_name"`
}

type InventoryItem struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"store_id"`
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StorePreference is the one durable record the gateway owns: which store
// a user last scoped the UI to. Everything else lives in memory or behind
// the remote services.
type StorePreference struct {
	UserID    string    `gorm:"primaryKey;size:64" json:"user_id"`
	StoreID   string    `gorm:"size:64;not null" json:"store_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
