package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sandeepkv93/storefront-session-gateway/internal/authz"
)

// ErrMalformedCredential marks a credential whose payload cannot be parsed.
// Callers treat it as "no valid session", never as a fault to propagate.
var ErrMalformedCredential = errors.New("malformed credential")

// Claims is the payload the identity service embeds in a bearer credential.
type Claims struct {
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
	CompanyID   string   `json:"company_id,omitempty"`
	GivenName   string   `json:"given_name,omitempty"`
	FamilyName  string   `json:"family_name,omitempty"`
	jwt.RegisteredClaims
}

// UserID is the credential subject.
func (c *Claims) UserID() string { return c.Subject }

// ExpiresAtTime returns the expiry, zero when the claim is absent.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// IssuedAtTime returns the issue timestamp, zero when absent.
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// PermissionSet maps the raw permission names onto the closed set.
func (c *Claims) PermissionSet() []authz.Permission {
	return authz.Normalize(c.Permissions)
}

// Expired reports whether the credential lapsed strictly before now, in
// whole seconds. A credential without an expiry claim counts as expired.
func (c *Claims) Expired(now time.Time) bool {
	exp := c.ExpiresAtTime()
	if exp.IsZero() {
		return true
	}
	return exp.Unix() < now.Unix()
}

// Codec decodes bearer credentials into claims. It deliberately skips
// signature verification: the identity service is the sole issuer and
// verifier, the gateway only needs the payload. Expiry is checked by the
// session layer, not here.
type Codec struct {
	parser *jwt.Parser
}

func NewCodec() *Codec {
	return &Codec{parser: jwt.NewParser()}
}

// Decode parses credential into Claims. Any shape failure, including an
// empty credential or a missing subject, yields ErrMalformedCredential.
func (c *Codec) Decode(credential string) (*Claims, error) {
	if credential == "" {
		return nil, ErrMalformedCredential
	}
	claims := &Claims{}
	if _, _, err := c.parser.ParseUnverified(credential, claims); err != nil {
		return nil, ErrMalformedCredential
	}
	if claims.Subject == "" {
		return nil, ErrMalformedCredential
	}
	return claims, nil
}
