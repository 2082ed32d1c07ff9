package token

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func mintCredential(t *testing.T, claims *Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign test credential: %v", err)
	}
	return signed
}

func TestDecodeExtractsClaims(t *testing.T) {
	codec := NewCodec()
	issued := time.Now().Add(-time.Minute)
	expires := time.Now().Add(time.Hour)
	raw := mintCredential(t, &Claims{
		Email:       "ana@tienda.example",
		Role:        "ADMIN",
		Permissions: []string{"VIEW_SALES", "MANAGE_PRODUCTS", "NOT_A_PERMISSION"},
		CompanyID:   "C1",
		GivenName:   "Ana",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "U1",
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})

	claims, err := codec.Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.UserID() != "U1" || claims.Email != "ana@tienda.example" || claims.CompanyID != "C1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if got := claims.PermissionSet(); len(got) != 2 {
		t.Fatalf("expected unknown permission names dropped, got %v", got)
	}
	if claims.ExpiresAtTime().Unix() != expires.Unix() {
		t.Fatalf("unexpected expiry: %v", claims.ExpiresAtTime())
	}
}

func TestDecodeDoesNotVerifySignature(t *testing.T) {
	codec := NewCodec()
	raw := mintCredential(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "U1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	// Corrupt the signature segment only; the payload must still decode.
	tampered := raw[:len(raw)-4] + "AAAA"

	if _, err := codec.Decode(tampered); err != nil {
		t.Fatalf("expected payload-only decode to succeed, got %v", err)
	}
}

func TestDecodeMalformedShapes(t *testing.T) {
	codec := NewCodec()

	noSubject := mintCredential(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	garbagePayload := "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString([]byte("not json")) + ".sig"

	for name, credential := range map[string]string{
		"empty":           "",
		"opaque":          "not-a-structured-token",
		"two_segments":    "abc.def",
		"garbage_payload": garbagePayload,
		"no_subject":      noSubject,
	} {
		if _, err := codec.Decode(credential); !errors.Is(err, ErrMalformedCredential) {
			t.Fatalf("%s: expected ErrMalformedCredential, got %v", name, err)
		}
	}
}

func TestClaimsExpired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	past := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Second))}}
	if !past.Expired(now) {
		t.Fatal("expected past expiry to be expired")
	}
	exact := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now)}}
	if exact.Expired(now) {
		t.Fatal("expiry equal to now is not strictly less than now")
	}
	missing := &Claims{}
	if !missing.Expired(now) {
		t.Fatal("a credential without expiry counts as expired")
	}
}

func FuzzDecodeNeverPanics(f *testing.F) {
	f.Add("")
	f.Add("a.b.c")
	f.Add("eyJhbGciOiJIUzI1NiJ9..")
	f.Add("Bearer xyz")

	codec := NewCodec()
	f.Fuzz(func(t *testing.T, credential string) {
		claims, err := codec.Decode(credential)
		if err == nil && claims.Subject == "" {
			t.Fatal("successful decode must carry a subject")
		}
		if err != nil && !errors.Is(err, ErrMalformedCredential) {
			t.Fatalf("decode failures must map to ErrMalformedCredential, got %v", err)
		}
	})
}
