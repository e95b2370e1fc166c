// Package auth0test provides a fake identity provider for tests: an RSA signing
// key, a JWKS endpoint served by httptest, and helpers to mint access tokens.
package auth0test

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/upb/coffee-shop/auth0"
)

const (
	// Domain is the identity provider domain tokens are issued for
	Domain = "coffee-shop-test.us.auth0.com"
	// Audience is the API audience tokens are issued for
	Audience = "http://localhost:5000"
	// KID is the key identifier of the provider's signing key
	KID = "test-kid-123"
)

// Provider is a fake identity provider
type Provider struct {
	Server     *httptest.Server
	PrivateKey *rsa.PrivateKey
	KID        string

	requests atomic.Int64
	keys     atomic.Pointer[auth0.JWKS]
}

// NewProvider starts a JWKS server publishing a freshly generated key
func NewProvider(t testing.TB) *Provider {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	p := &Provider{PrivateKey: privateKey, KID: KID}
	p.SetKeys(p.JWK())

	p.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.requests.Add(1)
		if r.URL.Path != "/.well-known/jwks.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(p.keys.Load())
	}))
	t.Cleanup(p.Server.Close)

	return p
}

// JWKSURL returns the key set location served by the provider
func (p *Provider) JWKSURL() string {
	return p.Server.URL + "/.well-known/jwks.json"
}

// Requests returns how many times the JWKS endpoint was hit
func (p *Provider) Requests() int64 {
	return p.requests.Load()
}

// SetKeys replaces the published key set
func (p *Provider) SetKeys(keys ...auth0.JWK) {
	p.keys.Store(&auth0.JWKS{Keys: keys})
}

// JWK returns the public half of the signing key in JWK form
func (p *Provider) JWK() auth0.JWK {
	return PublicJWK(p.KID, &p.PrivateKey.PublicKey)
}

// PublicJWK encodes an RSA public key as a JWK
func PublicJWK(kid string, publicKey *rsa.PublicKey) auth0.JWK {
	return auth0.JWK{
		Kid: kid,
		Kty: "RSA",
		Alg: "RS256",
		Use: "sig",
		N:   base64.RawURLEncoding.EncodeToString(publicKey.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(publicKey.E)).Bytes()),
	}
}

// ResolverConfig returns a resolver config pointed at the provider
func (p *Provider) ResolverConfig() auth0.ResolverConfig {
	return auth0.ResolverConfig{
		Domain:  Domain,
		JWKSURL: p.JWKSURL(),
	}
}

// VerifierConfig returns a verifier config matching the tokens the provider mints
func (p *Provider) VerifierConfig() auth0.VerifierConfig {
	return auth0.VerifierConfig{
		Domain:     Domain,
		Audience:   Audience,
		Algorithms: []string{"RS256"},
	}
}

// Claims returns valid claims expiring in one hour with the given permissions
func Claims(permissions ...string) *auth0.Claims {
	now := time.Now()
	return &auth0.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://" + Domain + "/",
			Subject:   "auth0|barista",
			Audience:  jwt.ClaimStrings{Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(1 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Permissions: permissions,
	}
}

// Sign signs claims with the provider key and kid
func (p *Provider) Sign(t testing.TB, claims jwt.Claims) string {
	t.Helper()
	return SignWith(t, p.PrivateKey, p.KID, claims)
}

// SignWith signs claims with an arbitrary key and kid; an empty kid omits the header
func SignWith(t testing.TB, key *rsa.PrivateKey, kid string, claims jwt.Claims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if kid != "" {
		token.Header["kid"] = kid
	}

	tokenString, err := token.SignedString(key)
	require.NoError(t, err)
	return tokenString
}
