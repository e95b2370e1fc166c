package auth0

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JWKS represents the JSON Web Key Set published by the identity provider
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWK represents a JSON Web Key
type JWK struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg,omitempty"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// RSAPublicKey converts the key's modulus and exponent to an RSA public key
func (k *JWK) RSAPublicKey() (*rsa.PublicKey, error) {
	if k.Kty != "RSA" {
		return nil, fmt.Errorf("unsupported key type: %q", k.Kty)
	}

	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("failed to decode modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("failed to decode exponent: %w", err)
	}
	if len(nBytes) == 0 || len(eBytes) == 0 {
		return nil, fmt.Errorf("empty modulus or exponent for key %q", k.Kid)
	}

	e := new(big.Int).SetBytes(eBytes)
	if !e.IsInt64() || e.Int64() > int64(^uint32(0)>>1) {
		return nil, fmt.Errorf("exponent out of range for key %q", k.Kid)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(e.Int64()),
	}, nil
}

// ResolverConfig holds configuration for KeyResolver
type ResolverConfig struct {
	// Domain is the identity provider domain, e.g. "tenant.us.auth0.com"
	Domain string
	// JWKSURL overrides the well-known key set location derived from Domain
	JWKSURL string

	CacheTTL           time.Duration
	MinRefreshInterval time.Duration
	HTTPTimeout        time.Duration
	HTTPClient         *http.Client
}

// keySet is an immutable snapshot of a fetched JWKS
type keySet struct {
	keys      map[string]JWK
	fetchedAt time.Time
}

// KeyResolver fetches the provider's key set and caches it for CacheTTL.
// Readers share one snapshot; a single goroutine refreshes it at a time.
type KeyResolver struct {
	jwksURL    string
	httpClient *http.Client
	cacheTTL   time.Duration
	minRefresh time.Duration
	logger     *zap.Logger
	now        func() time.Time

	mu       sync.RWMutex
	snapshot *keySet

	refreshMu sync.Mutex
}

// NewKeyResolver creates a new KeyResolver
func NewKeyResolver(cfg ResolverConfig, logger *zap.Logger) *KeyResolver {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 1 * time.Hour
	}
	if cfg.MinRefreshInterval == 0 {
		cfg.MinRefreshInterval = 1 * time.Minute
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 10 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}

	jwksURL := cfg.JWKSURL
	if jwksURL == "" {
		jwksURL = fmt.Sprintf("https://%s/.well-known/jwks.json", cfg.Domain)
	}

	return &KeyResolver{
		jwksURL:    jwksURL,
		httpClient: cfg.HTTPClient,
		cacheTTL:   cfg.CacheTTL,
		minRefresh: cfg.MinRefreshInterval,
		logger:     logger,
		now:        time.Now,
	}
}

// JWKSURL returns the key set location this resolver fetches from
func (r *KeyResolver) JWKSURL() string {
	return r.jwksURL
}

// ResolveKey returns the key whose kid matches. A nil key with a nil error
// means no match; a non-nil error means the key set could not be fetched.
func (r *KeyResolver) ResolveKey(ctx context.Context, kid string) (*JWK, error) {
	if kid == "" {
		return nil, nil
	}

	set, err := r.current(ctx)
	if err != nil {
		return nil, err
	}
	if key, ok := set.keys[kid]; ok {
		return &key, nil
	}

	// Unknown kid: the provider may have rotated keys since the last fetch.
	if r.now().Sub(set.fetchedAt) < r.minRefresh {
		return nil, nil
	}
	set, err = r.refresh(ctx, set)
	if err != nil {
		return nil, err
	}
	if key, ok := set.keys[kid]; ok {
		return &key, nil
	}
	return nil, nil
}

// current returns a snapshot that is younger than the cache TTL
func (r *KeyResolver) current(ctx context.Context) (*keySet, error) {
	r.mu.RLock()
	set := r.snapshot
	r.mu.RUnlock()

	if set != nil && r.now().Sub(set.fetchedAt) < r.cacheTTL {
		return set, nil
	}
	return r.refresh(ctx, set)
}

// refresh replaces seen with a newly fetched snapshot. If another goroutine
// already replaced it while we waited, that snapshot is returned instead.
func (r *KeyResolver) refresh(ctx context.Context, seen *keySet) (*keySet, error) {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	r.mu.RLock()
	cur := r.snapshot
	r.mu.RUnlock()
	if cur != nil && cur != seen {
		return cur, nil
	}

	jwks, err := r.FetchJWKS(ctx)
	if err != nil {
		return nil, err
	}

	keys := make(map[string]JWK, len(jwks.Keys))
	for _, k := range jwks.Keys {
		if k.Kid == "" {
			continue
		}
		keys[k.Kid] = k
	}
	set := &keySet{keys: keys, fetchedAt: r.now()}

	r.mu.Lock()
	r.snapshot = set
	r.mu.Unlock()

	r.logger.Debug("jwks refreshed",
		zap.String("url", r.jwksURL),
		zap.Int("keys", len(keys)))

	return set, nil
}

// FetchJWKS downloads the key set without touching the cache
func (r *KeyResolver) FetchJWKS(ctx context.Context) (*JWKS, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.jwksURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJWKSFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: status code %d: %s", ErrJWKSFetchFailed, resp.StatusCode, string(body))
	}

	var jwks JWKS
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrJWKSFetchFailed, err)
	}

	return &jwks, nil
}

// Invalidate drops the cached key set so the next lookup fetches again
func (r *KeyResolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot = nil
}

// Stats returns cache statistics
func (r *KeyResolver) Stats() map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := map[string]interface{}{
		"jwks_url":    r.jwksURL,
		"jwks_cached": r.snapshot != nil,
	}
	if r.snapshot != nil {
		stats["jwks_keys_count"] = len(r.snapshot.keys)
		stats["jwks_fetched_at"] = r.snapshot.fetchedAt
		stats["jwks_expires_at"] = r.snapshot.fetchedAt.Add(r.cacheTTL)
	}
	return stats
}
