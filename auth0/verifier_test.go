package auth0_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/coffee-shop/auth0"
	"github.com/upb/coffee-shop/auth0/auth0test"
	"go.uber.org/zap"
)

// staticKeys is a KeySource returning a fixed result
type staticKeys struct {
	key *auth0.JWK
	err error
}

func (s staticKeys) ResolveKey(context.Context, string) (*auth0.JWK, error) {
	return s.key, s.err
}

func newTestVerifier(t *testing.T) (*auth0test.Provider, *auth0.Verifier) {
	provider := auth0test.NewProvider(t)
	resolver := auth0.NewKeyResolver(provider.ResolverConfig(), zap.NewNop())
	return provider, auth0.NewVerifier(provider.VerifierConfig(), resolver)
}

func requireAuthError(t *testing.T, err error, code string, status int) {
	t.Helper()
	require.Error(t, err)
	authErr, ok := auth0.AsAuthError(err)
	require.True(t, ok, "expected AuthError, got %v", err)
	assert.Equal(t, code, authErr.Code)
	assert.Equal(t, status, authErr.StatusCode)
}

func TestNewVerifier(t *testing.T) {
	verifier := auth0.NewVerifier(auth0.VerifierConfig{Domain: "tenant.us.auth0.com"}, staticKeys{})
	assert.Equal(t, "https://tenant.us.auth0.com/", verifier.Issuer())
}

func TestValidateToken_Success(t *testing.T) {
	provider, verifier := newTestVerifier(t)
	tokenString := provider.Sign(t, auth0test.Claims("get:drinks-detail", "post:drinks"))

	claims, err := verifier.ValidateToken(context.Background(), tokenString)
	require.NoError(t, err)
	require.NotNil(t, claims)

	assert.Equal(t, []string{"get:drinks-detail", "post:drinks"}, claims.Permissions)
	assert.Equal(t, "auth0|barista", claims.Subject)
	assert.Equal(t, "https://"+auth0test.Domain+"/", claims.Issuer)
	assert.Equal(t, jwt.ClaimStrings{auth0test.Audience}, claims.Audience)
}

func TestValidateToken_Idempotent(t *testing.T) {
	provider, verifier := newTestVerifier(t)
	tokenString := provider.Sign(t, auth0test.Claims("post:drinks"))

	first, err := verifier.ValidateToken(context.Background(), tokenString)
	require.NoError(t, err)
	second, err := verifier.ValidateToken(context.Background(), tokenString)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), provider.Requests())
}

func TestValidateToken_Expired(t *testing.T) {
	provider, verifier := newTestVerifier(t)

	claims := auth0test.Claims("post:drinks")
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-1 * time.Hour))
	claims.IssuedAt = jwt.NewNumericDate(time.Now().Add(-2 * time.Hour))

	_, err := verifier.ValidateToken(context.Background(), provider.Sign(t, claims))
	requireAuthError(t, err, auth0.CodeTokenExpired, http.StatusUnauthorized)
}

func TestValidateToken_ExpiryFollowsClock(t *testing.T) {
	provider := auth0test.NewProvider(t)
	resolver := auth0.NewKeyResolver(provider.ResolverConfig(), zap.NewNop())

	cfg := provider.VerifierConfig()
	cfg.Now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	verifier := auth0.NewVerifier(cfg, resolver)

	_, err := verifier.ValidateToken(context.Background(), provider.Sign(t, auth0test.Claims()))
	requireAuthError(t, err, auth0.CodeTokenExpired, http.StatusUnauthorized)
}

func TestValidateToken_InvalidClaims(t *testing.T) {
	provider, verifier := newTestVerifier(t)

	tests := map[string]func(c *auth0.Claims){
		"wrong audience": func(c *auth0.Claims) { c.Audience = jwt.ClaimStrings{"https://other-api"} },
		"no audience":    func(c *auth0.Claims) { c.Audience = nil },
		"wrong issuer":   func(c *auth0.Claims) { c.Issuer = "https://evil.example.com/" },
		"missing expiry": func(c *auth0.Claims) { c.ExpiresAt = nil },
		"not yet valid":  func(c *auth0.Claims) { c.NotBefore = jwt.NewNumericDate(time.Now().Add(time.Hour)) },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			claims := auth0test.Claims("post:drinks")
			mutate(claims)

			_, err := verifier.ValidateToken(context.Background(), provider.Sign(t, claims))
			requireAuthError(t, err, auth0.CodeInvalidClaims, http.StatusUnauthorized)
		})
	}
}

func TestValidateToken_BadSignature(t *testing.T) {
	_, verifier := newTestVerifier(t)

	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tokenString := auth0test.SignWith(t, otherKey, auth0test.KID, auth0test.Claims("post:drinks"))
	_, err = verifier.ValidateToken(context.Background(), tokenString)
	requireAuthError(t, err, auth0.CodeInvalidHeader, http.StatusBadRequest)
}

func TestValidateToken_UnsupportedAlgorithm(t *testing.T) {
	_, verifier := newTestVerifier(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, auth0test.Claims("post:drinks"))
	token.Header["kid"] = auth0test.KID
	tokenString, err := token.SignedString([]byte("shared-secret"))
	require.NoError(t, err)

	_, err = verifier.ValidateToken(context.Background(), tokenString)
	requireAuthError(t, err, auth0.CodeInvalidHeader, http.StatusBadRequest)
}

func TestValidateToken_HeaderProblems(t *testing.T) {
	provider, verifier := newTestVerifier(t)

	t.Run("not a jwt", func(t *testing.T) {
		_, err := verifier.ValidateToken(context.Background(), "not-a-jwt")
		requireAuthError(t, err, auth0.CodeHeaderInvalid, http.StatusUnauthorized)
	})

	t.Run("missing kid", func(t *testing.T) {
		tokenString := auth0test.SignWith(t, provider.PrivateKey, "", auth0test.Claims("post:drinks"))
		_, err := verifier.ValidateToken(context.Background(), tokenString)
		requireAuthError(t, err, auth0.CodeHeaderInvalid, http.StatusUnauthorized)
	})

	t.Run("unknown kid fails fast", func(t *testing.T) {
		tokenString := auth0test.SignWith(t, provider.PrivateKey, "unknown-kid", auth0test.Claims("post:drinks"))
		_, err := verifier.ValidateToken(context.Background(), tokenString)
		requireAuthError(t, err, auth0.CodeHeaderInvalid, http.StatusUnauthorized)
	})
}

func TestValidateToken_KeyProblems(t *testing.T) {
	provider := auth0test.NewProvider(t)
	tokenString := provider.Sign(t, auth0test.Claims("post:drinks"))

	t.Run("fetch failure is not an auth error", func(t *testing.T) {
		fetchErr := errors.New("failed to fetch JWKS: connection refused")
		verifier := auth0.NewVerifier(provider.VerifierConfig(), staticKeys{err: fetchErr})

		_, err := verifier.ValidateToken(context.Background(), tokenString)
		assert.ErrorIs(t, err, fetchErr)
		_, isAuthErr := auth0.AsAuthError(err)
		assert.False(t, isAuthErr)
	})

	t.Run("malformed key", func(t *testing.T) {
		key := provider.JWK()
		key.Kty = "EC"
		verifier := auth0.NewVerifier(provider.VerifierConfig(), staticKeys{key: &key})

		_, err := verifier.ValidateToken(context.Background(), tokenString)
		requireAuthError(t, err, auth0.CodeInvalidHeader, http.StatusBadRequest)
	})

	t.Run("nil key passed directly", func(t *testing.T) {
		verifier := auth0.NewVerifier(provider.VerifierConfig(), staticKeys{})
		_, err := verifier.VerifyWithKey(tokenString, nil)
		requireAuthError(t, err, auth0.CodeHeaderInvalid, http.StatusUnauthorized)
	})
}

func TestKeyID(t *testing.T) {
	provider := auth0test.NewProvider(t)

	kid, err := auth0.KeyID(provider.Sign(t, auth0test.Claims()))
	require.NoError(t, err)
	assert.Equal(t, auth0test.KID, kid)

	_, err = auth0.KeyID("a.b")
	requireAuthError(t, err, auth0.CodeHeaderInvalid, http.StatusUnauthorized)
}
