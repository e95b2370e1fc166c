package auth0

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// KeySource resolves a key identifier to a key from the provider's key set
type KeySource interface {
	ResolveKey(ctx context.Context, kid string) (*JWK, error)
}

// VerifierConfig holds configuration for Verifier
type VerifierConfig struct {
	Domain     string
	Audience   string
	Algorithms []string
	// Now is the clock used for expiry checks; defaults to time.Now
	Now func() time.Time
}

// Verifier validates access tokens against the provider's published keys
type Verifier struct {
	issuer     string
	audience   string
	algorithms []string
	keys       KeySource
	now        func() time.Time
}

// NewVerifier creates a new Verifier
func NewVerifier(cfg VerifierConfig, keys KeySource) *Verifier {
	if len(cfg.Algorithms) == 0 {
		cfg.Algorithms = []string{jwt.SigningMethodRS256.Alg()}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Verifier{
		issuer:     fmt.Sprintf("https://%s/", cfg.Domain),
		audience:   cfg.Audience,
		algorithms: cfg.Algorithms,
		keys:       keys,
		now:        cfg.Now,
	}
}

// Issuer returns the issuer tokens must carry
func (v *Verifier) Issuer() string {
	return v.issuer
}

// ValidateToken reads the token's kid, resolves the matching key and verifies
// the token with it. Key set fetch failures are returned as plain errors.
func (v *Verifier) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	kid, err := KeyID(tokenString)
	if err != nil {
		return nil, err
	}

	key, err := v.keys.ResolveKey(ctx, kid)
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, errHeaderInvalid("Unable to find appropriate key.")
	}

	return v.VerifyWithKey(tokenString, key)
}

// VerifyWithKey checks signature, audience, issuer and expiry using key
func (v *Verifier) VerifyWithKey(tokenString string, key *JWK) (*Claims, error) {
	if key == nil {
		return nil, errHeaderInvalid("Unable to find appropriate key.")
	}

	publicKey, err := key.RSAPublicKey()
	if err != nil {
		return nil, errInvalidHeader()
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods(v.algorithms),
		jwt.WithAudience(v.audience),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)

	claims := &Claims{}
	_, err = parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return publicKey, nil
	})
	if err != nil {
		return nil, classifyParseError(err)
	}

	return claims, nil
}

// KeyID parses the token header without verifying the signature and returns its kid
func KeyID(tokenString string) (string, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return "", errHeaderInvalid("Invalid Token.")
	}

	kid, _ := token.Header["kid"].(string)
	if kid == "" {
		return "", errHeaderInvalid("Unable to find appropriate key.")
	}
	return kid, nil
}

// classifyParseError maps jwt errors onto the AuthError taxonomy.
// Expiry is checked first: jwt also wraps it in ErrTokenInvalidClaims.
func classifyParseError(err error) *AuthError {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return errTokenExpired()
	case errors.Is(err, jwt.ErrTokenInvalidClaims),
		errors.Is(err, jwt.ErrTokenInvalidAudience),
		errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing),
		errors.Is(err, jwt.ErrTokenNotValidYet),
		errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return errInvalidClaims()
	default:
		return errInvalidHeader()
	}
}
