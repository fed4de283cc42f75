package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/sirupsen/logrus"
)

// ErrNoExpiry is returned for tokens that do not carry an exp claim
var ErrNoExpiry = errors.New("token carries no expiry")

// TokenDecoder extracts the expiry embedded in a bearer token
type TokenDecoder interface {
	Expiry(ctx context.Context, token string) (time.Time, error)
}

// UnverifiedDecoder reads exp without checking the signature. The backend
// remains the authority on token validity.
type UnverifiedDecoder struct {
	parser *jwt.Parser
}

func NewUnverifiedDecoder() *UnverifiedDecoder {
	return &UnverifiedDecoder{parser: jwt.NewParser()}
}

func (d *UnverifiedDecoder) Expiry(_ context.Context, token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := d.parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("decode token: %w", err)
	}
	return expiryOf(claims)
}

// JWKSDecoder verifies the token signature against a cached JWKS before
// reading exp, and checks issuer and audience when configured.
type JWKSDecoder struct {
	endpoint string
	issuer   string
	audience string
	cache    *jwk.Cache
	parser   *jwt.Parser
}

// NewJWKSDecoder registers endpoint in a refreshing JWKS cache
func NewJWKSDecoder(ctx context.Context, endpoint string, refresh time.Duration, issuer, audience string, logger *logrus.Logger) (*JWKSDecoder, error) {
	cache := jwk.NewCache(ctx)
	if err := cache.Register(endpoint, jwk.WithMinRefreshInterval(refresh)); err != nil {
		return nil, fmt.Errorf("failed to register JWKS endpoint: %w", err)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := cache.Refresh(fetchCtx, endpoint); err != nil {
		logger.WithError(err).Warn("Failed to pre-fetch JWKS, will try during first request")
	}

	return &JWKSDecoder{
		endpoint: endpoint,
		issuer:   issuer,
		audience: audience,
		cache:    cache,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{"RS256", "ES256"}),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

func (d *JWKSDecoder) Expiry(ctx context.Context, token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	parsed, err := d.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		keyID, ok := t.Header["kid"].(string)
		if !ok {
			return nil, fmt.Errorf("kid not found in token header")
		}
		set, err := d.cache.Get(ctx, d.endpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to get JWK set: %w", err)
		}
		key, found := set.LookupKeyID(keyID)
		if !found {
			return nil, fmt.Errorf("key with ID %s not found", keyID)
		}
		var verifyKey interface{}
		if err := key.Raw(&verifyKey); err != nil {
			return nil, fmt.Errorf("failed to get raw key: %w", err)
		}
		return verifyKey, nil
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("verify token: %w", err)
	}
	if !parsed.Valid {
		return time.Time{}, fmt.Errorf("token is invalid")
	}

	if d.issuer != "" {
		iss, _ := claims.GetIssuer()
		if iss != d.issuer {
			return time.Time{}, fmt.Errorf("invalid issuer: expected %s, got %s", d.issuer, iss)
		}
	}
	if d.audience != "" {
		aud, _ := claims.GetAudience()
		if !slices.Contains(aud, d.audience) {
			return time.Time{}, fmt.Errorf("invalid audience: %s not found in %v", d.audience, aud)
		}
	}

	return expiryOf(claims)
}

func expiryOf(claims jwt.MapClaims) (time.Time, error) {
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("read exp: %w", err)
	}
	if exp == nil {
		return time.Time{}, ErrNoExpiry
	}
	return exp.Time, nil
}
