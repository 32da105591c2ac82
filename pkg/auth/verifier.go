// Package auth verifies the bearer tokens that guard the mutating product routes.
package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/abgdnv/giftcatalog/pkg/config"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

// clockSkew is tolerated on exp, nbf and iat between the IdP and this service.
const clockSkew = 30 * time.Second

type Verifier interface {
	Verify(ctx context.Context, tokenString string) (jwt.Token, error)
}

// JWTVerifier checks signature, lifetime, issuer, authorized party and, when configured,
// audience of tokens issued by the realm described by config.IdP.
type JWTVerifier struct {
	keys    *keyCache
	options []jwt.ParseOption
}

// NewJWTVerifier fetches the realm keys once so a wrong JWKS URL fails at startup.
func NewJWTVerifier(ctx context.Context, cfg config.IdP) (*JWTVerifier, error) {
	return newJWTVerifier(ctx, cfg, func(ctx context.Context, url string) (jwk.Set, error) {
		return jwk.Fetch(ctx, url)
	})
}

func newJWTVerifier(ctx context.Context, cfg config.IdP, fetch fetchFunc) (*JWTVerifier, error) {
	if err := cfg.ValidateVerifier(); err != nil {
		return nil, err
	}
	v := &JWTVerifier{
		keys: &keyCache{url: cfg.JwksURL, minInterval: cfg.MinInterval, fetch: fetch, now: time.Now},
		options: []jwt.ParseOption{
			jwt.WithValidate(true),
			jwt.WithAcceptableSkew(clockSkew),
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithClaimValue("azp", cfg.ClientID),
		},
	}
	if cfg.Audience != "" {
		v.options = append(v.options, jwt.WithAudience(cfg.Audience))
	}
	if _, err := v.keys.get(ctx); err != nil {
		return nil, fmt.Errorf("initial JWKS fetch failed: %w", err)
	}
	return v, nil
}

func (v *JWTVerifier) Verify(ctx context.Context, tokenString string) (jwt.Token, error) {
	set, err := v.keys.get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get keyset for verification: %w", err)
	}
	options := append([]jwt.ParseOption{jwt.WithKeySet(set)}, v.options...)
	token, err := jwt.Parse([]byte(tokenString), options...)
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	return token, nil
}

type fetchFunc func(ctx context.Context, url string) (jwk.Set, error)

// keyCache refetches the key set at most once per minInterval.
// A failed refetch keeps serving the previous set.
type keyCache struct {
	mu          sync.Mutex
	url         string
	minInterval time.Duration
	fetch       fetchFunc
	now         func() time.Time

	set       jwk.Set
	fetchedAt time.Time
}

func (c *keyCache) get(ctx context.Context) (jwk.Set, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.set != nil && c.now().Sub(c.fetchedAt) < c.minInterval {
		return c.set, nil
	}
	set, err := c.fetch(ctx, c.url)
	if err != nil {
		if c.set != nil {
			c.fetchedAt = c.now()
			return c.set, nil
		}
		return nil, fmt.Errorf("failed to fetch JWKS from %s: %w", c.url, err)
	}
	c.set = set
	c.fetchedAt = c.now()
	return set, nil
}
