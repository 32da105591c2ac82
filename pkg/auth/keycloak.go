package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/Nerzal/gocloak/v13"
	"github.com/abgdnv/giftcatalog/pkg/config"
)

// Token is an access token issued with the client credentials grant.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresIn   time.Duration
}

type clientLogin interface {
	LoginClient(ctx context.Context, clientID, clientSecret, realm string, scopes ...string) (*gocloak.JWT, error)
}

// TokenSource obtains tokens for a confidential Keycloak client, e.g. to call the
// mutating product routes from scripts.
type TokenSource struct {
	keycloak     clientLogin
	realm        string
	clientID     string
	clientSecret string
}

func NewTokenSource(cfg config.IdP) (*TokenSource, error) {
	if err := cfg.ValidateTokenClient(); err != nil {
		return nil, err
	}
	return newTokenSource(gocloak.NewClient(cfg.URL), cfg), nil
}

func newTokenSource(keycloak clientLogin, cfg config.IdP) *TokenSource {
	return &TokenSource{
		keycloak:     keycloak,
		realm:        cfg.Realm,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
	}
}

// Token logs the client in and returns its access token.
func (s *TokenSource) Token(ctx context.Context) (Token, error) {
	jwt, err := s.keycloak.LoginClient(ctx, s.clientID, s.clientSecret, s.realm)
	if err != nil {
		return Token{}, fmt.Errorf("failed to login client %s to realm %s: %w", s.clientID, s.realm, err)
	}
	if jwt == nil || jwt.AccessToken == "" {
		return Token{}, fmt.Errorf("realm %s returned no access token for client %s", s.realm, s.clientID)
	}
	return Token{
		AccessToken: jwt.AccessToken,
		TokenType:   jwt.TokenType,
		ExpiresIn:   time.Duration(jwt.ExpiresIn) * time.Second,
	}, nil
}
