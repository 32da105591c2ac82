package config

import (
	"errors"
	"fmt"
	"time"
)

// AuthConfig guards the mutating REST routes with bearer tokens issued by the IdP.
type AuthConfig struct {
	Enabled bool `koanf:"enabled"`
	IdP     IdP  `koanf:"idp"`
}

// IdP describes the Keycloak realm that issues tokens for the product API.
// The JWKS fields are read by the server, the realm credentials by the CLI token command.
type IdP struct {
	JwksURL string `koanf:"jwksurl"`
	Issuer  string `koanf:"issuer"`
	// ClientID must match the azp claim of accepted tokens.
	ClientID string `koanf:"clientid"`
	// Audience, when set, must be one of the aud values of accepted tokens.
	Audience    string        `koanf:"audience"`
	MinInterval time.Duration `koanf:"mininterval"`

	URL          string `koanf:"url"`
	Realm        string `koanf:"realm"`
	ClientSecret string `koanf:"clientsecret"`
}

func (c *AuthConfig) String() string {
	return NewSection("Auth").
		Add("auth.enabled", c.Enabled).
		AddIf(c.Enabled, "auth.idp.jwksurl", c.IdP.JwksURL).
		AddIf(c.Enabled, "auth.idp.issuer", c.IdP.Issuer).
		AddIf(c.Enabled, "auth.idp.clientid", c.IdP.ClientID).
		AddIf(c.Enabled, "auth.idp.audience", c.IdP.Audience).
		AddIf(c.Enabled, "auth.idp.mininterval", c.IdP.MinInterval).
		AddIf(c.IdP.URL != "", "auth.idp.url", c.IdP.URL).
		AddIf(c.IdP.URL != "", "auth.idp.realm", c.IdP.Realm).
		AddIf(c.IdP.URL != "", "auth.idp.clientsecret", mask(c.IdP.ClientSecret)).
		String()
}

func (c *AuthConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	return c.IdP.ValidateVerifier()
}

// ValidateVerifier checks the fields needed to verify tokens.
func (c *IdP) ValidateVerifier() error {
	var errs []error
	if c.JwksURL == "" {
		errs = append(errs, fmt.Errorf("IdP JWKS URL cannot be empty"))
	}
	if c.Issuer == "" {
		errs = append(errs, fmt.Errorf("IdP issuer cannot be empty"))
	}
	if c.ClientID == "" {
		errs = append(errs, fmt.Errorf("IdP client ID cannot be empty"))
	}
	errs = positive(errs, namedDuration{"auth.idp.mininterval", c.MinInterval})
	return errors.Join(errs...)
}

// ValidateTokenClient checks the fields needed to obtain tokens with the client credentials grant.
func (c *IdP) ValidateTokenClient() error {
	var errs []error
	if c.URL == "" {
		errs = append(errs, fmt.Errorf("IdP URL cannot be empty"))
	}
	if c.Realm == "" {
		errs = append(errs, fmt.Errorf("IdP realm cannot be empty"))
	}
	if c.ClientID == "" {
		errs = append(errs, fmt.Errorf("IdP client ID cannot be empty"))
	}
	if c.ClientSecret == "" {
		errs = append(errs, fmt.Errorf("IdP client secret cannot be empty"))
	}
	return errors.Join(errs...)
}
